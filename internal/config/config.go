// Package config loads pathmine configuration from files, environment
// variables, and command line flags.
//
// Precedence (highest to lowest): flags > env vars > config file > defaults.
// Config files are YAML, discovered as pathmine.yaml or pathmine.yml in the
// working directory when no explicit path is given. Relative tools_dir and
// catalog_path values from a config file resolve against the file's
// directory; values set on the command line resolve against the working
// directory.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config holds all pathmine server and CLI configuration options.
type Config struct {
	ToolsDir    string `koanf:"tools_dir"`
	CatalogPath string `koanf:"catalog_path"`
	Listen      string `koanf:"listen"`
	Release     string `koanf:"release"`
	Watch       bool   `koanf:"watch"`
	LogLevel    string `koanf:"log_level"`
	LogFormat   string `koanf:"log_format"`
}

// Default configuration values.
const (
	DefaultToolsDir    = "tools"
	DefaultCatalogPath = ".pathmine/catalog.db"
	DefaultListen      = ":8700"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
)

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		ToolsDir:    DefaultToolsDir,
		CatalogPath: DefaultCatalogPath,
		Listen:      DefaultListen,
		LogLevel:    DefaultLogLevel,
		LogFormat:   DefaultLogFormat,
	}
}

// findConfigFile finds the config file to use.
// Priority: explicit path > pathmine.yaml > pathmine.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat("pathmine.yaml"); err == nil {
		return "pathmine.yaml"
	}
	if _, err := os.Stat("pathmine.yml"); err == nil {
		return "pathmine.yml"
	}
	return ""
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// Load loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
// The flags parameter may be nil when no command line flags apply.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// Track paths that were explicitly provided as flags. These are already
	// relative to the working directory and must not be re-resolved against
	// the config file's directory below.
	var flagToolsDir, flagCatalogPath string
	if flags != nil {
		if flags.Changed("tools") {
			if v, _ := flags.GetString("tools"); v != "" {
				flagToolsDir, _ = filepath.Abs(v)
			}
		}
		if flags.Changed("db") {
			if v, _ := flags.GetString("db"); v != "" {
				flagCatalogPath, _ = filepath.Abs(v)
			}
		}
	}

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"tools_dir":    DefaultToolsDir,
		"catalog_path": DefaultCatalogPath,
		"listen":       DefaultListen,
		"release":      "",
		"watch":        false,
		"log_level":    DefaultLogLevel,
		"log_format":   DefaultLogFormat,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	configFile := findConfigFile(cfgFile)
	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	}

	// 3. Load environment variables (PATHMINE_ prefix)
	// Transform: PATHMINE_TOOLS_DIR -> tools_dir, double underscore nests
	if err := k.Load(env.Provider("PATHMINE_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "PATHMINE_")), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority - overrides env vars and config file)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			// Transform kebab-case to snake_case for config keys
			key := strings.ReplaceAll(f.Name, "-", "_")

			// The CLI uses --tools and --db for brevity; the config keys
			// spell out what they hold.
			switch key {
			case "tools":
				return "tools_dir", posflag.FlagVal(flags, f)
			case "db":
				return "catalog_path", posflag.FlagVal(flags, f)
			}

			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// 6. Resolve relative paths. Paths from a config file anchor to the
	// file's directory; flag-provided paths were absolutized above.
	baseDir := "."
	if configFile != "" {
		if abs, err := filepath.Abs(configFile); err == nil {
			baseDir = filepath.Dir(abs)
		}
	}
	if flagToolsDir != "" {
		cfg.ToolsDir = flagToolsDir
	} else {
		cfg.ToolsDir = resolvePathRelativeTo(cfg.ToolsDir, baseDir)
	}
	if flagCatalogPath != "" {
		cfg.CatalogPath = flagCatalogPath
	} else {
		cfg.CatalogPath = resolvePathRelativeTo(cfg.CatalogPath, baseDir)
	}

	return &cfg, nil
}

// Validate checks that enumerated settings carry known values. Load does
// not call it; the serve command does, so one-shot commands that never
// build a logger are not policed for logging settings.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q (expected debug, info, warn or error)", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (expected text or json)", c.LogFormat)
	}
	if c.Listen == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	return nil
}

// SlogLevel maps the configured log level to a slog.Level.
// Unknown values fall back to info; Validate rejects them earlier.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
