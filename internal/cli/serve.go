package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quenault/pathmine/internal/catalog"
	"github.com/quenault/pathmine/internal/config"
	"github.com/quenault/pathmine/internal/registry"
	"github.com/quenault/pathmine/internal/server"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	ConfigFile string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the path query and tool-matching service",
		Long: `Run the HTTP service.

Loads tool manifests, opens the saved-query catalog, and serves the
parse, match, and catalog endpoints until interrupted. Settings come
from flags, environment variables (PATHMINE_*), and an optional YAML
config file, in that order of precedence.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigFile, "config", "", "config file path")
	cmd.Flags().String("tools", config.DefaultToolsDir, "tool manifest directory")
	cmd.Flags().String("db", config.DefaultCatalogPath, "catalog database path")
	cmd.Flags().String("listen", config.DefaultListen, "listen address")
	cmd.Flags().String("release", "", "service release version")
	cmd.Flags().Bool("watch", false, "reload manifests when the tools directory changes")
	cmd.Flags().String("log-level", config.DefaultLogLevel, "log level (debug|info|warn|error)")
	cmd.Flags().String("log-format", config.DefaultLogFormat, "log format (text|json)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	cfg, err := config.Load(opts.ConfigFile, cmd.Flags())
	if err != nil {
		return WrapExitError(ExitCommandError, "loading configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	level := cfg.SlogLevel()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	if dir := filepath.Dir(cfg.CatalogPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return WrapExitError(ExitCommandError, "creating catalog directory", err)
		}
	}
	cat, err := catalog.Open(cfg.CatalogPath)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("opening catalog %s", cfg.CatalogPath), err)
	}
	defer func() {
		if err := cat.Close(); err != nil {
			logger.Error("closing catalog", "error", err)
		}
	}()

	reg := registry.New()
	if err := reg.LoadDir(cfg.ToolsDir); err != nil {
		code, message := loadErrorParts(err)
		return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), err)
	}
	logger.Info("tool manifests loaded", "dir", cfg.ToolsDir, "tools", reg.Count())

	srv := server.New(server.Config{
		Registry: reg,
		Catalog:  cat,
		Listen:   cfg.Listen,
		Release:  cfg.Release,
		Watch:    cfg.Watch,
		ToolsDir: cfg.ToolsDir,
		Logger:   logger,
	})

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving on %s. Press Ctrl-C to stop.\n", cfg.Listen)

	if err := srv.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "server error", err)
	}

	logger.Info("server stopped")
	return nil
}
