package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/quenault/pathmine/internal/pathquery"
)

// Scenario defines one conformance scenario: a tool manifest directory, an
// environment to evaluate, an optional query, and the expected outcome.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// ToolsDir is the manifest directory to load, relative to the
	// scenario file's location.
	ToolsDir string `yaml:"tools_dir"`

	// Release is the service release offered to tools with a requires
	// declaration.
	Release string `yaml:"release,omitempty"`

	// Model lists the field names present in the environment's data model.
	Model []string `yaml:"model,omitempty"`

	// Entities are the candidate records offered to tools, keyed by name.
	Entities map[string]EntityDoc `yaml:"entities,omitempty"`

	// Query is optional PathQuery XML, parsed and reported in the outcome.
	Query string `yaml:"query,omitempty"`

	// Expect is the outcome the scenario asserts.
	Expect Expect `yaml:"expect"`
}

// EntityDoc is the YAML form of one candidate entity.
type EntityDoc struct {
	Class  string `yaml:"class"`
	Format string `yaml:"format"`
	Value  any    `yaml:"value,omitempty"`
}

// Expect is the asserted outcome of a scenario.
type Expect struct {
	// ParseError is the expected query parse failure code; "" means the
	// query (if any) must parse cleanly.
	ParseError string `yaml:"parse_error,omitempty"`

	// Tools lists the tool names expected to match.
	Tools []string `yaml:"tools"`

	// Entities maps tool names to the entity names expected to survive
	// that tool's filter. Tools absent from this map are not checked.
	Entities map[string][]string `yaml:"entities,omitempty"`
}

// scenarioNamePattern also names golden files, so it stays filesystem-safe.
var scenarioNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// LoadScenario reads and parses a scenario YAML file. ToolsDir resolves
// relative to the file's directory. Returns an error if the file doesn't
// exist, is malformed, contains unknown fields (typos), or is missing
// required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "expects:" vs "expect:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.ToolsDir != "" && !filepath.IsAbs(scenario.ToolsDir) {
		scenario.ToolsDir = filepath.Join(filepath.Dir(path), scenario.ToolsDir)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}

	return &scenario, nil
}

// LoadScenarios loads every .yaml/.yml scenario in dir, in filename order.
func LoadScenarios(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !scenarioNamePattern.MatchString(s.Name) {
		return fmt.Errorf("name %q must be a letter followed by letters, digits, '_' or '-'", s.Name)
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.ToolsDir == "" {
		return fmt.Errorf("tools_dir is required")
	}
	info, err := os.Stat(s.ToolsDir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("tools_dir not found: %s", s.ToolsDir)
	}

	for name, entity := range s.Entities {
		if entity.Class == "" {
			return fmt.Errorf("entities[%s]: class is required", name)
		}
		if entity.Format == "" {
			return fmt.Errorf("entities[%s]: format is required", name)
		}
	}

	switch s.Expect.ParseError {
	case "", pathquery.CodeMalformed, pathquery.CodeMissingView:
	default:
		return fmt.Errorf("expect.parse_error %q is not a parse failure code", s.Expect.ParseError)
	}
	if s.Expect.ParseError != "" && s.Query == "" {
		return fmt.Errorf("expect.parse_error set but the scenario has no query")
	}

	return nil
}
