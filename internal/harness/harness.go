package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/quenault/pathmine/internal/capability"
	"github.com/quenault/pathmine/internal/pathquery"
	"github.com/quenault/pathmine/internal/registry"
)

// Runner executes scenarios. Each run builds a fresh registry from the
// scenario's manifest directory, so scenarios never see each other's tools.
type Runner struct {
	logger *slog.Logger
}

// NewRunner creates a runner that logs nowhere. Use NewRunnerWithLogger
// when running scenarios from the CLI.
func NewRunner() *Runner {
	return &Runner{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// NewRunnerWithLogger creates a runner with the given logger.
func NewRunnerWithLogger(logger *slog.Logger) *Runner {
	return &Runner{logger: logger}
}

// Run executes a scenario and returns its result.
//
// Execution flow:
//  1. Load and validate the scenario's tool manifests
//  2. Parse the query, if the scenario has one
//  3. Run the match pipeline against the scenario's environment
//  4. Evaluate the expect block against the outcome
//
// A load or unexpected parse failure is an error; expectation mismatches
// are collected on the result instead.
func (r *Runner) Run(scenario *Scenario) (*Result, error) {
	reg := registry.New()
	if err := reg.LoadDir(scenario.ToolsDir); err != nil {
		return nil, fmt.Errorf("scenario %s: load tools: %w", scenario.Name, err)
	}

	outcome := &Outcome{
		Scenario: scenario.Name,
		Tools:    []string{},
		Entities: make(map[string][]string),
	}

	if scenario.Query != "" {
		q, err := pathquery.Parse([]byte(scenario.Query))
		if err != nil {
			var parseErr *pathquery.ParseError
			if !errors.As(err, &parseErr) {
				return nil, fmt.Errorf("scenario %s: parse query: %w", scenario.Name, err)
			}
			// Parse failures are observable outcomes here, not run errors:
			// scenarios assert on the code.
			outcome.ParseError = parseErr.Code
		} else {
			outcome.Query = q
		}
	}

	for _, m := range reg.Match(r.environment(scenario)) {
		outcome.Tools = append(outcome.Tools, m.Tool.Name)

		names := make([]string, 0, len(m.Entities))
		for name := range m.Entities {
			names = append(names, name)
		}
		sort.Strings(names)
		outcome.Entities[m.Tool.Name] = names
	}

	result := &Result{
		Outcome:  outcome,
		Failures: evaluate(scenario, outcome),
	}

	r.logger.Info("scenario executed",
		"scenario", scenario.Name,
		"tools", len(outcome.Tools),
		"failures", len(result.Failures),
	)
	return result, nil
}

// environment builds the capability environment the scenario describes.
func (r *Runner) environment(scenario *Scenario) capability.Environment {
	var model capability.DataModel
	if len(scenario.Model) > 0 {
		model = make(capability.DataModel, len(scenario.Model))
		for _, field := range scenario.Model {
			model[field] = struct{}{}
		}
	}

	var entities capability.EntitySet
	if len(scenario.Entities) > 0 {
		entities = make(capability.EntitySet, len(scenario.Entities))
		for name, e := range scenario.Entities {
			entities[name] = capability.Entity{Class: e.Class, Format: e.Format, Value: e.Value}
		}
	}

	return capability.Environment{
		Model:    model,
		Entities: entities,
		Release:  scenario.Release,
	}
}
