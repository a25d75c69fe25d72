package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden loads the scenario at path, runs it, and compares the
// outcome against a golden file. The golden file is stored in
// testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Golden files serve as the source of truth for expected outcome
// documents; the expect block in the scenario YAML covers the same
// ground in a form reviewers can read without JSON.
func RunWithGolden(t *testing.T, path string) (*Result, error) {
	t.Helper()

	scenario, err := LoadScenario(path)
	if err != nil {
		return nil, err
	}

	result, err := NewRunner().Run(scenario)
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, scenario.Name, result.Outcome); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an outcome against the golden file named after
// the scenario. Useful when the caller has already run the scenario and
// only wants the comparison.
func AssertGolden(t *testing.T, scenarioName string, o *Outcome) error {
	t.Helper()

	data, err := o.MarshalIndent()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
