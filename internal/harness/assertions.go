package harness

import (
	"fmt"
	"reflect"
	"sort"
)

// AssertionError describes one expectation the outcome failed to meet.
type AssertionError struct {
	Scenario string
	Field    string
	Want     any
	Got      any
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("scenario %s: %s: want %v, got %v", e.Scenario, e.Field, e.Want, e.Got)
}

// evaluate compares the scenario's expect block against the outcome.
// Every mismatch is collected; a scenario failure report names all of
// them, not just the first.
func evaluate(s *Scenario, o *Outcome) []*AssertionError {
	var failures []*AssertionError

	fail := func(field string, want, got any) {
		failures = append(failures, &AssertionError{
			Scenario: s.Name,
			Field:    field,
			Want:     want,
			Got:      got,
		})
	}

	if o.ParseError != s.Expect.ParseError {
		fail("parse_error", s.Expect.ParseError, o.ParseError)
	}

	wantTools := append([]string{}, s.Expect.Tools...)
	sort.Strings(wantTools)
	if !reflect.DeepEqual(wantTools, o.Tools) {
		fail("tools", wantTools, o.Tools)
	}

	// Walk expected tools in a stable order so failure lists are
	// deterministic.
	expectTools := make([]string, 0, len(s.Expect.Entities))
	for tool := range s.Expect.Entities {
		expectTools = append(expectTools, tool)
	}
	sort.Strings(expectTools)

	for _, tool := range expectTools {
		want := append([]string{}, s.Expect.Entities[tool]...)
		sort.Strings(want)

		got, ok := o.Entities[tool]
		if !ok {
			fail(fmt.Sprintf("entities.%s", tool), want, nil)
			continue
		}
		if !reflect.DeepEqual(want, got) {
			fail(fmt.Sprintf("entities.%s", tool), want, got)
		}
	}

	return failures
}
