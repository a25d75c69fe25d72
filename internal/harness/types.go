package harness

import (
	"encoding/json"

	"github.com/quenault/pathmine/internal/pathquery"
)

// Outcome is the full observable result of one scenario: what the parser
// said about the query and which tools survived the match pipeline.
// Marshaled (indented, stable key order) it is the golden-file payload.
type Outcome struct {
	Scenario   string              `json:"scenario"`
	ParseError string              `json:"parse_error,omitempty"`
	Query      *pathquery.Query    `json:"query,omitempty"`
	Tools      []string            `json:"tools"`
	Entities   map[string][]string `json:"entities"`
}

// MarshalIndent renders the outcome as indented JSON. Map keys serialize
// sorted, so the bytes are deterministic across runs.
func (o *Outcome) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(o, "", "  ")
}

// Result pairs an outcome with the expectation failures it produced.
type Result struct {
	Outcome  *Outcome
	Failures []*AssertionError
}

// Pass reports whether every expectation held.
func (r *Result) Pass() bool {
	return len(r.Failures) == 0
}
