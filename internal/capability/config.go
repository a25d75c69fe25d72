package capability

import (
	"encoding/json"
	"fmt"
	"sort"
)

// APIVersion is the tool API this host implements. A tool participates
// only when its config declares exactly this version; the check is
// equality, not ordering, so tools built against older or newer APIs are
// both skipped.
const APIVersion = 2

// Wildcard is the wire token meaning "all classes" in a manifest's class
// list. It exists only at the boundary; in memory the wildcard is a
// distinct ClassScope state, never a string compared for membership.
const Wildcard = "*"

// ToolConfig is a report tool's declared requirements.
//
// Version 0 means the author never set one; consumers treat it as the
// published default of 1.
type ToolConfig struct {
	Name     string     `json:"name"`
	Accepts  []string   `json:"accepts"`
	Classes  ClassScope `json:"classes"`
	Depends  []string   `json:"depends,omitempty"`
	Version  int        `json:"version"`
	Requires string     `json:"requires,omitempty"`
}

// DataModel lists the field names available in the current environment.
// Only key membership is consulted; values are opaque descriptor payloads.
type DataModel map[string]any

// Has reports whether the model defines the field.
func (m DataModel) Has(field string) bool {
	_, ok := m[field]
	return ok
}

// Entity is one per-class candidate result record offered to report tools.
type Entity struct {
	Class  string `json:"class,omitempty"`
	Format string `json:"format"`
	Value  any    `json:"value,omitempty"`
}

// EntitySet maps class names to their candidate records.
type EntitySet map[string]Entity

// Environment is the runtime context a tool is evaluated against.
type Environment struct {
	Model    DataModel `json:"model,omitempty"`
	Entities EntitySet `json:"entities,omitempty"`
	Release  string    `json:"release,omitempty"`
}

// ClassScope is the set of entity classes a tool can target. The wildcard
// scope accepts every class; the zero value accepts none.
type ClassScope struct {
	all   bool
	names map[string]struct{}
}

// AllClasses returns the wildcard scope.
func AllClasses() ClassScope {
	return ClassScope{all: true}
}

// Classes returns a scope restricted to the named classes.
func Classes(names ...string) ClassScope {
	s := ClassScope{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		s.names[n] = struct{}{}
	}
	return s
}

// ParseScope decodes a manifest class list. A list containing the wildcard
// token means all classes; anything else restricts to the listed names.
// This is the only place the wildcard string is interpreted.
func ParseScope(names []string) ClassScope {
	for _, n := range names {
		if n == Wildcard {
			return AllClasses()
		}
	}
	return Classes(names...)
}

// Wildcard reports whether the scope accepts every class.
func (s ClassScope) Wildcard() bool {
	return s.all
}

// Contains reports whether the scope accepts the named class.
func (s ClassScope) Contains(name string) bool {
	if s.all {
		return true
	}
	_, ok := s.names[name]
	return ok
}

// Names returns the restricted class names sorted, or nil for the
// wildcard scope.
func (s ClassScope) Names() []string {
	if s.all || len(s.names) == 0 {
		return nil
	}
	names := make([]string, 0, len(s.names))
	for n := range s.names {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// MarshalJSON renders the scope in its wire form: ["*"] for the wildcard,
// the sorted name list otherwise.
func (s ClassScope) MarshalJSON() ([]byte, error) {
	if s.all {
		return json.Marshal([]string{Wildcard})
	}
	names := s.Names()
	if names == nil {
		names = []string{}
	}
	return json.Marshal(names)
}

// UnmarshalJSON decodes the wire form via ParseScope.
func (s *ClassScope) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return fmt.Errorf("class scope: %w", err)
	}
	*s = ParseScope(names)
	return nil
}
