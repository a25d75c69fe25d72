package pathquery

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Query is the parsed form of a PathQuery document.
//
// Select is never empty for a successfully parsed query. From is "" when
// the root class could not be determined (the first selected path began
// with a dot).
type Query struct {
	From            string        `json:"from,omitempty"`
	Select          []string      `json:"select"`
	SortOrder       []SortElement `json:"sortOrder,omitempty"`
	ConstraintLogic string        `json:"constraintLogic,omitempty"`
	Joins           []string      `json:"joins,omitempty"`
	Where           []Constraint  `json:"where,omitempty"`
}

// Direction orders a sort path ascending or descending.
type Direction string

const (
	Ascending  Direction = "ASC"
	Descending Direction = "DESC"
)

// ParseDirection case-normalizes a raw direction token. Tokens outside
// asc/desc pass through uppercased; validity is the consumer's concern.
func ParseDirection(s string) Direction {
	return Direction(strings.ToUpper(s))
}

// SortElement is one ordering term: a dotted path and its direction.
// Its JSON form is the single-entry mapping {"Gene.symbol":"ASC"}.
type SortElement struct {
	Path      string
	Direction Direction
}

// MarshalJSON renders the single-entry mapping form.
func (s SortElement) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]Direction{s.Path: s.Direction})
}

// UnmarshalJSON decodes the single-entry mapping form.
func (s *SortElement) UnmarshalJSON(data []byte) error {
	var m map[string]Direction
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if len(m) != 1 {
		return fmt.Errorf("sort element must hold exactly one path, got %d", len(m))
	}
	for path, dir := range m {
		s.Path = path
		s.Direction = dir
	}
	return nil
}

// Constraint is one filter condition of a query.
//
// Common attributes are promoted to fields; any other attribute of the
// source element is preserved in Extra. Values is non-nil only when the
// element carried child <value> nodes (the "one of" list form), so the
// two shapes stay distinguishable.
type Constraint struct {
	Path       string
	Op         string
	Value      string
	Code       string
	ExtraValue string
	Type       string
	Editable   string
	Values     []string
	Extra      map[string]string
}

// promotedAttrs names the constraint attributes with dedicated fields.
var promotedAttrs = map[string]bool{
	"path":       true,
	"op":         true,
	"value":      true,
	"code":       true,
	"extraValue": true,
	"type":       true,
	"editable":   true,
}

// HasValues reports whether the constraint carried an explicit value list.
func (c Constraint) HasValues() bool {
	return c.Values != nil
}

// setAttribute assigns a source attribute to its field, or to Extra when
// no field is dedicated to it.
func (c *Constraint) setAttribute(key, value string) {
	switch key {
	case "path":
		c.Path = value
	case "op":
		c.Op = value
	case "value":
		c.Value = value
	case "code":
		c.Code = value
	case "extraValue":
		c.ExtraValue = value
	case "type":
		c.Type = value
	case "editable":
		c.Editable = value
	default:
		if c.Extra == nil {
			c.Extra = make(map[string]string)
		}
		c.Extra[key] = value
	}
}

// attributes returns the full attribute mapping of the constraint,
// promoted fields included. Empty promoted fields are treated as absent.
func (c Constraint) attributes() map[string]string {
	attrs := make(map[string]string, len(promotedAttrs)+len(c.Extra))
	set := func(k, v string) {
		if v != "" {
			attrs[k] = v
		}
	}
	set("path", c.Path)
	set("op", c.Op)
	set("value", c.Value)
	set("code", c.Code)
	set("extraValue", c.ExtraValue)
	set("type", c.Type)
	set("editable", c.Editable)
	for k, v := range c.Extra {
		attrs[k] = v
	}
	return attrs
}

// MarshalJSON renders the constraint as one flat object: the attribute
// mapping of the source element, augmented with "values" when present.
func (c Constraint) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(promotedAttrs)+len(c.Extra)+1)
	for k, v := range c.attributes() {
		obj[k] = v
	}
	if c.Values != nil {
		obj["values"] = c.Values
	}
	return json.Marshal(obj)
}

// UnmarshalJSON decodes the flat object form.
func (c *Constraint) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Constraint{}
	for key, rv := range raw {
		if key == "values" {
			if err := json.Unmarshal(rv, &c.Values); err != nil {
				return fmt.Errorf("constraint values: %w", err)
			}
			continue
		}
		var s string
		if err := json.Unmarshal(rv, &s); err != nil {
			return fmt.Errorf("constraint attribute %q: %w", key, err)
		}
		c.setAttribute(key, s)
	}
	return nil
}
