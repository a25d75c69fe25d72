package pathquery

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Parse converts a PathQuery XML document into a Query.
//
// It fails with a *ParseError in exactly two cases: CodeMalformed when the
// input is not well-formed XML, and CodeMissingView when the document is
// well-formed but its root carries no usable view attribute. Everything
// else is total: unknown attributes, unknown child elements, and odd sort
// declarations degrade to data or to empty sequences, never to errors.
func Parse(data []byte) (*Query, error) {
	root, err := decodeTree(data)
	if err != nil {
		return nil, &ParseError{Code: CodeMalformed, Message: "malformed query XML", Err: err}
	}

	sel := strings.Fields(root.attrs["view"])
	if len(sel) == 0 {
		return nil, &ParseError{Code: CodeMissingView, Message: `query has no usable "view" attribute`}
	}

	return &Query{
		From:            rootClass(root.attrs["from"], sel[0]),
		Select:          sel,
		SortOrder:       parseSortOrder(root.attrs),
		ConstraintLogic: root.attrs["constraintLogic"],
		Joins:           outerJoins(root.children),
		Where:           parseConstraints(root.children),
	}, nil
}

// ParseString is Parse over a string.
func ParseString(xmlText string) (*Query, error) {
	return Parse([]byte(xmlText))
}

// element is the generic attributed tree the decoder produces: tag name,
// attribute mapping, child elements in document order, and accumulated
// character data.
type element struct {
	name     string
	attrs    map[string]string
	children []*element
	text     string
}

// decodeTree tokenizes the document into an element tree. The decoder runs
// in strict mode; any syntax error surfaces unchanged. A document with no
// root element, or with content after the root, is rejected here as well:
// the tokenizer itself accepts fragments, but a query document has exactly
// one root.
func decodeTree(data []byte) (*element, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var root *element
	var stack []*element

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &element{
				name:  t.Name.Local,
				attrs: make(map[string]string, len(t.Attr)),
			}
			for _, a := range t.Attr {
				el.attrs[a.Name.Local] = a.Value
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("unexpected second root element <%s>", el.name)
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				top.text += string(t)
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("document contains no elements")
	}
	return root, nil
}

// rootClass resolves the query's root class. An explicit from attribute
// always wins; otherwise the class is the text before the first "." of the
// first selected path (the whole path when it has no dot, "" when it
// starts with one).
func rootClass(explicit, firstPath string) string {
	if explicit != "" {
		return explicit
	}
	prefix, _, _ := strings.Cut(firstPath, ".")
	return prefix
}

// parseSortOrder reads the sort declaration: the sortOrder attribute when
// present, otherwise orderBy. The raw value splits on whitespace into
// adjacent (path, direction) pairs with the direction uppercased. A
// missing or blank attribute yields no pairs, and a dangling unpaired
// token is dropped; neither is an error.
func parseSortOrder(attrs map[string]string) []SortElement {
	raw, ok := attrs["sortOrder"]
	if !ok {
		raw = attrs["orderBy"]
	}

	fields := strings.Fields(raw)
	var order []SortElement
	for i := 0; i+1 < len(fields); i += 2 {
		order = append(order, SortElement{
			Path:      fields[i],
			Direction: ParseDirection(fields[i+1]),
		})
	}
	return order
}

// outerJoins collects the path of every immediate join child whose style
// is exactly "OUTER", in document order. The match is case-sensitive;
// inner joins are the default and are not recorded.
func outerJoins(children []*element) []string {
	var joins []string
	for _, el := range children {
		if el.name == "join" && el.attrs["style"] == "OUTER" {
			joins = append(joins, el.attrs["path"])
		}
	}
	return joins
}

// parseConstraints converts the immediate constraint children, in document
// order. Each element's attributes map onto the Constraint record; child
// value elements contribute their trimmed text, in order, as the explicit
// value list.
func parseConstraints(children []*element) []Constraint {
	var where []Constraint
	for _, el := range children {
		if el.name != "constraint" {
			continue
		}

		var c Constraint
		for k, v := range el.attrs {
			c.setAttribute(k, v)
		}
		for _, child := range el.children {
			if child.name == "value" {
				c.Values = append(c.Values, strings.TrimSpace(child.text))
			}
		}
		where = append(where, c)
	}
	return where
}
