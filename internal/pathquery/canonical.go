package pathquery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical renders the query as RFC 8785 canonical JSON. This is
// the only serialization used for fingerprinting.
//
// Differences from standard json.Marshal:
//  1. Object keys sorted by UTF-16 code units (not UTF-8 bytes)
//  2. No HTML escaping (< > & stay literal)
//  3. Strings are NFC normalized
//  4. U+2028 and U+2029 stay literal
//
// Absent optional fields are omitted entirely, so an inferred root class
// canonicalizes identically to the same class written explicitly in the
// source XML.
func MarshalCanonical(q *Query) ([]byte, error) {
	if q == nil {
		return nil, fmt.Errorf("cannot canonicalize a nil query")
	}
	return marshalCanonical(canonicalForm(q))
}

// canonicalForm lowers the query to the generic tree the canonical writer
// accepts: single-entry sort mappings and flat constraint attribute
// objects, matching the JSON wire form.
func canonicalForm(q *Query) map[string]any {
	form := map[string]any{
		"select": stringsToAny(q.Select),
	}
	if q.From != "" {
		form["from"] = q.From
	}
	if len(q.SortOrder) > 0 {
		order := make([]any, len(q.SortOrder))
		for i, s := range q.SortOrder {
			order[i] = map[string]any{s.Path: string(s.Direction)}
		}
		form["sortOrder"] = order
	}
	if q.ConstraintLogic != "" {
		form["constraintLogic"] = q.ConstraintLogic
	}
	if len(q.Joins) > 0 {
		form["joins"] = stringsToAny(q.Joins)
	}
	if len(q.Where) > 0 {
		where := make([]any, len(q.Where))
		for i, c := range q.Where {
			obj := make(map[string]any)
			for k, v := range c.attributes() {
				obj[k] = v
			}
			if c.Values != nil {
				obj["values"] = stringsToAny(c.Values)
			}
			where[i] = obj
		}
		form["where"] = where
	}
	return form
}

func stringsToAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

func marshalCanonical(v any) ([]byte, error) {
	switch val := v.(type) {
	case string:
		return marshalCanonicalString(val)
	case []any:
		return marshalCanonicalArray(val)
	case map[string]any:
		return marshalCanonicalObject(val)
	default:
		return nil, fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

// marshalCanonicalString produces a canonical JSON string: NFC normalized,
// no HTML escaping, with only control characters, backslash, and quote
// escaped.
func marshalCanonicalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}

	// json.Encoder appends a newline; drop it.
	result := buf.Bytes()
	if len(result) > 0 && result[len(result)-1] == '\n' {
		result = result[:len(result)-1]
	}

	// The encoder escapes U+2028/U+2029 for JavaScript embedding, which
	// canonical JSON forbids. Undo it, leaving literal backslash-u2028
	// text (encoded as \\u2028) untouched.
	return unescapeSeparators(result), nil
}

// unescapeSeparators rewrites \u2028 and \u2029 escapes back to literal
// characters. An escape is real only when preceded by an even number of
// backslashes; odd means the backslash itself was escaped text.
func unescapeSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	out := make([]byte, 0, len(data))
	backslashes := 0
	for i := 0; i < len(data); {
		if data[i] == '\\' && backslashes%2 == 0 && i+6 <= len(data) &&
			data[i+1] == 'u' && data[i+2] == '2' && data[i+3] == '0' && data[i+4] == '2' &&
			(data[i+5] == '8' || data[i+5] == '9') {
			if data[i+5] == '8' {
				out = append(out, "\u2028"...)
			} else {
				out = append(out, "\u2029"...)
			}
			backslashes = 0
			i += 6
			continue
		}
		if data[i] == '\\' {
			backslashes++
		} else {
			backslashes = 0
		}
		out = append(out, data[i])
		i++
	}
	return out
}

func marshalCanonicalArray(arr []any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		elemBytes, err := marshalCanonical(elem)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(elemBytes)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func marshalCanonicalObject(obj map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range sortedKeys(obj) {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := marshalCanonicalString(k)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := marshalCanonical(obj[k])
		if err != nil {
			return nil, fmt.Errorf("value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// sortedKeys returns the keys in RFC 8785 canonical order. The ordering is
// by UTF-16 code units; Go's native string order is UTF-8 and differs once
// keys leave the basic multilingual plane.
func sortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

// compareUTF16 compares strings by UTF-16 code units, surrogate pairs
// included.
func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	n := len(a16)
	if len(b16) < n {
		n = len(b16)
	}
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	default:
		return 0
	}
}
