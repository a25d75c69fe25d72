package pathquery

import "fmt"

// Parse failure codes.
const (
	CodeMalformed   = "E201" // input is not well-formed XML
	CodeMissingView = "E202" // well-formed, but no usable view attribute
)

// ParseError is the failure type for query parsing. Code separates the
// not-XML case from the missing-view case; both are fatal and neither is
// defaulted away, because a query without a select list is meaningless.
type ParseError struct {
	Code    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
