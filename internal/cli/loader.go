package cli

import (
	"errors"
	"io"
	"os"

	"github.com/quenault/pathmine/internal/manifest"
	"github.com/quenault/pathmine/internal/pathquery"
	"github.com/spf13/cobra"
)

// CLI-side error codes. The manifest package owns E001-E005 (loading) and
// E101-E107 (validation); pathquery owns E201/E202 (parsing).
const (
	ErrCodeInput       = "E006" // input file or stdin unreadable
	ErrCodeCatalog     = "E007" // catalog open/query failure
	ErrCodeEnvironment = "E008" // malformed environment document
	ErrCodeWrite       = "E009" // output file write failure
	ErrCodeScenario    = "E010" // one or more test scenarios failed
)

// loadErrorParts extracts a (code, message) pair from the error types the
// domain packages return, falling back to E001 for anything unrecognized.
func loadErrorParts(err error) (string, string) {
	var loadErr *manifest.LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	var compileErr *manifest.CompileError
	if errors.As(err, &compileErr) {
		return manifest.ErrCodeLoad, err.Error()
	}
	var validationErr manifest.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Code, validationErr.Message
	}
	var parseErr *pathquery.ParseError
	if errors.As(err, &parseErr) {
		return parseErr.Code, parseErr.Message
	}
	return manifest.ErrCodeGeneric, err.Error()
}

// readSource reads query XML from a file path, or from the command's stdin
// when path is "-".
func readSource(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
