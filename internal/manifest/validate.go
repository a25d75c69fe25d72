package manifest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/quenault/pathmine/internal/capability"
	"github.com/quenault/pathmine/internal/version"
)

// Validation error codes (E100-E199)
const (
	ErrDuplicateTool    = "E101" // duplicate tool name
	ErrEmptyAccepts     = "E102" // accepts must name at least one format
	ErrBlankClass       = "E103" // blank class name in a restricted scope
	ErrBadVersion       = "E104" // version below 1
	ErrMalformedRequire = "E105" // requires carries no version digits
	ErrBadToolName      = "E106" // blank or non-identifier tool name
	ErrBlankDependency  = "E107" // blank entry in depends
)

// ValidationError represents a manifest validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// toolNamePattern matches manifest tool names: a letter followed by
// letters, digits, underscores or hyphens.
var toolNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// Validate checks compiled tool configurations against structural rules.
// Returns all errors found (does not fail-fast).
func Validate(cfgs []capability.ToolConfig) []ValidationError {
	var errs []ValidationError

	seen := make(map[string]bool)

	for i, cfg := range cfgs {
		// E106: tool name must be a usable identifier
		if !toolNamePattern.MatchString(cfg.Name) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("tools[%d].name", i),
				Message: fmt.Sprintf("invalid tool name %q", cfg.Name),
				Code:    ErrBadToolName,
			})
		}

		// E101: duplicate tool name
		if seen[cfg.Name] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("tools[%d].name", i),
				Message: fmt.Sprintf("duplicate tool name: %q", cfg.Name),
				Code:    ErrDuplicateTool,
			})
		}
		seen[cfg.Name] = true

		// E102: at least one accepted format is required
		if len(cfg.Accepts) == 0 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("tools[%d].accepts", i),
				Message: fmt.Sprintf("tool %q must accept at least one format", cfg.Name),
				Code:    ErrEmptyAccepts,
			})
		}

		// E103: restricted class scopes must name real classes
		if !cfg.Classes.Wildcard() {
			for _, class := range cfg.Classes.Names() {
				if strings.TrimSpace(class) == "" {
					errs = append(errs, ValidationError{
						Field:   fmt.Sprintf("tools[%d].classes", i),
						Message: fmt.Sprintf("tool %q has a blank class name", cfg.Name),
						Code:    ErrBlankClass,
					})
				}
			}
		}

		// E104: versions count from 1
		if cfg.Version < 1 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("tools[%d].version", i),
				Message: fmt.Sprintf("tool %q has version %d, versions start at 1", cfg.Name, cfg.Version),
				Code:    ErrBadVersion,
			})
		}

		// E105: a requires string must contain version digits
		if cfg.Requires != "" && version.Parse(cfg.Requires).Len() == 0 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("tools[%d].requires", i),
				Message: fmt.Sprintf("tool %q requires %q, which carries no version numbers", cfg.Name, cfg.Requires),
				Code:    ErrMalformedRequire,
			})
		}

		// E107: dependency paths must be non-blank
		for j, dep := range cfg.Depends {
			if strings.TrimSpace(dep) == "" {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("tools[%d].depends[%d]", i, j),
					Message: fmt.Sprintf("tool %q has a blank dependency path", cfg.Name),
					Code:    ErrBlankDependency,
				})
			}
		}
	}

	return errs
}
