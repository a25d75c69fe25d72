// Package manifest compiles and validates CUE tool manifests into
// capability configurations.
package manifest

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/quenault/pathmine/internal/capability"
)

// CompileTool parses a CUE value into a ToolConfig.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the tool struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`tool: genomeRegions: { ... }`)
//	cfg, err := CompileTool(v.LookupPath(cue.ParsePath("tool.genomeRegions")))
func CompileTool(v cue.Value) (*capability.ToolConfig, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	cfg := &capability.ToolConfig{}

	// Tool name comes from the struct label (the path selector).
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		cfg.Name = labels[len(labels)-1].String()
	}

	// accepts (required)
	acceptsVal := v.LookupPath(cue.ParsePath("accepts"))
	if !acceptsVal.Exists() {
		return nil, &CompileError{
			Tool:    cfg.Name,
			Field:   "accepts",
			Message: "accepts is required",
			Pos:     v.Pos(),
		}
	}
	accepts, err := stringList(acceptsVal)
	if err != nil {
		return nil, compileFieldError(cfg.Name, "accepts", err)
	}
	cfg.Accepts = accepts

	// classes (optional, absent means every class)
	classesVal := v.LookupPath(cue.ParsePath("classes"))
	if classesVal.Exists() {
		names, err := stringList(classesVal)
		if err != nil {
			return nil, compileFieldError(cfg.Name, "classes", err)
		}
		cfg.Classes = capability.ParseScope(names)
	} else {
		cfg.Classes = capability.AllClasses()
	}

	// depends (optional)
	dependsVal := v.LookupPath(cue.ParsePath("depends"))
	if dependsVal.Exists() {
		depends, err := stringList(dependsVal)
		if err != nil {
			return nil, compileFieldError(cfg.Name, "depends", err)
		}
		cfg.Depends = depends
	}

	// version (optional, defaults to 1)
	cfg.Version = 1
	versionVal := v.LookupPath(cue.ParsePath("version"))
	if versionVal.Exists() {
		n, err := versionVal.Int64()
		if err != nil {
			return nil, compileFieldError(cfg.Name, "version", err)
		}
		cfg.Version = int(n)
	}

	// requires (optional minimum service release)
	requiresVal := v.LookupPath(cue.ParsePath("requires"))
	if requiresVal.Exists() {
		requires, err := requiresVal.String()
		if err != nil {
			return nil, compileFieldError(cfg.Name, "requires", err)
		}
		cfg.Requires = requires
	}

	return cfg, nil
}

// CompileTools walks every tool.<name> struct in the value, compiling each.
// Errors are collected per tool; a failing tool does not abort the rest.
func CompileTools(v cue.Value) ([]capability.ToolConfig, []error) {
	if err := v.Err(); err != nil {
		return nil, []error{formatCUEError(err)}
	}

	toolsVal := v.LookupPath(cue.ParsePath("tool"))
	if !toolsVal.Exists() {
		return nil, nil
	}

	iter, err := toolsVal.Fields()
	if err != nil {
		return nil, []error{formatCUEError(err)}
	}

	var cfgs []capability.ToolConfig
	var errs []error
	for iter.Next() {
		cfg, err := CompileTool(iter.Value())
		if err != nil {
			errs = append(errs, err)
			continue
		}
		cfgs = append(cfgs, *cfg)
	}
	return cfgs, errs
}

// stringList reads a CUE list of strings.
func stringList(v cue.Value) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, err
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// CompileError represents a manifest compilation error with source position.
type CompileError struct {
	Tool    string
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	subject := e.Field
	if e.Tool != "" {
		subject = fmt.Sprintf("tool %s: %s", e.Tool, e.Field)
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			subject, e.Message)
	}
	return fmt.Sprintf("%s: %s", subject, e.Message)
}

// compileFieldError attaches tool and field context to a CUE evaluation error.
func compileFieldError(tool, field string, err error) error {
	var compileErr *CompileError
	if ce, ok := formatCUEError(err).(*CompileError); ok {
		compileErr = ce
	} else {
		compileErr = &CompileError{Message: err.Error()}
	}
	compileErr.Tool = tool
	compileErr.Field = field
	return compileErr
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
