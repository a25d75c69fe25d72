package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/quenault/pathmine/internal/capability"
)

// Error code constants - unified across loading and the CLI commands.
const (
	ErrCodeGeneric  = "E001" // Generic/unknown error
	ErrCodeScan     = "E002" // Directory scan error
	ErrCodeNoFiles  = "E003" // No manifest files found
	ErrCodeLoad     = "E004" // CUE load or build failed
	ErrCodeNotFound = "E005" // Path not found or not a directory
)

// LoadError represents an error that occurred during manifest loading.
type LoadError struct {
	Code    string
	Message string
	Path    string // offending file or directory, when known
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Path, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// LoadDir loads every CUE manifest under dir and compiles the tools it
// declares. All errors are collected; a broken manifest does not hide the
// rest. Tools arrive in file walk order, tools within a file in
// declaration order.
func LoadDir(dir string) ([]capability.ToolConfig, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Path: dir, Message: "manifest directory not found"}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Path: dir, Message: fmt.Sprintf("error accessing manifest directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Path: dir, Message: "not a directory"}}
	}

	files, err := FindManifestFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScan, Path: dir, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(files) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Path: dir, Message: "no CUE manifests found"}}
	}

	ctx := cuecontext.New()

	var cfgs []capability.ToolConfig
	var errs []error
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			errs = append(errs, &LoadError{Code: ErrCodeGeneric, Path: file, Message: fmt.Sprintf("reading manifest: %v", err)})
			continue
		}

		v := ctx.CompileBytes(data, cue.Filename(file))
		if err := v.Err(); err != nil {
			errs = append(errs, &LoadError{Code: ErrCodeLoad, Path: file, Message: fmt.Sprintf("building CUE value: %v", err)})
			continue
		}

		fileCfgs, fileErrs := CompileTools(v)
		errs = append(errs, fileErrs...)
		cfgs = append(cfgs, fileCfgs...)
	}

	if len(cfgs) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Path: dir, Message: "no tool definitions found in manifests"})
	}

	return cfgs, errs
}

// FindManifestFiles walks the directory and returns all .cue file paths,
// skipping cue.mod metadata directories.
func FindManifestFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == "cue.mod" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
