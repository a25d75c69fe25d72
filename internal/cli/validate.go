package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quenault/pathmine/internal/manifest"
)

// ValidationResult holds validation results for a tools directory.
type ValidationResult struct {
	Valid  bool                       `json:"valid"`
	Tools  int                        `json:"tools"`
	Errors []manifest.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <tools-dir>",
		Short: "Validate tool manifests without starting the service",
		Long: `Validate CUE tool manifests without starting the service.

Loads every manifest under the directory, compiles it, and runs the
cross-manifest checks (duplicate names, empty accepts lists, malformed
version requirements). Faster than serve for development feedback.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, toolsDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	cfgs, loadErrs := manifest.LoadDir(toolsDir)
	if len(loadErrs) > 0 {
		return outputLoadErrors(formatter, loadErrs)
	}

	formatter.VerboseLog("Loaded %d tool manifest(s) from %s", len(cfgs), toolsDir)

	findings := manifest.Validate(cfgs)
	if len(findings) > 0 {
		return outputValidationErrors(formatter, len(cfgs), findings)
	}

	return outputValidateSuccess(formatter, len(cfgs))
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, tools int) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Tools: tools})
	}

	fmt.Fprintf(formatter.Writer, "✓ %d tool manifest(s) valid\n", tools)
	return nil
}

// outputLoadErrors outputs manifest loading errors. Loading errors are
// command-level: the directory is missing, unreadable, or the CUE does
// not build, so there is nothing to validate.
func outputLoadErrors(formatter *OutputFormatter, errs []error) error {
	if formatter.Format == "json" {
		cliErrs := make([]CLIError, 0, len(errs))
		for _, err := range errs {
			code, message := loadErrorParts(err)
			cliErrs = append(cliErrs, CLIError{Code: code, Message: message})
		}

		response := CLIResponse{
			Status: "error",
			Data:   cliErrs,
			Error:  &cliErrs[0],
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		return NewExitError(ExitCommandError, fmt.Sprintf("manifest loading failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Manifest loading failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "  %v\n", err)
	}

	return NewExitError(ExitCommandError, fmt.Sprintf("manifest loading failed with %d error(s)", len(errs)))
}

// outputValidationErrors outputs validation findings.
func outputValidationErrors(formatter *OutputFormatter, tools int, errs []manifest.ValidationError) error {
	if formatter.Format == "json" {
		result := ValidationResult{
			Valid:  false,
			Tools:  tools,
			Errors: errs,
		}

		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation findings = exit code 1 (the manifests are wrong, not the command)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d finding(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n", err.Code, err.Field, err.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d finding(s)", len(errs)))
}
