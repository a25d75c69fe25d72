package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/quenault/pathmine/internal/pathquery"
	"github.com/spf13/cobra"
)

// ParseOptions holds options for the parse command.
type ParseOptions struct {
	*RootOptions
	Fingerprint bool
	Output      string
}

// ParseResult is the JSON payload for a successful parse.
type ParseResult struct {
	Query       *pathquery.Query `json:"query"`
	Fingerprint string           `json:"fingerprint,omitempty"`
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ParseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "parse <query.xml | ->",
		Short: "Parse a path query XML document",
		Long: `Parse a path query XML document and report its structure.

Reads from the given file, or from stdin when the argument is "-".
Exits with an error if the XML is malformed (E201) or carries no
usable view attribute (E202).`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Fingerprint, "fingerprint", false, "include the canonical fingerprint")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write canonical JSON to a file")

	return cmd
}

func runParse(opts *ParseOptions, args []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	data, err := readSource(cmd, args[0])
	if err != nil {
		formatter.Error(ErrCodeInput, fmt.Sprintf("reading query source: %v", err), nil)
		return WrapExitError(ExitCommandError, "unreadable query source", err)
	}

	query, err := pathquery.Parse(data)
	if err != nil {
		var parseErr *pathquery.ParseError
		if errors.As(err, &parseErr) {
			formatter.Error(parseErr.Code, parseErr.Message, nil)
			return WrapExitError(ExitCommandError, parseErr.Message, parseErr.Err)
		}
		formatter.Error(pathquery.CodeMalformed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "parse failed", err)
	}

	result := ParseResult{Query: query}
	if opts.Fingerprint {
		fp, err := pathquery.Fingerprint(query)
		if err != nil {
			return WrapExitError(ExitCommandError, "fingerprinting query", err)
		}
		result.Fingerprint = fp
	}

	if opts.Output != "" {
		canonical, err := pathquery.MarshalCanonical(query)
		if err != nil {
			return WrapExitError(ExitCommandError, "encoding canonical JSON", err)
		}
		if err := os.WriteFile(opts.Output, canonical, 0644); err != nil {
			formatter.Error(ErrCodeWrite, fmt.Sprintf("writing %s: %v", opts.Output, err), nil)
			return WrapExitError(ExitCommandError, "writing canonical JSON", err)
		}
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return outputParseText(formatter, opts, result)
}

// outputParseText renders a parsed query as human-readable text.
func outputParseText(formatter *OutputFormatter, opts *ParseOptions, result ParseResult) error {
	w := formatter.Writer
	q := result.Query

	fmt.Fprintf(w, "✓ Parsed query on %s\n", q.From)
	fmt.Fprintf(w, "  select: %s\n", strings.Join(q.Select, ", "))
	if len(q.SortOrder) > 0 {
		terms := make([]string, len(q.SortOrder))
		for i, s := range q.SortOrder {
			terms[i] = fmt.Sprintf("%s %s", s.Path, s.Direction)
		}
		fmt.Fprintf(w, "  sort: %s\n", strings.Join(terms, ", "))
	}
	if q.ConstraintLogic != "" {
		fmt.Fprintf(w, "  logic: %s\n", q.ConstraintLogic)
	}
	if len(q.Joins) > 0 {
		fmt.Fprintf(w, "  outer joins: %s\n", strings.Join(q.Joins, ", "))
	}
	if len(q.Where) > 0 {
		fmt.Fprintf(w, "  where: %d constraint(s)\n", len(q.Where))
	}
	if result.Fingerprint != "" {
		fmt.Fprintf(w, "  fingerprint: %s\n", result.Fingerprint)
	}
	if opts.Output != "" {
		fmt.Fprintf(w, "Wrote canonical JSON to %s\n", opts.Output)
	}
	return nil
}
