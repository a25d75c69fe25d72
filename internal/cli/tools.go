package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/quenault/pathmine/internal/capability"
	"github.com/quenault/pathmine/internal/registry"
)

// NewToolsCommand creates the tools command group.
func NewToolsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Inspect and match report tools",
	}

	cmd.AddCommand(newToolsListCommand(rootOpts))
	cmd.AddCommand(newToolsMatchCommand(rootOpts))

	return cmd
}

// newToolsListCommand creates the tools list subcommand.
func newToolsListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list <tools-dir>",
		Short:         "List the tools registered from a manifest directory",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToolsList(rootOpts, args[0], cmd)
		},
	}
}

func runToolsList(opts *RootOptions, toolsDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	reg := registry.New()
	if err := reg.LoadDir(toolsDir); err != nil {
		code, message := loadErrorParts(err)
		formatter.Error(code, message, nil)
		return WrapExitError(ExitCommandError, "loading tool manifests", err)
	}

	tools := reg.All()
	if opts.Format == "json" {
		return formatter.Success(tools)
	}

	renderToolsTable(formatter, tools)
	return nil
}

// renderToolsTable renders registered tools as a table.
func renderToolsTable(formatter *OutputFormatter, tools []capability.ToolConfig) {
	w := formatter.Writer

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"NAME", "VERSION", "ACCEPTS", "CLASSES", "REQUIRES"})
	for _, tool := range tools {
		classes := "*"
		if !tool.Classes.Wildcard() {
			classes = strings.Join(tool.Classes.Names(), ", ")
		}
		t.AppendRow(table.Row{
			tool.Name,
			tool.Version,
			strings.Join(tool.Accepts, ", "),
			classes,
			tool.Requires,
		})
	}
	t.Render()
	fmt.Fprintf(w, "(%d tools)\n", len(tools))
}

// ToolsMatchOptions holds options for the tools match subcommand.
type ToolsMatchOptions struct {
	*RootOptions
	EnvFile string
	Release string
}

// MatchResult is one matched tool with the entity classes it applies to.
type MatchResult struct {
	Tool     string   `json:"tool"`
	Entities []string `json:"entities"`
}

// newToolsMatchCommand creates the tools match subcommand.
func newToolsMatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ToolsMatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "match <tools-dir>",
		Short: "Match registered tools against an environment document",
		Long: `Match registered tools against an environment document.

The environment document is a JSON file describing the result page:
the data model fields, the entities on the page keyed by class, and
optionally the service release. Tools whose version requirement,
dependencies, formats, and class scopes all hold are reported with
the entity classes they apply to.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToolsMatch(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.EnvFile, "env", "", "environment document (JSON)")
	cmd.Flags().StringVar(&opts.Release, "release", "", "override the document's release")
	cmd.MarkFlagRequired("env")

	return cmd
}

func runToolsMatch(opts *ToolsMatchOptions, toolsDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	reg := registry.New()
	if err := reg.LoadDir(toolsDir); err != nil {
		code, message := loadErrorParts(err)
		formatter.Error(code, message, nil)
		return WrapExitError(ExitCommandError, "loading tool manifests", err)
	}

	data, err := os.ReadFile(opts.EnvFile)
	if err != nil {
		formatter.Error(ErrCodeInput, fmt.Sprintf("reading environment document: %v", err), nil)
		return WrapExitError(ExitCommandError, "unreadable environment document", err)
	}

	var env capability.Environment
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&env); err != nil {
		formatter.Error(ErrCodeEnvironment, fmt.Sprintf("decoding environment document: %v", err), nil)
		return WrapExitError(ExitCommandError, "bad environment document", err)
	}

	if opts.Release != "" {
		env.Release = opts.Release
	}

	matches := reg.Match(env)
	results := make([]MatchResult, 0, len(matches))
	for _, m := range matches {
		names := make([]string, 0, len(m.Entities))
		for class := range m.Entities {
			names = append(names, class)
		}
		sort.Strings(names)
		results = append(results, MatchResult{Tool: m.Tool.Name, Entities: names})
	}

	if opts.Format == "json" {
		return formatter.Success(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(formatter.Writer, "No suitable tools.")
		return nil
	}
	renderMatchTable(formatter, results)
	return nil
}

// renderMatchTable renders match results as a table.
func renderMatchTable(formatter *OutputFormatter, results []MatchResult) {
	w := formatter.Writer

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"TOOL", "ENTITIES"})
	for _, r := range results {
		t.AppendRow(table.Row{r.Tool, strings.Join(r.Entities, ", ")})
	}
	t.Render()
	fmt.Fprintf(w, "(%d tools)\n", len(results))
}
