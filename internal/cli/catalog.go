package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/quenault/pathmine/internal/catalog"
	"github.com/quenault/pathmine/internal/config"
	"github.com/quenault/pathmine/internal/pathquery"
)

// CatalogOptions holds options shared by the catalog subcommands.
type CatalogOptions struct {
	*RootOptions
	DB string
}

// NewCatalogCommand creates the catalog command group.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatalogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the saved-query catalog",
	}

	cmd.PersistentFlags().StringVar(&opts.DB, "db", config.DefaultCatalogPath, "catalog database path")

	cmd.AddCommand(newCatalogSaveCommand(opts))
	cmd.AddCommand(newCatalogListCommand(opts))
	cmd.AddCommand(newCatalogShowCommand(opts))
	cmd.AddCommand(newCatalogRmCommand(opts))

	return cmd
}

// openCatalog opens the catalog database, creating its parent directory
// when missing.
func openCatalog(opts *CatalogOptions, formatter *OutputFormatter) (*catalog.Catalog, error) {
	if dir := filepath.Dir(opts.DB); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			formatter.Error(ErrCodeCatalog, fmt.Sprintf("creating catalog directory: %v", err), nil)
			return nil, WrapExitError(ExitCommandError, "opening catalog", err)
		}
	}
	cat, err := catalog.Open(opts.DB)
	if err != nil {
		formatter.Error(ErrCodeCatalog, fmt.Sprintf("opening catalog %s: %v", opts.DB, err), nil)
		return nil, WrapExitError(ExitCommandError, "opening catalog", err)
	}
	return cat, nil
}

// SaveResult is the JSON payload for a catalog save.
type SaveResult struct {
	Saved   *catalog.SavedQuery `json:"saved"`
	Created bool                `json:"created"`
}

// newCatalogSaveCommand creates the catalog save subcommand.
func newCatalogSaveCommand(opts *CatalogOptions) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "save <query.xml | ->",
		Short: "Parse a query and store it under a name",
		Long: `Parse a query and store it under a name.

Saving is idempotent on the query's canonical form: a query already in
the catalog is returned under its original name instead of being
stored twice.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogSave(opts, name, args, cmd)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "name for the saved query")
	cmd.MarkFlagRequired("name")

	return cmd
}

func runCatalogSave(opts *CatalogOptions, name string, args []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	name = strings.TrimSpace(name)
	if name == "" {
		formatter.Error(ErrCodeInput, "name must not be blank", nil)
		return NewExitError(ExitCommandError, "name must not be blank")
	}

	data, err := readSource(cmd, args[0])
	if err != nil {
		formatter.Error(ErrCodeInput, fmt.Sprintf("reading query source: %v", err), nil)
		return WrapExitError(ExitCommandError, "unreadable query source", err)
	}

	cat, err := openCatalog(opts, formatter)
	if err != nil {
		return err
	}
	defer cat.Close()

	saved, created, err := cat.Save(cmd.Context(), name, data)
	if err != nil {
		var parseErr *pathquery.ParseError
		if errors.As(err, &parseErr) {
			formatter.Error(parseErr.Code, parseErr.Message, nil)
			return WrapExitError(ExitCommandError, parseErr.Message, parseErr.Err)
		}
		formatter.Error(ErrCodeCatalog, fmt.Sprintf("saving query: %v", err), nil)
		return WrapExitError(ExitCommandError, "saving query", err)
	}

	if opts.Format == "json" {
		return formatter.Success(SaveResult{Saved: saved, Created: created})
	}

	if created {
		fmt.Fprintf(formatter.Writer, "✓ Saved %q as %s\n", saved.Name, saved.ID)
	} else {
		fmt.Fprintf(formatter.Writer, "Already saved as %s (%q)\n", saved.ID, saved.Name)
	}
	return nil
}

// newCatalogListCommand creates the catalog list subcommand.
func newCatalogListCommand(opts *CatalogOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List saved queries",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogList(opts, cmd)
		},
	}
}

func runCatalogList(opts *CatalogOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cat, err := openCatalog(opts, formatter)
	if err != nil {
		return err
	}
	defer cat.Close()

	queries, err := cat.List(cmd.Context())
	if err != nil {
		formatter.Error(ErrCodeCatalog, fmt.Sprintf("listing queries: %v", err), nil)
		return WrapExitError(ExitCommandError, "listing queries", err)
	}

	if opts.Format == "json" {
		return formatter.Success(queries)
	}

	if len(queries) == 0 {
		fmt.Fprintln(formatter.Writer, "Catalog is empty.")
		return nil
	}
	renderCatalogTable(formatter, queries)
	return nil
}

// renderCatalogTable renders saved queries as a table.
func renderCatalogTable(formatter *OutputFormatter, queries []catalog.SavedQuery) {
	w := formatter.Writer

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "NAME", "ROOT", "CREATED"})
	for _, q := range queries {
		t.AppendRow(table.Row{
			q.ID,
			q.Name,
			q.Query.From,
			q.CreatedAt.Format(time.RFC3339),
		})
	}
	t.Render()
	fmt.Fprintf(w, "(%d queries)\n", len(queries))
}

// newCatalogShowCommand creates the catalog show subcommand.
func newCatalogShowCommand(opts *CatalogOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <id>",
		Short:         "Show a saved query, including its source XML",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogShow(opts, args[0], cmd)
		},
	}
}

func runCatalogShow(opts *CatalogOptions, id string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cat, err := openCatalog(opts, formatter)
	if err != nil {
		return err
	}
	defer cat.Close()

	saved, err := cat.Get(cmd.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			formatter.Error(ErrCodeCatalog, fmt.Sprintf("no saved query with id %s", id), nil)
			return WrapExitError(ExitCommandError, "saved query not found", err)
		}
		formatter.Error(ErrCodeCatalog, fmt.Sprintf("loading query: %v", err), nil)
		return WrapExitError(ExitCommandError, "loading query", err)
	}

	if opts.Format == "json" {
		return formatter.Success(saved)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "id:          %s\n", saved.ID)
	fmt.Fprintf(w, "name:        %s\n", saved.Name)
	fmt.Fprintf(w, "fingerprint: %s\n", saved.Fingerprint)
	fmt.Fprintf(w, "created:     %s\n", saved.CreatedAt.Format(time.RFC3339))
	fmt.Fprintln(w)
	fmt.Fprintln(w, saved.SourceXML)
	return nil
}

// newCatalogRmCommand creates the catalog rm subcommand.
func newCatalogRmCommand(opts *CatalogOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "rm <id>",
		Short:         "Remove a saved query",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogRm(opts, args[0], cmd)
		},
	}
}

func runCatalogRm(opts *CatalogOptions, id string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cat, err := openCatalog(opts, formatter)
	if err != nil {
		return err
	}
	defer cat.Close()

	if err := cat.Delete(cmd.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			formatter.Error(ErrCodeCatalog, fmt.Sprintf("no saved query with id %s", id), nil)
			return WrapExitError(ExitCommandError, "saved query not found", err)
		}
		formatter.Error(ErrCodeCatalog, fmt.Sprintf("removing query: %v", err), nil)
		return WrapExitError(ExitCommandError, "removing query", err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]string{"removed": id})
	}

	fmt.Fprintf(formatter.Writer, "✓ Removed %s\n", id)
	return nil
}
