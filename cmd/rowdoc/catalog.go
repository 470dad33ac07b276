// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/rowdoc/internal/catalog"
	"github.com/pdiddy/rowdoc/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Index and search converted documents (store, search, export)",
	Long: `Catalog keeps a local SQLite index of the JSON documents written by
rowdoc. Use subcommands to index the output directory, search it, show one
document, list rubric operators, or export it as a single YAML or JSON file.`,
}

// --- store subcommand ---

var catalogStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Index the documents in the output directory",
	Long: `Store reads every JSON document in the output directory into the
catalog. Documents whose files are unchanged since the last run are skipped,
and entries whose files have been deleted are removed from the catalog.`,
	Args: cobra.NoArgs,
	RunE: runCatalogStore,
}

func runCatalogStore(cmd *cobra.Command, args []string) error {
	store, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	docsDir, _ := cmd.Flags().GetString("output-dir")
	summary, err := store.Ingest(cmd.Context(), docsDir, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d document(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- search subcommand ---

var catalogSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search catalogued documents",
	Long: `Search matches the query against document titles, descriptions and
answers, optionally filtered by rubric operator or source.`,
	RunE: runCatalogSearch,
}

func runCatalogSearch(cmd *cobra.Command, args []string) error {
	store, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --operator, or --source")
	}

	docs, err := store.Search(cmd.Context(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(cmd.OutOrStdout(), docs, jsonOutput)
}

func formatSearchOutput(w io.Writer, docs []types.Document, jsonOutput bool) error {
	if jsonOutput {
		if docs == nil {
			docs = []types.Document{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	}

	if len(docs) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	fmt.Fprintf(w, "%-5s  %-40s  %-50s  %s\n", "Row", "ID", "Title", "Criteria")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for _, d := range docs {
		fmt.Fprintf(w, "%-5d  %-40s  %-50s  %d\n",
			d.Metadata.RowIndex, truncate(d.ID, 40), truncate(d.Title, 50), len(d.Rubric))
	}

	fmt.Fprintf(w, "\n%d results\n", len(docs))
	return nil
}

// truncate shortens s to at most n characters, ending in "..." when cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// --- show subcommand ---

var catalogShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one catalogued document as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogShow,
}

func runCatalogShow(cmd *cobra.Command, args []string) error {
	store, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	doc, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// --- operators subcommand ---

var catalogOperatorsCmd = &cobra.Command{
	Use:   "operators",
	Short: "List rubric operators with the number of criteria using each",
	Args:  cobra.NoArgs,
	RunE:  runCatalogOperators,
}

func runCatalogOperators(cmd *cobra.Command, args []string) error {
	store, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	counts, err := store.Operators(cmd.Context())
	if err != nil {
		return err
	}
	formatOperators(cmd.OutOrStdout(), counts)
	return nil
}

// formatOperators prints operators by descending count, then by name.
func formatOperators(w io.Writer, counts map[string]int) {
	if len(counts) == 0 {
		fmt.Fprintln(w, "No rubric criteria catalogued.")
		return
	}

	ops := make([]string, 0, len(counts))
	for op := range counts {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool {
		if counts[ops[i]] != counts[ops[j]] {
			return counts[ops[i]] > counts[ops[j]]
		}
		return ops[i] < ops[j]
	})

	for _, op := range ops {
		name := op
		if name == "" {
			name = "(none)"
		}
		fmt.Fprintf(w, "%-30s  %d\n", name, counts[op])
	}
}

// --- export subcommand ---

var catalogExportCmd = &cobra.Command{
	Use:   "export [query]",
	Short: "Export catalogued documents to YAML or JSON",
	Long: `Export writes the catalog (or a filtered subset) to export.yaml or
export.json in the catalog directory.`,
	RunE: runCatalogExport,
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)

	var path string
	switch format {
	case "yaml", "":
		path, err = store.ExportYAML(cmd.Context(), opts)
	case "json":
		path, err = store.ExportJSON(cmd.Context(), opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
	return nil
}

// --- shared helpers ---

func openCatalog(cmd *cobra.Command) (*catalog.Store, error) {
	catalogDir, _ := cmd.Flags().GetString("catalog-dir")
	if catalogDir == "" {
		catalogDir = "catalog"
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")

	return catalog.NewStore(types.CatalogConfig{
		CatalogDir: catalogDir,
		MaxResults: maxResults,
	})
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) catalog.QueryOptions {
	operator, _ := cmd.Flags().GetString("operator")
	source, _ := cmd.Flags().GetString("source")
	limit, _ := cmd.Flags().GetInt("limit")

	return catalog.QueryOptions{
		Query:      strings.Join(args, " "),
		Operator:   operator,
		Source:     source,
		MaxResults: limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	catalogCmd.PersistentFlags().String("catalog-dir", "catalog", "directory holding the catalog database and exports")
	catalogCmd.PersistentFlags().Int("max-results", 20, "maximum number of search results")

	catalogStoreCmd.Flags().String("output-dir", types.DefaultOutputDir, "directory of JSON documents to index")

	for _, c := range []*cobra.Command{catalogSearchCmd, catalogExportCmd} {
		c.Flags().String("operator", "", "filter by rubric operator")
		c.Flags().String("source", "", "filter by metadata source")
	}
	catalogSearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	catalogSearchCmd.Flags().Bool("json", false, "output results as JSON")

	catalogExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	catalogExportCmd.Flags().Int("limit", 0, "maximum documents to export (0 = all)")

	// Wire subcommands.
	catalogCmd.AddCommand(catalogStoreCmd)
	catalogCmd.AddCommand(catalogSearchCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogOperatorsCmd)
	catalogCmd.AddCommand(catalogExportCmd)

	rootCmd.AddCommand(catalogCmd)
}
