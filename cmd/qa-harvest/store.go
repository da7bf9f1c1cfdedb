// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/qa-harvest/internal/store"
	"github.com/pdiddy/qa-harvest/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Index and query extracted records and scraped movies",
	Long: `Store manages a local SQLite index of the JSON documents written by
extract and the CSV files written by scrape.`,
}

// --- ingest subcommand ---

var storeIngestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Index extract output (.json) or scrape output (.csv)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runStoreIngest,
}

func runStoreIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	s, err := openStore(viper.GetString("store.path"))
	if err != nil {
		return err
	}
	defer s.Close()

	for _, path := range args {
		var n int
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json":
			records, err := store.ReadRecordsFile(path)
			if err != nil {
				return err
			}
			if n, err = s.IngestRecords(ctx, records); err != nil {
				return err
			}
		case ".csv":
			movies, err := store.ReadMoviesFile(path)
			if err != nil {
				return err
			}
			if n, err = s.IngestMovies(ctx, movies); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported file %s: use .json or .csv", path)
		}
		logger.Info("Indexed file", "path", path, "count", n)
	}
	return nil
}

// --- query subcommand ---

var storeQueryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Search indexed records (or movies with --movies)",
	Long: `Query lists indexed records whose headline or question contains the
given text, in dataset order. With --movies it searches movie names and
descriptions instead.`,
	RunE: runStoreQuery,
}

func runStoreQuery(cmd *cobra.Command, args []string) error {
	targetOnly, _ := cmd.Flags().GetBool("target-only")
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	movies, _ := cmd.Flags().GetBool("movies")

	s, err := openStore(viper.GetString("store.path"))
	if err != nil {
		return err
	}
	defer s.Close()

	q := store.Query{Text: strings.Join(args, " "), TargetOnly: targetOnly, Limit: limit}
	ctx := context.Background()

	if movies {
		results, err := s.QueryMovies(ctx, q)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(results)
		}
		renderMovies(results)
		return nil
	}

	results, err := s.QueryRecords(ctx, q)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(results)
	}
	renderRecords(results)
	return nil
}

// --- export subcommand ---

var storeExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export the store to a .json or .yaml file",
	Args:  cobra.ExactArgs(1),
	RunE:  runStoreExport,
}

func runStoreExport(cmd *cobra.Command, args []string) error {
	targetOnly, _ := cmd.Flags().GetBool("target-only")
	queryText, _ := cmd.Flags().GetString("query")

	s, err := openStore(viper.GetString("store.path"))
	if err != nil {
		return err
	}
	defer s.Close()

	e, err := s.Export(context.Background(), args[0], store.Query{Text: queryText, TargetOnly: targetOnly})
	if err != nil {
		return err
	}
	logger.Info("Exported store", "path", args[0], "records", len(e.Records), "movies", len(e.Movies))
	return nil
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func renderRecords(records []types.EnrichedRecord) {
	if len(records) == 0 {
		fmt.Println("No results found.")
		return
	}
	t := newTable()
	t.AppendHeader(table.Row{"Item", "Target", "Headline", "Question", "Answer"})
	for _, r := range records {
		target := ""
		if r.IsTarget {
			target = "*"
		}
		t.AppendRow(table.Row{r.OriginalIndex, target, r.Headline, r.Question, r.AnswerText()})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Headline", WidthMax: 40, WidthMaxEnforcer: text.Trim},
		{Name: "Question", WidthMax: 50, WidthMaxEnforcer: text.Trim},
	})
	t.AppendFooter(table.Row{"", "", "", "", fmt.Sprintf("%d results", len(records))})
	t.Render()
}

func renderMovies(movies []types.Movie) {
	if len(movies) == 0 {
		fmt.Println("No results found.")
		return
	}
	t := newTable()
	t.AppendHeader(table.Row{"Name", "Categories", "Score", "Released", "Duration"})
	for _, m := range movies {
		t.AppendRow(table.Row{m.Name, m.CategoryList(), m.Score, m.ReleaseDate, m.Duration})
	}
	t.AppendFooter(table.Row{"", "", "", "", fmt.Sprintf("%d results", len(movies))})
	t.Render()
}

func init() {
	storeCmd.PersistentFlags().String("db", types.DefaultStorePath, "SQLite database path")
	storeCmd.PersistentFlags().Int("max-results", types.DefaultStoreMaxResults, "default maximum number of query results")
	bindFlags(storeCmd.PersistentFlags(), map[string]string{
		"store.path":        "db",
		"store.max_results": "max-results",
	})

	storeQueryCmd.Flags().Bool("target-only", false, "only list target records")
	storeQueryCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	storeQueryCmd.Flags().Bool("json", false, "output results as JSON")
	storeQueryCmd.Flags().Bool("movies", false, "query movies instead of records")

	storeExportCmd.Flags().String("query", "", "substring filter for a partial export")
	storeExportCmd.Flags().Bool("target-only", false, "only export target records")

	storeCmd.AddCommand(storeIngestCmd)
	storeCmd.AddCommand(storeQueryCmd)
	storeCmd.AddCommand(storeExportCmd)

	rootCmd.AddCommand(storeCmd)
}
