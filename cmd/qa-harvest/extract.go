// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/qa-harvest/internal/batch"
	"github.com/pdiddy/qa-harvest/internal/dataset"
	"github.com/pdiddy/qa-harvest/internal/patterns"
	"github.com/pdiddy/qa-harvest/internal/secrets"
	"github.com/pdiddy/qa-harvest/internal/store"
	"github.com/pdiddy/qa-harvest/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract question/answer pairs from the headline dataset",
	Long: `Extract loads the Headline split of AdaptLLM/finance-tasks (or a local
JSON/JSONL file), applies the template library to every item in parallel,
and writes the enriched records as a JSON array. The last pair of each item
is its target; its answer comes from the item's gold option.

Items that fail are logged and left out of the output. A YAML run summary
is written next to the JSON document.`,
	RunE: runExtract,
}

func init() {
	def := types.DefaultExtractionConfig()

	f := extractCmd.Flags()
	f.String("dataset", def.Dataset.Name, "Hugging Face dataset repository")
	f.String("dataset-config", def.Dataset.Config, "dataset configuration name")
	f.String("split", def.Dataset.Split, "dataset split")
	f.String("endpoint", def.Dataset.Endpoint, "datasets-server base URL")
	f.String("file", "", "read items from a local .json or .jsonl file instead of the hub")
	f.Duration("timeout", def.Dataset.Timeout, "HTTP request timeout")
	f.String("output", def.Output, "path of the JSON output document")
	f.String("summary", "", "path of the YAML run summary (default: derived from --output)")
	f.Int("workers", def.Workers, "number of parallel workers")
	f.String("db", "", "also index the records into this SQLite database")

	bindFlags(f, map[string]string{
		"extract.dataset.name":     "dataset",
		"extract.dataset.config":   "dataset-config",
		"extract.dataset.split":    "split",
		"extract.dataset.endpoint": "endpoint",
		"extract.dataset.file":     "file",
		"extract.dataset.timeout":  "timeout",
		"extract.output":           "output",
		"extract.summary":          "summary",
		"extract.workers":          "workers",
		"extract.db":               "db",
	})

	rootCmd.AddCommand(extractCmd)
}

func extractConfig() types.ExtractionConfig {
	cfg := types.DefaultExtractionConfig()
	cfg.Dataset.Name = viper.GetString("extract.dataset.name")
	cfg.Dataset.Config = viper.GetString("extract.dataset.config")
	cfg.Dataset.Split = viper.GetString("extract.dataset.split")
	cfg.Dataset.Endpoint = viper.GetString("extract.dataset.endpoint")
	cfg.Dataset.File = viper.GetString("extract.dataset.file")
	cfg.Dataset.Timeout = viper.GetDuration("extract.dataset.timeout")
	cfg.Dataset.Token = loadedSecrets.Resolve(secrets.HuggingFaceToken, viper.GetString("extract.dataset.token"))
	cfg.Output = viper.GetString("extract.output")
	cfg.Summary = viper.GetString("extract.summary")
	cfg.Workers = viper.GetInt("extract.workers")
	if cfg.Summary == "" {
		cfg.Summary = batch.SummaryPath(cfg.Output)
	}
	return cfg
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := extractConfig()
	start := time.Now()
	logger.Info("Starting extraction", "output", cfg.Output, "workers", cfg.Workers)

	items, source, err := dataset.Load(ctx, logger, cfg.Dataset)
	if err != nil {
		return fmt.Errorf("loading dataset: %w", err)
	}
	logger.Info("Loaded dataset", "source", source, "items", len(items))

	bar := newProgressBar("Processing items", len(items))
	out, err := batch.Run(ctx, logger, patterns.Default(), items, batch.Options{
		Workers:    cfg.Workers,
		OnProgress: bar.Update,
	})
	bar.Stop()
	if err != nil {
		return err
	}

	if err := batch.WriteJSON(cfg.Output, out.Records); err != nil {
		return err
	}
	elapsed := time.Since(start)
	if err := batch.WriteSummary(cfg.Summary, batch.NewRunSummary(source, cfg.Output, out, elapsed)); err != nil {
		return err
	}

	if db := viper.GetString("extract.db"); db != "" {
		if err := ingestRecords(ctx, db, out.Records); err != nil {
			return err
		}
	}

	logger.Info("Processing complete",
		"pairs", len(out.Records),
		"targets", out.Targets(),
		"failed", len(out.Failed),
		"output", cfg.Output,
		"elapsed", elapsed.Round(time.Millisecond),
	)
	return nil
}

func ingestRecords(ctx context.Context, path string, records []types.EnrichedRecord) error {
	s, err := openStore(path)
	if err != nil {
		return err
	}
	defer s.Close()

	n, err := s.IngestRecords(ctx, records)
	if err != nil {
		return err
	}
	logger.Info("Indexed records", "db", path, "count", n)
	return nil
}

func openStore(path string) (*store.Store, error) {
	cfg := types.DefaultStoreConfig()
	if path != "" {
		cfg.Path = path
	}
	if n := viper.GetInt("store.max_results"); n > 0 {
		cfg.MaxResults = n
	}
	return store.Open(cfg)
}
