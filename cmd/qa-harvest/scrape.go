// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/qa-harvest/internal/scrape"
	"github.com/pdiddy/qa-harvest/pkg/types"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape movie detail pages into a CSV file",
	Long: `Scrape walks the listing pages {base-url}/page/1..N, follows every movie
link, and records name, categories, score, release date, duration, and
description. Pages that fail to load are logged and skipped. Missing
fields are written as N/A.`,
	RunE: runScrape,
}

func init() {
	def := types.DefaultScrapeConfig()

	f := scrapeCmd.Flags()
	f.String("base-url", def.BaseURL, "site root; listing pages live at {base-url}/page/{n}")
	f.Int("pages", def.Pages, "number of listing pages to crawl")
	f.String("output", def.Output, "path of the CSV output")
	f.Duration("delay", def.Delay, "minimum interval between requests (0 = no pacing)")
	f.Duration("timeout", def.Timeout, "HTTP request timeout")
	f.String("db", "", "also index the movies into this SQLite database")

	bindFlags(f, map[string]string{
		"scrape.base_url": "base-url",
		"scrape.pages":    "pages",
		"scrape.output":   "output",
		"scrape.delay":    "delay",
		"scrape.timeout":  "timeout",
		"scrape.db":       "db",
	})

	rootCmd.AddCommand(scrapeCmd)
}

func scrapeConfig() types.ScrapeConfig {
	cfg := types.DefaultScrapeConfig()
	cfg.BaseURL = viper.GetString("scrape.base_url")
	cfg.Pages = viper.GetInt("scrape.pages")
	cfg.Output = viper.GetString("scrape.output")
	cfg.Delay = viper.GetDuration("scrape.delay")
	cfg.Timeout = viper.GetDuration("scrape.timeout")
	if ua := viper.GetString("scrape.user_agent"); ua != "" {
		cfg.UserAgent = ua
	}
	return cfg
}

func runScrape(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := scrapeConfig()
	start := time.Now()
	logger.Info("Starting scrape", "base_url", cfg.BaseURL, "pages", cfg.Pages)

	movies, err := scrape.New(logger, cfg).Run(ctx)
	if err != nil {
		return err
	}
	if err := scrape.WriteCSV(cfg.Output, movies); err != nil {
		return err
	}

	if db := viper.GetString("scrape.db"); db != "" {
		if err := ingestMovies(ctx, db, movies); err != nil {
			return err
		}
	}

	logger.Info("Scrape complete",
		"movies", len(movies),
		"output", cfg.Output,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

func ingestMovies(ctx context.Context, path string, movies []types.Movie) error {
	s, err := openStore(path)
	if err != nil {
		return err
	}
	defer s.Close()

	n, err := s.IngestMovies(ctx, movies)
	if err != nil {
		return err
	}
	logger.Info("Indexed movies", "db", path, "count", n)
	return nil
}
