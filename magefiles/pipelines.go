//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

var (
	extractOutput = filepath.Join("output", "processed_headline_dataset.json")
	scrapeOutput  = filepath.Join("output", "ssr1_scrape_center_movies.csv")
	storePath     = filepath.Join("data", "qa-harvest.db")
)

// Extract builds the CLI and runs the headline extraction into output/.
func Extract() error {
	mg.Deps(Build, Init)
	return sh.RunV(binPath, "extract", "--output", extractOutput)
}

// Scrape builds the CLI and scrapes the movie listing into output/.
func Scrape() error {
	mg.Deps(Build, Init)
	return sh.RunV(binPath, "scrape", "--output", scrapeOutput, "--delay", "500ms")
}

// Index loads every JSON and CSV file in output/ into the SQLite store.
func Index() error {
	mg.Deps(Build, Init)
	var files []string
	for _, pattern := range []string{"*.json", "*.csv"} {
		matches, err := filepath.Glob(filepath.Join("output", pattern))
		if err != nil {
			return err
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil
	}
	args := append([]string{"store", "ingest", "--db", storePath}, files...)
	return sh.RunV(binPath, args...)
}
