// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"github.com/pdiddy/qa-harvest/internal/batch"
	"github.com/pdiddy/qa-harvest/internal/scrape"
	"github.com/pdiddy/qa-harvest/pkg/types"
)

// ReadRecordsFile loads a JSON document previously written by the extract
// stage.
func ReadRecordsFile(path string) ([]types.EnrichedRecord, error) {
	return batch.ReadJSON(path)
}

// ReadMoviesFile loads a CSV file previously written by the scrape stage.
func ReadMoviesFile(path string) ([]types.Movie, error) {
	return scrape.ReadCSV(path)
}
