// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdiddy/qa-harvest/internal/fsutil"
	"github.com/pdiddy/qa-harvest/pkg/types"
)

// Header is the fixed CSV column order.
var Header = []string{"name", "categories", "score", "release_date", "duration", "description", "url", "timestamp"}

// WriteCSV writes movies under Header with CRLF line endings, replacing
// path atomically.
func WriteCSV(path string, movies []types.Movie) error {
	return fsutil.WriteAtomic(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		cw.UseCRLF = true
		if err := cw.Write(Header); err != nil {
			return err
		}
		for _, m := range movies {
			if err := cw.Write([]string{
				m.Name, m.CategoryList(), m.Score, m.ReleaseDate,
				m.Duration, m.Description, m.URL, m.Timestamp,
			}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

// ReadCSV reads a file written by WriteCSV.
func ReadCSV(path string) ([]types.Movie, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: missing header", path)
	}
	if strings.Join(rows[0], ",") != strings.Join(Header, ",") {
		return nil, fmt.Errorf("%s: unexpected header %v", path, rows[0])
	}

	movies := make([]types.Movie, 0, len(rows)-1)
	for _, r := range rows[1:] {
		m := types.Movie{
			Name:        r[0],
			Categories:  []string{},
			Score:       r[2],
			ReleaseDate: r[3],
			Duration:    r[4],
			Description: r[5],
			URL:         r[6],
			Timestamp:   r[7],
		}
		if r[1] != "" {
			m.Categories = strings.Split(r[1], ", ")
		}
		movies = append(movies, m)
	}
	return movies, nil
}
