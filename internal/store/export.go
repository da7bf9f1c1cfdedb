// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/qa-harvest/internal/fsutil"
	"github.com/pdiddy/qa-harvest/pkg/types"
)

const exportLimit = 1 << 30

// Export holds the full contents of the store.
type Export struct {
	Records []types.EnrichedRecord `json:"records" yaml:"records"`
	Movies  []types.Movie          `json:"movies" yaml:"movies"`
}

// Export writes every record and movie matching q to path. The format
// follows the extension: .json, or YAML for .yaml/.yml.
func (s *Store) Export(ctx context.Context, path string, q Query) (Export, error) {
	q.Limit = exportLimit
	records, err := s.QueryRecords(ctx, q)
	if err != nil {
		return Export{}, fmt.Errorf("querying for export: %w", err)
	}
	movies, err := s.QueryMovies(ctx, Query{Text: q.Text, Limit: exportLimit})
	if err != nil {
		return Export{}, fmt.Errorf("querying for export: %w", err)
	}
	e := Export{Records: records, Movies: movies}
	if e.Records == nil {
		e.Records = []types.EnrichedRecord{}
	}
	if e.Movies == nil {
		e.Movies = []types.Movie{}
	}

	var encode func(w io.Writer) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		encode = func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(e)
		}
	case ".yaml", ".yml":
		encode = func(w io.Writer) error {
			enc := yaml.NewEncoder(w)
			enc.SetIndent(2)
			if err := enc.Encode(e); err != nil {
				return err
			}
			return enc.Close()
		}
	default:
		return Export{}, fmt.Errorf("unsupported export format %q: use .json, .yaml or .yml", filepath.Ext(path))
	}

	if err := fsutil.WriteAtomic(path, encode); err != nil {
		return Export{}, fmt.Errorf("writing export %s: %w", path, err)
	}
	return e, nil
}
