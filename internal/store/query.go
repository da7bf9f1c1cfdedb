// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/qa-harvest/pkg/types"
)

// Query selects records or movies.
type Query struct {
	// Text is a case-insensitive substring matched against headline and
	// question (records) or name and description (movies).
	Text string

	// TargetOnly restricts record queries to target records.
	TargetOnly bool

	// Limit caps the result count. Zero uses the store default.
	Limit int
}

func (s *Store) limit(q Query) int {
	if q.Limit > 0 {
		return q.Limit
	}
	return s.maxResults
}

// likePattern escapes text for a LIKE ... ESCAPE '\' clause.
func likePattern(text string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(text) + "%"
}

// QueryRecords returns matching records in dataset order.
func (s *Store) QueryRecords(ctx context.Context, q Query) ([]types.EnrichedRecord, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT id, headline, question, is_target, original_index, answer, options, gold_index
		FROM records WHERE 1=1`)
	if q.Text != "" {
		qb.WriteString(` AND (headline LIKE ? ESCAPE '\' OR question LIKE ? ESCAPE '\')`)
		p := likePattern(q.Text)
		args = append(args, p, p)
	}
	if q.TargetOnly {
		qb.WriteString(` AND is_target = 1`)
	}
	qb.WriteString(` ORDER BY original_index, is_target, rowid LIMIT ?`)
	args = append(args, s.limit(q))

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var out []types.EnrichedRecord
	for rows.Next() {
		var (
			r       types.EnrichedRecord
			answer  sql.NullString
			options sql.NullString
			gold    sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &r.Headline, &r.Question, &r.IsTarget, &r.OriginalIndex, &answer, &options, &gold); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		if answer.Valid {
			a := answer.String
			r.Answer = &a
		}
		if options.Valid {
			if err := json.Unmarshal([]byte(options.String), &r.Options); err != nil {
				return nil, fmt.Errorf("decoding options of %s: %w", r.ID, err)
			}
		}
		if gold.Valid {
			g := int(gold.Int64)
			r.GoldIndex = &g
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// QueryMovies returns matching movies ordered by name.
func (s *Store) QueryMovies(ctx context.Context, q Query) ([]types.Movie, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT url, name, categories, score, release_date, duration, description, scraped_at
		FROM movies WHERE 1=1`)
	if q.Text != "" {
		qb.WriteString(` AND (name LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\')`)
		p := likePattern(q.Text)
		args = append(args, p, p)
	}
	qb.WriteString(` ORDER BY name LIMIT ?`)
	args = append(args, s.limit(q))

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying movies: %w", err)
	}
	defer rows.Close()

	var out []types.Movie
	for rows.Next() {
		var m types.Movie
		var categories string
		if err := rows.Scan(&m.URL, &m.Name, &categories, &m.Score, &m.ReleaseDate, &m.Duration, &m.Description, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning movie: %w", err)
		}
		if err := json.Unmarshal([]byte(categories), &m.Categories); err != nil {
			return nil, fmt.Errorf("decoding categories of %s: %w", m.URL, err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
