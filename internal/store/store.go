// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store indexes enriched question/answer records and scraped movies
// in a local SQLite database and answers simple queries over them.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/qa-harvest/pkg/types"
)

// Store manages the SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// Open opens or creates the database at cfg.Path and creates the schema if
// it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = types.DefaultStorePath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = types.DefaultStoreMaxResults
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS records (
			id TEXT PRIMARY KEY,
			headline TEXT NOT NULL,
			question TEXT NOT NULL,
			is_target INTEGER NOT NULL,
			original_index INTEGER NOT NULL,
			answer TEXT,
			options TEXT,
			gold_index INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_original_index ON records(original_index)`,
		`CREATE TABLE IF NOT EXISTS movies (
			url TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			categories TEXT,
			score TEXT,
			release_date TEXT,
			duration TEXT,
			description TEXT,
			scraped_at TEXT
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// IngestRecords upserts records in one transaction and returns how many
// were written.
func (s *Store) IngestRecords(ctx context.Context, records []types.EnrichedRecord) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (id, headline, question, is_target, original_index, answer, options, gold_index)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			headline=excluded.headline, question=excluded.question,
			is_target=excluded.is_target, original_index=excluded.original_index,
			answer=excluded.answer, options=excluded.options, gold_index=excluded.gold_index`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		var answer, options sql.NullString
		var gold sql.NullInt64
		if r.Answer != nil {
			answer = sql.NullString{String: *r.Answer, Valid: true}
		}
		if r.Options != nil {
			data, err := json.Marshal(r.Options)
			if err != nil {
				return 0, fmt.Errorf("encoding options of %s: %w", r.ID, err)
			}
			options = sql.NullString{String: string(data), Valid: true}
		}
		if r.GoldIndex != nil {
			gold = sql.NullInt64{Int64: int64(*r.GoldIndex), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			r.ID, r.Headline, r.Question, r.IsTarget, r.OriginalIndex, answer, options, gold,
		); err != nil {
			return 0, fmt.Errorf("inserting record %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing records: %w", err)
	}
	return len(records), nil
}

// IngestMovies upserts movies keyed by URL in one transaction and returns
// how many were written.
func (s *Store) IngestMovies(ctx context.Context, movies []types.Movie) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO movies (url, name, categories, score, release_date, duration, description, scraped_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET
			name=excluded.name, categories=excluded.categories, score=excluded.score,
			release_date=excluded.release_date, duration=excluded.duration,
			description=excluded.description, scraped_at=excluded.scraped_at`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range movies {
		categories, err := json.Marshal(m.Categories)
		if err != nil {
			return 0, fmt.Errorf("encoding categories of %s: %w", m.URL, err)
		}
		if _, err := stmt.ExecContext(ctx,
			m.URL, m.Name, string(categories), m.Score, m.ReleaseDate, m.Duration, m.Description, m.Timestamp,
		); err != nil {
			return 0, fmt.Errorf("inserting movie %s: %w", m.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing movies: %w", err)
	}
	return len(movies), nil
}
