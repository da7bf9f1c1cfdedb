// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataset loads the items the extract stage runs over, either from a
// local JSON/JSONL file or from the Hugging Face datasets-server API.
package dataset

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/qa-harvest/pkg/types"
)

// maxLineBytes bounds a single JSONL line.
const maxLineBytes = 16 << 20

// Load returns the items selected by cfg and a label naming their source.
// A configured File takes precedence over the hub.
func Load(ctx context.Context, logger *slog.Logger, cfg types.DatasetConfig) ([]types.DatasetItem, string, error) {
	if cfg.File != "" {
		logger.Info("Loading dataset file", "path", cfg.File)
		items, err := LoadFile(cfg.File)
		return items, cfg.File, err
	}

	ref := Ref{Name: cfg.Name, Config: cfg.Config, Split: cfg.Split}
	logger.Info("Loading dataset from hub", "dataset", ref.Name, "config", ref.Config, "split", ref.Split)
	items, err := NewHubClient(cfg).Rows(ctx, ref)
	return items, ref.String(), err
}

// LoadFile reads items from a .json file holding an array, or from a
// .jsonl/.ndjson file holding one item per line.
func LoadFile(path string) ([]types.DatasetItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return parseLines(path, data)
	default:
		var items []types.DatasetItem
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("parsing dataset %s: %w", path, err)
		}
		return items, nil
	}
}

func parseLines(path string, data []byte) ([]types.DatasetItem, error) {
	var items []types.DatasetItem
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	line := 0
	for sc.Scan() {
		line++
		text := bytes.TrimSpace(sc.Bytes())
		if len(text) == 0 {
			continue
		}
		var item types.DatasetItem
		if err := json.Unmarshal(text, &item); err != nil {
			return nil, fmt.Errorf("parsing %s line %d: %w", path, line, err)
		}
		items = append(items, item)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return items, nil
}
