// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/qa-harvest/internal/fsutil"
	"github.com/pdiddy/qa-harvest/pkg/types"
)

// RunSummary is the YAML manifest written next to the JSON output.
type RunSummary struct {
	Dataset   string        `yaml:"dataset"`
	Output    string        `yaml:"output"`
	Items     int           `yaml:"items"`
	Pairs     int           `yaml:"pairs"`
	Targets   int           `yaml:"targets"`
	Failed    []ItemFailure `yaml:"failed,omitempty"`
	Elapsed   time.Duration `yaml:"elapsed"`
	Timestamp time.Time     `yaml:"timestamp"`
}

// NewRunSummary summarizes out.
func NewRunSummary(dataset, output string, out Output, elapsed time.Duration) RunSummary {
	return RunSummary{
		Dataset:   dataset,
		Output:    output,
		Items:     out.Items,
		Pairs:     len(out.Records),
		Targets:   out.Targets(),
		Failed:    out.Failed,
		Elapsed:   elapsed,
		Timestamp: time.Now(),
	}
}

// SummaryPath derives the summary path from the JSON output path
// ("out.json" becomes "out.summary.yaml").
func SummaryPath(output string) string {
	return strings.TrimSuffix(output, filepath.Ext(output)) + ".summary.yaml"
}

// WriteJSON writes records as an indented UTF-8 JSON array. Non-ASCII and
// HTML characters are written verbatim. The file is replaced atomically.
func WriteJSON(path string, records []types.EnrichedRecord) error {
	if records == nil {
		records = []types.EnrichedRecord{}
	}
	return fsutil.WriteAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	})
}

// ReadJSON reads a document written by WriteJSON.
func ReadJSON(path string) ([]types.EnrichedRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var records []types.EnrichedRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return records, nil
}

// WriteSummary writes s as YAML.
func WriteSummary(path string, s RunSummary) error {
	data, err := yaml.Marshal(&s)
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}
	return fsutil.WriteAtomic(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}
