// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch fans the item processor out over a whole dataset with a
// bounded worker pool and collects the enriched records in dataset order.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/qa-harvest/internal/extract"
	"github.com/pdiddy/qa-harvest/internal/patterns"
	"github.com/pdiddy/qa-harvest/pkg/types"
)

// ErrItemPanic wraps a panic recovered while processing one item.
var ErrItemPanic = errors.New("panic while processing item")

// processFn processes one item. Tests override it to control timing.
var processFn = extract.ProcessItem

// Options tunes a batch run.
type Options struct {
	// Workers is the pool size. Zero or less uses runtime.NumCPU().
	Workers int

	// OnProgress, if set, is called after each item with the number of
	// completed items. Calls are serialized.
	OnProgress func(done, total int)
}

// ItemFailure records an item that was excluded from the output.
type ItemFailure struct {
	Index int    `json:"index" yaml:"index"`
	Error string `json:"error" yaml:"error"`
}

// Output is the flattened result of a batch run.
type Output struct {
	// Records holds every item's records, items first, then pair order.
	Records []types.EnrichedRecord

	// Items is the number of dataset items processed.
	Items int

	// Failed lists the items that faulted, in dataset order.
	Failed []ItemFailure
}

// Targets returns the number of target records.
func (o Output) Targets() int {
	n := 0
	for _, r := range o.Records {
		if r.IsTarget {
			n++
		}
	}
	return n
}

// Run processes every item with a pool of workers. Each worker writes into
// the slot of its item, so the flattened output keeps dataset order no
// matter which worker finishes first. Item faults are logged and recorded
// in Output.Failed; only context cancellation aborts the run.
func Run(ctx context.Context, logger *slog.Logger, lib patterns.Library, items []types.DatasetItem, opts Options) (Output, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	logger.Info("Processing dataset", "items", len(items), "workers", workers)

	results := make([]extract.Result, len(items))

	var mu sync.Mutex
	done := 0
	report := func() {
		if opts.OnProgress == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		done++
		opts.OnProgress(done, len(items))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = processItem(lib, i, items[i])
			report()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Output{}, err
	}
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}

	out := Output{
		Records: make([]types.EnrichedRecord, 0, len(items)),
		Items:   len(items),
	}
	for _, res := range results {
		if res.Failed() {
			logger.Error("Error processing item", "index", res.Index, "error", res.Err)
			out.Failed = append(out.Failed, ItemFailure{Index: res.Index, Error: res.Err.Error()})
			continue
		}
		out.Records = append(out.Records, res.Records...)
	}
	return out, nil
}

// processItem runs processFn and turns a panic into an item fault.
func processItem(lib patterns.Library, index int, item types.DatasetItem) (res extract.Result) {
	defer func() {
		if r := recover(); r != nil {
			res = extract.Result{
				Index: index,
				Err:   fmt.Errorf("item %d: %w: %v", index, ErrItemPanic, r),
			}
		}
	}()
	return processFn(lib, index, item)
}
