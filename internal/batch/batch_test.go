// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/qa-harvest/internal/extract"
	"github.com/pdiddy/qa-harvest/internal/patterns"
	"github.com/pdiddy/qa-harvest/pkg/types"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func headlineItem(headline string, options []string, gold int) types.DatasetItem {
	return types.DatasetItem{
		Input:     fmt.Sprintf(`Headline: "%s" Now answer this question: Is %s true? `, headline, headline),
		Options:   options,
		GoldIndex: gold,
	}
}

// withProcessFn swaps processFn for the duration of a test.
func withProcessFn(t *testing.T, fn func(patterns.Library, int, types.DatasetItem) extract.Result) {
	t.Helper()
	orig := processFn
	processFn = fn
	t.Cleanup(func() { processFn = orig })
}

func TestRun_PreservesItemOrder(t *testing.T) {
	// Earlier items finish last.
	withProcessFn(t, func(lib patterns.Library, index int, item types.DatasetItem) extract.Result {
		time.Sleep(time.Duration(3-index) * 10 * time.Millisecond)
		return extract.ProcessItem(lib, index, item)
	})

	items := []types.DatasetItem{
		headlineItem("A", []string{"No", "Yes"}, 0),
		headlineItem("B", []string{"No", "Yes"}, 1),
		headlineItem("C", []string{"No", "Yes"}, 0),
	}

	out, err := Run(context.Background(), discardLogger(), patterns.Default(), items, Options{Workers: 3})
	require.NoError(t, err)
	require.Len(t, out.Records, 3)

	var headlines []string
	for _, r := range out.Records {
		headlines = append(headlines, r.Headline)
	}
	assert.Equal(t, []string{"A", "B", "C"}, headlines)
	assert.Equal(t, 3, out.Items)
	assert.Equal(t, 3, out.Targets())
}

func TestRun_FlattensWithinItemOrder(t *testing.T) {
	items := []types.DatasetItem{
		{
			Input:     `Headline: "A1" Now answer this question: Q1? Yes Headline: "A2" Now answer this question: Q2? `,
			Options:   []string{"No", "Yes"},
			GoldIndex: 0,
		},
		headlineItem("B", []string{"No", "Yes"}, 1),
	}

	out, err := Run(context.Background(), discardLogger(), patterns.Default(), items, Options{Workers: 2})
	require.NoError(t, err)

	want := []types.EnrichedRecord{
		extract.ProcessItem(patterns.Default(), 0, items[0]).Records[0],
		extract.ProcessItem(patterns.Default(), 0, items[0]).Records[1],
		extract.ProcessItem(patterns.Default(), 1, items[1]).Records[0],
	}
	if diff := cmp.Diff(want, out.Records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_FaultingItemIsExcluded(t *testing.T) {
	var logBuf strings.Builder
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))

	items := []types.DatasetItem{
		headlineItem("A", []string{"No", "Yes"}, 0),
		headlineItem("B", []string{"No", "Yes"}, 5),
		headlineItem("C", []string{"No", "Yes"}, 1),
	}

	out, err := Run(context.Background(), logger, patterns.Default(), items, Options{Workers: 2})
	require.NoError(t, err)

	require.Len(t, out.Records, 2)
	assert.Equal(t, "A", out.Records[0].Headline)
	assert.Equal(t, "C", out.Records[1].Headline)

	require.Len(t, out.Failed, 1)
	assert.Equal(t, 1, out.Failed[0].Index)
	assert.Contains(t, out.Failed[0].Error, "gold index out of range")
	assert.Contains(t, logBuf.String(), "index=1")
}

func TestRun_PanicIsContained(t *testing.T) {
	withProcessFn(t, func(lib patterns.Library, index int, item types.DatasetItem) extract.Result {
		if index == 0 {
			var m map[string]int
			m["boom"]++
		}
		return extract.ProcessItem(lib, index, item)
	})

	items := []types.DatasetItem{
		headlineItem("A", []string{"No", "Yes"}, 0),
		headlineItem("B", []string{"No", "Yes"}, 1),
	}
	out, err := Run(context.Background(), discardLogger(), patterns.Default(), items, Options{Workers: 2})
	require.NoError(t, err)
	require.Len(t, out.Records, 1)
	assert.Equal(t, "B", out.Records[0].Headline)
	require.Len(t, out.Failed, 1)
	assert.Contains(t, out.Failed[0].Error, ErrItemPanic.Error())
}

func TestRun_EmptyDataset(t *testing.T) {
	out, err := Run(context.Background(), discardLogger(), patterns.Default(), nil, Options{})
	require.NoError(t, err)
	assert.NotNil(t, out.Records)
	assert.Empty(t, out.Records)
	assert.Equal(t, 0, out.Items)
}

func TestRun_Progress(t *testing.T) {
	items := make([]types.DatasetItem, 10)
	for i := range items {
		items[i] = headlineItem(fmt.Sprintf("H%d", i), []string{"No", "Yes"}, 1)
	}

	var calls []int
	_, err := Run(context.Background(), discardLogger(), patterns.Default(), items, Options{
		Workers: 4,
		OnProgress: func(done, total int) {
			assert.Equal(t, 10, total)
			calls = append(calls, done)
		},
	})
	require.NoError(t, err)
	require.Len(t, calls, 10)
	assert.Equal(t, 10, calls[len(calls)-1])
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := []types.DatasetItem{headlineItem("A", []string{"No", "Yes"}, 0)}
	_, err := Run(ctx, discardLogger(), patterns.Default(), items, Options{Workers: 1})
	assert.ErrorIs(t, err, context.Canceled)
}
