// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/qa-harvest/internal/patterns"
	"github.com/pdiddy/qa-harvest/pkg/types"
)

const twoPairInput = `Headline: "Oil slips" Now answer this question: Did oil fall? Yes
Headline: "Stocks rally" Now answer this question: Did markets close up? `

// --- ExtractPairs ---

func TestExtractPairs(t *testing.T) {
	lib := patterns.Default()

	assert.Empty(t, ExtractPairs(lib, ""))
	assert.Empty(t, ExtractPairs(lib, "no prompts in here"))

	pairs := ExtractPairs(lib, twoPairInput)
	require.Len(t, pairs, 2)
	assert.Equal(t, "Oil slips", pairs[0].Headline)
	assert.Equal(t, "Did oil fall", pairs[0].Question)
	require.NotNil(t, pairs[0].RawAnswer)
	assert.Equal(t, "Yes", *pairs[0].RawAnswer)
	assert.Equal(t, "Stocks rally", pairs[1].Headline)
	assert.Nil(t, pairs[1].RawAnswer)
}

// --- ProcessItem ---

func TestProcessItem_Example(t *testing.T) {
	item := types.DatasetItem{
		Input:     `Headline: "Stocks rally" Now answer this question: Did markets close up? `,
		Options:   []string{"No", "Yes"},
		GoldIndex: 1,
	}

	res := ProcessItem(patterns.Default(), 0, item)
	require.NoError(t, res.Err)
	require.Len(t, res.Records, 1)

	rec := res.Records[0]
	assert.True(t, rec.IsTarget)
	assert.Equal(t, "Stocks rally", rec.Headline)
	assert.Equal(t, "Did markets close up", rec.Question)
	assert.Equal(t, "Yes", rec.AnswerText())
	assert.Equal(t, []string{"No", "Yes"}, rec.Options)
	require.NotNil(t, rec.GoldIndex)
	assert.Equal(t, 1, *rec.GoldIndex)
	assert.Equal(t, 0, rec.OriginalIndex)
	assert.Equal(t, "316986a7e04ffe1195e5941733f23f27", rec.ID)
}

func TestProcessItem_UnicodeWhitespace(t *testing.T) {
	item := types.DatasetItem{
		Input:     "Headline:\u00a0\"Stocks rally\" Now answer this question: Did markets close up? Yes",
		Options:   []string{"No", "Yes"},
		GoldIndex: 1,
	}

	res := ProcessItem(patterns.Default(), 0, item)
	require.NoError(t, res.Err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "Stocks rally", res.Records[0].Headline)
	assert.Equal(t, "Did markets close up", res.Records[0].Question)
	assert.True(t, res.Records[0].IsTarget)
	assert.Equal(t, "Yes", res.Records[0].AnswerText())
}

func TestProcessItem_NoMatches(t *testing.T) {
	res := ProcessItem(patterns.Default(), 4, types.DatasetItem{
		Input:     "plain text",
		Options:   []string{"No", "Yes"},
		GoldIndex: 0,
	})
	assert.NoError(t, res.Err)
	assert.Empty(t, res.Records)
	assert.False(t, res.Failed())
}

func TestProcessItem_NoMatchesIgnoresBadGoldIndex(t *testing.T) {
	res := ProcessItem(patterns.Default(), 4, types.DatasetItem{Input: "plain text", GoldIndex: -1})
	assert.NoError(t, res.Err)
	assert.Empty(t, res.Records)
}

func TestProcessItem_TargetIsLastPair(t *testing.T) {
	item := types.DatasetItem{
		Input:     twoPairInput,
		Options:   []string{"No", "Yes"},
		GoldIndex: 0,
	}
	res := ProcessItem(patterns.Default(), 7, item)
	require.NoError(t, res.Err)
	require.Len(t, res.Records, 2)

	first, last := res.Records[0], res.Records[1]

	assert.False(t, first.IsTarget)
	assert.Equal(t, "Yes", first.AnswerText(), "non-target keeps the raw answer")
	assert.Nil(t, first.Options)
	assert.Nil(t, first.GoldIndex)

	assert.True(t, last.IsTarget)
	assert.Equal(t, "No", last.AnswerText(), "target answer comes from options")
	assert.Equal(t, 7, last.OriginalIndex)

	targets := 0
	for _, r := range res.Records {
		if r.IsTarget {
			targets++
		}
	}
	assert.Equal(t, 1, targets)
}

func TestProcessItem_TargetOverridesRawAnswer(t *testing.T) {
	item := types.DatasetItem{
		Input:     `Headline: "Gold falls" Now answer this question: Is gold down? Yes`,
		Options:   []string{"No", "Yes"},
		GoldIndex: 0,
	}
	res := ProcessItem(patterns.Default(), 0, item)
	require.NoError(t, res.Err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "No", res.Records[0].AnswerText())
}

func TestProcessItem_NonTargetWithoutAnswer(t *testing.T) {
	item := types.DatasetItem{
		Input: `Headline: "A" Now answer this question: Is A up? ` +
			`Headline: "B" Now answer this question: Is B up? `,
		Options:   []string{"No", "Yes"},
		GoldIndex: 1,
	}
	res := ProcessItem(patterns.Default(), 0, item)
	require.NoError(t, res.Err)
	require.Len(t, res.Records, 2)
	assert.Nil(t, res.Records[0].Answer)
	assert.Equal(t, "Yes", res.Records[1].AnswerText())
}

func TestProcessItem_Faults(t *testing.T) {
	input := `Headline: "Stocks rally" Now answer this question: Did markets close up? `
	tests := []struct {
		name    string
		item    types.DatasetItem
		wantErr error
	}{
		{"gold index too large", types.DatasetItem{Input: input, Options: []string{"No", "Yes"}, GoldIndex: 2}, ErrGoldIndexRange},
		{"gold index negative", types.DatasetItem{Input: input, Options: []string{"No", "Yes"}, GoldIndex: -1}, ErrGoldIndexRange},
		{"empty options", types.DatasetItem{Input: input, GoldIndex: 0}, ErrNoOptions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ProcessItem(patterns.Default(), 9, tt.item)
			assert.ErrorIs(t, res.Err, tt.wantErr)
			assert.ErrorContains(t, res.Err, "item 9")
			assert.Nil(t, res.Records)
			assert.True(t, res.Failed())
		})
	}
}

// --- StableID ---

func TestStableID(t *testing.T) {
	id1 := StableID(1, 0, "Stocks rally")
	id2 := StableID(1, 0, "Stocks rally")
	id3 := StableID(1, 1, "Stocks rally")
	id4 := StableID(2, 0, "Stocks rally")

	assert.Equal(t, id1, id2)
	assert.NotEqual(t, id1, id3)
	assert.NotEqual(t, id1, id4)
	assert.Len(t, id1, 32)
}

func TestStableID_HeadlinePrefix(t *testing.T) {
	base := strings.Repeat("h", 50)
	assert.Equal(t, StableID(0, 0, base), StableID(0, 0, base+" tail that is ignored"))
	assert.NotEqual(t, StableID(0, 0, base[:49]), StableID(0, 0, base))
}

func TestStableID_CountsCharactersNotBytes(t *testing.T) {
	headline := strings.Repeat("é", 60)
	assert.Equal(t, "d384982763c9aaa56dc3e3ec6a0704c8", StableID(3, 1, headline))
}
