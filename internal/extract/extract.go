// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns one dataset item into enriched question/answer
// records: it applies the headline template library to the item's input,
// flags the last pair as the target, substitutes the gold answer on the
// target, and assigns each record a content-derived identifier.
package extract

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/pdiddy/qa-harvest/internal/patterns"
	"github.com/pdiddy/qa-harvest/pkg/types"
)

// headlinePrefixRunes is the number of headline characters mixed into a
// record ID.
const headlinePrefixRunes = 50

var (
	// ErrNoOptions is returned for an item with pairs but no answer options.
	ErrNoOptions = errors.New("item has no options")

	// ErrGoldIndexRange is returned when gold_index does not address an option.
	ErrGoldIndexRange = errors.New("gold index out of range")
)

// Result is the outcome of processing one item. Err is set on an item-level
// fault, in which case Records is nil.
type Result struct {
	Index   int
	Records []types.EnrichedRecord
	Err     error
}

// Failed reports whether the item faulted.
func (r Result) Failed() bool {
	return r.Err != nil
}

// ExtractPairs returns the candidate pairs of input in library order. The
// order matters: the last pair is the item's target.
func ExtractPairs(lib patterns.Library, input string) []types.ExtractedPair {
	triples := lib.Match(input)
	if len(triples) == 0 {
		return nil
	}
	pairs := make([]types.ExtractedPair, len(triples))
	for i, t := range triples {
		pairs[i] = types.ExtractedPair{
			Headline:  t.Headline,
			Question:  t.Question,
			RawAnswer: t.Answer,
		}
	}
	return pairs
}

// ProcessItem extracts and enriches the pairs of the item at index. An item
// without pairs yields an empty, successful Result.
func ProcessItem(lib patterns.Library, index int, item types.DatasetItem) Result {
	res := Result{Index: index}

	pairs := ExtractPairs(lib, item.Input)
	if len(pairs) == 0 {
		return res
	}

	target, err := goldAnswer(item)
	if err != nil {
		res.Err = fmt.Errorf("item %d: %w", index, err)
		return res
	}

	last := len(pairs) - 1
	records := make([]types.EnrichedRecord, len(pairs))
	for q, pair := range pairs {
		rec := types.EnrichedRecord{
			ID:            StableID(index, q, pair.Headline),
			Headline:      pair.Headline,
			Question:      pair.Question,
			IsTarget:      q == last,
			OriginalIndex: index,
			Answer:        pair.RawAnswer,
		}
		if rec.IsTarget {
			gold := item.GoldIndex
			rec.Options = item.Options
			rec.GoldIndex = &gold
			rec.Answer = &target
		}
		records[q] = rec
	}
	res.Records = records
	return res
}

// goldAnswer returns Options[GoldIndex].
func goldAnswer(item types.DatasetItem) (string, error) {
	if len(item.Options) == 0 {
		return "", ErrNoOptions
	}
	if item.GoldIndex < 0 || item.GoldIndex >= len(item.Options) {
		return "", fmt.Errorf("%w: %d not in [0,%d)", ErrGoldIndexRange, item.GoldIndex, len(item.Options))
	}
	return item.Options[item.GoldIndex], nil
}

// StableID returns the hex MD5 of "{index}_{pair}_{headline prefix}", where
// the prefix is the first 50 characters of the headline. The ID is stable
// across runs but not collision-proof.
func StableID(index, pair int, headline string) string {
	prefix := headline
	if r := []rune(headline); len(r) > headlinePrefixRunes {
		prefix = string(r[:headlinePrefixRunes])
	}
	sum := md5.Sum([]byte(fmt.Sprintf("%d_%d_%s", index, pair, prefix)))
	return hex.EncodeToString(sum[:])
}
