// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the qa-harvest pipelines:
// dataset items and the enriched question/answer records produced by the
// extract stage, movie rows produced by the scrape stage, and the
// configuration structs shared by the CLI and the internal packages.
package types

import (
	"encoding/json"
	"fmt"
)

// DatasetItem is one record of the source corpus. Input carries one or more
// embedded headline prompts; Options and GoldIndex describe the labelled
// multiple-choice question that the last prompt corresponds to.
type DatasetItem struct {
	// Input is the free text containing the embedded prompts.
	Input string `json:"input" yaml:"input"`

	// Options lists the candidate answers in source order.
	Options []string `json:"options" yaml:"options"`

	// GoldIndex is the index into Options of the correct answer. A value of
	// -1 means the source record did not carry one.
	GoldIndex int `json:"gold_index" yaml:"gold_index"`
}

// UnmarshalJSON decodes a corpus row. A missing gold_index decodes to -1 so
// that the item faults during processing instead of defaulting to option 0.
func (d *DatasetItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		Input     string   `json:"input"`
		Options   []string `json:"options"`
		GoldIndex *int     `json:"gold_index"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding dataset item: %w", err)
	}
	d.Input = raw.Input
	d.Options = raw.Options
	d.GoldIndex = -1
	if raw.GoldIndex != nil {
		d.GoldIndex = *raw.GoldIndex
	}
	return nil
}

// ExtractedPair is one candidate question/answer unit recovered from an
// item's input text.
type ExtractedPair struct {
	Headline string
	Question string

	// RawAnswer is the literal "Yes"/"No" token that followed the question,
	// or nil when the text carried none.
	RawAnswer *string
}

// EnrichedRecord is the persisted output unit of the extract stage. The JSON
// keys match the dataset published by the original pipeline, so downstream
// consumers can read either.
type EnrichedRecord struct {
	// ID is the lowercase hex MD5 of "{index}_{pair}_{headline prefix}".
	ID string `json:"id" yaml:"id"`

	Headline string `json:"Headline" yaml:"headline"`
	Question string `json:"Question" yaml:"question"`

	// IsTarget marks the last pair extracted from an item.
	IsTarget bool `json:"IsTarget" yaml:"is_target"`

	// OriginalIndex is the position of the source item in the dataset.
	OriginalIndex int `json:"OriginalIndex" yaml:"original_index"`

	// Options and GoldIndex are set on target records only; the keys are
	// omitted from the JSON of non-target records.
	Options   []string `json:"Options,omitempty" yaml:"options,omitempty"`
	GoldIndex *int     `json:"GoldIndex,omitempty" yaml:"gold_index,omitempty"`

	// Answer is Options[GoldIndex] on target records and the raw extracted
	// token (possibly null) on the others.
	Answer *string `json:"Answer" yaml:"answer"`
}

// AnswerText returns the record's answer, or "" when it is absent.
func (r EnrichedRecord) AnswerText() string {
	if r.Answer == nil {
		return ""
	}
	return *r.Answer
}
