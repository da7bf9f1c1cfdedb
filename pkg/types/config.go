// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"runtime"
	"time"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "qa-harvest/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// DatasetConfig selects where the extract stage reads its items from.
type DatasetConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// File is a local .json or .jsonl file. When set, the hub is not queried.
	File string `json:"file,omitempty" yaml:"file,omitempty" mapstructure:"file"`

	// Name is the Hugging Face dataset repository (e.g. "AdaptLLM/finance-tasks").
	Name string `json:"name" yaml:"name" mapstructure:"name"`

	// Config is the dataset configuration name (e.g. "Headline").
	Config string `json:"config" yaml:"config" mapstructure:"config"`

	// Split is the dataset split (e.g. "test").
	Split string `json:"split" yaml:"split" mapstructure:"split"`

	// Endpoint is the base URL of the datasets-server API.
	Endpoint string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`

	// Token is an optional Hugging Face access token.
	Token string `json:"token,omitempty" yaml:"token,omitempty" mapstructure:"token"`
}

// ExtractionConfig holds settings for the extract stage.
type ExtractionConfig struct {
	Dataset DatasetConfig `json:"dataset" yaml:"dataset" mapstructure:"dataset"`

	// Output is the path of the JSON array document.
	Output string `json:"output" yaml:"output" mapstructure:"output"`

	// Summary is the path of the YAML run summary. Empty derives it from Output.
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty" mapstructure:"summary"`

	// Workers is the size of the worker pool (default: number of CPUs).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`
}

// ScrapeConfig holds settings for the movie scrape stage.
type ScrapeConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the site root; listing pages live at {BaseURL}/page/{n}.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// Pages is the number of listing pages to crawl, starting at 1.
	Pages int `json:"pages" yaml:"pages" mapstructure:"pages"`

	// Output is the path of the CSV file.
	Output string `json:"output" yaml:"output" mapstructure:"output"`

	// Delay is the minimum interval between requests. Zero disables pacing.
	Delay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay"`
}

// StoreConfig holds settings for the SQLite index.
type StoreConfig struct {
	// Path is the database file.
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

const (
	DefaultUserAgent       = "qa-harvest/0.1"
	DefaultTimeout         = 60 * time.Second
	DefaultDatasetName     = "AdaptLLM/finance-tasks"
	DefaultDatasetConfig   = "Headline"
	DefaultDatasetSplit    = "test"
	DefaultHubEndpoint     = "https://datasets-server.huggingface.co"
	DefaultExtractOutput   = "processed_headline_dataset.json"
	DefaultScrapeBaseURL   = "https://ssr1.scrape.center"
	DefaultScrapePages     = 10
	DefaultScrapeOutput    = "ssr1_scrape_center_movies.csv"
	DefaultStorePath       = "data/qa-harvest.db"
	DefaultStoreMaxResults = 20
)

// DefaultHTTPConfig returns the HTTP settings used when none are configured.
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{Timeout: DefaultTimeout, UserAgent: DefaultUserAgent}
}

// DefaultExtractionConfig returns the extract settings for the
// AdaptLLM/finance-tasks Headline test split.
func DefaultExtractionConfig() ExtractionConfig {
	return ExtractionConfig{
		Dataset: DatasetConfig{
			HTTPConfig: DefaultHTTPConfig(),
			Name:       DefaultDatasetName,
			Config:     DefaultDatasetConfig,
			Split:      DefaultDatasetSplit,
			Endpoint:   DefaultHubEndpoint,
		},
		Output:  DefaultExtractOutput,
		Workers: runtime.NumCPU(),
	}
}

// DefaultScrapeConfig returns the scrape settings for ssr1.scrape.center.
func DefaultScrapeConfig() ScrapeConfig {
	return ScrapeConfig{
		HTTPConfig: DefaultHTTPConfig(),
		BaseURL:    DefaultScrapeBaseURL,
		Pages:      DefaultScrapePages,
		Output:     DefaultScrapeOutput,
	}
}

// DefaultStoreConfig returns the store settings used when none are configured.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{Path: DefaultStorePath, MaxResults: DefaultStoreMaxResults}
}
