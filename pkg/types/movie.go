// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// NotAvailable is the placeholder stored for a movie field that was missing
// from the detail page.
const NotAvailable = "N/A"

// TimestampLayout is the layout of Movie.Timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

// Movie holds the fields scraped from one movie detail page.
type Movie struct {
	Name        string   `json:"name" yaml:"name"`
	Categories  []string `json:"categories" yaml:"categories"`
	Score       string   `json:"score" yaml:"score"`
	ReleaseDate string   `json:"release_date" yaml:"release_date"`
	Duration    string   `json:"duration" yaml:"duration"`
	Description string   `json:"description" yaml:"description"`

	// URL is the detail page the fields were read from.
	URL string `json:"url" yaml:"url"`

	// Timestamp is the local scrape time formatted with TimestampLayout.
	Timestamp string `json:"timestamp" yaml:"timestamp"`
}

// CategoryList joins the categories the way the CSV output stores them.
func (m Movie) CategoryList() string {
	return strings.Join(m.Categories, ", ")
}
