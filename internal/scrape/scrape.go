// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scrape crawls a paginated movie listing site, follows each detail
// link, and extracts the movie fields with DOM selectors.
package scrape

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/pdiddy/qa-harvest/internal/httputil"
	"github.com/pdiddy/qa-harvest/pkg/types"
)

const (
	releaseDateLabel = "上映日期"
	durationLabel    = "片长"
)

// Scraper crawls one site. Requests are paced by a shared limiter and made
// once each; a failed page or movie is logged and skipped.
type Scraper struct {
	logger  *slog.Logger
	client  *resty.Client
	limiter *rate.Limiter
	cfg     types.ScrapeConfig
	now     func() time.Time
}

// New returns a scraper for cfg.
func New(logger *slog.Logger, cfg types.ScrapeConfig) *Scraper {
	limit := rate.Inf
	if cfg.Delay > 0 {
		limit = rate.Every(cfg.Delay)
	}
	return &Scraper{
		logger:  logger,
		client:  httputil.NewClient(cfg.HTTPConfig),
		limiter: rate.NewLimiter(limit, 1),
		cfg:     cfg,
		now:     time.Now,
	}
}

// Run crawls listing pages 1..cfg.Pages and returns the movies that were
// scraped successfully, in page and link order. It returns an error only
// when ctx is cancelled, together with the movies collected so far.
func (s *Scraper) Run(ctx context.Context) ([]types.Movie, error) {
	base := strings.TrimRight(s.cfg.BaseURL, "/")
	var movies []types.Movie

	for page := 1; page <= s.cfg.Pages; page++ {
		if err := ctx.Err(); err != nil {
			return movies, err
		}

		listURL := fmt.Sprintf("%s/page/%d", base, page)
		links, err := s.listLinks(ctx, listURL)
		if err != nil {
			s.logger.Error("Error scraping listing page", "page", page, "url", listURL, "error", err)
			continue
		}

		for _, href := range links {
			if err := ctx.Err(); err != nil {
				return movies, err
			}
			movieURL := base + href
			movie, err := s.Movie(ctx, movieURL)
			if err != nil {
				s.logger.Error("Error scraping movie", "url", movieURL, "error", err)
				continue
			}
			movies = append(movies, movie)
			s.logger.Info("Scraped movie", "name", movie.Name)
		}
	}
	return movies, nil
}

// Movie fetches and parses one detail page.
func (s *Scraper) Movie(ctx context.Context, url string) (types.Movie, error) {
	doc, err := s.fetch(ctx, url)
	if err != nil {
		return types.Movie{}, err
	}
	return ParseMovie(doc, url, s.now()), nil
}

func (s *Scraper) listLinks(ctx context.Context, url string) ([]string, error) {
	doc, err := s.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	var links []string
	doc.Find("a.name").Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok {
			links = append(links, href)
		}
	})
	return links, nil
}

func (s *Scraper) fetch(ctx context.Context, url string) (*goquery.Document, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	body, err := httputil.Get(ctx, s.client, url)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// ParseMovie extracts the movie fields from a detail page. Missing elements
// yield types.NotAvailable.
func ParseMovie(doc *goquery.Document, url string, at time.Time) types.Movie {
	m := types.Movie{
		Name:        textOr(doc.Find("h2.m-b-sm").First()),
		Categories:  []string{},
		Score:       textOr(doc.Find("p.score").First()),
		ReleaseDate: types.NotAvailable,
		Duration:    types.NotAvailable,
		Description: textOr(doc.Find("p.drama").First()),
		URL:         url,
		Timestamp:   at.Format(types.TimestampLayout),
	}

	doc.Find("button.category").Each(func(_ int, b *goquery.Selection) {
		m.Categories = append(m.Categories, strings.TrimSpace(b.Text()))
	})

	if info := doc.Find("div.info").First(); info.Length() > 0 {
		m.ReleaseDate = infoItem(info, releaseDateLabel)
		m.Duration = infoItem(info, durationLabel)
	}
	return m
}

// textOr returns the trimmed text of sel, or NotAvailable when it is empty.
func textOr(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return types.NotAvailable
	}
	return strings.TrimSpace(sel.Text())
}

// infoItem finds the span whose text contains label and returns the trimmed
// text of the node that follows it.
func infoItem(info *goquery.Selection, label string) string {
	span := info.Find("span").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), label)
	}).First()
	if span.Length() == 0 {
		return types.NotAvailable
	}

	next := span.Nodes[0].NextSibling
	if next == nil {
		return types.NotAvailable
	}
	if next.Type == html.TextNode {
		return strings.TrimSpace(next.Data)
	}
	return strings.TrimSpace(goquery.NewDocumentFromNode(next).Text())
}
