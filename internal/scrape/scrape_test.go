// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/qa-harvest/pkg/types"
)

const detailHTML = `<html><body>
<h2 class="m-b-sm">霸王别姬 - Farewell My Concubine</h2>
<div class="categories">
  <button class="category"><span>剧情</span></button>
  <button class="category"><span>爱情</span></button>
</div>
<div class="m-v-sm info"><span>上映日期:</span> 1993-07-26 <span>片长:</span> 171 分钟</div>
<p class="score m-t-md m-b-n-sm"> 9.5</p>
<div class="drama"><h3>剧情简介</h3><p class="drama">
  A story of two opera actors.
</p></div>
</body></html>`

const listHTML = `<html><body>
<a class="name" href="/detail/1"><h2>One</h2></a>
<a class="name" href="/detail/missing"><h2>Missing</h2></a>
<a class="name"><h2>No href</h2></a>
</body></html>`

var fixedTime = time.Date(2026, 10, 16, 9, 30, 0, 0, time.Local)

func docFrom(t *testing.T, s string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	require.NoError(t, err)
	return doc
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- ParseMovie ---

func TestParseMovie(t *testing.T) {
	m := ParseMovie(docFrom(t, detailHTML), "https://example.test/detail/1", fixedTime)

	assert.Equal(t, "霸王别姬 - Farewell My Concubine", m.Name)
	assert.Equal(t, []string{"剧情", "爱情"}, m.Categories)
	assert.Equal(t, "9.5", m.Score)
	assert.Equal(t, "1993-07-26", m.ReleaseDate)
	assert.Equal(t, "171 分钟", m.Duration)
	assert.Equal(t, "A story of two opera actors.", m.Description)
	assert.Equal(t, "https://example.test/detail/1", m.URL)
	assert.Equal(t, "2026-10-16 09:30:00", m.Timestamp)
}

func TestParseMovie_MissingFields(t *testing.T) {
	m := ParseMovie(docFrom(t, `<html><body><p>nothing</p></body></html>`), "u", fixedTime)

	assert.Equal(t, types.NotAvailable, m.Name)
	assert.Empty(t, m.Categories)
	assert.Equal(t, types.NotAvailable, m.Score)
	assert.Equal(t, types.NotAvailable, m.ReleaseDate)
	assert.Equal(t, types.NotAvailable, m.Duration)
	assert.Equal(t, types.NotAvailable, m.Description)
}

func TestParseMovie_InfoWithoutLabels(t *testing.T) {
	doc := docFrom(t, `<div class="info"><span>中国内地</span><span>171 分钟</span></div>`)
	m := ParseMovie(doc, "u", fixedTime)
	assert.Equal(t, types.NotAvailable, m.ReleaseDate)
	assert.Equal(t, types.NotAvailable, m.Duration)
}

func TestParseMovie_LabelAtEnd(t *testing.T) {
	doc := docFrom(t, `<div class="info"><span>片长</span></div>`)
	m := ParseMovie(doc, "u", fixedTime)
	assert.Equal(t, types.NotAvailable, m.Duration)
}

// --- Scraper.Run ---

func siteServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/page/1", func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, listHTML)
	})
	mux.HandleFunc("/page/2", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/page/3", func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `<a class="name" href="/detail/3">Three</a>`)
	})
	mux.HandleFunc("/detail/1", func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, detailHTML)
	})
	mux.HandleFunc("/detail/3", func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `<h2 class="m-b-sm">Third</h2>`)
	})
	return httptest.NewServer(mux)
}

func testScraper(baseURL string, pages int) *Scraper {
	cfg := types.DefaultScrapeConfig()
	cfg.BaseURL = baseURL + "/"
	cfg.Pages = pages
	s := New(discardLogger(), cfg)
	s.now = func() time.Time { return fixedTime }
	return s
}

func TestRun_SkipsFailuresAndContinues(t *testing.T) {
	ts := siteServer(t)
	defer ts.Close()

	movies, err := testScraper(ts.URL, 3).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, movies, 2)

	assert.Equal(t, "霸王别姬 - Farewell My Concubine", movies[0].Name)
	assert.Equal(t, ts.URL+"/detail/1", movies[0].URL)
	assert.Equal(t, "Third", movies[1].Name)
	assert.Equal(t, types.NotAvailable, movies[1].Score)

	// A 404 detail page yields no row rather than an all-N/A row.
	for _, m := range movies {
		assert.NotEqual(t, ts.URL+"/detail/missing", m.URL)
	}
}

func TestRun_CancelledContext(t *testing.T) {
	ts := siteServer(t)
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	movies, err := testScraper(ts.URL, 3).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, movies)
}

// --- CSV ---

func TestWriteCSV(t *testing.T) {
	movies := []types.Movie{
		{
			Name:        "霸王别姬",
			Categories:  []string{"剧情", "爱情"},
			Score:       "9.5",
			ReleaseDate: "1993-07-26",
			Duration:    "171 分钟",
			Description: "Two actors, one stage.",
			URL:         "https://example.test/detail/1",
			Timestamp:   "2026-10-16 09:30:00",
		},
		{
			Name: "N/A", Categories: []string{}, Score: "N/A", ReleaseDate: "N/A",
			Duration: "N/A", Description: "N/A", URL: "u", Timestamp: "t",
		},
	}

	path := filepath.Join(t.TempDir(), "movies.csv")
	require.NoError(t, WriteCSV(path, movies))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(string(data), "\r\n")
	assert.Equal(t, "name,categories,score,release_date,duration,description,url,timestamp", lines[0])
	assert.Equal(t, `霸王别姬,"剧情, 爱情",9.5,1993-07-26,171 分钟,"Two actors, one stage.",https://example.test/detail/1,2026-10-16 09:30:00`, lines[1])

	back, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, movies, back)
}

func TestReadCSV_BadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644))

	_, err := ReadCSV(path)
	assert.ErrorContains(t, err, "unexpected header")
}
