// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/pdiddy/qa-harvest/pkg/types"
)

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// NewClient returns a resty client with the timeout and User-Agent from cfg.
// The client makes a single attempt per request; resty's retry is left off.
func NewClient(cfg types.HTTPConfig) *resty.Client {
	ua := cfg.UserAgent
	if ua == "" {
		ua = types.DefaultUserAgent
	}
	c := resty.New().SetHeader("User-Agent", ua)
	if cfg.Timeout > 0 {
		c.SetTimeout(cfg.Timeout)
	}
	return c
}

// Get fetches url once and returns the response body. A non-2xx status is
// returned as a *StatusError.
func Get(ctx context.Context, client *resty.Client, url string) ([]byte, error) {
	resp, err := client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	if !resp.IsSuccess() {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode()}
	}
	return resp.Body(), nil
}
