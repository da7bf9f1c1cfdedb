// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/pdiddy/qa-harvest/internal/httputil"
	"github.com/pdiddy/qa-harvest/pkg/types"
)

// maxPageRows is the largest page the datasets-server /rows endpoint serves.
const maxPageRows = 100

// Ref names one split of a hub dataset.
type Ref struct {
	Name   string
	Config string
	Split  string
}

func (r Ref) String() string {
	return fmt.Sprintf("%s/%s/%s", r.Name, r.Config, r.Split)
}

// HubClient reads dataset rows from the datasets-server API.
type HubClient struct {
	client   *resty.Client
	endpoint string
	pageSize int
}

// NewHubClient returns a client for cfg.Endpoint. When cfg.Token is set it
// is sent as a bearer token.
func NewHubClient(cfg types.DatasetConfig) *HubClient {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = types.DefaultHubEndpoint
	}
	client := httputil.NewClient(cfg.HTTPConfig)
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}
	return &HubClient{
		client:   client,
		endpoint: strings.TrimRight(endpoint, "/"),
		pageSize: maxPageRows,
	}
}

// rowsPage mirrors the /rows response fields we read.
type rowsPage struct {
	Rows []struct {
		RowIdx int               `json:"row_idx"`
		Row    types.DatasetItem `json:"row"`
	} `json:"rows"`
	NumRowsTotal int `json:"num_rows_total"`
}

// Rows pages through the split and returns every row in order. Each page is
// requested once; any failure aborts the load.
func (h *HubClient) Rows(ctx context.Context, ref Ref) ([]types.DatasetItem, error) {
	if ref.Name == "" || ref.Config == "" || ref.Split == "" {
		return nil, fmt.Errorf("dataset reference incomplete: %q", ref.String())
	}

	var items []types.DatasetItem
	for offset := 0; ; {
		page, err := h.page(ctx, ref, offset)
		if err != nil {
			return nil, err
		}
		for _, r := range page.Rows {
			items = append(items, r.Row)
		}
		offset += len(page.Rows)
		if len(page.Rows) == 0 || offset >= page.NumRowsTotal {
			break
		}
	}
	return items, nil
}

func (h *HubClient) page(ctx context.Context, ref Ref, offset int) (*rowsPage, error) {
	q := url.Values{}
	q.Set("dataset", ref.Name)
	q.Set("config", ref.Config)
	q.Set("split", ref.Split)
	q.Set("offset", strconv.Itoa(offset))
	q.Set("length", strconv.Itoa(h.pageSize))

	body, err := httputil.Get(ctx, h.client, h.endpoint+"/rows?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("fetching %s rows at offset %d: %w", ref, offset, err)
	}

	var page rowsPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("parsing %s rows at offset %d: %w", ref, offset, err)
	}
	return &page, nil
}
