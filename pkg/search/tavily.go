// Package search calls the web search API used to find resources and teaching strategies.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/noah-isme/iep-planner-api/pkg/config"
	appErrors "github.com/noah-isme/iep-planner-api/pkg/errors"
)

// DefaultTimeout bounds a single search call.
const DefaultTimeout = 30 * time.Second

// Query describes one search restricted to a set of domains.
type Query struct {
	Text           string
	IncludeDomains []string
	MaxResults     int
}

// Result is a single search hit.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Searcher runs a query against the search backend.
type Searcher interface {
	Search(ctx context.Context, q Query) ([]Result, error)
}

type tavilyRequest struct {
	APIKey         string   `json:"api_key"`
	Query          string   `json:"query"`
	SearchDepth    string   `json:"search_depth"`
	IncludeDomains []string `json:"include_domains,omitempty"`
	MaxResults     int      `json:"max_results"`
}

type tavilyResponse struct {
	Results []Result `json:"results"`
}

// TavilyClient implements Searcher against the Tavily search API.
type TavilyClient struct {
	cfg  config.SearchConfig
	http *http.Client
}

// NewTavilyClient builds a client. A nil httpClient gets one bounded by cfg.Timeout.
func NewTavilyClient(cfg config.SearchConfig, httpClient *http.Client) *TavilyClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 5
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &TavilyClient{cfg: cfg, http: httpClient}
}

// Search performs one search call. An unconfigured client fails with ErrUpstream.
func (c *TavilyClient) Search(ctx context.Context, q Query) ([]Result, error) {
	if c.cfg.APIKey == "" {
		return nil, appErrors.Clone(appErrors.ErrUpstream, "search is not configured")
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	max := q.MaxResults
	if max <= 0 {
		max = c.cfg.MaxResults
	}
	payload, err := json.Marshal(tavilyRequest{
		APIKey:         c.cfg.APIKey,
		Query:          q.Text,
		SearchDepth:    "advanced",
		IncludeDomains: q.IncludeDomains,
		MaxResults:     max,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, classify(err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, appErrors.Wrap(fmt.Errorf("status %d", resp.StatusCode),
			appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "search request failed")
	}

	var decoded tavilyResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "search response malformed")
	}
	return decoded.Results, nil
}

func classify(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return appErrors.Wrap(err, appErrors.ErrTimeout.Code, appErrors.ErrTimeout.Status, "search timed out")
	}
	return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "search request failed")
}
