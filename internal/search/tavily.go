package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"time"
)

// Config holds the Tavily connection options, injected at construction.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

const (
	defaultBaseURL = "https://api.tavily.com"
	defaultTimeout = 60 * time.Second

	// Per-keyword depth and the cap on the aggregated set.
	perKeywordResults   = 3
	maxAggregateResults = 8
)

// Social platforms produce noisy, low-authority results for research.
var excludedDomains = []string{"facebook.com", "twitter.com", "instagram.com", "reddit.com"}

// Result is one search hit. Within one aggregated set, URLs are unique and
// the set is sorted descending by score.
type Result struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Content    string  `json:"content"`
	RawContent string  `json:"raw_content,omitempty"`
	Score      float64 `json:"score"`
}

// Client queries the Tavily search API. Absence of a configured credential
// is not an error: the client degrades to returning no results so that
// downstream writing proceeds without research augmentation.
type Client struct {
	http    *http.Client
	apiKey  string
	baseURL string
	log     *log.Logger
}

func NewClient(cfg Config, logger *log.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL + "/search",
		log:     logger,
	}
}

// Enabled reports whether a credential is configured.
func (c *Client) Enabled() bool { return c.apiKey != "" }

type searchRequest struct {
	Query             string   `json:"query"`
	SearchDepth       string   `json:"search_depth"`
	IncludeRawContent bool     `json:"include_raw_content"`
	MaxResults        int      `json:"max_results"`
	ExcludeDomains    []string `json:"exclude_domains"`
}

type searchResponse struct {
	Results []Result `json:"results"`
}

// Search runs one keyword query. With no credential configured it returns
// an empty list and no error.
func (c *Client) Search(ctx context.Context, keyword string) ([]Result, error) {
	if !c.Enabled() {
		return nil, nil
	}
	body, err := json.Marshal(searchRequest{
		Query:             keyword,
		SearchDepth:       "advanced",
		IncludeRawContent: true,
		MaxResults:        perKeywordResults,
		ExcludeDomains:    excludedDomains,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tavily: unexpected status %s: %s", resp.Status, string(snippet))
	}
	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("tavily: decode response: %w", err)
	}
	return out.Results, nil
}

// SearchMany runs every keyword, skipping failed ones, and aggregates:
// duplicate URLs removed (first occurrence wins), sorted descending by
// score, capped at maxAggregateResults. It never returns an error; a fully
// failed batch yields an empty set.
func (c *Client) SearchMany(ctx context.Context, keywords []string) []Result {
	if !c.Enabled() {
		return nil
	}
	var all []Result
	for _, kw := range keywords {
		results, err := c.Search(ctx, kw)
		if err != nil {
			c.log.Printf("search failed for keyword %q: %v", kw, err)
			continue
		}
		all = append(all, results...)
	}
	return aggregate(all)
}

func aggregate(all []Result) []Result {
	seen := make(map[string]struct{}, len(all))
	out := make([]Result, 0, len(all))
	for _, r := range all {
		if _, ok := seen[r.URL]; ok {
			continue
		}
		seen[r.URL] = struct{}{}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > maxAggregateResults {
		out = out[:maxAggregateResults]
	}
	return out
}
