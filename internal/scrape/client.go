package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Config holds the scraping API options.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

const (
	defaultBaseURL = "https://api.firecrawl.dev/v1"
	defaultTimeout = 120 * time.Second
)

// Page is the scraped form of a URL: main content as markdown plus the
// metadata the provider could extract.
type Page struct {
	URL           string `json:"url"`
	Title         string `json:"title"`
	Text          string `json:"text"`
	Description   string `json:"description"`
	Author        string `json:"author"`
	PublishedDate string `json:"publishedDate"`
	WordCount     int    `json:"wordCount"`
}

// Client fetches main-content markdown for a URL via the scraping API.
type Client struct {
	http    *http.Client
	apiKey  string
	baseURL string
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL + "/scrape",
	}
}

// Enabled reports whether a credential is configured.
func (c *Client) Enabled() bool { return c.apiKey != "" }

type scrapeRequest struct {
	URL             string   `json:"url"`
	Formats         []string `json:"formats"`
	OnlyMainContent bool     `json:"onlyMainContent"`
}

type scrapeResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		URL      string `json:"url"`
		Markdown string `json:"markdown"`
		HTML     string `json:"html"`
		Metadata struct {
			Title         string `json:"title"`
			Description   string `json:"description"`
			Author        string `json:"author"`
			PublishedTime string `json:"publishedTime"`
		} `json:"metadata"`
	} `json:"data"`
}

// Scrape fetches one URL. Navigation, ads and boilerplate are excluded by
// the provider's main-content mode.
func (c *Client) Scrape(ctx context.Context, pageURL string) (*Page, error) {
	body, err := json.Marshal(scrapeRequest{
		URL:             pageURL,
		Formats:         []string{"markdown", "html"},
		OnlyMainContent: true,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("scrape: unexpected status %s: %s", resp.Status, string(snippet))
	}
	var out scrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("scrape: decode response: %w", err)
	}
	if !out.Success {
		return nil, fmt.Errorf("scrape: provider error: %s", out.Error)
	}

	text := out.Data.Markdown
	pageAddr := out.Data.URL
	if pageAddr == "" {
		pageAddr = pageURL
	}
	return &Page{
		URL:           pageAddr,
		Title:         out.Data.Metadata.Title,
		Text:          text,
		Description:   out.Data.Metadata.Description,
		Author:        out.Data.Metadata.Author,
		PublishedDate: out.Data.Metadata.PublishedTime,
		WordCount:     len(strings.Fields(text)),
	}, nil
}
