package parse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// Config holds the document-parse API options.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

const (
	defaultBaseURL = "https://api.upstage.ai/v1/document-ai"
	defaultTimeout = 120 * time.Second
)

// Document is the parsed form of an uploaded file.
type Document struct {
	Text        string
	PageCount   int
	TableCount  int
	FigureCount int
}

// Client uploads documents to the parsing API and extracts plain text.
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
		baseURL: cfg.BaseURL + "/document-parse",
	}
}

func (c *Client) Enabled() bool { return c.apiKey != "" }

type parseResponse struct {
	HTML        string `json:"html"`
	Text        string `json:"text"`
	Markdown    string `json:"markdown"`
	PageCount   int    `json:"page_count"`
	TableCount  int    `json:"table_count"`
	FigureCount int    `json:"figure_count"`
}

// Parse uploads one document and returns its text. When the API provides no
// structured text, the HTML payload is stripped to plain text instead.
func (c *Client) Parse(ctx context.Context, filename string, file io.Reader) (*Document, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("document", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
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
		return nil, fmt.Errorf("parse: unexpected status %s: %s", resp.Status, string(snippet))
	}
	var out parseResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("parse: decode response: %w", err)
	}

	text := out.Text
	if text == "" {
		text = StripTags(out.HTML)
	}
	return &Document{
		Text:        text,
		PageCount:   out.PageCount,
		TableCount:  out.TableCount,
		FigureCount: out.FigureCount,
	}, nil
}

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// StripTags removes HTML markup and collapses whitespace.
func StripTags(html string) string {
	text := tagPattern.ReplaceAllString(html, " ")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
