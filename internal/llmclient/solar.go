package llmclient

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

// Config enumerates the recognized provider options. It is constructed
// explicitly and injected at client construction time; nothing here is read
// from process globals after startup.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

const (
	defaultBaseURL = "https://api.upstage.ai/v1"
	defaultModel   = "solar-pro2-preview"
	defaultTimeout = 300 * time.Second
)

// SolarClient calls the Upstage Solar chat-completions API
// (OpenAI-compatible). It only focuses on the API call itself; retries and
// logging are applied via middleware.
type SolarClient struct {
	http    *http.Client
	stream  *http.Client
	apiKey  string
	model   string
	baseURL string
}

func NewSolarClient(cfg Config) *SolarClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &SolarClient{
		http: &http.Client{Timeout: cfg.Timeout},
		// Streaming responses stay open for the whole generation; the
		// request context is the only bound.
		stream:  &http.Client{},
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/") + "/chat/completions",
	}
}

func (c *SolarClient) Name() string { return "Solar:" + c.model }
func (c *SolarClient) Close() error { return nil }

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	TopP           float64         `json:"top_p"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
	Stream         bool            `json:"stream,omitempty"`
}

type responseFormat struct {
	Type       string         `json:"type"`
	JSONSchema jsonSchemaSpec `json:"json_schema"`
}

type jsonSchemaSpec struct {
	Name   string         `json:"name"`
	Schema map[string]any `json:"schema"`
	Strict bool           `json:"strict"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *SolarClient) newRequest(ctx context.Context, msgs []Message, schema *ResponseSchema, stream bool) (*http.Request, error) {
	body := chatRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: 0.7,
		MaxTokens:   4000,
		TopP:        0.9,
		Stream:      stream,
	}
	if schema != nil {
		body.ResponseFormat = &responseFormat{
			Type: "json_schema",
			JSONSchema: jsonSchemaSpec{
				Name:   schema.Name,
				Schema: schema.Schema,
				Strict: true,
			},
		}
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return req, nil
}

// Complete issues one buffered chat-completion request. Transport failures,
// non-2xx statuses and empty choice lists are returned as plain errors so the
// retry middleware can make another attempt.
func (c *SolarClient) Complete(ctx context.Context, msgs []Message, schema *ResponseSchema) (string, error) {
	req, err := c.newRequest(ctx, msgs, schema, false)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", statusError(resp)
	}
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("solar: decode response: %w", err)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", ErrEmptyCompletion
	}
	return out.Choices[0].Message.Content, nil
}

// CompleteStream issues one streaming request and hands the caller a
// pull-based delta sequence. A broken stream fails the caller immediately;
// there is no retry on this path.
func (c *SolarClient) CompleteStream(ctx context.Context, msgs []Message) (*Stream, error) {
	req, err := c.newRequest(ctx, msgs, nil, true)
	if err != nil {
		return nil, err
	}
	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := statusError(resp)
		resp.Body.Close()
		return nil, err
	}
	return NewStream(resp.Body), nil
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	const max = 2048
	if len(body) > max {
		body = body[:max]
	}
	err := fmt.Errorf("solar: unexpected status %s: %s", resp.Status, string(body))
	// Context length overflows never resolve by retrying.
	if resp.StatusCode == http.StatusBadRequest && strings.Contains(string(body), `"code":"context_length_exceeded"`) {
		return NewPermanentError(err)
	}
	return err
}
