package llmclient

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmptyCompletion indicates the provider answered 2xx but returned no
// usable choice. It is retryable.
var ErrEmptyCompletion = errors.New("empty completion from LLM")

// ErrInvalidJSON indicates the model returned output that does not parse as
// the requested structure.
var ErrInvalidJSON = errors.New("invalid json from LLM")

// Role values for chat messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged chat turn sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseSchema constrains the response shape via the provider's
// json_schema response format.
type ResponseSchema struct {
	Name   string
	Schema map[string]any
}

// Client is the chat-completion contract the rest of the system depends on.
// Cross-cutting concerns (retries, rate limiting, logging) are applied via
// middleware in the llm package, not inside implementations.
type Client interface {
	Name() string
	// Complete issues one buffered request and returns the assistant text.
	Complete(ctx context.Context, msgs []Message, schema *ResponseSchema) (string, error)
	// CompleteStream issues one streaming request. The returned stream is a
	// pull-based sequence of content deltas; the caller drives iteration and
	// must Close it. Streaming calls are never retried.
	CompleteStream(ctx context.Context, msgs []Message) (*Stream, error)
	Close() error
}

// PermanentError indicates an error that will not resolve with retries.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}

// ProviderError reports an upstream failure after all attempts were
// exhausted. It carries the last underlying error.
type ProviderError struct {
	Attempts int
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider failed after %d attempts: %v", e.Attempts, e.Err)
}
func (e *ProviderError) Unwrap() error { return e.Err }
