package llm

import (
	"context"
	"errors"
	"time"

	llmclient "writeflow/internal/llmclient"
)

// Retry retries Complete up to maxRetries additional attempts with
// exponential backoff starting at baseDelay (baseDelay before the first
// retry, doubling each time). If the context is canceled, it stops
// immediately. Exhaustion yields a *llmclient.ProviderError carrying the
// last error.
//
// CompleteStream is deliberately not retried: a broken stream surfaces to
// the consumer live instead of being silently restarted.
func Retry(maxRetries int, baseDelay time.Duration) Middleware {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 2 * time.Second
	}
	return func(next llmclient.Client) llmclient.Client {
		return &retrying{next: next, retries: maxRetries, base: baseDelay}
	}
}

type retrying struct {
	next    llmclient.Client
	retries int
	base    time.Duration
}

func (r *retrying) Name() string { return r.next.Name() }
func (r *retrying) Close() error { return r.next.Close() }

func (r *retrying) Complete(ctx context.Context, msgs []llmclient.Message, schema *llmclient.ResponseSchema) (string, error) {
	attempts := r.retries + 1
	var last error
	for i := 0; i < attempts; i++ {
		text, err := r.next.Complete(ctx, msgs, schema)
		if err == nil {
			return text, nil
		}
		var pErr *llmclient.PermanentError
		if errors.As(err, &pErr) {
			return "", err
		}
		last = err
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(r.base * time.Duration(1<<i)):
		}
	}
	return "", &llmclient.ProviderError{Attempts: attempts, Err: last}
}

func (r *retrying) CompleteStream(ctx context.Context, msgs []llmclient.Message) (*llmclient.Stream, error) {
	return r.next.CompleteStream(ctx, msgs)
}
