package llm

import (
	"context"
	"io"
	"strings"
	"sync"

	llmclient "writeflow/internal/llmclient"
)

// FakeClient is a scriptable client for offline use and tests. Zero value
// answers every call with an empty completion error. Safe for concurrent
// callers.
type FakeClient struct {
	CompleteFn       func(ctx context.Context, msgs []llmclient.Message, schema *llmclient.ResponseSchema) (string, error)
	CompleteStreamFn func(ctx context.Context, msgs []llmclient.Message) (*llmclient.Stream, error)

	mu          sync.Mutex
	Calls       int
	StreamCalls int
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

// CallCount returns how many Complete calls were made so far.
func (f *FakeClient) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls
}

func (f *FakeClient) Complete(ctx context.Context, msgs []llmclient.Message, schema *llmclient.ResponseSchema) (string, error) {
	f.mu.Lock()
	f.Calls++
	f.mu.Unlock()
	if f.CompleteFn == nil {
		return "", llmclient.ErrEmptyCompletion
	}
	return f.CompleteFn(ctx, msgs, schema)
}

func (f *FakeClient) CompleteStream(ctx context.Context, msgs []llmclient.Message) (*llmclient.Stream, error) {
	f.mu.Lock()
	f.StreamCalls++
	f.mu.Unlock()
	if f.CompleteStreamFn == nil {
		return nil, llmclient.ErrEmptyCompletion
	}
	return f.CompleteStreamFn(ctx, msgs)
}

// StreamOf builds a Stream that yields the given deltas and then completes,
// using the same SSE framing the real provider emits.
func StreamOf(deltas ...string) *llmclient.Stream {
	var b strings.Builder
	for _, d := range deltas {
		frame := strings.ReplaceAll(d, `\`, `\\`)
		frame = strings.ReplaceAll(frame, `"`, `\"`)
		frame = strings.ReplaceAll(frame, "\n", `\n`)
		b.WriteString(`data: {"choices":[{"delta":{"content":"` + frame + `"}}]}` + "\n\n")
	}
	b.WriteString("data: [DONE]\n\n")
	return llmclient.NewStream(io.NopCloser(strings.NewReader(b.String())))
}
