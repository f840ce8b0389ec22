package llm

import (
	"context"
	"log"

	llmclient "writeflow/internal/llmclient"
)

// WithLogging logs request size and errors. Provide a custom logger or nil
// to use log.Default().
func WithLogging(logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.Default()
	}
	return func(next llmclient.Client) llmclient.Client {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next llmclient.Client
	log  *log.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }

func (l *logging) Complete(ctx context.Context, msgs []llmclient.Message, schema *llmclient.ResponseSchema) (string, error) {
	l.log.Printf("LLM request (%s): %d messages, %d bytes", l.next.Name(), len(msgs), messageBytes(msgs))
	text, err := l.next.Complete(ctx, msgs, schema)
	if err != nil {
		l.log.Printf("LLM error (%s): %v", l.next.Name(), err)
	}
	return text, err
}

func (l *logging) CompleteStream(ctx context.Context, msgs []llmclient.Message) (*llmclient.Stream, error) {
	l.log.Printf("LLM stream request (%s): %d messages, %d bytes", l.next.Name(), len(msgs), messageBytes(msgs))
	stream, err := l.next.CompleteStream(ctx, msgs)
	if err != nil {
		l.log.Printf("LLM stream error (%s): %v", l.next.Name(), err)
	}
	return stream, err
}

func messageBytes(msgs []llmclient.Message) int {
	n := 0
	for _, m := range msgs {
		n += len(m.Content)
	}
	return n
}
