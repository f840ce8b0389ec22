package llm

import (
	"context"
	"time"

	llmclient "writeflow/internal/llmclient"
)

// rpsLimiter is a lightweight token-bucket limiter that throttles to at most
// R requests per second with an optional burst capacity.
type rpsLimiter struct {
	tokens chan struct{}
	stopCh chan struct{}
}

// newRPSLimiter creates a limiter that allows up to rps events per second
// with a burst capacity of 'burst'. If rps <= 0, the limiter is disabled
// (Acquire becomes a no-op).
func newRPSLimiter(rps float64, burst int) *rpsLimiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	l := &rpsLimiter{
		tokens: make(chan struct{}, burst),
		stopCh: make(chan struct{}),
	}
	for i := 0; i < burst; i++ {
		l.tokens <- struct{}{}
	}
	period := time.Duration(float64(time.Second) / rps)
	if period <= 0 {
		period = time.Millisecond
	}
	ticker := time.NewTicker(period)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				select {
				case l.tokens <- struct{}{}:
				default:
					// bucket full; drop token
				}
			case <-l.stopCh:
				return
			}
		}
	}()
	return l
}

// Acquire blocks until a token is available or the context is canceled.
func (l *rpsLimiter) Acquire(ctx context.Context) error {
	if l == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopCh:
		return context.Canceled
	case <-l.tokens:
		return nil
	}
}

func (l *rpsLimiter) stop() {
	if l == nil {
		return
	}
	close(l.stopCh)
}

// RateLimit throttles both buffered and streaming calls through one token
// bucket. If rps <= 0 the limiter is disabled.
func RateLimit(rps float64, burst int) Middleware {
	return func(next llmclient.Client) llmclient.Client {
		return &rateLimited{next: next, rl: newRPSLimiter(rps, burst)}
	}
}

type rateLimited struct {
	next llmclient.Client
	rl   *rpsLimiter
}

func (r *rateLimited) Name() string { return r.next.Name() }

func (r *rateLimited) Close() error {
	r.rl.stop()
	return r.next.Close()
}

func (r *rateLimited) Complete(ctx context.Context, msgs []llmclient.Message, schema *llmclient.ResponseSchema) (string, error) {
	if err := r.rl.Acquire(ctx); err != nil {
		return "", err
	}
	return r.next.Complete(ctx, msgs, schema)
}

func (r *rateLimited) CompleteStream(ctx context.Context, msgs []llmclient.Message) (*llmclient.Stream, error) {
	if err := r.rl.Acquire(ctx); err != nil {
		return nil, err
	}
	return r.next.CompleteStream(ctx, msgs)
}
