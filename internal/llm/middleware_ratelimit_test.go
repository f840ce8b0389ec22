package llm

import (
	"context"
	"testing"
	"time"

	llmclient "writeflow/internal/llmclient"
	"writeflow/internal/tester"
)

func TestRateLimit_Burst1_SecondCallWaits(t *testing.T) {
	fake := &FakeClient{}
	fake.CompleteFn = func(ctx context.Context, msgs []llmclient.Message, schema *llmclient.ResponseSchema) (string, error) {
		return "ok", nil
	}
	cli := Wrap(fake, RateLimit(2, 1))
	t.Cleanup(func() { _ = cli.Close() })

	ctx := context.Background()
	start := time.Now()
	_, err := cli.Complete(ctx, nil, nil)
	tester.NoErr(t, err)
	_, err = cli.Complete(ctx, nil, nil)
	tester.NoErr(t, err)
	elapsed := time.Since(start)

	// rps=2 means ~500ms between tokens after the burst.
	tester.True(t, elapsed >= 450*time.Millisecond, "expected throttling on second call")
	tester.Eq(t, fake.Calls, 2)
}

func TestRateLimit_Burst2_FirstTwoImmediate(t *testing.T) {
	fake := &FakeClient{}
	fake.CompleteFn = func(ctx context.Context, msgs []llmclient.Message, schema *llmclient.ResponseSchema) (string, error) {
		return "ok", nil
	}
	cli := Wrap(fake, RateLimit(2, 2))
	t.Cleanup(func() { _ = cli.Close() })

	ctx := context.Background()
	start := time.Now()
	_, _ = cli.Complete(ctx, nil, nil)
	_, _ = cli.Complete(ctx, nil, nil)
	tester.True(t, time.Since(start) < 200*time.Millisecond, "burst should pass without waiting")
}

func TestRateLimit_ContextCancelWhileWaiting(t *testing.T) {
	fake := &FakeClient{}
	fake.CompleteFn = func(ctx context.Context, msgs []llmclient.Message, schema *llmclient.ResponseSchema) (string, error) {
		return "ok", nil
	}
	cli := Wrap(fake, RateLimit(0.1, 1))
	t.Cleanup(func() { _ = cli.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := cli.Complete(ctx, nil, nil)
	tester.NoErr(t, err)
	_, err = cli.Complete(ctx, nil, nil)
	tester.Err(t, err)
	tester.Eq(t, fake.Calls, 1)
}
