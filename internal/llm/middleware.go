package llm

import (
	llmclient "writeflow/internal/llmclient"
)

// Middleware decorates a Client to inject cross-cutting concerns
// (rate limiting, retries, logging).
type Middleware func(llmclient.Client) llmclient.Client

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner llmclient.Client, mws ...Middleware) llmclient.Client {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}
