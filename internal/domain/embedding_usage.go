package domain

import "context"

type embeddingUsageKey struct{}

// EmbeddingUsage collects provider token usage for one HTTP request. The
// handler installs it in the context, the instrumented embedder adds to it,
// and the handler reports it as X-Embedding-Tokens.
type EmbeddingUsage struct {
	TotalTokens int
	Used        bool // embedder was called, even if a cache hit cost 0 tokens
}

// NewContextWithUsage returns a context carrying a fresh usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *EmbeddingUsage) {
	u := &EmbeddingUsage{}
	return context.WithValue(ctx, embeddingUsageKey{}, u), u
}

// UsageFromContext returns the collector, or nil when none is installed.
func UsageFromContext(ctx context.Context) *EmbeddingUsage {
	u, _ := ctx.Value(embeddingUsageKey{}).(*EmbeddingUsage)
	return u
}

// AddTokens records consumed tokens. Safe on a nil receiver.
func (u *EmbeddingUsage) AddTokens(n int) {
	if u != nil {
		u.TotalTokens += n
		u.Used = true
	}
}
