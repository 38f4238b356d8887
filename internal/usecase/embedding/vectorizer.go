package embedding

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/skinrec/internal/domain"
	"github.com/kailas-cloud/skinrec/internal/metrics"
)

// DefaultTimeout bounds a single vectorization call.
const DefaultTimeout = 10 * time.Second

// DefaultChunkSize is the number of texts EmbedMany vectorizes per call.
// Each chunk gets its own timeout and falls back on its own.
const DefaultChunkSize = 10

// Vectorizer turns text into fixed-dimension vectors and never fails: any
// provider error, timeout or wrong-sized vector becomes the zero vector.
type Vectorizer struct {
	embedder domain.Embedder
	dim      int
	chunk    int
	timeout  time.Duration
	logger   *zap.Logger
}

// NewVectorizer creates a Vectorizer. A nil embedder serves zero vectors only.
func NewVectorizer(embedder domain.Embedder, dim int, timeout time.Duration, logger *zap.Logger) *Vectorizer {
	if dim <= 0 {
		dim = domain.DefaultDimensions
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Vectorizer{embedder: embedder, dim: dim, chunk: DefaultChunkSize, timeout: timeout, logger: logger}
}

// Dimensions returns the fixed vector size.
func (v *Vectorizer) Dimensions() int { return v.dim }

// EmbedOne vectorizes a single text.
func (v *Vectorizer) EmbedOne(ctx context.Context, text string) []float32 {
	if strings.TrimSpace(text) == "" || v.embedder == nil {
		return v.fallback("empty", 1)[0]
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	res, err := v.embedder.Embed(ctx, text)
	if err != nil {
		v.logFailure(err, 1)
		return v.fallback("error", 1)[0]
	}
	return v.conform(res.Embedding)
}

// EmbedMany vectorizes texts in chunks of DefaultChunkSize, batching each
// chunk when the embedder supports it. A failed chunk degrades to zero
// vectors without affecting the others. The result always has len(texts)
// rows of Dimensions() each.
func (v *Vectorizer) EmbedMany(ctx context.Context, texts []string) [][]float32 {
	if len(texts) == 0 {
		return [][]float32{}
	}
	if v.embedder == nil {
		return v.fallback("empty", len(texts))
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += v.chunk {
		end := min(start+v.chunk, len(texts))
		out = append(out, v.embedChunk(ctx, texts[start:end])...)
	}
	return out
}

func (v *Vectorizer) embedChunk(ctx context.Context, texts []string) [][]float32 {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	var (
		res domain.BatchEmbeddingResult
		err error
	)
	if be, ok := v.embedder.(domain.BatchEmbedder); ok {
		res, err = be.BatchEmbed(ctx, texts)
	} else {
		res, err = domain.BatchFallback(ctx, v.embedder, texts)
	}
	if err == nil && len(res.Embeddings) != len(texts) {
		err = errors.Join(domain.ErrEmbeddingProviderError, errors.New("vector count mismatch"))
	}
	if err != nil {
		v.logFailure(err, len(texts))
		return v.fallback("error", len(texts))
	}

	out := make([][]float32, len(texts))
	for i, vec := range res.Embeddings {
		out[i] = v.conform(vec)
	}
	return out
}

func (v *Vectorizer) conform(vec []float32) []float32 {
	if len(vec) == v.dim {
		return vec
	}
	v.logger.Warn("Embedding dimension mismatch, using zero vector",
		zap.Int("want", v.dim), zap.Int("got", len(vec)))
	return v.fallback("dimension", 1)[0]
}

func (v *Vectorizer) fallback(reason string, n int) [][]float32 {
	metrics.EmbeddingFallbacksTotal.WithLabelValues(reason).Add(float64(n))
	out := make([][]float32, n)
	for i := range out {
		out[i] = domain.ZeroVector(v.dim)
	}
	return out
}

func (v *Vectorizer) logFailure(err error, n int) {
	v.logger.Warn("Embedding unavailable, using zero vectors",
		zap.Int("texts", n),
		zap.NamedError("cause", err),
		zap.Error(domain.ErrEmbeddingUnavailable),
	)
}
