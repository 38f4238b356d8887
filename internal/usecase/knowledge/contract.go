package knowledge

import (
	"context"

	domknow "github.com/kailas-cloud/skinrec/internal/domain/knowledge"
	"github.com/kailas-cloud/skinrec/internal/repository/searchcache"
)

// Source loads the raw corpus at startup.
type Source interface {
	LoadAll(ctx context.Context) ([]domknow.Document, error)
}

// Vectorizer produces fixed-dimension vectors and never fails.
type Vectorizer interface {
	EmbedOne(ctx context.Context, text string) []float32
	EmbedMany(ctx context.Context, texts []string) [][]float32
	Dimensions() int
}

// ResultCache stores search results keyed by the full search tuple.
type ResultCache interface {
	Get(k searchcache.Key) ([]Result, bool)
	Put(k searchcache.Key, v []Result)
	Purge()
}
