package health

import (
	"context"

	"github.com/kailas-cloud/skinrec/internal/usecase/knowledge"
)

// Pinger checks cache store availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker checks an external model provider.
type Checker interface {
	HealthCheck(ctx context.Context) error
}

// CorpusStats reports the indexed knowledge corpus.
type CorpusStats interface {
	Stats() knowledge.Stats
}
