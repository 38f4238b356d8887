package skinrec

import "github.com/kailas-cloud/skinrec/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidTopK            = domain.ErrInvalidTopK
	ErrInvalidConditions      = domain.ErrInvalidConditions
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrCorpusEmpty            = domain.ErrCorpusEmpty
)
