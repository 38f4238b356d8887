package domain

import "errors"

var (
	// ErrEmbeddingUnavailable signals that no vector could be produced for a text.
	// Callers degrade to a zero vector instead of surfacing it.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrCorpusEmpty signals that the knowledge corpus holds no documents.
	ErrCorpusEmpty = errors.New("corpus empty")
	// ErrMalformedDocument signals a record that cannot be normalized into a document.
	ErrMalformedDocument = errors.New("malformed document")
	// ErrNoCandidateAfterVeto signals that every product was vetoed.
	ErrNoCandidateAfterVeto = errors.New("no candidate after veto")
	// ErrExtractionAmbiguous signals that a signal could not be derived from text.
	ErrExtractionAmbiguous = errors.New("extraction ambiguous")

	// ErrInvalidTopK signals a negative result count.
	ErrInvalidTopK = errors.New("invalid top_k")
	// ErrInvalidConditions signals a malformed conditions object.
	ErrInvalidConditions = errors.New("invalid conditions")
	// ErrModelUnavailable signals a text or vision model failure.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrTokenBudgetExceeded signals that the provider token budget is spent.
	ErrTokenBudgetExceeded = errors.New("token budget exceeded")
	// ErrInvalidRequest signals a malformed inbound request.
	ErrInvalidRequest = errors.New("invalid request")
)
