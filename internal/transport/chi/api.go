package chi

import (
	domcond "github.com/kailas-cloud/skinrec/internal/domain/conditions"
	"github.com/kailas-cloud/skinrec/internal/usecase/knowledge"
)

// ErrorCode is the machine-readable error identifier in API responses.
type ErrorCode string

const (
	ErrorCodeBadRequest             ErrorCode = "bad_request"
	ErrorCodeUnauthorized           ErrorCode = "unauthorized"
	ErrorCodeValidationFailed       ErrorCode = "validation_failed"
	ErrorCodeInvalidTopK            ErrorCode = "invalid_top_k"
	ErrorCodeInvalidConditions      ErrorCode = "invalid_conditions"
	ErrorCodeModelUnavailable       ErrorCode = "model_unavailable"
	ErrorCodeEmbeddingProviderError ErrorCode = "embedding_provider_error"
	ErrorCodeTokenBudgetExceeded    ErrorCode = "token_budget_exceeded"
	ErrorCodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchRequest is the body of POST /v1/knowledge/search.
type SearchRequest struct {
	Query    string              `json:"query"`
	Category string              `json:"category,omitempty"`
	Filters  map[string][]string `json:"filters,omitempty"`
	TopK     *int                `json:"top_k,omitempty"`
	UseCache *bool               `json:"use_cache,omitempty"`
}

// SearchResponse wraps knowledge search hits.
type SearchResponse struct {
	Items []knowledge.Result `json:"items"`
	Total int                `json:"total"`
}

// UpdateKnowledgeRequest carries raw knowledge records.
type UpdateKnowledgeRequest struct {
	Documents []map[string]any `json:"documents"`
}

// RecommendRequest is the body of POST /v1/recommendations. Conditions win
// over Profile, which wins over Text.
type RecommendRequest struct {
	Text       string                   `json:"text,omitempty"`
	Profile    map[string]any           `json:"profile,omitempty"`
	Conditions *domcond.QueryConditions `json:"conditions,omitempty"`
}

// ConsultationRequest is the body of POST /v1/consultations. Image is base64.
type ConsultationRequest struct {
	Message   string         `json:"message"`
	Image     []byte         `json:"image,omitempty"`
	ImageType string         `json:"image_type,omitempty"`
	Profile   map[string]any `json:"profile,omitempty"`
}
