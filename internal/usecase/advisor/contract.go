package advisor

import (
	"context"

	domcond "github.com/kailas-cloud/skinrec/internal/domain/conditions"
	"github.com/kailas-cloud/skinrec/internal/domain/match"
	"github.com/kailas-cloud/skinrec/internal/usecase/knowledge"
)

// TextGenerator is the chat model capability.
type TextGenerator interface {
	// ClassifyIntent labels a user message.
	ClassifyIntent(ctx context.Context, message string) (Intent, error)
	// ExtractProfile returns the raw model reply describing the user profile.
	ExtractProfile(ctx context.Context, message string) (string, error)
	// GenerateQuestions returns the raw model reply with follow-up questions.
	GenerateQuestions(ctx context.Context, b Brief) (string, error)
	// ExplainTrust returns the raw model reply explaining why the
	// recommended products suit the user.
	ExplainTrust(ctx context.Context, b Brief) (string, error)
}

// ImageAnalyzer is the vision model capability.
type ImageAnalyzer interface {
	// AnalyzeSkin returns the raw model reply describing a face photo.
	AnalyzeSkin(ctx context.Context, image []byte, mimeType string) (string, error)
}

// KnowledgeSearcher retrieves supporting documents.
type KnowledgeSearcher interface {
	Search(ctx context.Context, query string, opts knowledge.Options) ([]knowledge.Result, error)
}

// Recommender produces a recommendation set from the loaded catalog.
type Recommender interface {
	Suggest(ctx context.Context, c domcond.QueryConditions) (match.Set, error)
}
