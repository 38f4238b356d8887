package skinrec

import (
	"context"
	"strings"

	domcond "github.com/kailas-cloud/skinrec/internal/domain/conditions"
	"github.com/kailas-cloud/skinrec/internal/domain/match"
	healthuc "github.com/kailas-cloud/skinrec/internal/usecase/health"
	knowledgeuc "github.com/kailas-cloud/skinrec/internal/usecase/knowledge"
)

// --- knowledgeUseCase mock ---

type mockKnowledgeUC struct {
	searchFn func(ctx context.Context, query string, opts knowledgeuc.Options) ([]knowledgeuc.Result, error)
	updateFn func(ctx context.Context, raws []map[string]any) (knowledgeuc.UpdateReport, error)
	stats    knowledgeuc.Stats
	closed   bool
}

func (m *mockKnowledgeUC) Search(ctx context.Context, query string, opts knowledgeuc.Options) ([]knowledgeuc.Result, error) {
	return m.searchFn(ctx, query, opts)
}

func (m *mockKnowledgeUC) UpdateKnowledge(ctx context.Context, raws []map[string]any) (knowledgeuc.UpdateReport, error) {
	return m.updateFn(ctx, raws)
}

func (m *mockKnowledgeUC) Stats() knowledgeuc.Stats { return m.stats }

func (m *mockKnowledgeUC) Close() error {
	m.closed = true
	return nil
}

// --- recommendUseCase mock ---

type mockRecommendUC struct {
	suggestFn func(ctx context.Context, c domcond.QueryConditions) (match.Set, error)
}

func (m *mockRecommendUC) Suggest(ctx context.Context, c domcond.QueryConditions) (match.Set, error) {
	return m.suggestFn(ctx, c)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

// --- Embedder stub ---

// keywordEmbedder places texts on one axis per keyword, plus a bias axis so
// no vector is all-zero.
type keywordEmbedder struct{}

var embedKeywords = []string{"痘", "干", "油", "敏"}

func (keywordEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	v := make([]float32, len(embedKeywords)+1)
	for i, k := range embedKeywords {
		if strings.Contains(text, k) {
			v[i] = 1
		}
	}
	v[len(embedKeywords)] = 0.1
	return EmbeddingResult{Embedding: v, TotalTokens: len([]rune(text))}, nil
}
