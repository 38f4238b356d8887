package chi

import (
	"context"

	domcond "github.com/kailas-cloud/skinrec/internal/domain/conditions"
	"github.com/kailas-cloud/skinrec/internal/domain/match"
	"github.com/kailas-cloud/skinrec/internal/usecase/advisor"
	healthuc "github.com/kailas-cloud/skinrec/internal/usecase/health"
	"github.com/kailas-cloud/skinrec/internal/usecase/knowledge"
)

// KnowledgeService is implemented by knowledge.Store.
type KnowledgeService interface {
	Search(ctx context.Context, query string, opts knowledge.Options) ([]knowledge.Result, error)
	UpdateKnowledge(ctx context.Context, raws []map[string]any) (knowledge.UpdateReport, error)
	Stats() knowledge.Stats
}

// Recommender is implemented by recommend.Service.
type Recommender interface {
	Suggest(ctx context.Context, c domcond.QueryConditions) (match.Set, error)
}

// Advisor is implemented by advisor.Service.
type Advisor interface {
	Consult(ctx context.Context, req advisor.Request) (*advisor.Response, error)
}

// HealthReporter is implemented by health.Service.
type HealthReporter interface {
	Check(ctx context.Context) healthuc.Report
}
