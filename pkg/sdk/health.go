package skinrec

import (
	"context"

	healthuc "github.com/kailas-cloud/skinrec/internal/usecase/health"
)

// HealthStatus represents the aggregated engine health.
type HealthStatus struct {
	Status    string            // "ok", "degraded", "error"
	Checks    map[string]string // component → "ok"/"error"/"empty"
	Documents int
}

// Health reports whether the corpus is loaded and the embedder reachable.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status:    string(report.Status),
		Checks:    checks,
		Documents: report.Documents,
	}
}

// healthUseCase is the internal interface for health checks.
type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
