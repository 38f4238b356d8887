package health

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/skinrec/internal/domain"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure; the service still answers with fallbacks.
	Degraded Status = "degraded"
	// Unhealthy indicates every check failed.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	CheckOK    CheckResult = "ok"
	CheckError CheckResult = "error"
	// CheckEmpty marks a reachable component without data.
	CheckEmpty CheckResult = "empty"
)

// Report aggregates health check results.
type Report struct {
	Status    Status                 `json:"status"`
	Checks    map[string]CheckResult `json:"checks"`
	Documents int                    `json:"documents"`
}

// Service coordinates health checks. Every dependency is optional.
type Service struct {
	cache     Pinger
	embedding Checker
	model     Checker
	corpus    CorpusStats
}

// Option wires one dependency.
type Option func(*Service)

// WithCache checks the embedding cache store.
func WithCache(p Pinger) Option { return func(s *Service) { s.cache = p } }

// WithEmbedding checks the embedding provider.
func WithEmbedding(c Checker) Option { return func(s *Service) { s.embedding = c } }

// WithModel checks the chat and vision provider.
func WithModel(c Checker) Option { return func(s *Service) { s.model = c } }

// WithCorpus reports the knowledge corpus size.
func WithCorpus(c CorpusStats) Option { return func(s *Service) { s.corpus = c } }

// New creates a Service.
func New(opts ...Option) *Service {
	s := &Service{}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Check runs health checks against all configured components.
func (s *Service) Check(ctx context.Context) Report {
	r := Report{Checks: make(map[string]CheckResult)}

	if s.cache != nil {
		r.Checks["cache"] = result(s.cache.Ping(ctx))
	}
	if s.embedding != nil {
		r.Checks["embedding"] = result(s.embedding.HealthCheck(ctx))
	}
	if s.model != nil {
		r.Checks["model"] = result(s.model.HealthCheck(ctx))
	}
	if s.corpus != nil {
		r.Documents = s.corpus.Stats().TotalDocuments
		if r.Documents == 0 {
			r.Checks["knowledge"] = CheckEmpty
		} else {
			r.Checks["knowledge"] = CheckOK
		}
	}

	r.Status = aggregate(r.Checks)
	return r
}

// Err returns nil for a healthy report and a descriptive error otherwise.
func (r Report) Err() error {
	if r.Status == Healthy {
		return nil
	}
	for name, c := range r.Checks {
		if c == CheckEmpty && name == "knowledge" {
			return fmt.Errorf("knowledge: %w", domain.ErrCorpusEmpty)
		}
	}
	return fmt.Errorf("health %s", r.Status)
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}

func aggregate(checks map[string]CheckResult) Status {
	if len(checks) == 0 {
		return Healthy
	}
	failed := 0
	for _, v := range checks {
		if v != CheckOK {
			failed++
		}
	}
	switch {
	case failed == 0:
		return Healthy
	case failed == len(checks):
		return Unhealthy
	default:
		return Degraded
	}
}
