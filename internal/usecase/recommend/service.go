package recommend

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/kailas-cloud/skinrec/internal/domain"
	domcond "github.com/kailas-cloud/skinrec/internal/domain/conditions"
	"github.com/kailas-cloud/skinrec/internal/domain/match"
	"github.com/kailas-cloud/skinrec/internal/domain/product"
	"github.com/kailas-cloud/skinrec/internal/logger"
	"github.com/kailas-cloud/skinrec/internal/metrics"
	"github.com/kailas-cloud/skinrec/internal/usecase/matcher"
)

// maxDefaults bounds the non-personalized fallback list.
const maxDefaults = 3

// Sizes is the recommendation count per profile.
type Sizes struct {
	Default   int `yaml:"default"`
	Elder     int `yaml:"elder"`
	Sensitive int `yaml:"sensitive"`
}

// DefaultSizes returns the standard counts.
func DefaultSizes() Sizes { return Sizes{Default: 3, Elder: 4, Sensitive: 3} }

// K returns the recommendation count for the conditions. Elder wins over sensitive.
func (s Sizes) K(c domcond.QueryConditions) int {
	switch {
	case c.Elder && s.Elder > 0:
		return s.Elder
	case c.Sensitive && s.Sensitive > 0:
		return s.Sensitive
	case s.Default > 0:
		return s.Default
	default:
		return 3
	}
}

// Service produces recommendation sets.
type Service struct {
	scorer  Scorer
	picker  Picker
	sizes   Sizes
	logger  *zap.Logger
	catalog atomic.Pointer[product.Catalog]
}

// New creates a recommendation service.
func New(scorer Scorer, picker Picker, sizes Sizes, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{scorer: scorer, picker: picker, sizes: sizes, logger: logger}
	s.catalog.Store(&product.Catalog{})
	return s
}

// Initialize loads the catalog. A load failure leaves the catalog empty,
// which serves the default list.
func (s *Service) Initialize(ctx context.Context, src CatalogSource) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	if src == nil {
		return nil
	}
	cat, err := src.LoadCatalog(ctx)
	if err != nil {
		s.logger.Warn("catalog load failed, serving defaults", zap.Error(err))
		return nil
	}
	s.catalog.Store(&cat)
	s.logger.Info("catalog loaded",
		zap.Int("general", len(cat.General)),
		zap.Int("elder", len(cat.Elder)),
	)
	return nil
}

// Catalog returns the loaded catalog.
func (s *Service) Catalog() product.Catalog { return *s.catalog.Load() }

// Suggest recommends from the loaded catalog.
func (s *Service) Suggest(ctx context.Context, c domcond.QueryConditions) (match.Set, error) {
	return s.Recommend(ctx, c, s.Catalog())
}

// Recommend scores the catalog, falls back to a relaxed pass when every
// product is vetoed and to the default list when nothing remains. Only
// malformed conditions return an error.
func (s *Service) Recommend(ctx context.Context, c domcond.QueryConditions, catalog product.Catalog) (match.Set, error) {
	if err := c.Validate(); err != nil {
		return match.Set{}, fmt.Errorf("recommend: %w", err)
	}
	c = c.Normalize()
	k := s.sizes.K(c)
	log := logger.FromContext(ctx)

	products := catalog.For(c.Elder)
	if len(products) == 0 {
		log.Warn("product catalog is empty, serving defaults")
		return s.defaults(c), nil
	}

	for _, mode := range []matcher.Mode{matcher.Strict, matcher.Relaxed} {
		results := s.scorer.ScoreAll(products, c, mode)
		countVetoes(results, mode)
		out := s.picker.Select(results, k)
		if len(out.Items) == 0 {
			log.Info("no candidate after veto",
				zap.String("mode", mode.String()),
				zap.Int("products", len(products)),
				zap.Error(domain.ErrNoCandidateAfterVeto),
			)
			continue
		}
		metrics.RecommendationsTotal.WithLabelValues(mode.String()).Inc()
		return match.Set{
			Items:        toRecommendations(out.Items, c),
			Personalized: true,
			Relaxed:      mode == matcher.Relaxed,
		}, nil
	}

	return s.defaults(c), nil
}

func (s *Service) defaults(c domcond.QueryConditions) match.Set {
	metrics.RecommendationsTotal.WithLabelValues("default").Inc()
	defs := product.Defaults()
	if len(defs) > maxDefaults {
		defs = defs[:maxDefaults]
	}
	items := make([]match.Recommendation, len(defs))
	for i, p := range defs {
		items[i] = match.Recommendation{Product: p, Reasons: []string{}, Reason: ReasonText(p, c)}
	}
	return match.Set{Items: items, Personalized: false}
}

func countVetoes(results []match.Result, mode matcher.Mode) {
	n := 0
	for _, r := range results {
		if r.Vetoed() {
			n++
		}
	}
	if n > 0 {
		metrics.ProductVetoesTotal.WithLabelValues(mode.String()).Add(float64(n))
	}
}

func toRecommendations(results []match.Result, c domcond.QueryConditions) []match.Recommendation {
	out := make([]match.Recommendation, len(results))
	for i, r := range results {
		out[i] = match.Recommendation{
			Product: r.Product,
			Score:   r.Score,
			Reasons: r.Reasons,
			Reason:  ReasonText(r.Product, c),
		}
	}
	return out
}

// Reason text fragments.
const (
	defaultReason      = "根据您的需求推荐"
	defaultElderAge    = "50+"
	usageInstructions  = "usage_instructions"
	maxReasonBenefits  = 3
	maxReasonComponent = 2
)

// ReasonText builds the user-facing explanation for a recommended product.
func ReasonText(p product.Product, c domcond.QueryConditions) string {
	var parts []string
	if c.HasAge() && p.IsElderFriendly() {
		age := p.SuitableAge
		if age == "" || age == product.DefaultSuitableAge {
			age = defaultElderAge
		}
		parts = append(parts, "专为"+age+"人群设计")
	}
	if len(p.Benefits) > 0 {
		parts = append(parts, "具有"+strings.Join(head(p.Benefits, maxReasonBenefits), ", ")+"等功效")
	}
	if len(p.KeyIngredients) > 0 {
		parts = append(parts, "含有"+strings.Join(head(p.KeyIngredients, maxReasonComponent), ", ")+"等有效成分")
	}
	if v := p.ElderFriendly[usageInstructions]; v != "" {
		parts = append(parts, v)
	}
	if len(parts) == 0 {
		return defaultReason
	}
	return strings.Join(parts, match.ReasonSeparator)
}

func head(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
