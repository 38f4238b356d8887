package skinrec

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/skinrec/internal/domain"
	domcond "github.com/kailas-cloud/skinrec/internal/domain/conditions"
	"github.com/kailas-cloud/skinrec/internal/domain/match"
	"github.com/kailas-cloud/skinrec/internal/domain/random"
	"github.com/kailas-cloud/skinrec/internal/domain/tagging"
	"github.com/kailas-cloud/skinrec/internal/repository/searchcache"
	"github.com/kailas-cloud/skinrec/internal/repository/source"
	conduc "github.com/kailas-cloud/skinrec/internal/usecase/conditions"
	embeddinguc "github.com/kailas-cloud/skinrec/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/skinrec/internal/usecase/health"
	knowledgeuc "github.com/kailas-cloud/skinrec/internal/usecase/knowledge"
	"github.com/kailas-cloud/skinrec/internal/usecase/matcher"
	recommenduc "github.com/kailas-cloud/skinrec/internal/usecase/recommend"
	"github.com/kailas-cloud/skinrec/internal/usecase/selector"
)

// Internal interfaces, swapped for mocks in tests.
type knowledgeUseCase interface {
	Search(ctx context.Context, query string, opts knowledgeuc.Options) ([]knowledgeuc.Result, error)
	UpdateKnowledge(ctx context.Context, raws []map[string]any) (knowledgeuc.UpdateReport, error)
	Stats() knowledgeuc.Stats
	Close() error
}

type recommendUseCase interface {
	Suggest(ctx context.Context, c domcond.QueryConditions) (match.Set, error)
}

// Client is the skinrec SDK entry point. Safe for concurrent use.
type Client struct {
	knowledge knowledgeUseCase
	recommend recommendUseCase
	healthSvc healthUseCase
	extractor *conduc.Extractor
	obs       *observer
}

// New builds a Client, loading the knowledge corpus and product catalog.
// Missing files leave the corpus or catalog empty; only a cancelled ctx or
// a metrics registration conflict returns an error.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{dimensions: domain.DefaultDimensions}
	for _, o := range opts {
		o.apply(cfg)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("skinrec: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	ks, rec, health := wire(cfg)
	if err := ks.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("skinrec: load knowledge: %w", err)
	}

	var catalog recommenduc.CatalogSource
	if cfg.catalogPath != "" || cfg.elderPath != "" {
		catalog = source.NewCatalogFiles(cfg.catalogPath, cfg.elderPath, zap.NewNop())
	}
	if err := rec.Initialize(ctx, catalog); err != nil {
		return nil, fmt.Errorf("skinrec: load catalog: %w", err)
	}
	obs.observe("init", start, nil, "documents", ks.Stats().TotalDocuments)

	return &Client{
		knowledge: ks,
		recommend: rec,
		healthSvc: health,
		extractor: conduc.NewExtractor(),
		obs:       obs,
	}, nil
}

func wire(cfg *clientConfig) (*knowledgeuc.Store, *recommenduc.Service, *healthuc.Service) {
	log := zap.NewNop()

	emb := adaptEmbedder(cfg.embedder)
	queryEmb := emb
	instruction := domain.DefaultVectorConfig().QueryInstruction
	if cfg.queryInstruction != nil {
		instruction = *cfg.queryInstruction
	}
	if emb != nil && instruction != "" {
		queryEmb = domain.NewInstructionEmbedder(emb, instruction)
	}

	var src knowledgeuc.Source
	if cfg.knowledgeDir != "" {
		src = source.NewKnowledgeDir(cfg.knowledgeDir, log)
	}
	ks := knowledgeuc.New(
		embeddinguc.NewVectorizer(emb, cfg.dimensions, 0, log),
		embeddinguc.NewVectorizer(queryEmb, cfg.dimensions, 0, log),
		src,
		searchcache.New[[]knowledgeuc.Result](cfg.cacheSize, 0),
		log,
	)

	var rnd random.Source = random.NewTimeSeeded()
	if cfg.seed != 0 {
		rnd = random.NewSeeded(cfg.seed)
	}
	rec := recommenduc.New(
		matcher.New(matcher.DefaultWeights(), rnd),
		selector.New(rnd),
		recommenduc.DefaultSizes(),
		log,
	)

	healthOpts := []healthuc.Option{healthuc.WithCorpus(ks)}
	if hc, ok := cfg.embedder.(domain.HealthChecker); ok {
		healthOpts = append(healthOpts, healthuc.WithEmbedding(hc))
	}
	return ks, rec, healthuc.New(healthOpts...)
}

// Close releases the search cache.
func (c *Client) Close() error {
	if err := c.knowledge.Close(); err != nil {
		return fmt.Errorf("skinrec: close: %w", err)
	}
	return nil
}

// Search finds knowledge documents similar to query. A negative TopK
// returns ErrInvalidTopK.
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) (_ []SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err, "category", opts.Category) }()

	topK := opts.TopK
	if topK == 0 {
		topK = knowledgeuc.DefaultTopK
	}
	results, err := c.knowledge.Search(ctx, query, knowledgeuc.Options{
		Category: opts.Category,
		Filters:  opts.Filters,
		TopK:     topK,
		UseCache: !opts.NoCache,
	})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	out := make([]SearchResult, len(results))
	for i, r := range results {
		out[i] = SearchResult{
			ID:       r.ID,
			Content:  r.Content,
			Category: string(r.Category),
			Source:   r.Source,
			Score:    r.Score,
			Metadata: r.Metadata,
		}
	}
	return out, nil
}

// AddKnowledge appends raw records ({"category": ..., "content": ..., ...})
// and rebuilds the index. Malformed records are counted as skipped.
func (c *Client) AddKnowledge(ctx context.Context, records []map[string]any) (_ UpdateReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("add_knowledge", start, err, "records", len(records)) }()

	r, err := c.knowledge.UpdateKnowledge(ctx, records)
	if err != nil {
		return UpdateReport{}, fmt.Errorf("add knowledge: %w", err)
	}
	return UpdateReport{Added: r.Added, Skipped: r.Skipped, Total: r.Total}, nil
}

// Stats summarizes the corpus.
func (c *Client) Stats() Stats {
	s := c.knowledge.Stats()
	return Stats{
		TotalDocuments: s.TotalDocuments,
		Categories:     s.Categories,
		MetadataTypes:  s.MetadataTypes,
		LastUpdated:    s.LastUpdated,
	}
}

// Recommend picks products for structured conditions.
func (c *Client) Recommend(ctx context.Context, cond Conditions) (RecommendationSet, error) {
	q := domcond.QueryConditions{
		Age:      cond.Age,
		Gender:   tagging.ParseGender(cond.Gender),
		SkinType: cond.SkinType,
		Concerns: cond.Concerns,
	}
	return c.suggest(ctx, "recommend", q)
}

// RecommendText extracts conditions from a free-text request and picks products.
func (c *Client) RecommendText(ctx context.Context, text string) (RecommendationSet, error) {
	return c.suggest(ctx, "recommend_text", c.extractor.Extract(text))
}

func (c *Client) suggest(ctx context.Context, op string, q domcond.QueryConditions) (_ RecommendationSet, err error) {
	start := time.Now()
	defer func() { c.obs.observe(op, start, err) }()

	set, err := c.recommend.Suggest(ctx, q)
	if err != nil {
		return RecommendationSet{}, fmt.Errorf("%s: %w", op, err)
	}

	out := RecommendationSet{
		Items:        make([]Recommendation, len(set.Items)),
		Personalized: set.Personalized,
		Relaxed:      set.Relaxed,
	}
	for i, it := range set.Items {
		out.Items[i] = Recommendation{
			Name:     it.Product.Name,
			Brand:    it.Product.Brand,
			Category: it.Product.Category,
			Price:    it.Product.Price,
			Link:     it.Product.Link,
			Score:    it.Score,
			Reasons:  it.Reasons,
			Reason:   it.Reason,
		}
	}
	return out, nil
}
