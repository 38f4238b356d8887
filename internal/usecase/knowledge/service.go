package knowledge

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/skinrec/internal/domain"
	domknow "github.com/kailas-cloud/skinrec/internal/domain/knowledge"
	"github.com/kailas-cloud/skinrec/internal/metrics"
	"github.com/kailas-cloud/skinrec/internal/repository/searchcache"
	"github.com/kailas-cloud/skinrec/internal/vectorindex"
)

// Store is the in-memory semantic knowledge base. Readers work on an
// immutable snapshot; rebuilds are serialized and swap the snapshot
// atomically, so a search never observes a half-built index.
type Store struct {
	docVec   Vectorizer
	queryVec Vectorizer
	source   Source
	cache    ResultCache
	logger   *zap.Logger
	now      func() time.Time

	mu   sync.Mutex
	snap atomic.Pointer[snapshot]
	// swap orders snapshot swaps against cache writes so a search that
	// started on an old snapshot cannot repopulate the cache after a purge.
	swap sync.RWMutex
}

// New creates a knowledge store. queryVec may apply a retrieval instruction
// that docVec does not. cache may be nil.
func New(docVec, queryVec Vectorizer, source Source, cache ResultCache, logger *zap.Logger) *Store {
	if queryVec == nil {
		queryVec = docVec
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		docVec:   docVec,
		queryVec: queryVec,
		source:   source,
		cache:    cache,
		logger:   logger,
		now:      time.Now,
	}
	s.snap.Store(newSnapshot(nil, nil, time.Time{}))
	return s
}

// Initialize loads the corpus from the source and builds the index.
// A source failure leaves the store empty but usable.
func (s *Store) Initialize(ctx context.Context) error {
	var docs []domknow.Document
	if s.source != nil {
		loaded, err := s.source.LoadAll(ctx)
		if err != nil {
			s.logger.Warn("knowledge source load failed, starting with empty corpus", zap.Error(err))
		} else {
			docs = loaded
		}
	}
	if len(docs) == 0 {
		s.logger.Warn("knowledge corpus is empty", zap.Error(domain.ErrCorpusEmpty))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rebuild(ctx, docs)
	return nil
}

// UpdateKnowledge normalizes raw records, appends them to the corpus and
// rebuilds the index. Records with an unknown category are skipped.
func (s *Store) UpdateKnowledge(ctx context.Context, raws []map[string]any) (UpdateReport, error) {
	if err := ctx.Err(); err != nil {
		return UpdateReport{}, fmt.Errorf("update knowledge: %w", err)
	}

	now := s.now()
	added := make([]domknow.Document, 0, len(raws))
	var report UpdateReport
	for i, raw := range raws {
		doc, err := domknow.Normalize(raw, "", now)
		if err != nil {
			report.Skipped++
			metrics.KnowledgeSkippedRecordsTotal.Inc()
			s.logger.Warn("skipping knowledge record", zap.Int("index", i), zap.Error(err))
			continue
		}
		added = append(added, doc)
	}
	report.Added = len(added)

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(added) > 0 {
		cur := s.snap.Load()
		docs := make([]domknow.Document, 0, len(cur.docs)+len(added))
		docs = append(docs, cur.docs...)
		docs = append(docs, added...)
		s.rebuild(ctx, docs)
	}
	report.Total = len(s.snap.Load().docs)
	return report, nil
}

// rebuild embeds docs, builds a fresh snapshot and swaps it in. Caller holds mu.
func (s *Store) rebuild(ctx context.Context, docs []domknow.Document) {
	start := time.Now()

	contents := make([]string, len(docs))
	for i := range docs {
		contents[i] = docs[i].Content()
	}
	var index *vectorindex.Index
	if len(docs) > 0 {
		vecs := s.docVec.EmbedMany(ctx, contents)
		var replaced int
		index, replaced = vectorindex.Build(s.docVec.Dimensions(), vecs)
		if replaced > 0 {
			s.logger.Warn("replaced malformed document vectors", zap.Int("count", replaced))
		}
	}

	next := newSnapshot(docs, index, s.now())
	s.swap.Lock()
	s.snap.Store(next)
	if s.cache != nil {
		s.cache.Purge()
	}
	s.swap.Unlock()

	metrics.KnowledgeRebuildDuration.Observe(time.Since(start).Seconds())
	counts := next.stats().Categories
	for _, c := range domknow.Categories {
		metrics.KnowledgeDocuments.WithLabelValues(string(c)).Set(float64(counts[string(c)]))
	}
	s.logger.Info("knowledge index rebuilt",
		zap.Int("documents", len(docs)),
		zap.Duration("took", time.Since(start)),
	)
}

// Search returns up to opts.TopK documents ranked by similarity to query.
// Internal failures degrade to an empty result; only a negative TopK errors.
func (s *Store) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	if opts.TopK < 0 {
		return nil, fmt.Errorf("top_k %d: %w", opts.TopK, domain.ErrInvalidTopK)
	}
	if opts.TopK == 0 {
		return []Result{}, nil
	}

	key := searchcache.Key{Query: query, Category: opts.Category, Filters: opts.Filters, TopK: opts.TopK}
	if opts.UseCache && s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			metrics.KnowledgeSearchCacheTotal.WithLabelValues("hit").Inc()
			return cached, nil
		}
		metrics.KnowledgeSearchCacheTotal.WithLabelValues("miss").Inc()
	}

	snap := s.snap.Load()
	if len(snap.docs) == 0 || snap.index == nil {
		metrics.KnowledgeSearchTotal.WithLabelValues("empty").Inc()
		return []Result{}, nil
	}

	allowed, all := snap.allowed(opts.Category, opts.Filters)
	if !all && len(allowed) == 0 {
		metrics.KnowledgeSearchTotal.WithLabelValues("empty").Inc()
		return []Result{}, nil
	}

	qv := s.queryVec.EmbedOne(ctx, query)
	fetch := min(2*opts.TopK, snap.index.Len())
	hits := snap.index.Search(qv, fetch)

	results := make([]Result, 0, opts.TopK)
	for _, h := range hits {
		if !all {
			if _, ok := allowed[h.Pos]; !ok {
				continue
			}
		}
		results = append(results, toResult(&snap.docs[h.Pos], vectorindex.Similarity(h.Distance)))
		if len(results) == opts.TopK {
			break
		}
	}

	outcome := "ok"
	if len(results) == 0 {
		outcome = "empty"
	}
	metrics.KnowledgeSearchTotal.WithLabelValues(outcome).Inc()

	if opts.UseCache && s.cache != nil {
		s.cacheResults(snap, key, results)
	}
	return results, nil
}

// cacheResults stores results computed on snap, unless a rebuild has
// replaced snap in the meantime.
func (s *Store) cacheResults(snap *snapshot, key searchcache.Key, results []Result) {
	s.swap.RLock()
	defer s.swap.RUnlock()
	if s.snap.Load() != snap {
		s.logger.Debug("dropping search results from a replaced snapshot")
		return
	}
	s.cache.Put(key, results)
}

// Stats reports corpus totals for the current snapshot.
func (s *Store) Stats() Stats {
	return s.snap.Load().stats()
}

// Close drops cached results.
func (s *Store) Close() error {
	if s.cache != nil {
		s.cache.Purge()
	}
	return nil
}

func toResult(d *domknow.Document, score float64) Result {
	return Result{
		ID:       d.ID(),
		Content:  d.Content(),
		Metadata: d.Metadata(),
		Category: d.Category(),
		Source:   d.Source(),
		Score:    score,
	}
}
