// Package selector picks a diverse top-K subset of scored products.
package selector

import (
	"cmp"
	"math"
	"slices"

	"github.com/kailas-cloud/skinrec/internal/domain/match"
	"github.com/kailas-cloud/skinrec/internal/domain/random"
	"github.com/kailas-cloud/skinrec/internal/domain/tagging"
)

// Default caps per detected keyword.
const (
	DefaultBrandCap    = 2
	DefaultCategoryCap = 2
)

// Selector applies veto filtering, score bucketing, diversity caps and backfill.
type Selector struct {
	rnd         random.Source
	brandCap    int
	categoryCap int
}

// Option configures a Selector.
type Option func(*Selector)

// WithCaps overrides the per-brand and per-category caps.
func WithCaps(brand, category int) Option {
	return func(s *Selector) {
		if brand > 0 {
			s.brandCap = brand
		}
		if category > 0 {
			s.categoryCap = category
		}
	}
}

// New creates a Selector. A nil Source keeps bucket order stable.
func New(rnd random.Source, opts ...Option) *Selector {
	if rnd == nil {
		rnd = random.None{}
	}
	s := &Selector{rnd: rnd, brandCap: DefaultBrandCap, categoryCap: DefaultCategoryCap}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Outcome is a selection plus whether caps had to be ignored to reach K.
type Outcome struct {
	Items      []match.Result
	Backfilled bool
}

// Select returns at most k non-vetoed results. Items sharing a brand or a
// category keyword are capped unless too few distinct candidates exist to
// reach k, in which case the remaining slots are backfilled by score.
func (s *Selector) Select(results []match.Result, k int) Outcome {
	if k <= 0 {
		return Outcome{Items: []match.Result{}}
	}

	pool := make([]match.Result, 0, len(results))
	for _, r := range results {
		if !r.Vetoed() {
			pool = append(pool, r)
		}
	}
	if len(pool) == 0 {
		return Outcome{Items: []match.Result{}}
	}

	slices.SortStableFunc(pool, func(a, b match.Result) int { return cmp.Compare(b.Score, a.Score) })
	ordered := s.shuffleBuckets(pool)

	picked := make([]bool, len(ordered))
	out := make([]match.Result, 0, k)
	brands := map[string]int{}
	categories := map[string]int{}

	for i, r := range ordered {
		if len(out) == k {
			break
		}
		brand := tagging.DetectBrand(r.Product.Name, r.Product.Brand)
		category := tagging.DetectCategory(r.Product.Category, r.Product.Name)
		if brand != "" && brands[brand] >= s.brandCap {
			continue
		}
		if category != "" && categories[category] >= s.categoryCap {
			continue
		}
		if brand != "" {
			brands[brand]++
		}
		if category != "" {
			categories[category]++
		}
		picked[i] = true
		out = append(out, r)
	}

	backfilled := false
	for i, r := range ordered {
		if len(out) == k {
			break
		}
		if !picked[i] {
			out = append(out, r)
			backfilled = true
		}
	}

	slices.SortStableFunc(out, func(a, b match.Result) int { return cmp.Compare(bucket(b.Score), bucket(a.Score)) })
	return Outcome{Items: out, Backfilled: backfilled}
}

// shuffleBuckets groups a score-sorted pool by score rounded to one decimal
// and shuffles each group, keeping groups in descending order.
func (s *Selector) shuffleBuckets(sorted []match.Result) []match.Result {
	out := make([]match.Result, 0, len(sorted))
	for start := 0; start < len(sorted); {
		key := bucket(sorted[start].Score)
		end := start + 1
		for end < len(sorted) && bucket(sorted[end].Score) == key {
			end++
		}
		group := slices.Clone(sorted[start:end])
		s.rnd.Shuffle(len(group), func(i, j int) { group[i], group[j] = group[j], group[i] })
		out = append(out, group...)
		start = end
	}
	return out
}

func bucket(score float64) int64 { return int64(math.Round(score * 10)) }
