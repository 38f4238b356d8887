// Package vectorindex is an immutable exact nearest-neighbour index over
// squared L2 distance. An Index is built once and never mutated, so it can be
// searched concurrently and swapped wholesale on rebuild.
package vectorindex

import (
	"cmp"
	"slices"
)

// Hit is one search result: the row position given to Build and its squared L2 distance.
type Hit struct {
	Pos      int
	Distance float32
}

// Index is a flat brute-force index.
type Index struct {
	dim     int
	vectors [][]float32
}

// Build copies vectors into a new index. Rows of the wrong dimension are
// stored as zero vectors so positions stay aligned with the caller's corpus.
// It returns the number of rows that were replaced.
func Build(dim int, vectors [][]float32) (*Index, int) {
	idx := &Index{dim: dim, vectors: make([][]float32, len(vectors))}
	replaced := 0
	for i, v := range vectors {
		row := make([]float32, dim)
		if len(v) == dim {
			copy(row, v)
		} else {
			replaced++
		}
		idx.vectors[i] = row
	}
	return idx, replaced
}

// Dim returns the vector dimension.
func (x *Index) Dim() int { return x.dim }

// Len returns the number of indexed rows.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.vectors)
}

// Search returns up to k rows nearest to query, closest first. Ties keep
// row order. A query of the wrong dimension matches nothing.
func (x *Index) Search(query []float32, k int) []Hit {
	if x == nil || k <= 0 || len(x.vectors) == 0 || len(query) != x.dim {
		return nil
	}
	hits := make([]Hit, len(x.vectors))
	for i, v := range x.vectors {
		hits[i] = Hit{Pos: i, Distance: SquaredL2(query, v)}
	}
	slices.SortStableFunc(hits, func(a, b Hit) int { return cmp.Compare(a.Distance, b.Distance) })
	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k]
}

// SquaredL2 is the squared Euclidean distance over the common prefix of a and b.
func SquaredL2(a, b []float32) float32 {
	n := min(len(a), len(b))
	var sum float32
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Similarity maps a distance into (0, 1], strictly decreasing in d.
func Similarity(d float32) float64 {
	if d < 0 {
		d = 0
	}
	return 1 / (1 + float64(d))
}
