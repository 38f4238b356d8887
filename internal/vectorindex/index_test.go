package vectorindex

import (
	"math"
	"testing"
)

func TestBuild_ZeroFillsMismatched(t *testing.T) {
	idx, replaced := Build(3, [][]float32{{1, 0, 0}, {1, 2}, nil})
	if replaced != 2 {
		t.Errorf("replaced = %d, want 2", replaced)
	}
	if idx.Len() != 3 || idx.Dim() != 3 {
		t.Fatalf("Len() = %d, Dim() = %d", idx.Len(), idx.Dim())
	}
	hits := idx.Search([]float32{0, 0, 0}, 3)
	if hits[0].Pos != 1 || hits[0].Distance != 0 || hits[1].Pos != 2 {
		t.Errorf("zero rows should be nearest to the origin in row order, got %+v", hits)
	}
}

func TestBuild_CopiesInput(t *testing.T) {
	src := [][]float32{{1, 1}}
	idx, _ := Build(2, src)
	src[0][0] = 100
	if hits := idx.Search([]float32{1, 1}, 1); hits[0].Distance != 0 {
		t.Errorf("index shares memory with input: %+v", hits)
	}
}

func TestSearch_OrderAndK(t *testing.T) {
	idx, _ := Build(2, [][]float32{{5, 5}, {1, 0}, {0, 0}, {3, 4}})
	hits := idx.Search([]float32{0, 0}, 2)
	if len(hits) != 2 {
		t.Fatalf("len = %d", len(hits))
	}
	if hits[0].Pos != 2 || hits[1].Pos != 1 {
		t.Errorf("hits = %+v", hits)
	}
	if hits[1].Distance != 1 {
		t.Errorf("distance = %v, want 1 (squared)", hits[1].Distance)
	}
	if all := idx.Search([]float32{0, 0}, 10); len(all) != 4 || all[3].Distance != 50 {
		t.Errorf("k larger than corpus: %+v", all)
	}
}

func TestSearch_Degenerate(t *testing.T) {
	empty, _ := Build(3, nil)
	if got := empty.Search([]float32{0, 0, 0}, 5); len(got) != 0 {
		t.Errorf("empty index returned %v", got)
	}
	var nilIdx *Index
	if nilIdx.Len() != 0 || nilIdx.Search([]float32{1}, 1) != nil {
		t.Error("nil index must behave as empty")
	}
	idx, _ := Build(2, [][]float32{{1, 1}})
	if got := idx.Search([]float32{1, 1, 1}, 1); got != nil {
		t.Errorf("wrong query dimension returned %v", got)
	}
	if got := idx.Search([]float32{1, 1}, 0); got != nil {
		t.Errorf("k=0 returned %v", got)
	}
}

func TestSimilarity_MonotoneInUnitInterval(t *testing.T) {
	if Similarity(0) != 1 {
		t.Errorf("Similarity(0) = %v", Similarity(0))
	}
	prev := math.Inf(1)
	for _, d := range []float32{0, 0.001, 0.5, 1, 2, 10, 1e3, 1e6} {
		s := Similarity(d)
		if s <= 0 || s > 1 {
			t.Errorf("Similarity(%v) = %v outside (0,1]", d, s)
		}
		if s >= prev {
			t.Errorf("Similarity(%v) = %v not strictly decreasing (prev %v)", d, s, prev)
		}
		prev = s
	}
}
