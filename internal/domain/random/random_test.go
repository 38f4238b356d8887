package random

import (
	"slices"
	"testing"
	"time"
)

func TestSeeded_JitterBoundedAndStable(t *testing.T) {
	s := NewSeeded(42)
	for _, key := range []string{"a", "b", "兰蔻|面霜", ""} {
		j := s.Jitter(key, 0.1)
		if j < -0.1 || j > 0.1 {
			t.Errorf("Jitter(%q) = %v out of bounds", key, j)
		}
		if again := NewSeeded(42).Jitter(key, 0.1); again != j {
			t.Errorf("Jitter(%q) not stable: %v vs %v", key, j, again)
		}
	}
	if s.Jitter("a", 0) != 0 {
		t.Error("zero amplitude must give zero jitter")
	}
}

func TestSeeded_SeedChangesJitter(t *testing.T) {
	differs := false
	for seed := uint64(1); seed < 10; seed++ {
		if NewSeeded(seed).Jitter("x", 1) != NewSeeded(0).Jitter("x", 1) {
			differs = true
		}
	}
	if !differs {
		t.Error("jitter ignores the seed")
	}
}

func TestTimeSeeded_JitterVariesPerCall(t *testing.T) {
	tick := time.Unix(0, 0)
	s := newClocked(7, func() time.Time {
		tick = tick.Add(time.Millisecond)
		return tick
	})

	first := s.Jitter("兰蔻|面霜", 0.1)
	differs := false
	for range 10 {
		j := s.Jitter("兰蔻|面霜", 0.1)
		if j < -0.1 || j > 0.1 {
			t.Fatalf("Jitter = %v out of bounds", j)
		}
		if j != first {
			differs = true
		}
	}
	if !differs {
		t.Error("clock mixed jitter never changed for a repeated key")
	}

	if a, b := NewTimeSeeded().Jitter("x", 0), NewTimeSeeded().Jitter("x", 0); a != 0 || b != 0 {
		t.Error("zero amplitude must give zero jitter")
	}
}

func TestSeeded_ShuffleDeterministic(t *testing.T) {
	perm := func(seed uint64) []int {
		xs := []int{0, 1, 2, 3, 4, 5, 6, 7}
		NewSeeded(seed).Shuffle(len(xs), func(i, j int) { xs[i], xs[j] = xs[j], xs[i] })
		return xs
	}
	a, b := perm(7), perm(7)
	if !slices.Equal(a, b) {
		t.Errorf("same seed, different order: %v vs %v", a, b)
	}
	sorted := slices.Clone(a)
	slices.Sort(sorted)
	if !slices.Equal(sorted, []int{0, 1, 2, 3, 4, 5, 6, 7}) {
		t.Errorf("shuffle lost elements: %v", a)
	}
}

func TestNone(t *testing.T) {
	var n None
	if n.Jitter("x", 1) != 0 {
		t.Error("None.Jitter != 0")
	}
	xs := []int{1, 2, 3}
	n.Shuffle(3, func(i, j int) { xs[i], xs[j] = xs[j], xs[i] })
	if !slices.Equal(xs, []int{1, 2, 3}) {
		t.Errorf("None.Shuffle changed order: %v", xs)
	}
}
