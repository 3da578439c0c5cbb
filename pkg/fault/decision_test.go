package fault

import (
	"math"
	"testing"
)

func TestRollDeterministicBounds(t *testing.T) {
	s := newSampler(1)
	for i := 0; i < 10000; i++ {
		if s.roll(0.0) {
			t.Fatal("roll(0.0) must never fire")
		}
		if !s.roll(1.0) {
			t.Fatal("roll(1.0) must always fire")
		}
		if s.roll(-0.5) {
			t.Fatal("negative rate must never fire")
		}
		if !s.roll(1.5) {
			t.Fatal("rate above one must always fire")
		}
	}
}

func TestRollFrequency(t *testing.T) {
	const trials = 10000
	for _, rate := range []float64{0.1, 0.3, 0.5, 0.9} {
		s := newSampler(42)
		hits := 0
		for i := 0; i < trials; i++ {
			if s.roll(rate) {
				hits++
			}
		}
		f := float64(hits) / trials
		if math.Abs(f-rate) >= 0.05 {
			t.Errorf("rate %v: observed frequency %v outside tolerance", rate, f)
		}
	}
}

func TestShortReadLenRange(t *testing.T) {
	s := newSampler(7)
	for _, n := range []int{2, 3, 5, 10, 100, 4096} {
		limit := (n + 1) / 2
		for i := 0; i < 1000; i++ {
			k := s.shortReadLen(n)
			if k < 1 || k > limit {
				t.Fatalf("shortReadLen(%d) = %d, want within [1, %d]", n, k, limit)
			}
		}
	}
}

func TestShortReadLenCoversRange(t *testing.T) {
	// For n=10 the reported length is uniform over [1,5]; with 1000 draws
	// every value should appear.
	s := newSampler(11)
	seen := make(map[int]bool)
	for i := 0; i < 1000; i++ {
		seen[s.shortReadLen(10)] = true
	}
	for k := 1; k <= 5; k++ {
		if !seen[k] {
			t.Errorf("length %d never drawn", k)
		}
	}
}

func TestSamplerSeedsDiverge(t *testing.T) {
	a, b := newSampler(1), newSampler(2)
	same := true
	for i := 0; i < 64; i++ {
		if a.roll(0.5) != b.roll(0.5) {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical decision sequences")
	}
}
