package deck

import "testing"

func TestLCGSequence(t *testing.T) {
	// First states of the recurrence state = state*1664525 + 1013904223 (mod 2^32)
	tests := []struct {
		seed   int64
		states []uint32
	}{
		{1, []uint32{1015568748, 1586005467, 2165703038}},
		{42, []uint32{1083814273, 378494188, 2479403867}},
	}

	for _, tt := range tests {
		rng := NewLCG(tt.seed)
		for i, want := range tt.states {
			got := rng.Next()
			expected := float64(want) / float64(lcgModulus)
			if got != expected {
				t.Errorf("seed %d step %d: Next() = %v, want %v", tt.seed, i, got, expected)
			}
		}
	}
}

func TestLCGNextRange(t *testing.T) {
	rng := NewLCG(99)
	for i := 0; i < 1000; i++ {
		v := rng.Next()
		if v < 0 || v >= 1 {
			t.Fatalf("Next() = %v, want value in [0,1)", v)
		}
	}
}

func TestLCGIntnBounds(t *testing.T) {
	rng := NewLCG(7)
	seen := make(map[int]bool)
	for i := 0; i < 5000; i++ {
		v := rng.Intn(52)
		if v < 0 || v >= 52 {
			t.Fatalf("Intn(52) = %d, out of range", v)
		}
		seen[v] = true
	}
	// A full-period generator should hit every bucket in 5000 draws
	if len(seen) != 52 {
		t.Errorf("Intn(52) covered %d values, want 52", len(seen))
	}
}

func TestLCGDeterministic(t *testing.T) {
	a := NewLCG(12345)
	b := NewLCG(12345)
	for i := 0; i < 100; i++ {
		if av, bv := a.Intn(52), b.Intn(52); av != bv {
			t.Fatalf("step %d: generators with same seed diverged: %d vs %d", i, av, bv)
		}
	}
}

func TestLCGIntnPanicsOnNonPositive(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Intn(0) should panic")
		}
	}()
	NewLCG(1).Intn(0)
}
