package randn

import (
	"math"
	"testing"
)

// countingSource replays fixed values and counts draws.
type countingSource struct {
	vals  []float64
	i     int
	draws int
}

func (c *countingSource) Float64() float64 {
	v := c.vals[c.i%len(c.vals)]
	c.i++
	c.draws++
	return v
}

func TestMeanAndVariance(t *testing.T) {
	t.Parallel()
	st := Sample(NewSeeded(42), 200_000)
	// Standard error of the mean is ~0.0022; of the variance ~0.0032.
	if math.Abs(st.Mean) > 0.015 {
		t.Fatalf("mean = %f, want ~0", st.Mean)
	}
	if math.Abs(st.Variance-1) > 0.03 {
		t.Fatalf("variance = %f, want ~1", st.Variance)
	}
}

func TestAlternatesFreshAndCached(t *testing.T) {
	t.Parallel()
	// (0.75, 0.25) maps to u=(0.5,-0.5), w=0.5: always accepted.
	src := &countingSource{vals: []float64{0.75, 0.25}}
	s := New(src)

	for i := 0; i < 6; i++ {
		before := src.draws
		_ = s.Next()
		drew := src.draws - before
		if i%2 == 0 && drew != 2 {
			t.Fatalf("call %d drew %d uniforms, want 2", i, drew)
		}
		if i%2 == 1 && drew != 0 {
			t.Fatalf("call %d drew %d uniforms, want 0 (cached)", i, drew)
		}
	}
}

func TestPairValues(t *testing.T) {
	t.Parallel()
	src := &countingSource{vals: []float64{0.75, 0.25}}
	s := New(src)

	w := 0.5
	mult := math.Sqrt(-2 * math.Log(w) / w)
	first, second := s.Next(), s.Next()
	if math.Abs(first-0.5*mult) > 1e-12 {
		t.Fatalf("first = %f, want %f", first, 0.5*mult)
	}
	if math.Abs(second+0.5*mult) > 1e-12 {
		t.Fatalf("second = %f, want %f", second, -0.5*mult)
	}
}

func TestRejectsOutsideUnitDiskAndOrigin(t *testing.T) {
	t.Parallel()
	// Pair 1: (0.5,0.5) -> u=(0,0), w=0 rejected.
	// Pair 2: (1-eps,1-eps) -> w ~ 2 rejected.
	// Pair 3: accepted.
	src := &countingSource{vals: []float64{0.5, 0.5, 0.9999, 0.9999, 0.75, 0.25}}
	s := New(src)

	v := s.Next()
	if src.draws != 6 {
		t.Fatalf("draws = %d, want 6", src.draws)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		t.Fatalf("got non-finite value %v", v)
	}
	if !s.Pending() {
		t.Fatal("expected cached spare after fresh pair")
	}
}

func TestResetDropsSpare(t *testing.T) {
	t.Parallel()
	src := &countingSource{vals: []float64{0.75, 0.25}}
	s := New(src)
	_ = s.Next()
	s.Reset()
	before := src.draws
	_ = s.Next()
	if src.draws-before != 2 {
		t.Fatalf("expected a fresh pair after Reset")
	}
}

func TestSeededIsReproducible(t *testing.T) {
	t.Parallel()
	a, b := NewSeeded(7), NewSeeded(7)
	for i := 0; i < 100; i++ {
		if x, y := a.Next(), b.Next(); x != y {
			t.Fatalf("draw %d differs: %f vs %f", i, x, y)
		}
	}
}

func TestNormConcurrent(t *testing.T) {
	t.Parallel()
	done := make(chan struct{})
	for g := 0; g < 4; g++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 1000; i++ {
				if v := Norm(); math.IsNaN(v) {
					t.Errorf("NaN from Norm")
					return
				}
			}
		}()
	}
	for g := 0; g < 4; g++ {
		<-done
	}
}
