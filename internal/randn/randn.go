// Package randn draws standard-normal values with the polar Box-Muller method.
package randn

import (
	"math"
	"math/rand/v2"
	"sync"
)

// Source supplies uniform values in [0, 1).
type Source interface {
	Float64() float64
}

// Sampler produces N(0, 1) values. Each accepted pair yields two values; the
// second is kept in a one-slot cache and returned by the next call.
//
// A Sampler is not safe for concurrent use. Use Default for a shared one.
type Sampler struct {
	src Source

	hasSpare bool
	spare    float64
}

// New returns a sampler over src. A nil src uses the process-wide math/rand/v2 generator.
func New(src Source) *Sampler {
	if src == nil {
		src = globalSource{}
	}
	return &Sampler{src: src}
}

// NewSeeded returns a reproducible sampler backed by a PCG generator.
func NewSeeded(seed uint64) *Sampler {
	return New(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// Next returns the next standard-normal value.
func (s *Sampler) Next() float64 {
	if s.hasSpare {
		s.hasSpare = false
		return s.spare
	}

	var u1, u2, w float64
	for {
		u1 = -1 + s.src.Float64()*2
		u2 = -1 + s.src.Float64()*2
		w = u1*u1 + u2*u2
		// Accepts with probability pi/4 per round.
		if w < 1 && w != 0 {
			break
		}
	}

	mult := math.Sqrt(-2 * math.Log(w) / w)
	s.spare = u2 * mult
	s.hasSpare = true
	return u1 * mult
}

// Normal returns mean + stddev*Next().
func (s *Sampler) Normal(mean, stddev float64) float64 {
	return mean + stddev*s.Next()
}

// Pending reports whether the next call will be served from the cache.
func (s *Sampler) Pending() bool { return s.hasSpare }

// Reset drops any cached value.
func (s *Sampler) Reset() {
	s.hasSpare = false
	s.spare = 0
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

var (
	defaultMu      sync.Mutex
	defaultSampler = New(nil)
)

// Norm draws from the shared process-wide sampler.
func Norm() float64 {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultSampler.Next()
}

// Default returns a locked view of the shared sampler for callers that need
// several draws in a row without interleaving.
func Default(fn func(s *Sampler)) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	fn(defaultSampler)
}

// Stats summarizes n draws from s.
type Stats struct {
	N        int
	Mean     float64
	Variance float64
	Min, Max float64
}

// Sample draws n values from s and returns their mean and (population) variance.
func Sample(s *Sampler, n int) Stats {
	if n <= 0 {
		return Stats{}
	}
	st := Stats{N: n, Min: math.Inf(1), Max: math.Inf(-1)}
	// Welford's running mean/variance.
	var m2 float64
	for i := 1; i <= n; i++ {
		v := s.Next()
		d := v - st.Mean
		st.Mean += d / float64(i)
		m2 += d * (v - st.Mean)
		st.Min = math.Min(st.Min, v)
		st.Max = math.Max(st.Max, v)
	}
	st.Variance = m2 / float64(n)
	return st
}
