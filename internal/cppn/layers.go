package cppn

import (
	"math"

	"cppnart/internal/randn"
)

type block interface {
	apply(x []float64) []float64
	params() int
}

// initializer fills a kernel of shape fanIn x fanOut.
type initializer func(fanIn, fanOut int) []float64

// varianceScaling draws N(0, scale/fanIn) (fan-in mode, normal distribution).
func varianceScaling(s *randn.Sampler, scale float64) initializer {
	return func(fanIn, fanOut int) []float64 {
		std := math.Sqrt(scale / float64(max(1, fanIn)))
		return fill(s, fanIn*fanOut, std)
	}
}

// glorotNormal draws N(0, 2/(fanIn+fanOut)).
func glorotNormal(s *randn.Sampler) initializer {
	return func(fanIn, fanOut int) []float64 {
		std := math.Sqrt(2 / float64(max(1, fanIn+fanOut)))
		return fill(s, fanIn*fanOut, std)
	}
}

func fill(s *randn.Sampler, n int, std float64) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = s.Normal(0, std)
	}
	return w
}

type dense struct {
	in, units int
	w         []float64 // row-major: w[i*units+j] connects input i to unit j
	b         []float64 // zero-initialized
	act       func(float64) float64
}

func newDense(in, units int, act func(float64) float64, init initializer) *dense {
	return &dense{
		in:    in,
		units: units,
		w:     init(in, units),
		b:     make([]float64, units),
		act:   act,
	}
}

func (d *dense) apply(x []float64) []float64 {
	out := make([]float64, d.units)
	copy(out, d.b)
	for i, xi := range x {
		row := d.w[i*d.units : (i+1)*d.units]
		for j, wij := range row {
			out[j] += xi * wij
		}
	}
	for j := range out {
		out[j] = d.act(out[j])
	}
	return out
}

func (d *dense) params() int { return len(d.w) + len(d.b) }

// concatBlock appends y(x) to x.
type concatBlock struct{ y *dense }

func (c concatBlock) apply(x []float64) []float64 { return append(x, c.y.apply(x)...) }
func (c concatBlock) params() int                 { return c.y.params() }

// residualBlock computes proj(x) + y(x); proj is nil when widths already match.
type residualBlock struct {
	y    *dense
	proj *dense
}

func (r residualBlock) apply(x []float64) []float64 {
	y := r.y.apply(x)
	skip := x
	if r.proj != nil {
		skip = r.proj.apply(x)
	}
	for i := range y {
		y[i] += skip[i]
	}
	return y
}

func (r residualBlock) params() int {
	n := r.y.params()
	if r.proj != nil {
		n += r.proj.params()
	}
	return n
}

type activationBlock struct{ fn func(float64) float64 }

func (a activationBlock) apply(x []float64) []float64 {
	for i := range x {
		x[i] = a.fn(x[i])
	}
	return x
}

func (activationBlock) params() int { return 0 }

func sigmoid(v float64) float64  { return 1 / (1 + math.Exp(-v)) }
func identity(v float64) float64 { return v }
