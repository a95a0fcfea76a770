// Package cppn builds small randomly initialized networks that map a pixel's
// coordinates to a color (compositional pattern-producing networks).
//
// Three topologies are supported: a densely connected stack that concatenates
// every layer's output onto its input, a plain perceptron stack, and a
// residual stack. Weights are drawn once at construction; there is no training.
package cppn

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"cppnart/internal/randn"
)

var ErrInputWidth = errors.New("cppn: input width mismatch")

// Kind selects the hidden-layer topology.
type Kind string

const (
	DenseNet   Kind = "densenet"
	Perceptron Kind = "perceptron"
	ResNet     Kind = "resnet"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case DenseNet, Perceptron, ResNet:
		return k, nil
	case "":
		return Perceptron, nil
	default:
		return "", fmt.Errorf("unknown network kind %q (use densenet, perceptron or resnet)", s)
	}
}

// Config describes a network. Zero fields take the defaults noted below.
type Config struct {
	Kind  Kind
	Scale float64 // variance scale for hidden kernels (default 1)
	BW    bool    // one output channel instead of three

	Inputs int // default 4: x, y, z, r
	Depth  int // default 8
	Width  int // default 8 for densenet, 32 otherwise

	Seed uint64 // 0 uses the shared random source
}

func (c Config) withDefaults() Config {
	if c.Kind == "" {
		c.Kind = Perceptron
	}
	if c.Scale <= 0 {
		c.Scale = 1
	}
	if c.Inputs <= 0 {
		c.Inputs = 4
	}
	if c.Depth <= 0 {
		c.Depth = 8
	}
	if c.Width <= 0 {
		if c.Kind == DenseNet {
			c.Width = 8
		} else {
			c.Width = 32
		}
	}
	return c
}

// Model is an immutable feed-forward graph. Predict is safe for concurrent use.
type Model struct {
	cfg    Config
	blocks []block
	out    *dense
}

// New draws a network for cfg.
func New(cfg Config) (*Model, error) {
	cfg = cfg.withDefaults()
	if _, err := ParseKind(string(cfg.Kind)); err != nil {
		return nil, err
	}

	var s *randn.Sampler
	if cfg.Seed != 0 {
		s = randn.NewSeeded(cfg.Seed)
	} else {
		s = randn.New(nil)
	}
	hidden := varianceScaling(s, cfg.Scale)

	m := &Model{cfg: cfg}
	width := cfg.Inputs
	for i := 0; i < cfg.Depth; i++ {
		var b block
		switch cfg.Kind {
		case DenseNet:
			y := newDense(width, cfg.Width, sigmoid, hidden)
			b = concatBlock{y: y}
			width += cfg.Width
		case Perceptron:
			b = newDense(width, cfg.Width, math.Tanh, hidden)
			width = cfg.Width
		case ResNet:
			rb := residualBlock{y: newDense(width, cfg.Width, math.Tanh, hidden)}
			if width != cfg.Width {
				rb.proj = newDense(width, cfg.Width, identity, hidden)
			}
			b = rb
			width = cfg.Width
		}
		m.blocks = append(m.blocks, b)
	}
	if cfg.Kind == ResNet {
		m.blocks = append(m.blocks, activationBlock{fn: math.Tanh})
	}

	units := 3
	if cfg.BW {
		units = 1
	}
	m.out = newDense(width, units, math.Tanh, glorotNormal(s))
	return m, nil
}

func (m *Model) Config() Config { return m.cfg }

// InputUnits is the expected length of Predict's input.
func (m *Model) InputUnits() int { return m.cfg.Inputs }

// OutputUnits is 1 for grayscale models and 3 otherwise.
func (m *Model) OutputUnits() int { return m.out.units }

// Params counts weights and biases.
func (m *Model) Params() int {
	n := m.out.params()
	for _, b := range m.blocks {
		n += b.params()
	}
	return n
}

// Predict runs one input vector through the network.
func (m *Model) Predict(in []float64) ([]float64, error) {
	if len(in) != m.cfg.Inputs {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInputWidth, len(in), m.cfg.Inputs)
	}
	x := append([]float64(nil), in...)
	for _, b := range m.blocks {
		x = b.apply(x)
	}
	return m.out.apply(x), nil
}
