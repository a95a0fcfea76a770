package cppn

import (
	"errors"
	"math"
	"testing"
)

func TestParseKind(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw     string
		want    Kind
		wantErr bool
	}{
		{raw: "densenet", want: DenseNet},
		{raw: " ResNet ", want: ResNet},
		{raw: "", want: Perceptron},
		{raw: "transformer", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseKind(%q) err = %v", tt.raw, err)
		}
		if got != tt.want {
			t.Fatalf("ParseKind(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestTopologyParams(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		cfg  Config
		want int
	}{
		// densenet: widths 4,12,...,60 feed dense(8); output dense(68 -> 3).
		{name: "densenet", cfg: Config{Kind: DenseNet, Seed: 1}, want: densenetParams()},
		// perceptron: 4->32 then 7 x 32->32; output 32->3.
		{name: "perceptron", cfg: Config{Kind: Perceptron, Seed: 1}, want: (4*32 + 32) + 7*(32*32+32) + (32*3 + 3)},
		// resnet: first block also projects 4->32.
		{name: "resnet", cfg: Config{Kind: ResNet, Seed: 1}, want: 2*(4*32+32) + 7*(32*32+32) + (32*3 + 3)},
		{name: "bw", cfg: Config{Kind: Perceptron, BW: true, Depth: 1, Width: 2, Seed: 1}, want: (4*2 + 2) + (2*1 + 1)},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, err := New(tt.cfg)
			if err != nil {
				t.Fatalf("New error: %v", err)
			}
			if got := m.Params(); got != tt.want {
				t.Fatalf("Params() = %d, want %d", got, tt.want)
			}
		})
	}
}

func densenetParams() int {
	n, width := 0, 4
	for i := 0; i < 8; i++ {
		n += width*8 + 8
		width += 8
	}
	return n + width*3 + 3
}

func TestPredictRangeAndDeterminism(t *testing.T) {
	t.Parallel()
	for _, k := range []Kind{DenseNet, Perceptron, ResNet} {
		a, err := New(Config{Kind: k, Scale: 8, Seed: 99})
		if err != nil {
			t.Fatalf("%s: New error: %v", k, err)
		}
		b, _ := New(Config{Kind: k, Scale: 8, Seed: 99})

		in := []float64{0.3, -0.7, 0.1, math.Hypot(0.3, -0.7)}
		outA, err := a.Predict(in)
		if err != nil {
			t.Fatalf("%s: Predict error: %v", k, err)
		}
		outB, _ := b.Predict(in)
		if len(outA) != 3 {
			t.Fatalf("%s: output len = %d, want 3", k, len(outA))
		}
		for i := range outA {
			if outA[i] != outB[i] {
				t.Fatalf("%s: same seed gave different outputs %v vs %v", k, outA, outB)
			}
			if outA[i] < -1 || outA[i] > 1 || math.IsNaN(outA[i]) {
				t.Fatalf("%s: output %v outside tanh range", k, outA)
			}
		}
		if in[0] != 0.3 {
			t.Fatalf("%s: Predict mutated its input", k)
		}
	}
}

func TestPredictInputWidth(t *testing.T) {
	t.Parallel()
	m, err := New(Config{Seed: 3})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if _, err := m.Predict([]float64{1, 2}); !errors.Is(err, ErrInputWidth) {
		t.Fatalf("err = %v, want ErrInputWidth", err)
	}
}

func TestUnknownKind(t *testing.T) {
	t.Parallel()
	if _, err := New(Config{Kind: "lstm"}); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
