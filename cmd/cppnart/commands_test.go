package main

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRandnCommand(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	a := newCLI(context.Background())
	a.Writer = &out
	if err := a.Run([]string{"cppnart", "randn", "-n", "5000", "--seed", "3"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := out.String()
	if !strings.HasPrefix(got, "n=5000 mean=") || !strings.Contains(got, "variance=") {
		t.Fatalf("output: got %q", got)
	}

	// same seed, same numbers
	var again bytes.Buffer
	a.Writer = &again
	if err := a.Run([]string{"cppnart", "randn", "-n", "5000", "--seed", "3"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if again.String() != got {
		t.Fatalf("seeded output differs: %q vs %q", again.String(), got)
	}
}

func TestRandnCommandRejectsZero(t *testing.T) {
	t.Parallel()

	a := newCLI(context.Background())
	a.Writer = &bytes.Buffer{}
	if err := a.Run([]string{"cppnart", "randn", "-n", "0"}); err == nil {
		t.Fatalf("Run: want error for n=0")
	}
}

func TestRenderCommand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "cppnart.yaml")
	cfgBody := "logging:\n  level: ERROR\nrender:\n  width: 16\n  height: 8\n"
	if err := os.WriteFile(cfgPath, []byte(cfgBody), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	out := filepath.Join(dir, "frame.png")

	a := newCLI(context.Background())
	a.Writer = &bytes.Buffer{}
	err := a.Run([]string{"cppnart", "render", "--config", cfgPath, "--out", out, "--kind", "resnet", "--seed", "9", "--z", "0.3"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	pc, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if pc.Width != 16 || pc.Height != 8 {
		t.Fatalf("size: got %dx%d, want 16x8", pc.Width, pc.Height)
	}
}
