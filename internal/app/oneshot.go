package app

import (
	"context"
	"io"

	"cppnart/internal/config"
	"cppnart/internal/cppn"
	"cppnart/internal/render"
)

// RenderPNG draws a single frame at latent z and writes it to w as PNG.
// It returns the resolved network config (including the seed used).
func RenderPNG(ctx context.Context, cfg *config.Config, z float64, w io.Writer) (cppn.Config, error) {
	config.ApplyDefaults(cfg)
	if err := config.Validate(cfg); err != nil {
		return cppn.Config{}, err
	}
	src, err := newFrameSource(cfg, 0)
	if err != nil {
		return cppn.Config{}, err
	}
	img, err := src.r.Frame(ctx, z)
	if err != nil {
		return cppn.Config{}, err
	}
	return src.model, render.EncodePNG(w, img)
}
