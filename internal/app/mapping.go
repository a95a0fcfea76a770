package app

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"cppnart/internal/config"
	"cppnart/internal/cppn"
	"cppnart/internal/render"
	"cppnart/internal/storage"
	logx "cppnart/pkg/logx"
)

func mapLogging(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
		RatePerSec: cfg.Logging.RatePerSec,
	}
}

func mapStorageConfig(cfg *config.Config) (storage.Config, bool, error) {
	if cfg == nil || cfg.Storage == nil {
		return storage.Config{}, false, nil
	}
	sc := cfg.Storage
	driver := strings.ToLower(strings.TrimSpace(sc.Driver))
	if driver == "" || driver == "none" {
		return storage.Config{}, false, nil
	}
	path := strings.TrimSpace(sc.Path)

	switch driver {
	case "file":
		return storage.Config{Driver: "file", Path: path}, true, nil
	case "sqlite", "sqlite3":
		if path == "" {
			return storage.Config{}, false, fmt.Errorf("storage.path is required when storage.driver=sqlite")
		}
		busy, err := config.ParseDurationOrDefault("storage.busy_timeout", sc.BusyTimeout, time.Second)
		if err != nil {
			return storage.Config{}, false, err
		}
		return storage.Config{Driver: driver, Path: path, BusyTimeout: busy}, true, nil
	default:
		return storage.Config{}, false, fmt.Errorf("unknown storage.driver: %s", sc.Driver)
	}
}

// mapModelConfig resolves the network config. A zero seed falls back to
// keepSeed, then to a random one, so every frame record names a reproducible
// network.
func mapModelConfig(cfg *config.Config, keepSeed uint64) (cppn.Config, error) {
	kind, err := cppn.ParseKind(cfg.Model.Kind)
	if err != nil {
		return cppn.Config{}, fmt.Errorf("model.kind: %w", err)
	}
	seed := cfg.Model.Seed
	if seed == 0 {
		seed = keepSeed
	}
	for seed == 0 {
		seed = rand.Uint64()
	}
	return cppn.Config{
		Kind:  kind,
		Scale: cfg.Model.Scale,
		BW:    cfg.Model.BW,
		Depth: cfg.Model.Depth,
		Width: cfg.Model.Width,
		Seed:  seed,
	}, nil
}

func mapRenderOptions(cfg *config.Config) render.Options {
	return render.Options{
		Width:   cfg.Render.Width,
		Height:  cfg.Render.Height,
		Scale:   cfg.Render.Zoom,
		Workers: cfg.Render.Workers,
	}
}

// frameSource is everything a frame depends on. It is swapped as a whole on reload.
type frameSource struct {
	r           *render.Renderer
	model       cppn.Config
	osc         render.Oscillator
	outDir      string
	writeFrames bool
}

func newFrameSource(cfg *config.Config, keepSeed uint64) (frameSource, error) {
	mc, err := mapModelConfig(cfg, keepSeed)
	if err != nil {
		return frameSource{}, err
	}
	m, err := cppn.New(mc)
	if err != nil {
		return frameSource{}, fmt.Errorf("model: %w", err)
	}
	r, err := render.New(m, mapRenderOptions(cfg))
	if err != nil {
		return frameSource{}, err
	}
	return frameSource{
		r:           r,
		model:       m.Config(),
		osc:         render.Oscillator{Amplitude: cfg.Render.Amplitude, Period: cfg.Render.Period},
		outDir:      cfg.Render.OutDir,
		writeFrames: cfg.Render.WriteFrames,
	}, nil
}
