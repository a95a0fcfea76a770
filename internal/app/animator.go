package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"cppnart/internal/eventbus"
	"cppnart/internal/render"
	"cppnart/internal/storage"
	logx "cppnart/pkg/logx"
)

// animator is the gated callback. tick runs on the host loop; the render
// itself runs on its own goroutine, at most one at a time. Ticks that arrive
// while a frame is still rendering are counted and dropped.
type animator struct {
	ctx   context.Context
	log   logx.Logger
	bus   eventbus.Bus
	store storage.Store

	mu  sync.Mutex
	src frameSource

	busy         atomic.Bool
	pendingSkips atomic.Int64
	frames       atomic.Uint64
	skipped      atomic.Uint64
	wg           sync.WaitGroup

	latestMu  sync.RWMutex
	latest    []byte
	latestIdx int
}

func newAnimator(ctx context.Context, src frameSource, log logx.Logger, bus eventbus.Bus, store storage.Store) *animator {
	return &animator{ctx: ctx, src: src, log: log, bus: bus, store: store, latestIdx: -1}
}

func (a *animator) tick() {
	if !a.busy.CompareAndSwap(false, true) {
		a.pendingSkips.Add(1)
		n := a.skipped.Add(1)
		a.bus.Publish(eventbus.Event{Type: eventbus.TypeFrameSkipped, Data: n})
		return
	}

	a.mu.Lock()
	idx := a.src.osc.Frame()
	z := a.src.osc.Step()
	src := a.src
	a.mu.Unlock()
	skips := int(a.pendingSkips.Swap(0))

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer a.busy.Store(false)
		if err := a.renderFrame(src, idx, z, skips); err != nil && a.ctx.Err() == nil {
			a.log.Warn("frame failed", logx.Int("frame", idx), logx.Err(err))
		}
	}()
}

func (a *animator) renderFrame(src frameSource, idx int, z float64, skips int) error {
	start := time.Now()
	img, err := src.r.Frame(a.ctx, z)
	if err != nil {
		return fmt.Errorf("render frame %d: %w", idx, err)
	}
	var buf bytes.Buffer
	if err := render.EncodePNG(&buf, img); err != nil {
		return fmt.Errorf("encode frame %d: %w", idx, err)
	}
	a.latestMu.Lock()
	a.latest, a.latestIdx = buf.Bytes(), idx
	a.latestMu.Unlock()

	opts := src.r.Options()
	rec := storage.FrameRecord{
		At:      start,
		Index:   idx,
		Kind:    string(src.model.Kind),
		Seed:    src.model.Seed,
		Scale:   src.model.Scale,
		Latent:  z,
		Width:   opts.Width,
		Height:  opts.Height,
		Skipped: skips,
	}
	if src.writeFrames {
		p := filepath.Join(src.outDir, fmt.Sprintf("frame-%06d.png", idx))
		if err := writeFileAtomic(p, buf.Bytes()); err != nil {
			return err
		}
		rec.Path = p
	}
	rec.TookMS = time.Since(start).Milliseconds()
	a.frames.Add(1)

	if a.store != nil {
		if err := a.store.AppendFrame(a.ctx, rec); err != nil {
			a.log.Warn("frame record not stored", logx.Int("frame", idx), logx.Err(err))
		}
	}
	a.bus.Publish(eventbus.Event{Type: eventbus.TypeFrameRendered, Data: rec})
	a.log.Debug("frame rendered",
		logx.Int("frame", idx),
		logx.Float64("z", z),
		logx.Int64("took_ms", rec.TookMS),
		logx.Int("skipped", skips),
	)
	return nil
}

// swap installs a new frame source. keepFrame continues the latent animation
// from the current frame instead of restarting it.
func (a *animator) swap(src frameSource, keepFrame bool) {
	a.mu.Lock()
	if keepFrame {
		src.osc.Seek(a.src.osc.Frame())
	}
	a.src = src
	a.mu.Unlock()
}

func (a *animator) outDir() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.src.outDir
}

func (a *animator) source() frameSource {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.src
}

// Latest returns the last encoded frame and its index (-1 before the first frame).
func (a *animator) Latest() ([]byte, int) {
	a.latestMu.RLock()
	defer a.latestMu.RUnlock()
	return a.latest, a.latestIdx
}

// wait blocks until the in-flight render (if any) is done or ctx expires.
func (a *animator) wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// writeFileAtomic writes via a temp file and rename so readers never see a partial PNG.
func writeFileAtomic(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
