package app

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"cppnart/internal/config"
	"cppnart/internal/storage"
	logx "cppnart/pkg/logx"
)

// snapshotter copies the most recent frame to <out_dir>/latest.png on a cron schedule.
type snapshotter struct {
	log   logx.Logger
	anim  *animator
	store storage.Store

	mu sync.Mutex
	c  *cron.Cron
}

func newSnapshotter(anim *animator, store storage.Store, log logx.Logger) *snapshotter {
	return &snapshotter{anim: anim, store: store, log: log}
}

// apply (re)starts the cron for cfg. A nil snapshot section stops it.
func (s *snapshotter) apply(ctx context.Context, sc *config.SnapshotConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked(ctx)
	if sc == nil || strings.TrimSpace(sc.Schedule) == "" {
		return nil
	}

	loc := time.Local
	if tz := strings.TrimSpace(sc.Timezone); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return err
		}
		loc = l
	}
	c := cron.New(cron.WithParser(config.SnapshotParser()), cron.WithLocation(loc))
	if _, err := c.AddFunc(sc.Schedule, func() {
		if err := s.take(ctx); err != nil {
			s.log.Warn("snapshot failed", logx.Err(err))
		}
	}); err != nil {
		return err
	}
	c.Start()
	s.c = c
	s.log.Info("snapshot schedule started", logx.String("schedule", sc.Schedule), logx.String("tz", loc.String()))
	return nil
}

func (s *snapshotter) stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked(ctx)
}

func (s *snapshotter) stopLocked(ctx context.Context) {
	if s.c == nil {
		return
	}
	select {
	case <-s.c.Stop().Done():
	case <-ctx.Done():
	}
	s.c = nil
}

// take writes latest.png and logs a summary of recent frames.
func (s *snapshotter) take(ctx context.Context) error {
	b, idx := s.anim.Latest()
	if idx < 0 {
		s.log.Debug("snapshot skipped; no frame yet")
		return nil
	}
	path := filepath.Join(s.anim.outDir(), "latest.png")
	if err := writeFileAtomic(path, b); err != nil {
		return err
	}

	fields := []logx.Field{logx.String("path", path), logx.Int("frame", idx)}
	if s.store != nil {
		recent, err := s.store.RecentFrames(ctx, 32)
		if err != nil {
			s.log.Warn("recent frames unavailable", logx.Err(err))
		} else if len(recent) > 0 {
			sum := summarize(recent)
			fields = append(fields,
				logx.Int("recent", len(recent)),
				logx.Float64("avg_ms", sum.avgMS),
				logx.Int("skipped", sum.skipped),
			)
		}
	}
	s.log.Info("snapshot written", fields...)
	return nil
}

type frameSummary struct {
	avgMS   float64
	skipped int
}

func summarize(recs []storage.FrameRecord) frameSummary {
	var s frameSummary
	if len(recs) == 0 {
		return s
	}
	var total int64
	for _, r := range recs {
		total += r.TookMS
		s.skipped += r.Skipped
	}
	s.avgMS = float64(total) / float64(len(recs))
	return s
}
