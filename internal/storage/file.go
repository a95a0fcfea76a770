package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	logx "cppnart/pkg/logx"
)

// fileStore appends frame records to <path> as JSON Lines.
// The last KeepRecent records are mirrored in memory for RecentFrames.
type fileStore struct {
	log logx.Logger

	mu     sync.Mutex
	f      *os.File
	recent []FrameRecord
	keep   int
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for file driver")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	keep := cfg.KeepRecent
	if keep <= 0 {
		keep = 256
	}

	s := &fileStore{log: log, keep: keep}
	if err := s.replay(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("frame log replay failed", logx.String("path", path), logx.Err(err))
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	s.f = f
	return s, nil
}

func (s *fileStore) replay(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var r FrameRecord
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			// Torn tail from a crash; skip.
			continue
		}
		s.remember(r)
	}
	return sc.Err()
}

func (s *fileStore) remember(r FrameRecord) {
	s.recent = append(s.recent, r)
	if over := len(s.recent) - s.keep; over > 0 {
		s.recent = append(s.recent[:0], s.recent[over:]...)
	}
}

func (s *fileStore) AppendFrame(ctx context.Context, r FrameRecord) error {
	_ = ctx
	if r.At.IsZero() {
		r.At = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return errors.New("frame log closed")
	}
	if err := json.NewEncoder(s.f).Encode(r); err != nil {
		return err
	}
	s.remember(r)
	return nil
}

func (s *fileStore) RecentFrames(ctx context.Context, n int) ([]FrameRecord, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 || n > len(s.recent) {
		n = len(s.recent)
	}
	out := make([]FrameRecord, n)
	copy(out, s.recent[len(s.recent)-n:])
	return out, nil
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}
