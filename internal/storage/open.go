package storage

import (
	"context"
	"errors"
	"strings"

	logx "cppnart/pkg/logx"
)

// Store is the persistence API used by the app.
type Store interface {
	AppendFrame(ctx context.Context, r FrameRecord) error
	// RecentFrames returns up to n records, oldest first.
	RecentFrames(ctx context.Context, n int) ([]FrameRecord, error)
	Close() error
}

// Open initializes the configured store.
// It returns (nil, nil) if storage is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown storage driver: " + driver)
	}
}
