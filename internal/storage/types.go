package storage

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures storage.
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
	KeepRecent  int           // file only: records kept in memory for RecentFrames (default 256)
}

// FrameRecord describes one rendered frame.
// Keep it compact and schema-stable.
type FrameRecord struct {
	At      time.Time `json:"at"`
	Index   int       `json:"index"`
	Kind    string    `json:"kind"`
	Seed    uint64    `json:"seed"`
	Scale   float64   `json:"scale"`
	Latent  float64   `json:"latent"`
	Width   int       `json:"width"`
	Height  int       `json:"height"`
	Path    string    `json:"path,omitempty"`
	TookMS  int64     `json:"took_ms"`
	Skipped int       `json:"skipped,omitempty"` // ticks skipped since the previous frame
}
