package config

// Config is the on-disk configuration (JSON or YAML).
//
// All durations are Go duration strings (e.g. "100ms", "2s").
type Config struct {
	Logging  LoggingConfig  `json:"logging"`
	Viewport ViewportConfig `json:"viewport"`
	Canvas   CanvasConfig   `json:"canvas"`
	Schedule ScheduleConfig `json:"schedule"`
	Model    ModelConfig    `json:"model"`
	Render   RenderConfig   `json:"render"`

	Snapshot *SnapshotConfig `json:"snapshot,omitempty"`
	Storage  *StorageConfig  `json:"storage,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
	// RatePerSec caps trace/debug/info lines per second. 0 disables the cap.
	RatePerSec int `json:"rate_per_sec,omitempty"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// ViewportConfig is the initial size of the simulated viewport.
type ViewportConfig struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CanvasConfig places the canvas element in document coordinates.
// The canvas starts below the fold unless y < viewport.height.
type CanvasConfig struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ScheduleConfig controls the visibility-gated frame timer.
type ScheduleConfig struct {
	// Delay between frames while the canvas is on screen (default "100ms").
	Delay string `json:"delay"`
}

// ModelConfig selects and seeds the network.
//
// Defaults (when fields are omitted/zero):
//   - kind: "perceptron"
//   - scale: 1
//   - seed: 0 (random per run)
//   - depth: 8
//   - width: 8 for densenet, 32 otherwise
type ModelConfig struct {
	Kind  string  `json:"kind"`
	Scale float64 `json:"scale"`
	BW    bool    `json:"bw,omitempty"`
	Seed  uint64  `json:"seed,omitempty"`
	Depth int     `json:"depth,omitempty"`
	Width int     `json:"width,omitempty"`
}

// RenderConfig controls frame output.
type RenderConfig struct {
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Zoom    float64 `json:"zoom,omitempty"`
	Workers int     `json:"workers,omitempty"`

	// Latent animation: z = amplitude * sin(2*pi*frame/period).
	Amplitude float64 `json:"amplitude,omitempty"`
	Period    int     `json:"period,omitempty"`

	// OutDir receives frame-NNNNNN.png files when WriteFrames is set,
	// and latest.png from the snapshot job.
	OutDir      string `json:"out_dir,omitempty"`
	WriteFrames bool   `json:"write_frames,omitempty"`
}

// SnapshotConfig enables a cron-driven copy of the latest frame to <out_dir>/latest.png.
//
// Example:
//
//	"snapshot": { "schedule": "@every 1m" }
type SnapshotConfig struct {
	Schedule string `json:"schedule"`
	Timezone string `json:"timezone,omitempty"`
}

// StorageConfig controls the optional frame log.
//
// Example:
//
//	"storage": { "driver": "file", "path": "./out/frames.jsonl" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}
