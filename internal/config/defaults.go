package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

const DefaultDelay = 100 * time.Millisecond

// Default returns a runnable configuration: an 800x600 viewport with a
// 256x256 canvas placed below the fold.
func Default() *Config {
	return &Config{
		Logging:  LoggingConfig{Level: "INFO", Console: true},
		Viewport: ViewportConfig{Width: 800, Height: 600},
		Canvas:   CanvasConfig{X: 272, Y: 900, Width: 256, Height: 256},
		Schedule: ScheduleConfig{Delay: "100ms"},
		Model:    ModelConfig{Kind: "perceptron", Scale: 8},
		Render: RenderConfig{
			Width:     128,
			Height:    128,
			Zoom:      1,
			Amplitude: 1,
			Period:    120,
			OutDir:    "./out",
		},
	}
}

// ApplyDefaults fills zero values in place.
func ApplyDefaults(c *Config) {
	d := Default()
	if c.Viewport.Width <= 0 {
		c.Viewport.Width = d.Viewport.Width
	}
	if c.Viewport.Height <= 0 {
		c.Viewport.Height = d.Viewport.Height
	}
	if c.Canvas.Width <= 0 {
		c.Canvas.Width = d.Canvas.Width
	}
	if c.Canvas.Height <= 0 {
		c.Canvas.Height = d.Canvas.Height
	}
	if strings.TrimSpace(c.Schedule.Delay) == "" {
		c.Schedule.Delay = d.Schedule.Delay
	}
	if strings.TrimSpace(c.Model.Kind) == "" {
		c.Model.Kind = d.Model.Kind
	}
	if c.Model.Scale <= 0 {
		c.Model.Scale = 1
	}
	if c.Render.Width <= 0 {
		c.Render.Width = d.Render.Width
	}
	if c.Render.Height <= 0 {
		c.Render.Height = d.Render.Height
	}
	if c.Render.Zoom <= 0 {
		c.Render.Zoom = d.Render.Zoom
	}
	if c.Render.Period <= 0 {
		c.Render.Period = d.Render.Period
	}
	if strings.TrimSpace(c.Render.OutDir) == "" {
		c.Render.OutDir = d.Render.OutDir
	}
}

// Validate rejects configs that would fail at runtime. Call after ApplyDefaults.
func Validate(c *Config) error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return fmt.Errorf("viewport: width and height must be > 0")
	}
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("canvas: width and height must be > 0")
	}
	d, err := ParseDurationField("schedule.delay", c.Schedule.Delay)
	if err != nil {
		return err
	}
	if d <= 0 {
		return fmt.Errorf("schedule.delay must be > 0")
	}
	switch strings.ToLower(strings.TrimSpace(c.Model.Kind)) {
	case "densenet", "perceptron", "resnet":
	default:
		return fmt.Errorf("model.kind: unknown %q (use densenet, perceptron or resnet)", c.Model.Kind)
	}
	if c.Model.Depth < 0 || c.Model.Width < 0 {
		return fmt.Errorf("model: depth and width must be >= 0")
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return fmt.Errorf("render: width and height must be > 0")
	}
	if c.Render.Workers < 0 {
		return fmt.Errorf("render.workers must be >= 0")
	}
	if c.Snapshot != nil {
		if _, err := ParseSnapshotSchedule(c.Snapshot.Schedule); err != nil {
			return fmt.Errorf("snapshot.schedule: %w", err)
		}
		if tz := strings.TrimSpace(c.Snapshot.Timezone); tz != "" {
			if _, err := time.LoadLocation(tz); err != nil {
				return fmt.Errorf("snapshot.timezone: invalid %q: %w", tz, err)
			}
		}
	}
	if c.Storage != nil {
		if _, err := ParseDurationField("storage.busy_timeout", c.Storage.BusyTimeout); err != nil {
			return err
		}
		switch strings.ToLower(strings.TrimSpace(c.Storage.Driver)) {
		case "", "none", "file", "sqlite", "sqlite3":
		default:
			return fmt.Errorf("storage.driver: unknown %q", c.Storage.Driver)
		}
	}
	return nil
}

var snapshotParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSnapshotSchedule parses a cron spec. Both 5-field and 6-field (with seconds)
// specs are accepted, as are descriptors like "@hourly" and "@every 30s".
func ParseSnapshotSchedule(spec string) (cron.Schedule, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("schedule required")
	}
	return snapshotParser.Parse(spec)
}

// SnapshotParser exposes the parser so cron.New can share it.
func SnapshotParser() cron.Parser { return snapshotParser }
