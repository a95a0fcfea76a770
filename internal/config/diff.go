package config

import (
	"reflect"
	"sort"

	logx "cppnart/pkg/logx"
)

// Section names reported by SummarizeChange.
const (
	SectionLogging  = "logging"
	SectionViewport = "viewport"
	SectionCanvas   = "canvas"
	SectionSchedule = "schedule"
	SectionModel    = "model"
	SectionRender   = "render"
	SectionSnapshot = "snapshot"
	SectionStorage  = "storage"
)

// SummarizeChange returns the sorted list of changed sections and compact
// structured attrs describing the new values.
func SummarizeChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 4)
	attrs := make([]logx.Field, 0, 12)

	if !reflect.DeepEqual(oldCfg.Logging, newCfg.Logging) {
		changed = append(changed, SectionLogging)
		attrs = append(attrs,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.file_enabled", newCfg.Logging.File.Enabled),
			logx.Int("logging.rate_per_sec", newCfg.Logging.RatePerSec),
		)
	}
	if oldCfg.Viewport != newCfg.Viewport {
		changed = append(changed, SectionViewport)
		attrs = append(attrs,
			logx.Float64("viewport.width", newCfg.Viewport.Width),
			logx.Float64("viewport.height", newCfg.Viewport.Height),
		)
	}
	if oldCfg.Canvas != newCfg.Canvas {
		changed = append(changed, SectionCanvas)
		attrs = append(attrs,
			logx.Float64("canvas.x", newCfg.Canvas.X),
			logx.Float64("canvas.y", newCfg.Canvas.Y),
		)
	}
	if oldCfg.Schedule != newCfg.Schedule {
		changed = append(changed, SectionSchedule)
		attrs = append(attrs, logx.String("schedule.delay", newCfg.Schedule.Delay))
	}
	if oldCfg.Model != newCfg.Model {
		changed = append(changed, SectionModel)
		attrs = append(attrs,
			logx.String("model.kind", newCfg.Model.Kind),
			logx.Float64("model.scale", newCfg.Model.Scale),
			logx.Uint64("model.seed", newCfg.Model.Seed),
		)
	}
	if oldCfg.Render != newCfg.Render {
		changed = append(changed, SectionRender)
		attrs = append(attrs,
			logx.Int("render.width", newCfg.Render.Width),
			logx.Int("render.height", newCfg.Render.Height),
			logx.Bool("render.write_frames", newCfg.Render.WriteFrames),
		)
	}
	if !reflect.DeepEqual(oldCfg.Snapshot, newCfg.Snapshot) {
		changed = append(changed, SectionSnapshot)
		spec := ""
		if newCfg.Snapshot != nil {
			spec = newCfg.Snapshot.Schedule
		}
		attrs = append(attrs, logx.String("snapshot.schedule", spec))
	}
	if !reflect.DeepEqual(oldCfg.Storage, newCfg.Storage) {
		changed = append(changed, SectionStorage)
		driver := ""
		if newCfg.Storage != nil {
			driver = newCfg.Storage.Driver
		}
		attrs = append(attrs, logx.String("storage.driver", driver))
	}

	sort.Strings(changed)
	return changed, attrs
}

// Has reports whether sections contains name.
func Has(sections []string, name string) bool {
	for _, s := range sections {
		if s == name {
			return true
		}
	}
	return false
}
