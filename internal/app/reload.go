package app

import (
	"context"
	"strings"

	"cppnart/internal/config"
	"cppnart/internal/eventbus"
	logx "cppnart/pkg/logx"
)

// startReload applies committed config reloads until the app stops.
func (a *App) startReload() {
	sub, unsub := a.cfgm.Subscribe(8)
	a.sup.Go0("config.reload", func(c context.Context) {
		defer unsub()
		for {
			select {
			case <-c.Done():
				return
			case next, ok := <-sub:
				if !ok {
					return
				}
				// Coalesce bursts: only the newest pending config matters.
				for drained := false; !drained; {
					select {
					case newer, ok := <-sub:
						if !ok {
							return
						}
						next = newer
					default:
						drained = true
					}
				}
				a.applyConfig(c, next)
			}
		}
	})
}

// applyConfig moves the running app to next. Sections that cannot change
// live (storage) are logged and ignored.
func (a *App) applyConfig(ctx context.Context, next *config.Config) []string {
	prev := a.cfg
	sections, attrs := config.SummarizeChange(prev, next)
	if len(sections) == 0 {
		a.log.Debug("config reload received, but no effective changes detected")
		return nil
	}
	has := func(s string) bool { return config.Has(sections, s) }

	if has(config.SectionLogging) {
		a.logs.Apply(mapLogging(next))
	}

	if has(config.SectionModel) || has(config.SectionRender) {
		keep := uint64(0)
		if !has(config.SectionModel) {
			keep = a.anim.source().model.Seed
		}
		src, err := newFrameSource(next, keep)
		if err != nil {
			a.log.Warn("invalid model/render config; keeping previous", logx.Err(err))
		} else {
			// a new network restarts the animation; render tweaks continue it
			a.anim.swap(src, !has(config.SectionModel))
			a.log.Info("network rebuilt",
				logx.String("kind", string(src.model.Kind)),
				logx.Uint64("seed", src.model.Seed),
			)
		}
	}

	if has(config.SectionViewport) || has(config.SectionCanvas) || has(config.SectionSchedule) {
		err := a.loop.Call(ctx, func() {
			if has(config.SectionCanvas) {
				a.page.Place(canvasName, next.Canvas.X, next.Canvas.Y, next.Canvas.Width, next.Canvas.Height)
				if !has(config.SectionViewport) {
					// layout changed; let listeners re-check visibility
					a.page.ScrollBy(0, 0)
				}
			}
			if has(config.SectionViewport) {
				a.page.Resize(next.Viewport.Width, next.Viewport.Height)
			}
			if has(config.SectionSchedule) {
				a.startSchedule(next.Delay())
			}
		})
		if err != nil {
			a.log.Warn("viewport/schedule update not applied", logx.Err(err))
		}
	}

	if has(config.SectionSnapshot) {
		if err := a.snap.apply(ctx, next.Snapshot); err != nil {
			a.log.Warn("snapshot schedule not applied", logx.Err(err))
		}
	}
	if has(config.SectionStorage) {
		a.log.Warn("storage config changed; restart required for changes to take effect")
	}

	a.cfg = next
	a.bus.Publish(eventbus.Event{Type: eventbus.TypeConfigApplied, Data: sections})
	fields := append([]logx.Field{logx.String("changed", strings.Join(sections, ","))}, attrs...)
	a.log.Info("config reloaded", fields...)
	return sections
}
