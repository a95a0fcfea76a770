// Package app wires the viewport host, the visibility-gated schedule and the
// frame renderer into one process.
package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"cppnart/internal/config"
	"cppnart/internal/eventbus"
	"cppnart/internal/host"
	"cppnart/internal/onscreen"
	"cppnart/internal/runtime/supervisor"
	"cppnart/internal/storage"
	logx "cppnart/pkg/logx"
)

const canvasName = "canvas"

type App struct {
	cfgm *config.Manager // nil when built from an in-memory config
	cfg  *config.Config

	sup   *supervisor.Supervisor
	log   logx.Logger
	logs  *logx.Service
	bus   eventbus.Bus
	store storage.Store

	loop   *host.Loop
	page   *host.Page
	canvas *host.Box
	anim   *animator
	snap   *snapshotter

	in  io.Reader
	out io.Writer

	// Owned by the loop goroutine.
	cancelSchedule onscreen.CancelFunc
	running        bool
}

type Option func(*App)

// WithInput makes the app read viewport commands from r (see host.ParseCommand).
// The app stops when r reaches EOF or a quit command is read.
func WithInput(r io.Reader) Option { return func(a *App) { a.in = r } }

// WithOutput sets where status lines are printed (default stdout).
func WithOutput(w io.Writer) Option { return func(a *App) { a.out = w } }

// NewApp loads cfgPath and builds the app. The file is watched for changes once started.
func NewApp(cfgPath string, opts ...Option) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}
	a, err := build(cfg, opts...)
	if err != nil {
		return nil, err
	}
	a.cfgm = cfgm
	return a, nil
}

// NewFromConfig builds the app from an in-memory config; hot reload is disabled.
func NewFromConfig(cfg *config.Config, opts ...Option) (*App, error) {
	config.ApplyDefaults(cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return build(cfg, opts...)
}

func build(cfg *config.Config, opts ...Option) (*App, error) {
	logSvc, log := logx.New(mapLogging(cfg))
	bus := eventbus.New()

	var store storage.Store
	if sc, enabled, err := mapStorageConfig(cfg); err != nil {
		return nil, err
	} else if enabled {
		st, err := storage.Open(sc, log.With(logx.String("comp", "storage")))
		if err != nil {
			return nil, err
		}
		store = st
		log.Info("storage enabled", logx.String("driver", sc.Driver), logx.String("path", sc.Path))
	}

	src, err := newFrameSource(cfg, 0)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, err
	}

	loop := host.New(host.WithLogger(log.With(logx.String("comp", "loop"))))
	page := host.NewPage(loop, cfg.Viewport.Width, cfg.Viewport.Height,
		host.WithBus(bus), host.WithPageLogger(log.With(logx.String("comp", "page"))))
	canvas := page.Place(canvasName, cfg.Canvas.X, cfg.Canvas.Y, cfg.Canvas.Width, cfg.Canvas.Height)

	a := &App{
		cfg:    cfg,
		log:    log.With(logx.String("comp", "app")),
		logs:   logSvc,
		bus:    bus,
		store:  store,
		loop:   loop,
		page:   page,
		canvas: canvas,
		out:    logx.Stdout(),
	}
	for _, o := range opts {
		o(a)
	}
	// The animator's context is replaced in Start.
	a.anim = newAnimator(context.Background(), src, log.With(logx.String("comp", "render")), bus, store)
	a.snap = newSnapshotter(a.anim, store, log.With(logx.String("comp", "snapshot")))

	a.log.Info("network ready",
		logx.String("kind", string(src.model.Kind)),
		logx.Uint64("seed", src.model.Seed),
		logx.Int("depth", src.model.Depth),
		logx.Int("width", src.model.Width),
		logx.Int("frame_w", cfg.Render.Width),
		logx.Int("frame_h", cfg.Render.Height),
	)
	return a, nil
}

func (a *App) Bus() eventbus.Bus { return a.bus }

func (a *App) Page() *host.Page { return a.page }

// Done is closed when the app context is canceled (fatal error, quit or Stop).
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error observed by the supervisor.
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

func (a *App) Start(ctx context.Context) error {
	a.sup = supervisor.New(ctx, supervisor.WithLogger(a.log), supervisor.WithCancelOnError(true))
	a.anim.ctx = a.sup.Context()

	a.sup.Go("host.loop", a.loop.Run)

	delay := a.cfg.Delay()
	if err := a.loop.Call(ctx, func() { a.startSchedule(delay) }); err != nil {
		return err
	}
	if err := a.snap.apply(a.sup.Context(), a.cfg.Snapshot); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	events, unsub := a.bus.Subscribe(128)
	a.sup.Go0("eventbus.log", func(c context.Context) {
		defer unsub()
		for {
			select {
			case <-c.Done():
				return
			case e, ok := <-events:
				if !ok {
					return
				}
				// frames and scrolls are frequent; keep them at trace level
				a.log.Trace("event", logx.String("type", e.Type), logx.Time("time", e.Time))
			}
		}
	})

	if a.cfgm != nil {
		a.cfgm.SetLogger(a.log.With(logx.String("comp", "config")))
		a.cfgm.SetValidator(func(c context.Context, cfg *config.Config) error {
			if _, _, err := mapStorageConfig(cfg); err != nil {
				return err
			}
			// trial build; a fixed seed skips drawing a random one
			_, err := newFrameSource(cfg, 1)
			return err
		})
		a.sup.GoRestart("config.watch", a.cfgm.Watch)
		a.startReload()
	}

	if a.in != nil {
		// Not supervised: a blocked read on stdin cannot be interrupted, so
		// waiting on it would stall shutdown.
		go func() {
			err := host.Drive(a.sup.Context(), a.in, a.page, a.command, func(err error) {
				a.log.Warn("bad command", logx.Err(err))
			})
			if err != nil {
				a.log.Warn("input stopped", logx.Err(err))
			}
			a.sup.Cancel()
		}()
	}

	a.log.Info("app started",
		logx.Duration("delay", delay),
		logx.Bool("visible", a.visibleNow()),
	)
	return nil
}

// startSchedule (re)starts the gated schedule. Must run on the loop.
func (a *App) startSchedule(delay time.Duration) {
	if a.cancelSchedule != nil {
		a.cancelSchedule()
	}
	a.cancelSchedule = onscreen.StartWithOptions(a.page, a.canvas, a.anim.tick, delay, onscreen.Options{
		OnTransition: a.onTransition,
	})
}

func (a *App) stopSchedule() {
	if a.cancelSchedule != nil {
		a.cancelSchedule()
		a.cancelSchedule = nil
	}
}

func (a *App) onTransition(t onscreen.Transition) {
	a.running = t.Running
	a.bus.Publish(eventbus.Event{Type: eventbus.TypeScheduleState, Data: t})
	if t.Running {
		a.log.Info("canvas on screen; animating", logx.String("cause", t.Cause.String()))
	} else {
		a.log.Info("canvas off screen; paused", logx.String("cause", t.Cause.String()))
	}
}

// visibleNow asks the loop whether the canvas is on screen. Used for logging.
func (a *App) visibleNow() bool {
	var v bool
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = a.loop.Call(ctx, func() { v = onscreen.ElementOnScreen(a.page, a.canvas) })
	return v
}

// Status is a point-in-time view for the "status" command.
type Status struct {
	ScrollX, ScrollY float64
	Viewport         onscreen.Size
	Visible          bool
	Running          bool
	Frames           uint64
	Skipped          uint64
	Loop             host.LoopStats
}

func (s Status) String() string {
	state := "paused"
	if s.Running {
		state = "running"
	}
	return fmt.Sprintf("scroll=(%g,%g) viewport=%gx%g visible=%t state=%s frames=%d skipped=%d %s",
		s.ScrollX, s.ScrollY, s.Viewport.Width, s.Viewport.Height,
		s.Visible, state, s.Frames, s.Skipped, s.Loop)
}

func (a *App) Status(ctx context.Context) (Status, error) {
	var st Status
	err := a.loop.Call(ctx, func() {
		st.ScrollX, st.ScrollY = a.page.Scroll()
		st.Viewport = a.page.ViewportSize()
		st.Visible = onscreen.ElementOnScreen(a.page, a.canvas)
		st.Running = a.running
	})
	if err != nil {
		return Status{}, err
	}
	st.Frames = a.anim.frames.Load()
	st.Skipped = a.anim.skipped.Load()
	st.Loop = a.loop.Stats()
	return st, nil
}

// command handles input lines that are not viewport changes.
func (a *App) command(cmd host.Command) {
	switch cmd.Op {
	case host.OpStatus:
		st, err := a.Status(a.sup.Context())
		if err != nil {
			a.log.Warn("status unavailable", logx.Err(err))
			return
		}
		fmt.Fprintln(a.out, st)
	case host.OpQuit:
		a.log.Info("quit requested")
	}
}

func (a *App) Stop(ctx context.Context) error {
	if a.sup == nil {
		return nil
	}
	a.log.Info("stopping")

	// Cancel the schedule on the loop first so no tick starts a new frame.
	_ = a.loop.Call(ctx, a.stopSchedule)
	a.sup.Cancel()

	step := func(name string, max time.Duration, fn func(context.Context) error) {
		start := time.Now()
		stepCtx, cancel := context.WithTimeout(ctx, max)
		defer cancel()
		if err := fn(stepCtx); err != nil {
			a.log.Warn("stop step error", logx.String("name", name), logx.Err(err))
		}
		if took := time.Since(start); took >= 500*time.Millisecond {
			a.log.Info("stop step end", logx.String("name", name), logx.Duration("took", took))
		}
	}

	step("snapshot", time.Second, func(c context.Context) error { a.snap.stop(c); return nil })
	step("supervisor", 2*time.Second, func(c context.Context) error { return a.sup.Wait(c) })
	step("render", 2*time.Second, a.anim.wait)
	step("storage", time.Second, func(c context.Context) error {
		if a.store != nil {
			return a.store.Close()
		}
		return nil
	})

	a.log.Info("stopped",
		logx.Uint64("frames", a.anim.frames.Load()),
		logx.Uint64("skipped", a.anim.skipped.Load()),
		logx.Uint64("log_dropped", a.logs.Dropped()),
	)
	return a.logs.Close()
}
