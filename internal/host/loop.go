package host

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"cppnart/internal/onscreen"
	logx "cppnart/pkg/logx"
)

// MinInterval is the smallest interval SetInterval accepts; shorter delays are clamped.
const MinInterval = time.Millisecond

var (
	ErrStopped        = errors.New("host: loop stopped")
	ErrAlreadyRunning = errors.New("host: loop already running")
)

// Loop runs posted tasks and interval callbacks one at a time on a single goroutine.
type Loop struct {
	log logx.Logger

	tasks chan func()

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
	started  atomic.Bool

	// Loop-owned; only touched from tasks.
	intervals map[onscreen.TimerID]*interval
	nextID    onscreen.TimerID

	posted   atomic.Uint64
	executed atomic.Uint64
	ticks    atomic.Uint64
	stale    atomic.Uint64
	panics   atomic.Uint64
	active   atomic.Int64
}

type interval struct {
	id   onscreen.TimerID
	fn   func()
	stop chan struct{}
}

type Option func(*Loop)

func WithLogger(log logx.Logger) Option { return func(l *Loop) { l.log = log } }

// WithQueueSize sets the task queue capacity (default 256).
func WithQueueSize(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.tasks = make(chan func(), n)
		}
	}
}

func New(opts ...Option) *Loop {
	l := &Loop{
		tasks:     make(chan func(), 256),
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
		intervals: map[onscreen.TimerID]*interval{},
	}
	for _, o := range opts {
		o(l)
	}
	if l.log.IsZero() {
		l.log = logx.Nop()
	}
	return l
}

// Run executes tasks until ctx is canceled or Stop is called.
// Pending interval timers are cleared on exit.
func (l *Loop) Run(ctx context.Context) error {
	if !l.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(l.done)
	defer l.clearAll()

	l.log.Debug("loop started")
	for {
		select {
		case <-ctx.Done():
			l.Stop()
			l.log.Debug("loop stopped", logx.String("reason", "context"))
			return nil
		case <-l.stopCh:
			l.log.Debug("loop stopped", logx.String("reason", "stop"))
			return nil
		case fn := <-l.tasks:
			l.exec(fn)
		}
	}
}

// Stop asks the loop to exit. Safe to call more than once.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

// Done is closed after Run returns.
func (l *Loop) Done() <-chan struct{} { return l.done }

// Post queues fn for execution on the loop. It blocks while the queue is full
// and returns false once the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	if fn == nil {
		return false
	}
	select {
	case <-l.stopCh:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		l.posted.Add(1)
		return true
	case <-l.stopCh:
		return false
	}
}

// Call runs fn on the loop and waits for it to finish.
// It must not be called from the loop itself.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrStopped
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopCh:
		// The task may still have run; prefer reporting success if it did.
		select {
		case <-finished:
			return nil
		default:
			return ErrStopped
		}
	}
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.panics.Add(1)
			l.log.Error("loop task panicked", logx.Any("panic", r), logx.Stack(string(debug.Stack())))
		}
	}()
	l.executed.Add(1)
	fn()
}

// SetInterval schedules fn every d. Must be called on the loop.
func (l *Loop) SetInterval(fn func(), d time.Duration) onscreen.TimerID {
	if d < MinInterval {
		d = MinInterval
	}
	l.nextID++
	iv := &interval{id: l.nextID, fn: fn, stop: make(chan struct{})}
	l.intervals[iv.id] = iv
	l.active.Add(1)

	go l.tick(iv, d)
	return iv.id
}

// ClearInterval cancels an interval. Must be called on the loop. Ticks that were
// already queued for id are discarded, so fn never runs after ClearInterval returns.
func (l *Loop) ClearInterval(id onscreen.TimerID) {
	iv, ok := l.intervals[id]
	if !ok {
		return
	}
	delete(l.intervals, id)
	close(iv.stop)
	l.active.Add(-1)
}

func (l *Loop) tick(iv *interval, d time.Duration) {
	t := time.NewTicker(d)
	defer t.Stop()
	for {
		select {
		case <-iv.stop:
			return
		case <-l.stopCh:
			return
		case <-t.C:
			id := iv.id
			select {
			case l.tasks <- func() { l.fire(id) }:
				l.posted.Add(1)
			case <-iv.stop:
				return
			case <-l.stopCh:
				return
			}
		}
	}
}

func (l *Loop) fire(id onscreen.TimerID) {
	iv, ok := l.intervals[id]
	if !ok {
		l.stale.Add(1)
		return
	}
	l.ticks.Add(1)
	iv.fn()
}

func (l *Loop) clearAll() {
	for id := range l.intervals {
		l.ClearInterval(id)
	}
}

// LoopStats is a best-effort counter snapshot.
type LoopStats struct {
	Posted     uint64
	Executed   uint64
	Ticks      uint64
	StaleTicks uint64
	Panics     uint64
	Intervals  int64
}

func (s LoopStats) String() string {
	return fmt.Sprintf("posted=%d executed=%d ticks=%d stale=%d panics=%d intervals=%d",
		s.Posted, s.Executed, s.Ticks, s.StaleTicks, s.Panics, s.Intervals)
}

func (l *Loop) Stats() LoopStats {
	return LoopStats{
		Posted:     l.posted.Load(),
		Executed:   l.executed.Load(),
		Ticks:      l.ticks.Load(),
		StaleTicks: l.stale.Load(),
		Panics:     l.panics.Load(),
		Intervals:  l.active.Load(),
	}
}
