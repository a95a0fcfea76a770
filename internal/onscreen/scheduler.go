package onscreen

import "time"

// TimerID identifies an interval registered with a Host. Zero is never a valid id.
type TimerID uint64

// Host is the environment the scheduler runs in.
//
// Implementations deliver scroll listeners and interval callbacks on the same
// goroutine that calls Start and the returned CancelFunc.
type Host interface {
	ViewportSize() Size
	AddScrollListener(fn func()) (remove func())
	SetInterval(fn func(), d time.Duration) TimerID
	ClearInterval(id TimerID)
}

// CancelFunc stops a schedule. Calling it more than once is a no-op.
type CancelFunc func()

// Transition describes a state change of a single schedule.
type Transition struct {
	Running bool
	Timer   TimerID // interval started (Running) or cleared (!Running)
	Cause   Cause
}

// Cause says what triggered a Transition.
type Cause int

const (
	CauseStart Cause = iota
	CauseScroll
	CauseCancel
)

func (c Cause) String() string {
	switch c {
	case CauseStart:
		return "start"
	case CauseScroll:
		return "scroll"
	case CauseCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// Options tweaks Start. The zero value is fine.
type Options struct {
	// OnTransition is invoked (on the host loop) after each running/stopped change.
	OnTransition func(Transition)
}

// state is either stopped (timer == 0) or running with the given interval.
type state struct {
	running bool
	timer   TimerID
}

type handle struct {
	host     Host
	el       Element
	callback func()
	delay    time.Duration
	opts     Options

	st        state
	cancelled bool
	unsub     func()
}

// Start runs callback every delay while el is on screen and returns a function
// that cancels the schedule.
//
// Visibility is checked immediately, so an element that is already visible
// starts its interval right away rather than after the first scroll.
func Start(h Host, el Element, callback func(), delay time.Duration) CancelFunc {
	return StartWithOptions(h, el, callback, delay, Options{})
}

// StartWithOptions is Start with an observer hook.
func StartWithOptions(h Host, el Element, callback func(), delay time.Duration, opts Options) CancelFunc {
	hd := &handle{
		host:     h,
		el:       el,
		callback: callback,
		delay:    delay,
		opts:     opts,
	}
	hd.unsub = h.AddScrollListener(func() { hd.reconcile(CauseScroll) })
	hd.reconcile(CauseStart)
	return hd.cancel
}

func (hd *handle) reconcile(cause Cause) {
	if hd.cancelled {
		return
	}
	visible := ElementOnScreen(hd.host, hd.el)
	switch {
	case visible && !hd.st.running:
		hd.st = state{running: true, timer: hd.host.SetInterval(hd.callback, hd.delay)}
		hd.notify(Transition{Running: true, Timer: hd.st.timer, Cause: cause})
	case !visible && hd.st.running:
		id := hd.st.timer
		hd.host.ClearInterval(id)
		hd.st = state{}
		hd.notify(Transition{Running: false, Timer: id, Cause: cause})
	}
}

func (hd *handle) cancel() {
	if hd.cancelled {
		return
	}
	hd.cancelled = true
	if hd.unsub != nil {
		hd.unsub()
		hd.unsub = nil
	}
	if hd.st.running {
		id := hd.st.timer
		hd.host.ClearInterval(id)
		hd.st = state{}
		hd.notify(Transition{Running: false, Timer: id, Cause: CauseCancel})
	}
}

func (hd *handle) notify(t Transition) {
	if hd.opts.OnTransition != nil {
		hd.opts.OnTransition(t)
	}
}
