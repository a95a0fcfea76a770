package onscreen

import (
	"testing"
	"time"
)

// fakeHost is a manually driven Host: tests move the element, fire scroll
// notifications and advance virtual time explicitly.
type fakeHost struct {
	vp        Size
	listeners map[int]func()
	nextL     int
	intervals map[TimerID]*fakeInterval
	nextID    TimerID
	cleared   []TimerID
}

type fakeInterval struct {
	fn      func()
	every   time.Duration
	elapsed time.Duration
}

func newFakeHost(w, h float64) *fakeHost {
	return &fakeHost{
		vp:        Size{Width: w, Height: h},
		listeners: map[int]func(){},
		intervals: map[TimerID]*fakeInterval{},
	}
}

func (f *fakeHost) ViewportSize() Size { return f.vp }

func (f *fakeHost) AddScrollListener(fn func()) func() {
	f.nextL++
	id := f.nextL
	f.listeners[id] = fn
	return func() { delete(f.listeners, id) }
}

func (f *fakeHost) SetInterval(fn func(), d time.Duration) TimerID {
	f.nextID++
	f.intervals[f.nextID] = &fakeInterval{fn: fn, every: d}
	return f.nextID
}

func (f *fakeHost) ClearInterval(id TimerID) {
	if _, ok := f.intervals[id]; !ok {
		panic("ClearInterval on unknown id")
	}
	delete(f.intervals, id)
	f.cleared = append(f.cleared, id)
}

func (f *fakeHost) scroll() {
	for _, fn := range f.listeners {
		fn()
	}
}

func (f *fakeHost) advance(d time.Duration) {
	for _, iv := range f.intervals {
		iv.elapsed += d
		for iv.elapsed >= iv.every {
			iv.elapsed -= iv.every
			iv.fn()
		}
	}
}

type box struct{ r Rect }

func (b *box) BoundingRect() Rect { return b.r }

var (
	visibleRect = Rect{Top: 10, Bottom: 110, Left: 10, Right: 110}
	hiddenRect  = Rect{Top: 5000, Bottom: 5100, Left: 10, Right: 110}
)

func TestStartVisibleRunsImmediately(t *testing.T) {
	t.Parallel()
	h := newFakeHost(800, 600)
	el := &box{r: visibleRect}
	calls := 0

	cancel := Start(h, el, func() { calls++ }, 100*time.Millisecond)
	defer cancel()

	if len(h.intervals) != 1 {
		t.Fatalf("intervals = %d, want 1", len(h.intervals))
	}
	h.advance(99 * time.Millisecond)
	if calls != 0 {
		t.Fatalf("calls before delay = %d, want 0", calls)
	}
	h.advance(1 * time.Millisecond)
	if calls != 1 {
		t.Fatalf("calls after delay = %d, want 1", calls)
	}
}

func TestStartHiddenStaysStopped(t *testing.T) {
	t.Parallel()
	h := newFakeHost(800, 600)
	el := &box{r: hiddenRect}
	calls := 0

	cancel := Start(h, el, func() { calls++ }, 10*time.Millisecond)
	defer cancel()

	h.advance(time.Second)
	if calls != 0 || len(h.intervals) != 0 {
		t.Fatalf("calls=%d intervals=%d, want 0/0", calls, len(h.intervals))
	}
	if len(h.listeners) != 1 {
		t.Fatalf("listeners = %d, want 1", len(h.listeners))
	}
}

func TestScrollOutStopsAndScrollInResumes(t *testing.T) {
	t.Parallel()
	h := newFakeHost(800, 600)
	el := &box{r: visibleRect}
	calls := 0

	cancel := Start(h, el, func() { calls++ }, 10*time.Millisecond)
	defer cancel()

	h.advance(30 * time.Millisecond)
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}

	el.r = hiddenRect
	h.scroll()
	if len(h.intervals) != 0 || len(h.cleared) != 1 {
		t.Fatalf("intervals=%d cleared=%d, want 0/1", len(h.intervals), len(h.cleared))
	}
	h.advance(time.Second)
	if calls != 3 {
		t.Fatalf("calls while hidden = %d, want 3", calls)
	}

	el.r = visibleRect
	h.scroll()
	h.advance(10 * time.Millisecond)
	if calls != 4 {
		t.Fatalf("calls after resume = %d, want 4", calls)
	}
}

func TestRepeatedScrollIsIdempotent(t *testing.T) {
	t.Parallel()
	h := newFakeHost(800, 600)
	el := &box{r: visibleRect}
	var transitions []Transition

	cancel := StartWithOptions(h, el, func() {}, time.Second, Options{
		OnTransition: func(tr Transition) { transitions = append(transitions, tr) },
	})
	defer cancel()

	for i := 0; i < 5; i++ {
		h.scroll()
	}
	if h.nextID != 1 {
		t.Fatalf("SetInterval called %d times, want 1", h.nextID)
	}
	if len(transitions) != 1 || !transitions[0].Running || transitions[0].Cause != CauseStart {
		t.Fatalf("unexpected transitions %+v", transitions)
	}

	el.r = hiddenRect
	for i := 0; i < 5; i++ {
		h.scroll()
	}
	if len(h.cleared) != 1 {
		t.Fatalf("ClearInterval called %d times, want 1", len(h.cleared))
	}
	if len(transitions) != 2 || transitions[1].Running || transitions[1].Cause != CauseScroll {
		t.Fatalf("unexpected transitions %+v", transitions)
	}
}

func TestCancelTwiceIsNoop(t *testing.T) {
	t.Parallel()
	h := newFakeHost(800, 600)
	el := &box{r: visibleRect}
	calls := 0

	cancel := Start(h, el, func() { calls++ }, 10*time.Millisecond)
	cancel()
	// fakeHost.ClearInterval panics on unknown ids, so a duplicate cleanup would fail here.
	cancel()

	if len(h.listeners) != 0 {
		t.Fatalf("listeners = %d, want 0", len(h.listeners))
	}
	if len(h.cleared) != 1 {
		t.Fatalf("cleared = %d, want 1", len(h.cleared))
	}
	h.advance(time.Second)
	if calls != 0 {
		t.Fatalf("calls after cancel = %d, want 0", calls)
	}
}

func TestCancelWhileStopped(t *testing.T) {
	t.Parallel()
	h := newFakeHost(800, 600)
	el := &box{r: hiddenRect}

	cancel := Start(h, el, func() {}, 10*time.Millisecond)
	cancel()

	if len(h.cleared) != 0 {
		t.Fatalf("cleared = %d, want 0", len(h.cleared))
	}
	el.r = visibleRect
	h.scroll() // no listener left; nothing should start
	if len(h.intervals) != 0 {
		t.Fatalf("intervals = %d, want 0", len(h.intervals))
	}
}

func TestCancelFromCallback(t *testing.T) {
	t.Parallel()
	h := newFakeHost(800, 600)
	el := &box{r: visibleRect}
	calls := 0

	var cancel CancelFunc
	cancel = Start(h, el, func() {
		calls++
		cancel()
	}, 10*time.Millisecond)

	h.advance(10 * time.Millisecond)
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if len(h.intervals) != 0 || len(h.listeners) != 0 {
		t.Fatalf("intervals=%d listeners=%d after self-cancel", len(h.intervals), len(h.listeners))
	}
}

func TestIndependentHandles(t *testing.T) {
	t.Parallel()
	h := newFakeHost(800, 600)
	a := &box{r: visibleRect}
	b := &box{r: hiddenRect}
	var ca, cb int

	cancelA := Start(h, a, func() { ca++ }, 10*time.Millisecond)
	cancelB := Start(h, b, func() { cb++ }, 10*time.Millisecond)
	defer cancelB()

	h.advance(20 * time.Millisecond)
	cancelA()
	b.r = visibleRect
	h.scroll()
	h.advance(20 * time.Millisecond)

	if ca != 2 || cb != 2 {
		t.Fatalf("ca=%d cb=%d, want 2/2", ca, cb)
	}
}
