package host

import (
	"context"
	"testing"
	"time"

	"cppnart/internal/eventbus"
	"cppnart/internal/onscreen"
)

func TestBoxBoundingRectFollowsScroll(t *testing.T) {
	t.Parallel()
	p := NewPage(New(), 800, 600)
	b := p.Place("canvas", 100, 1000, 200, 150)

	if got, want := b.BoundingRect(), (onscreen.Rect{Top: 1000, Bottom: 1150, Left: 100, Right: 300}); got != want {
		t.Fatalf("rect = %+v, want %+v", got, want)
	}
	p.ScrollTo(50, 900)
	if got, want := b.BoundingRect(), (onscreen.Rect{Top: 100, Bottom: 250, Left: 50, Right: 250}); got != want {
		t.Fatalf("rect after scroll = %+v, want %+v", got, want)
	}
	if !onscreen.ElementOnScreen(p, b) {
		t.Fatal("expected box on screen after scroll")
	}
}

func TestListenersNotifiedAndRemoved(t *testing.T) {
	t.Parallel()
	bus := eventbus.New()
	events, unsub := bus.Subscribe(8)
	defer unsub()

	p := NewPage(New(), 800, 600, WithBus(bus))
	var a, b int
	removeA := p.AddScrollListener(func() { a++ })
	var removeB func()
	removeB = p.AddScrollListener(func() {
		b++
		removeB()
	})

	p.ScrollBy(0, 10)
	p.Resize(400, 300)
	removeA()
	removeA()
	p.ScrollBy(0, 10)

	if a != 2 || b != 1 {
		t.Fatalf("a=%d b=%d, want 2/1", a, b)
	}
	if p.Listeners() != 0 {
		t.Fatalf("listeners = %d, want 0", p.Listeners())
	}
	first := <-events
	if first.Type != eventbus.TypeViewportScroll {
		t.Fatalf("first event = %s", first.Type)
	}
	second := <-events
	if ev, ok := second.Data.(ScrollEvent); !ok || second.Type != eventbus.TypeViewportResize || ev.Width != 400 {
		t.Fatalf("unexpected resize event %+v", second)
	}
}

func TestListenerRemovedDuringDispatchIsSkipped(t *testing.T) {
	t.Parallel()
	p := NewPage(New(), 800, 600)
	var removeB func()
	called := false
	p.AddScrollListener(func() { removeB() })
	removeB = p.AddScrollListener(func() { called = true })

	p.ScrollBy(0, 1)
	if called {
		t.Fatal("listener removed earlier in the same dispatch was still called")
	}
}

// End-to-end: the gated scheduler on a real loop with real timers.
func TestGatedScheduleOnPage(t *testing.T) {
	t.Parallel()
	l := startLoop(t)
	p := NewPage(l, 800, 600)
	ticks := make(chan struct{}, 64)

	var cancel onscreen.CancelFunc
	var box *Box
	ctx := context.Background()
	_ = l.Call(ctx, func() {
		box = p.Place("canvas", 0, 2000, 100, 100)
		cancel = onscreen.Start(p, box, func() { ticks <- struct{}{} }, 5*time.Millisecond)
	})

	select {
	case <-ticks:
		t.Fatal("tick while off screen")
	case <-time.After(40 * time.Millisecond):
	}

	_ = l.Call(ctx, func() { p.ScrollTo(0, 1900) })
	select {
	case <-ticks:
	case <-time.After(2 * time.Second):
		t.Fatal("no tick after scrolling into view")
	}

	_ = l.Call(ctx, func() {
		p.ScrollTo(0, 0)
	})
	// Drain anything queued before the scroll-out ran.
	_ = l.Call(ctx, func() {
		for len(ticks) > 0 {
			<-ticks
		}
	})
	select {
	case <-ticks:
		t.Fatal("tick after scrolling out of view")
	case <-time.After(40 * time.Millisecond):
	}

	_ = l.Call(ctx, func() {
		cancel()
		cancel()
		if p.Listeners() != 0 {
			t.Errorf("listeners = %d after cancel", p.Listeners())
		}
	})
}
