package host

import (
	"time"

	"cppnart/internal/eventbus"
	"cppnart/internal/onscreen"
	logx "cppnart/pkg/logx"
)

// Page is a scrollable document with a fixed-size viewport. It implements
// onscreen.Host; every method must be called on the page's loop.
type Page struct {
	loop *Loop
	bus  eventbus.Bus
	log  logx.Logger

	vp               onscreen.Size
	scrollX, scrollY float64

	listeners []*listener
	nextL     uint64

	boxes map[string]*Box
}

type listener struct {
	id      uint64
	fn      func()
	removed bool
}

// ScrollEvent is the payload of viewport.scroll and viewport.resize events.
type ScrollEvent struct {
	ScrollX, ScrollY float64
	Width, Height    float64
}

type PageOption func(*Page)

func WithBus(bus eventbus.Bus) PageOption       { return func(p *Page) { p.bus = bus } }
func WithPageLogger(log logx.Logger) PageOption { return func(p *Page) { p.log = log } }

func NewPage(loop *Loop, width, height float64, opts ...PageOption) *Page {
	p := &Page{
		loop:  loop,
		vp:    onscreen.Size{Width: width, Height: height},
		boxes: map[string]*Box{},
	}
	for _, o := range opts {
		o(p)
	}
	if p.bus == nil {
		p.bus = eventbus.Nop()
	}
	if p.log.IsZero() {
		p.log = logx.Nop()
	}
	return p
}

func (p *Page) Loop() *Loop { return p.loop }

func (p *Page) ViewportSize() onscreen.Size { return p.vp }

// Scroll returns the current scroll offset.
func (p *Page) Scroll() (x, y float64) { return p.scrollX, p.scrollY }

// AddScrollListener registers fn for scroll (and resize) notifications.
// The returned function removes it; calling it again is a no-op.
func (p *Page) AddScrollListener(fn func()) func() {
	p.nextL++
	l := &listener{id: p.nextL, fn: fn}
	p.listeners = append(p.listeners, l)
	return func() {
		if l.removed {
			return
		}
		l.removed = true
		for i, cur := range p.listeners {
			if cur == l {
				p.listeners = append(p.listeners[:i:i], p.listeners[i+1:]...)
				break
			}
		}
	}
}

// Listeners returns the number of registered scroll listeners.
func (p *Page) Listeners() int { return len(p.listeners) }

func (p *Page) SetInterval(fn func(), d time.Duration) onscreen.TimerID {
	return p.loop.SetInterval(fn, d)
}

func (p *Page) ClearInterval(id onscreen.TimerID) { p.loop.ClearInterval(id) }

// ScrollTo moves the viewport to the given document offset and notifies listeners.
func (p *Page) ScrollTo(x, y float64) {
	p.scrollX, p.scrollY = x, y
	p.dispatch(eventbus.TypeViewportScroll)
}

func (p *Page) ScrollBy(dx, dy float64) { p.ScrollTo(p.scrollX+dx, p.scrollY+dy) }

// Resize changes the viewport size. Listeners are notified the same way as for
// a scroll, since either can change what is visible.
func (p *Page) Resize(width, height float64) {
	p.vp = onscreen.Size{Width: width, Height: height}
	p.dispatch(eventbus.TypeViewportResize)
}

func (p *Page) dispatch(typ string) {
	p.log.Trace("viewport changed",
		logx.String("type", typ),
		logx.Float64("scroll_x", p.scrollX), logx.Float64("scroll_y", p.scrollY),
		logx.Float64("width", p.vp.Width), logx.Float64("height", p.vp.Height),
	)
	// Snapshot so listeners may add or remove listeners while being notified.
	snap := append([]*listener(nil), p.listeners...)
	for _, l := range snap {
		if !l.removed {
			l.fn()
		}
	}
	p.bus.Publish(eventbus.Event{Type: typ, Data: ScrollEvent{
		ScrollX: p.scrollX, ScrollY: p.scrollY,
		Width: p.vp.Width, Height: p.vp.Height,
	}})
}

// Place adds (or moves) a named element at document coordinates.
func (p *Page) Place(name string, x, y, w, h float64) *Box {
	b, ok := p.boxes[name]
	if !ok {
		b = &Box{page: p, name: name}
		p.boxes[name] = b
	}
	b.X, b.Y, b.W, b.H = x, y, w, h
	return b
}

// Box returns a placed element by name.
func (p *Page) Box(name string) (*Box, bool) {
	b, ok := p.boxes[name]
	return b, ok
}

// Box is an element placed on a Page.
type Box struct {
	page *Page
	name string

	X, Y, W, H float64
}

func (b *Box) Name() string { return b.name }

// BoundingRect is the box's rectangle relative to the current viewport.
func (b *Box) BoundingRect() onscreen.Rect {
	sx, sy := b.page.scrollX, b.page.scrollY
	return onscreen.Rect{
		Top:    b.Y - sy,
		Bottom: b.Y + b.H - sy,
		Left:   b.X - sx,
		Right:  b.X + b.W - sx,
	}
}

var _ onscreen.Host = (*Page)(nil)
