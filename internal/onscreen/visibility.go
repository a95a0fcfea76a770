package onscreen

// Rect is an element's bounding rectangle in viewport coordinates.
type Rect struct {
	Top, Bottom, Left, Right float64
}

// Size is the viewport extent.
type Size struct {
	Width, Height float64
}

// Element is anything that can report where it currently sits in the viewport.
type Element interface {
	BoundingRect() Rect
}

// IsOnScreen reports whether r has any visible extent inside a viewport of size vp.
//
// An axis counts as visible when either edge lies in [0, extent) or the element
// strictly spans the whole axis. An element whose near edge is exactly at 0 while
// its far edge passes the viewport is still caught by the near-edge test; the
// opposite case (near < 0, far == extent) is reported as not visible on that axis.
func IsOnScreen(r Rect, vp Size) bool {
	return axisVisible(r.Left, r.Right, vp.Width) && axisVisible(r.Top, r.Bottom, vp.Height)
}

// ElementOnScreen evaluates IsOnScreen for el against the host's current viewport.
func ElementOnScreen(h Host, el Element) bool {
	return IsOnScreen(el.BoundingRect(), h.ViewportSize())
}

func axisVisible(near, far, extent float64) bool {
	return within(near, extent) || within(far, extent) || (near < 0 && far > extent)
}

func within(v, extent float64) bool { return v >= 0 && v < extent }
