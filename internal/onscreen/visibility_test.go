package onscreen

import "testing"

func TestIsOnScreen(t *testing.T) {
	t.Parallel()
	vp := Size{Width: 800, Height: 600}
	tests := []struct {
		name string
		r    Rect
		want bool
	}{
		{name: "fully inside", r: Rect{Top: 10, Bottom: 200, Left: 10, Right: 300}, want: true},
		{name: "origin corner", r: Rect{Top: 0, Bottom: 1, Left: 0, Right: 1}, want: true},
		{name: "far below and right", r: Rect{Top: 900, Bottom: 1200, Left: 1000, Right: 1300}, want: false},
		{name: "below only", r: Rect{Top: 700, Bottom: 900, Left: 10, Right: 300}, want: false},
		{name: "above only", r: Rect{Top: -500, Bottom: -10, Left: 10, Right: 300}, want: false},
		{name: "left only", r: Rect{Top: 10, Bottom: 200, Left: -400, Right: -1}, want: false},
		{name: "partially above", r: Rect{Top: -100, Bottom: 100, Left: 10, Right: 300}, want: true},
		{name: "partially below", r: Rect{Top: 500, Bottom: 900, Left: 10, Right: 300}, want: true},
		{name: "spans vertically", r: Rect{Top: -100, Bottom: 700, Left: 10, Right: 300}, want: true},
		{name: "spans both axes", r: Rect{Top: -100, Bottom: 700, Left: -50, Right: 900}, want: true},
		{name: "top edge at viewport height", r: Rect{Top: 600, Bottom: 800, Left: 10, Right: 300}, want: false},
		// Boundary gap kept as-is: far edge exactly at the extent while the near edge is negative.
		{name: "spans to exact extent", r: Rect{Top: -100, Bottom: 600, Left: 10, Right: 300}, want: false},
		{name: "near edge at zero spanning", r: Rect{Top: 0, Bottom: 700, Left: 10, Right: 300}, want: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsOnScreen(tt.r, vp); got != tt.want {
				t.Fatalf("IsOnScreen(%+v) = %v, want %v", tt.r, got, tt.want)
			}
		})
	}
}

func TestIsOnScreenIsPure(t *testing.T) {
	t.Parallel()
	r := Rect{Top: 5, Bottom: 50, Left: 5, Right: 50}
	vp := Size{Width: 100, Height: 100}
	for i := 0; i < 10; i++ {
		if !IsOnScreen(r, vp) {
			t.Fatalf("call %d: expected visible", i)
		}
	}
	if r != (Rect{Top: 5, Bottom: 50, Left: 5, Right: 50}) {
		t.Fatalf("rect mutated: %+v", r)
	}
}
