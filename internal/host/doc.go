// Package host provides the environment the visibility-gated scheduler runs in:
// a single-goroutine event loop with interval timers, a page with a scrollable
// viewport and placed elements, and a line-oriented input driver that turns
// "scroll"/"resize" commands into viewport changes.
//
// Everything that touches page or timer state runs on the loop goroutine.
// Other goroutines hand work to the loop with Post or Call.
package host
