// Package onscreen runs a periodic callback only while an element is inside
// the viewport.
//
// The scheduler never polls. It evaluates visibility once at Start and then
// again on every scroll notification from the Host, starting or clearing a
// host interval as the answer changes. All Host methods are expected to be
// invoked from a single event loop (see internal/host), which is also where
// the callback and scroll listeners run; handles therefore carry no locks.
package onscreen
