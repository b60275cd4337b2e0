// Package gesture turns raw pointer input into the swipe and throttled
// sample streams the editor tools consume.
package gesture

import "time"

// DefaultThrottle bounds how often a stroke is redrawn.
const DefaultThrottle = 25 * time.Millisecond

// Throttle lets through the first sample of a gesture and then at most one
// sample per Interval. Flush reports whether a suppressed sample still needs
// a trailing fire.
type Throttle struct {
	Interval time.Duration

	last    time.Time
	started bool
	pending bool
}

// Sample reports whether the sample at now should fire.
func (t *Throttle) Sample(now time.Time) bool {
	if !t.started || now.Sub(t.last) >= t.Interval {
		t.started = true
		t.last = now
		t.pending = false
		return true
	}
	t.pending = true
	return false
}

// Flush reports whether a sample was suppressed since the last fire and
// clears that state.
func (t *Throttle) Flush() bool {
	p := t.pending
	t.pending = false
	return p
}

// Reset forgets the previous gesture so the next sample fires.
func (t *Throttle) Reset() {
	*t = Throttle{Interval: t.Interval}
}
