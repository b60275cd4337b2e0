package gesture

import "github.com/example/mediaedit/internal/geometry"

// Handlers receive swipe events. Any of them may be nil.
type Handlers struct {
	// OnStart runs when the pointer goes down.
	OnStart func(p geometry.Point)
	// OnSwipe runs on every move with the total delta since OnStart.
	OnSwipe func(dx, dy float64, p geometry.Point)
	// OnReset runs when the pointer is released or the gesture is cancelled.
	OnReset func()
}

// Swipe tracks one pointer from press to release.
type Swipe struct {
	h      Handlers
	start  geometry.Point
	active bool
}

// NewSwipe returns a swipe reporting to h.
func NewSwipe(h Handlers) *Swipe { return &Swipe{h: h} }

// Active reports whether a gesture is in progress.
func (s *Swipe) Active() bool { return s.active }

// Press starts a gesture at p. A press while active restarts the gesture.
func (s *Swipe) Press(p geometry.Point) {
	if s.active {
		s.Release()
	}
	s.active = true
	s.start = p
	if s.h.OnStart != nil {
		s.h.OnStart(p)
	}
}

// Move reports the pointer at p. Moves without a press are ignored.
func (s *Swipe) Move(p geometry.Point) {
	if !s.active {
		return
	}
	if s.h.OnSwipe != nil {
		d := p.Sub(s.start)
		s.h.OnSwipe(d.X, d.Y, p)
	}
}

// Release ends the gesture.
func (s *Swipe) Release() {
	if !s.active {
		return
	}
	s.active = false
	if s.h.OnReset != nil {
		s.h.OnReset()
	}
}
