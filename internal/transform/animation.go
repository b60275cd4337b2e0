package transform

import "time"

// CropAnimationDuration is how long entering or leaving crop mode animates.
const CropAnimationDuration = 200 * time.Millisecond

// Animation tracks the progress between the regular view and the crop view.
// The zero value rests at progress 0.
type Animation struct {
	Duration time.Duration

	from, to float64
	start    time.Time
	running  bool
}

// Toggle starts animating towards crop mode (true) or away from it. An
// animation already in flight continues from its current progress.
func (a *Animation) Toggle(cropMode bool, now time.Time) {
	cur := a.Progress(now)
	a.from = cur
	a.to = 0
	if cropMode {
		a.to = 1
	}
	a.start = now
	a.running = cur != a.to
}

// Progress returns the current progress in [0,1].
func (a *Animation) Progress(now time.Time) float64 {
	if !a.running {
		return a.to
	}
	d := a.Duration
	if d <= 0 {
		d = CropAnimationDuration
	}
	// scale the remaining time by the distance left so reversing midway is
	// not slower than a full run
	span := a.to - a.from
	if span < 0 {
		span = -span
	}
	total := time.Duration(float64(d) * span)
	el := now.Sub(a.start)
	if total <= 0 || el >= total {
		a.running = false
		a.from = a.to
		return a.to
	}
	t := float64(el) / float64(total)
	return a.from + (a.to-a.from)*t
}

// Running reports whether the animation still needs frames.
func (a *Animation) Running(now time.Time) bool {
	a.Progress(now)
	return a.running
}
