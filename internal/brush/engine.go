package brush

import (
	"image"
	"image/color"
	"time"

	"github.com/example/mediaedit/internal/geometry"
	"github.com/example/mediaedit/internal/gesture"
	"github.com/example/mediaedit/internal/logging"
	"github.com/example/mediaedit/internal/render"
)

// State is the stroke state of an Engine.
type State int

const (
	Idle State = iota
	Drawing
	Committing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Drawing:
		return "drawing"
	case Committing:
		return "committing"
	}
	return "unknown"
}

// DefaultBlurRadius is the blur applied to the image revealed by blur lines.
const DefaultBlurRadius = 10

// Options configure an Engine.
type Options struct {
	// PixelRatio converts display coordinates to surface pixels.
	PixelRatio float64
	Throttle   time.Duration
	BlurRadius float64
	// OnCommit runs after a line joins the committed list.
	OnCommit func(Line)
}

// Engine captures strokes and keeps the layered surfaces they are drawn on:
// the visible surface, the cache of committed lines, and the blurred copy
// of the source image revealed by blur lines.
type Engine struct {
	// Brush, Color and Size (in display units) apply to the next stroke.
	Brush Kind
	Color color.NRGBA
	Size  float64

	opts     Options
	main     *image.RGBA
	cache    *image.RGBA
	blurred  *image.RGBA
	lines    []Line
	draft    *Line
	anchor   *geometry.Point
	pending  *geometry.Point
	state    State
	throttle gesture.Throttle
}

// NewEngine returns an engine drawing onto a w x h surface.
func NewEngine(w, h int, opts Options) *Engine {
	if opts.PixelRatio <= 0 {
		opts.PixelRatio = 1
	}
	if opts.Throttle <= 0 {
		opts.Throttle = gesture.DefaultThrottle
	}
	if opts.BlurRadius <= 0 {
		opts.BlurRadius = DefaultBlurRadius
	}
	r := image.Rect(0, 0, w, h)
	return &Engine{
		Brush:    Pen,
		Color:    color.NRGBA{0xfe, 0x44, 0x38, 0xff},
		Size:     15,
		opts:     opts,
		main:     image.NewRGBA(r),
		cache:    image.NewRGBA(r),
		throttle: gesture.Throttle{Interval: opts.Throttle},
	}
}

// SetBlurSource derives the blurred helper surface from src, which must be
// aligned with the engine surface.
func (e *Engine) SetBlurSource(src image.Image) {
	if src == nil {
		e.blurred = nil
		return
	}
	rgba := render.ToRGBA(src)
	e.blurred = render.Blur(rgba, e.opts.BlurRadius)
}

// Image returns the visible surface: committed lines plus the draft.
func (e *Engine) Image() *image.RGBA { return e.main }

// State returns the stroke state.
func (e *Engine) State() State { return e.state }

// Lines returns a copy of the committed lines.
func (e *Engine) Lines() []Line {
	out := make([]Line, len(e.lines))
	for i, l := range e.lines {
		out[i] = l.Clone()
	}
	return out
}

// Draft returns the line being drawn, if any.
func (e *Engine) Draft() (Line, bool) {
	if e.draft == nil {
		return Line{}, false
	}
	return e.draft.Clone(), true
}

// SetLines replaces the committed lines and redraws every surface.
func (e *Engine) SetLines(lines []Line) {
	e.lines = e.lines[:0]
	for _, l := range lines {
		e.lines = append(e.lines, l.Clone())
	}
	e.Redraw()
}

// Redraw rebuilds the cache from the committed lines.
func (e *Engine) Redraw() {
	render.Clear(e.cache)
	for _, l := range e.lines {
		e.drawOn(e.cache, l)
	}
	render.CopyInto(e.main, e.cache)
	if e.draft != nil {
		e.drawOn(e.main, *e.draft)
	}
}

func (e *Engine) drawOn(dst *image.RGBA, l Line) {
	if err := Draw(Surfaces{Dst: dst, Blurred: e.blurred}, l); err != nil {
		logging.Logger().Warn("brush: line skipped", "brush", l.Brush.String(), "err", err)
	}
}

func (e *Engine) toSurface(p geometry.Point) geometry.Point {
	return p.Mul(e.opts.PixelRatio)
}

// Begin anchors a new stroke at p, in display coordinates.
func (e *Engine) Begin(p geometry.Point) {
	if e.state != Idle {
		e.Cancel()
	}
	sp := e.toSurface(p)
	e.anchor = &sp
	e.pending = nil
	e.throttle.Reset()
}

// Move extends the stroke to p. The first move starts drawing; later moves
// are redrawn at most once per throttle interval.
func (e *Engine) Move(p geometry.Point, now time.Time) {
	if e.anchor == nil {
		return
	}
	sp := e.toSurface(p)
	if e.state == Idle {
		e.state = Drawing
		e.draft = &Line{
			Color:  e.Color,
			Brush:  e.Brush,
			Size:   e.Size * e.opts.PixelRatio,
			Points: []geometry.Point{*e.anchor},
		}
	}
	if !e.throttle.Sample(now) {
		e.pending = &sp
		return
	}
	e.pending = nil
	e.draft.Points = append(e.draft.Points, sp)
	e.redrawDraft()
}

func (e *Engine) redrawDraft() {
	render.CopyInto(e.main, e.cache)
	e.drawOn(e.main, *e.draft)
}

// End finishes the stroke, committing it. A press without movement commits
// a single point line. It reports false when there was no stroke.
func (e *Engine) End() (Line, bool) {
	if e.anchor == nil {
		return Line{}, false
	}
	if e.state == Idle {
		e.draft = &Line{
			Color:  e.Color,
			Brush:  e.Brush,
			Size:   e.Size * e.opts.PixelRatio,
			Points: []geometry.Point{*e.anchor},
		}
		e.redrawDraft()
	} else if e.throttle.Flush() && e.pending != nil {
		// trailing draw for a sample swallowed by the throttle
		e.draft.Points = append(e.draft.Points, *e.pending)
		e.redrawDraft()
	}
	e.state = Committing
	line := e.draft.Clone()
	e.lines = append(e.lines, line)
	e.saveLastLine()
	e.draft, e.anchor, e.pending = nil, nil, nil
	e.state = Idle
	logging.Logger().Debug("brush: line committed", "brush", line.Brush.String(), "points", len(line.Points))
	if e.opts.OnCommit != nil {
		e.opts.OnCommit(line.Clone())
	}
	return line, true
}

// saveLastLine flattens the visible surface into the cache.
func (e *Engine) saveLastLine() {
	render.CopyInto(e.cache, e.main)
}

// Cancel drops the draft without committing it.
func (e *Engine) Cancel() {
	e.draft, e.anchor, e.pending = nil, nil, nil
	e.state = Idle
	render.CopyInto(e.main, e.cache)
}
