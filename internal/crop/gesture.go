package crop

import (
	"math"

	"github.com/example/mediaedit/internal/geometry"
	"github.com/example/mediaedit/internal/transform"
)

// Resize is a handle drag in progress. The window it reports is visual
// until Release folds it into the transform.
type Resize struct {
	frame  Frame
	handle Handle
	locked bool
	ratio  float64
	start  geometry.Rect
	rect   geometry.Rect
}

// BeginResize starts dragging h. A fixed ratio locks the window's aspect.
func BeginResize(f Frame, v transform.Values, h Handle) *Resize {
	w := f.Window(v)
	return &Resize{
		frame:  f,
		handle: h,
		locked: v.FixedRatio != "",
		ratio:  v.RatioOrDefault(f.imageRatio()),
		start:  w,
		rect:   w,
	}
}

// Rect returns the live crop window.
func (r *Resize) Rect() geometry.Rect { return r.rect }

// Update moves the handle by (dx, dy) from where the drag began.
func (r *Resize) Update(dx, dy float64) geometry.Rect {
	h := r.handle
	if r.locked {
		dx, dy = r.project(dx, dy)
	}
	rect := r.start
	dw := h.LeftSign * dx
	dh := h.TopSign * dy
	if r.locked {
		switch {
		case h.LeftSign == 0:
			dw = dh * r.ratio
		case h.TopSign == 0:
			dh = dw / r.ratio
		}
	}
	// keep the window at least MinSize on both sides
	if rect.Width+dw < MinSize {
		dw = MinSize - rect.Width
		if r.locked {
			dh = dw / r.ratio
		}
	}
	if rect.Height+dh < MinSize {
		dh = MinSize - rect.Height
		if r.locked {
			dw = dh * r.ratio
		}
	}
	rect.Width += dw
	rect.Height += dh
	switch h.LeftSign {
	case -1:
		rect.Left -= dw
	case 0:
		rect.Left -= dw / 2
	}
	switch h.TopSign {
	case -1:
		rect.Top -= dh
	case 0:
		rect.Top -= dh / 2
	}
	r.rect = rect
	return rect
}

// project constrains a raw drag to the locked ratio.
func (r *Resize) project(dx, dy float64) (float64, float64) {
	h := r.handle
	if !h.Corner() {
		return dx, dy
	}
	// opposite sign handles (tr, bl) grow when dx and dy have opposite signs
	s := h.LeftSign * h.TopSign
	return (dx + s*dy*r.ratio) / 2, (s*dx/r.ratio + dy) / 2
}

// Release folds the live window into v: the window is scaled up to fill the
// crop area, the image scale and translation follow so the same content
// stays under it, and the result is clamped to keep the window covered.
func (r *Resize) Release(v transform.Values) transform.Values {
	rect := r.rect
	if rect == r.start {
		return v
	}
	f := r.frame
	newRatio := rect.Width / rect.Height
	fill := geometry.Snap(newRatio, f.CropOffset.Size())
	up := math.Min(fill.W/rect.Width, fill.H/rect.Height)

	cc := f.CropOffset.Center()
	ic := f.ImageCenter(v)
	target := cc.Add(ic.Sub(rect.Center()).Mul(up))

	v.Scale *= up
	if !r.locked {
		v.Ratio = newRatio
	}
	v.Translation = f.translationFor(v, target)
	r.start, r.rect = f.Window(v), f.Window(v)
	return Clamp(f, v)
}

// Pan is an image drag under the crop window.
type Pan struct {
	frame Frame
	start transform.Values
}

// BeginPan starts dragging the image.
func BeginPan(f Frame, v transform.Values) *Pan { return &Pan{frame: f, start: v} }

// Update returns the transform with the image moved by (dx, dy).
func (p *Pan) Update(dx, dy float64) transform.Values {
	v := p.start
	v.Translation = v.Translation.Add(geometry.Pt(dx, dy))
	return v
}

// Release returns the final transform, pulled back so the window stays
// covered.
func (p *Pan) Release(dx, dy float64) transform.Values {
	return Clamp(p.frame, p.Update(dx, dy))
}
