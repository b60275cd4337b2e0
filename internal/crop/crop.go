// Package crop implements the crop tool: handle dragging with optional
// ratio lock, absorbing the new crop window into the transform on release,
// and keeping the crop window covered by the image while panning.
package crop

import (
	"math"
	"strings"

	"github.com/example/mediaedit/internal/geometry"
	"github.com/example/mediaedit/internal/transform"
)

// MinSize is the smallest crop window side in display units.
const MinSize = 40

// Handle is a crop handle. LeftSign and TopSign tell which edges it moves:
// -1 for the left/top edge, +1 for the right/bottom edge, 0 for neither.
type Handle struct {
	Name     string
	LeftSign float64
	TopSign  float64
}

// Handles lists the eight handles clockwise from the top-left corner.
var Handles = [8]Handle{
	{"tl", -1, -1},
	{"t", 0, -1},
	{"tr", 1, -1},
	{"r", 1, 0},
	{"br", 1, 1},
	{"b", 0, 1},
	{"bl", -1, 1},
	{"l", -1, 0},
}

// HandleByName resolves a handle name such as "tl" or "r".
func HandleByName(name string) (Handle, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, h := range Handles {
		if h.Name == n {
			return h, true
		}
	}
	return Handle{}, false
}

// Corner reports whether the handle moves two edges.
func (h Handle) Corner() bool { return h.LeftSign != 0 && h.TopSign != 0 }

// Position returns where the handle sits on r.
func (h Handle) Position(r geometry.Rect) geometry.Point {
	c := r.Center()
	return geometry.Pt(c.X+h.LeftSign*r.Width/2, c.Y+h.TopSign*r.Height/2)
}

// Frame is the live canvas the crop tool works in. All values are display
// units.
type Frame struct {
	Canvas     geometry.Size
	CropOffset geometry.Rect
	ImageSize  geometry.Size
}

// NewFrame builds a frame using the default crop margins.
func NewFrame(canvas, image geometry.Size) Frame {
	return Frame{Canvas: canvas, CropOffset: geometry.CropOffset(canvas.W, canvas.H), ImageSize: image}
}

func (f Frame) imageRatio() float64 { return f.ImageSize.Ratio() }

func (f Frame) final(v transform.Values) transform.Final {
	return transform.Compute(transform.Inputs{
		Canvas:     f.Canvas,
		CropMode:   true,
		Values:     v,
		ImageSize:  f.ImageSize,
		CropOffset: f.CropOffset,
		PixelRatio: 1,
	})
}

// Window returns the crop window: the current ratio snapped into the crop
// area and centred in it.
func (f Frame) Window(v transform.Values) geometry.Rect {
	ratio := v.RatioOrDefault(f.imageRatio())
	return geometry.CenteredRect(f.CropOffset.Center(), geometry.Snap(ratio, f.CropOffset.Size()))
}

// ImageCenter is where the image centre is drawn in crop mode.
func (f Frame) ImageCenter(v transform.Values) geometry.Point {
	fin := f.final(v)
	return geometry.Pt(f.Canvas.W/2, f.Canvas.H/2).Add(fin.Translation)
}

// ImageHalfSize is half the drawn image size in crop mode.
func (f Frame) ImageHalfSize(v transform.Values) geometry.Size {
	s := f.final(v).Scale
	return geometry.Size{W: f.ImageSize.W * s / 2, H: f.ImageSize.H * s / 2}
}

// translationFor returns the translation that draws the image centre at c.
func (f Frame) translationFor(v transform.Values, c geometry.Point) geometry.Point {
	cur := f.ImageCenter(v)
	return v.Translation.Add(c.Sub(cur))
}

// cornersInImageFrame returns the crop window corners relative to the image
// centre in the image's unrotated frame.
func (f Frame) cornersInImageFrame(v transform.Values) geometry.Rect {
	ic := f.ImageCenter(v)
	var pts []geometry.Point
	for _, c := range f.Window(v).Corners() {
		pts = append(pts, c.Sub(ic).Rotate(-v.Rotation))
	}
	return geometry.Bounds(pts...)
}

// BoundDiff returns how far, in display units, the image must move so the
// crop window lies inside it. It is zero when the window is covered or when
// no translation alone can cover it.
func BoundDiff(f Frame, v transform.Values) geometry.Point {
	bb := f.cornersInImageFrame(v)
	half := f.ImageHalfSize(v)
	axis := func(lo, hi, limit float64) float64 {
		switch {
		case lo < -limit:
			return lo + limit
		case hi > limit:
			return hi - limit
		}
		return 0
	}
	d := geometry.Pt(axis(bb.Left, bb.Right(), half.W), axis(bb.Top, bb.Bottom(), half.H))
	return d.Rotate(v.Rotation)
}

// Clamp scales the image up if it is too small to cover the crop window at
// its rotation, then moves it so the window is covered.
func Clamp(f Frame, v transform.Values) transform.Values {
	if f.ImageSize.Empty() || f.CropOffset.Empty() {
		return v
	}
	bb := f.cornersInImageFrame(v)
	half := f.ImageHalfSize(v)
	k := math.Max(bb.Width/(2*half.W), bb.Height/(2*half.H))
	if k > 1 {
		v.Scale *= k
	}
	d := BoundDiff(f, v)
	v.Translation = v.Translation.Add(d)
	return v
}

// SetRatio switches to a fixed ratio key, or free cropping for "free", and
// keeps the window covered.
func SetRatio(f Frame, v transform.Values, key string) (transform.Values, error) {
	r, err := transform.ParseRatio(key, f.imageRatio())
	if err != nil {
		return v, err
	}
	if r == 0 {
		v.FixedRatio = ""
		return v, nil
	}
	v.Ratio = r
	v.FixedRatio = strings.ToLower(strings.TrimSpace(key))
	return Clamp(f, v), nil
}
