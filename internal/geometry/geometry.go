// Package geometry provides the viewport fitting helpers used by the editor
// transform and the export compositor.
package geometry

import "math"

// Point is a 2D coordinate or vector.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Mul scales p by k.
func (p Point) Mul(k float64) Point { return Point{p.X * k, p.Y * k} }

// MulPt multiplies p and q component-wise.
func (p Point) MulPt(q Point) Point { return Point{p.X * q.X, p.Y * q.Y} }

// Len returns the length of p as a vector.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// Angle returns the direction of p in radians.
func (p Point) Angle() float64 { return math.Atan2(p.Y, p.X) }

// Dist returns the distance between p and q.
func (p Point) Dist(q Point) float64 { return p.Sub(q).Len() }

// Mid returns the midpoint of p and q.
func (p Point) Mid(q Point) Point { return Point{(p.X + q.X) / 2, (p.Y + q.Y) / 2} }

// Eq reports whether p and q differ by at most eps on each axis.
func (p Point) Eq(q Point, eps float64) bool {
	return math.Abs(p.X-q.X) <= eps && math.Abs(p.Y-q.Y) <= eps
}

// Rotate rotates p by angle radians around the origin.
func (p Point) Rotate(angle float64) Point {
	s, c := math.Sincos(angle)
	return Point{p.X*c - p.Y*s, p.X*s + p.Y*c}
}

// Size is a width and height pair.
type Size struct {
	W float64 `json:"width"`
	H float64 `json:"height"`
}

// Ratio returns W/H.
func (s Size) Ratio() float64 { return s.W / s.H }

// Empty reports whether either side is not positive.
func (s Size) Empty() bool { return s.W <= 0 || s.H <= 0 }

// Rect is an axis aligned rectangle given by its top-left corner and size.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Center returns the centre of r.
func (r Rect) Center() Point { return Point{r.Left + r.Width/2, r.Top + r.Height/2} }

// Size returns the width and height of r.
func (r Rect) Size() Size { return Size{r.Width, r.Height} }

// Empty reports whether either side is not positive.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Corners returns the corners clockwise from the top-left.
func (r Rect) Corners() [4]Point {
	return [4]Point{
		{r.Left, r.Top},
		{r.Right(), r.Top},
		{r.Right(), r.Bottom()},
		{r.Left, r.Bottom()},
	}
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right() && p.Y >= r.Top && p.Y <= r.Bottom()
}

// CenteredRect returns a rectangle of size s centred on c.
func CenteredRect(c Point, s Size) Rect {
	return Rect{Left: c.X - s.W/2, Top: c.Y - s.H/2, Width: s.W, Height: s.H}
}

// Bounds returns the axis aligned bounding box of pts.
func Bounds(pts ...Point) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{Left: minX, Top: minY, Width: maxX - minX, Height: maxY - minY}
}

// SnapToViewport returns the largest size with aspect ratio ratio that fits
// inside boxW x boxH. One of the returned sides always equals the box side.
// ratio must be positive.
func SnapToViewport(ratio, boxW, boxH float64) (w, h float64) {
	w, h = boxW, boxH
	if boxW/ratio > boxH {
		w = boxH * ratio
	} else {
		h = boxW / ratio
	}
	return w, h
}

// Snap is SnapToViewport for a Size.
func Snap(ratio float64, box Size) Size {
	w, h := SnapToViewport(ratio, box.W, box.H)
	return Size{w, h}
}

// SnappedScaleBetween returns how much larger a ratio-snapped box inside
// w1 x h1 is than the same ratio snapped inside w2 x h2.
func SnappedScaleBetween(ratio, w1, h1, w2, h2 float64) float64 {
	sw1, sh1 := SnapToViewport(ratio, w1, h1)
	sw2, sh2 := SnapToViewport(ratio, w2, h2)
	return math.Max(sw1/sw2, sh1/sh2)
}

// Lerp interpolates between a and b. Lerp(a, b, 0) == a and Lerp(a, b, 1) == b
// exactly.
func Lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

// LerpPoint interpolates both coordinates.
func LerpPoint(a, b Point, t float64) Point {
	return Point{Lerp(a.X, b.X, t), Lerp(a.Y, b.Y, t)}
}
