package brush

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"

	"github.com/example/mediaedit/internal/colorutil"
	"github.com/example/mediaedit/internal/geometry"
	"github.com/example/mediaedit/internal/render"
)

const (
	markerAlpha = 0.4
	// arrowheads are aimed along the last arrowBackFactor*size of the path
	arrowBackFactor = 1.5
	arrowHeadFactor = 5
)

// ErrNoBlurSource is returned when a blur line is drawn without a blurred
// image to reveal.
var ErrNoBlurSource = errors.New("brush: blur needs a blurred source")

// Surfaces are the targets a line is drawn with.
type Surfaces struct {
	Dst *image.RGBA
	// Blurred is the blurred source image aligned with Dst. Only blur lines
	// read it.
	Blurred *image.RGBA
}

// Draw renders l onto s.Dst.
func Draw(s Surfaces, l Line) error {
	if len(l.Points) == 0 || l.Size <= 0 {
		return nil
	}
	switch l.Brush {
	case Pen:
		stroke(s.Dst, l.Points, l.Size, l.Color)
	case Marker:
		stroke(s.Dst, l.Points, l.Size, colorutil.WithAlpha(l.Color, markerAlpha))
	case Arrow:
		strokeArrow(s.Dst, l)
	case Neon:
		mask := strokeMask(s.Dst.Bounds(), l.Points, l.Size)
		c := l.Color
		c.A = 255
		render.ApplyGlow(s.Dst, mask, render.GlowOptions{Radius: int(math.Ceil(l.Size)), Color: c, Passes: 2})
		stroke(s.Dst, l.Points, l.Size, color.NRGBA{255, 255, 255, 255})
	case Eraser:
		render.DestinationOut(s.Dst, strokeMask(s.Dst.Bounds(), l.Points, l.Size))
	case Blur:
		if s.Blurred == nil {
			return ErrNoBlurSource
		}
		mask := strokeMask(s.Dst.Bounds(), l.Points, l.Size)
		bb := l.Bounds()
		r := image.Rect(
			int(math.Floor(bb.Left)), int(math.Floor(bb.Top)),
			int(math.Ceil(bb.Right())), int(math.Ceil(bb.Bottom())),
		)
		masked := render.SourceIn(s.Blurred, mask, r)
		draw.Draw(s.Dst, masked.Bounds(), masked, masked.Bounds().Min, draw.Over)
	default:
		return fmt.Errorf("brush: unknown kind %d", int(l.Brush))
	}
	return nil
}

func fp(p geometry.Point) fixed.Point26_6 { return rasterx.ToFixedP(p.X, p.Y) }

// addPath appends the smoothed path through pts: quadratic segments whose
// control points are the samples and whose ends are the sample midpoints.
func addPath(a rasterx.Adder, pts []geometry.Point) {
	a.Start(fp(pts[0]))
	for i := 1; i < len(pts)-1; i++ {
		a.QuadBezier(fp(pts[i]), fp(pts[i].Mid(pts[i+1])))
	}
	a.Line(fp(pts[len(pts)-1]))
}

func newDasher(dst draw.Image, size float64) (*rasterx.Dasher, *rasterx.ScannerGV) {
	b := dst.Bounds()
	scanner := rasterx.NewScannerGV(b.Dx(), b.Dy(), dst, b)
	d := rasterx.NewDasher(b.Dx(), b.Dy(), scanner)
	d.SetStroke(fixed.Int26_6(size*64), 0, rasterx.RoundCap, rasterx.RoundCap, rasterx.RoundGap, rasterx.Round, nil, 0)
	return d, scanner
}

// dot fills a circle of diameter size, the rendering of a one point line.
func dot(dst draw.Image, p geometry.Point, size float64, c color.Color) {
	b := dst.Bounds()
	scanner := rasterx.NewScannerGV(b.Dx(), b.Dy(), dst, b)
	f := rasterx.NewFiller(b.Dx(), b.Dy(), scanner)
	rasterx.AddCircle(p.X, p.Y, size/2, f)
	f.SetColor(c)
	f.Draw()
}

func stroke(dst draw.Image, pts []geometry.Point, size float64, c color.Color) {
	if len(pts) == 1 {
		dot(dst, pts[0], size, c)
		return
	}
	d, _ := newDasher(dst, size)
	d.SetColor(c)
	addPath(d, pts)
	d.Stop(false)
	d.Draw()
}

// strokeMask returns the coverage of the stroke as an alpha mask.
func strokeMask(r image.Rectangle, pts []geometry.Point, size float64) *image.Alpha {
	mask := image.NewAlpha(r)
	stroke(mask, pts, size, color.White)
	return mask
}

// arrowBase walks back from the tip until the path is arrowBackFactor*size
// away so closely spaced samples do not make the head jitter.
func arrowBase(pts []geometry.Point, size float64) geometry.Point {
	tip := pts[len(pts)-1]
	limit := arrowBackFactor * size
	for i := len(pts) - 2; i >= 0; i-- {
		if tip.Dist(pts[i]) >= limit {
			return pts[i]
		}
	}
	return pts[0]
}

// ArrowHead returns the tip and the two ends of the arrowhead lines for l.
func ArrowHead(l Line) (tip, left, right geometry.Point, ok bool) {
	if len(l.Points) < 2 {
		return tip, left, right, false
	}
	tip = l.Points[len(l.Points)-1]
	base := arrowBase(l.Points, l.Size)
	if base == tip {
		return tip, left, right, false
	}
	dir := tip.Sub(base).Angle()
	length := arrowHeadFactor * l.Size
	back := func(a float64) geometry.Point {
		s, c := math.Sincos(a)
		return tip.Sub(geometry.Pt(c, s).Mul(length))
	}
	return tip, back(dir - math.Pi/4), back(dir + math.Pi/4), true
}

func strokeArrow(dst draw.Image, l Line) {
	if len(l.Points) == 1 {
		dot(dst, l.Points[0], l.Size, l.Color)
		return
	}
	d, _ := newDasher(dst, l.Size)
	d.SetColor(l.Color)
	addPath(d, l.Points)
	d.Stop(false)
	if tip, left, right, ok := ArrowHead(l); ok {
		for _, end := range []geometry.Point{left, right} {
			d.Start(fp(tip))
			d.Line(fp(end))
			d.Stop(false)
		}
	}
	d.Draw()
}
