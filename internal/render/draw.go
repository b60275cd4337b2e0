// Package render draws the source image under the editor transform and
// provides the raster operations the brush and export code compose with.
package render

import (
	"errors"
	"image"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/example/mediaedit/internal/geometry"
	"github.com/example/mediaedit/internal/transform"
)

// Payload is the input image handed to a Drawer.
type Payload struct {
	Image image.Image
}

// Params carries the final transform for one draw.
type Params struct {
	Final transform.Final
}

// Drawer renders a payload onto a surface. Implementations must be pure: the
// same inputs always produce the same pixels.
type Drawer interface {
	Draw(dst draw.Image, p Payload, params Params) error
}

// ErrNoImage is returned when the payload has no image.
var ErrNoImage = errors.New("render: no image")

// Software is a Drawer that resamples on the CPU.
type Software struct {
	// Interpolator defaults to bilinear.
	Interpolator xdraw.Interpolator
}

// Draw clears dst and draws the payload centred on it under params.Final.
func (s Software) Draw(dst draw.Image, p Payload, params Params) error {
	if p.Image == nil {
		return ErrNoImage
	}
	b := dst.Bounds()
	draw.Draw(dst, b, image.Transparent, image.Point{}, draw.Src)
	src := p.Image.Bounds()
	size := geometry.Size{W: float64(b.Dx()), H: float64(b.Dy())}
	a := params.Final.Project(size).Affine()
	// shift so image-space origin sits at the source centre and the surface
	// origin at dst.Bounds().Min
	cx := float64(src.Min.X) + float64(src.Dx())/2
	cy := float64(src.Min.Y) + float64(src.Dy())/2
	s2d := f64.Aff3{
		a[0], a[1], a[2] - a[0]*cx - a[1]*cy + float64(b.Min.X),
		a[3], a[4], a[5] - a[3]*cx - a[4]*cy + float64(b.Min.Y),
	}
	interp := s.Interpolator
	if interp == nil {
		interp = xdraw.BiLinear
	}
	interp.Transform(dst, s2d, p.Image, src, xdraw.Over, nil)
	return nil
}

// Place draws src centred at c on dst, scaled by scale and rotated by
// rotation radians.
func Place(dst draw.Image, src image.Image, c geometry.Point, scale, rotation float64) {
	if src == nil || scale <= 0 {
		return
	}
	sb := src.Bounds()
	sn, cs := math.Sincos(rotation)
	cx := float64(sb.Min.X) + float64(sb.Dx())/2
	cy := float64(sb.Min.Y) + float64(sb.Dy())/2
	a, bb := cs*scale, -sn*scale
	d, e := sn*scale, cs*scale
	s2d := f64.Aff3{
		a, bb, c.X - a*cx - bb*cy,
		d, e, c.Y - d*cx - e*cy,
	}
	xdraw.BiLinear.Transform(dst, s2d, src, sb, xdraw.Over, nil)
}
