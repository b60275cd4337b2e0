package render

import (
	"image"
	"image/color"
	"image/draw"
)

// GlowOptions configures the coloured halo drawn behind neon strokes.
type GlowOptions struct {
	Radius int
	Color  color.NRGBA
	// Passes stacks the blurred mask to strengthen the halo near the stroke.
	Passes int
}

// ApplyGlow composites a blurred, coloured copy of mask onto dst. mask and dst
// share coordinates; the halo is clipped to dst.
func ApplyGlow(dst *image.RGBA, mask *image.Alpha, opts GlowOptions) {
	if dst == nil || mask == nil || mask.Bounds().Empty() {
		return
	}
	radius := opts.Radius
	if radius < 0 {
		radius = 0
	}
	passes := opts.Passes
	if passes <= 0 {
		passes = 1
	}
	// pad so the halo can spread past the stroke edge before clipping
	padded := image.NewAlpha(mask.Bounds().Inset(-radius))
	draw.Draw(padded, mask.Bounds(), mask, mask.Bounds().Min, draw.Src)
	blurred := blurAlpha(padded, radius/2+1)
	src := image.NewUniform(opts.Color)
	r := blurred.Bounds().Intersect(dst.Bounds())
	for i := 0; i < passes; i++ {
		draw.DrawMask(dst, r, src, image.Point{}, blurred, r.Min, draw.Over)
	}
}
