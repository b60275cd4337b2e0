package render

import (
	"image"
	"image/color"
	"image/draw"
)

// Clone returns a copy of img with the same bounds.
func Clone(img *image.RGBA) *image.RGBA {
	out := image.NewRGBA(img.Bounds())
	copy(out.Pix, img.Pix)
	return out
}

// CopyInto overwrites dst with src. Both must have the same bounds.
func CopyInto(dst, src *image.RGBA) {
	copy(dst.Pix, src.Pix)
}

// Clear makes every pixel of img transparent.
func Clear(img *image.RGBA) {
	clear(img.Pix)
}

// ToRGBA converts img to a zero based RGBA image.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// DestinationOut removes coverage from dst wherever mask is set, like the
// destination-out composite operation.
func DestinationOut(dst *image.RGBA, mask *image.Alpha) {
	r := dst.Bounds().Intersect(mask.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m := uint32(mask.AlphaAt(x, y).A)
			if m == 0 {
				continue
			}
			i := dst.PixOffset(x, y)
			keep := 255 - m
			for c := 0; c < 4; c++ {
				dst.Pix[i+c] = uint8((uint32(dst.Pix[i+c])*keep + 127) / 255)
			}
		}
	}
}

// SourceIn returns src restricted to r and scaled by mask, like drawing a
// mask and then src with the source-in composite operation.
func SourceIn(src *image.RGBA, mask *image.Alpha, r image.Rectangle) *image.RGBA {
	r = r.Intersect(src.Bounds()).Intersect(mask.Bounds())
	out := image.NewRGBA(r)
	draw.DrawMask(out, r, src, r.Min, mask, r.Min, draw.Src)
	return out
}

// Fill paints the whole of img with c.
func Fill(img draw.Image, c color.Color) {
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}
