package render

import (
	"image"
	"math"
)

// BoxBlur blurs the premultiplied pixels of src with a box of the given
// radius, one horizontal and one vertical pass.
func BoxBlur(src *image.RGBA, radius int) *image.RGBA {
	out := image.NewRGBA(src.Bounds())
	if radius <= 0 {
		copy(out.Pix, src.Pix)
		return out
	}
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	tmp := make([]uint8, len(src.Pix))
	boxPass(tmp, src.Pix, w, h, 4, src.Stride, 4, radius)
	boxPass(out.Pix, tmp, h, w, src.Stride, 4, 4, radius)
	return out
}

// Blur approximates a gaussian blur of standard deviation sigma with three
// box passes.
func Blur(src *image.RGBA, sigma float64) *image.RGBA {
	out := src
	for _, r := range boxRadii(sigma, 3) {
		out = BoxBlur(out, r)
	}
	if out == src {
		out = BoxBlur(src, 0)
	}
	return out
}

// boxRadii returns n box radii whose successive application approximates a
// gaussian of standard deviation sigma.
func boxRadii(sigma float64, n int) []int {
	if sigma <= 0 {
		return nil
	}
	ideal := math.Sqrt(12*sigma*sigma/float64(n) + 1)
	wl := int(math.Floor(ideal))
	if wl%2 == 0 {
		wl--
	}
	wu := wl + 2
	mIdeal := (12*sigma*sigma - float64(n*wl*wl) - float64(4*n*wl) - float64(3*n)) / float64(-4*wl-4)
	m := int(math.Round(mIdeal))
	radii := make([]int, n)
	for i := range radii {
		if i < m {
			radii[i] = (wl - 1) / 2
		} else {
			radii[i] = (wu - 1) / 2
		}
	}
	return radii
}

// boxPass runs a one dimensional box filter over lines of a pixel buffer.
// lines and length give the number and length of the lines, lineStep and
// pixStep their byte strides, and channels the bytes per pixel.
func boxPass(dst, src []uint8, length, lines, pixStep, lineStep, channels, radius int) {
	prefix := make([]int, length+1)
	for l := 0; l < lines; l++ {
		base := l * lineStep
		for c := 0; c < channels; c++ {
			for i := 0; i < length; i++ {
				prefix[i+1] = prefix[i] + int(src[base+i*pixStep+c])
			}
			for i := 0; i < length; i++ {
				i0 := i - radius
				if i0 < 0 {
					i0 = 0
				}
				i1 := i + radius
				if i1 >= length {
					i1 = length - 1
				}
				sum := prefix[i1+1] - prefix[i0]
				dst[base+i*pixStep+c] = uint8(sum / (i1 - i0 + 1))
			}
		}
	}
}

func blurAlpha(src *image.Alpha, radius int) *image.Alpha {
	out := image.NewAlpha(src.Bounds())
	if radius <= 0 {
		copy(out.Pix, src.Pix)
		return out
	}
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	tmp := make([]uint8, len(src.Pix))
	boxPass(tmp, src.Pix, w, h, 1, src.Stride, 1, radius)
	boxPass(out.Pix, tmp, h, w, src.Stride, 1, 1, radius)
	return out
}
