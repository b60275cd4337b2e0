package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/example/mediaedit/internal/geometry"
	"github.com/example/mediaedit/internal/transform"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	Fill(img, c)
	return img
}

func TestSoftwareDrawCentresImage(t *testing.T) {
	src := solid(10, 10, color.RGBA{R: 255, A: 255})
	dst := image.NewRGBA(image.Rect(0, 0, 40, 40))
	f := transform.Final{Flip: geometry.Pt(1, 1), Scale: 1}
	if err := (Software{}).Draw(dst, Payload{Image: src}, Params{Final: f}); err != nil {
		t.Fatalf("draw: %v", err)
	}
	if got := dst.RGBAAt(20, 20); got.R != 255 || got.A != 255 {
		t.Fatalf("centre pixel %+v", got)
	}
	if got := dst.RGBAAt(2, 2); got.A != 0 {
		t.Fatalf("corner should stay transparent, got %+v", got)
	}
	if got := dst.RGBAAt(17, 17); got.A == 0 {
		t.Fatalf("image should cover (17,17)")
	}
}

func TestSoftwareDrawTranslatesAndScales(t *testing.T) {
	src := solid(10, 10, color.RGBA{G: 255, A: 255})
	dst := image.NewRGBA(image.Rect(0, 0, 60, 60))
	f := transform.Final{Flip: geometry.Pt(1, 1), Scale: 2, Translation: geometry.Pt(10, 0)}
	if err := (Software{}).Draw(dst, Payload{Image: src}, Params{Final: f}); err != nil {
		t.Fatalf("draw: %v", err)
	}
	// 20x20 square centred at (40,30)
	if dst.RGBAAt(32, 30).A == 0 || dst.RGBAAt(48, 30).A == 0 {
		t.Fatalf("scaled image missing")
	}
	if dst.RGBAAt(25, 30).A != 0 || dst.RGBAAt(55, 30).A != 0 {
		t.Fatalf("image drawn outside its bounds")
	}
}

func TestSoftwareDrawNoImage(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 4, 4))
	if err := (Software{}).Draw(dst, Payload{}, Params{}); err != ErrNoImage {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}
}

func TestDestinationOut(t *testing.T) {
	dst := solid(4, 4, color.RGBA{B: 255, A: 255})
	mask := image.NewAlpha(image.Rect(0, 0, 4, 4))
	mask.SetAlpha(1, 1, color.Alpha{A: 255})
	mask.SetAlpha(2, 2, color.Alpha{A: 128})
	DestinationOut(dst, mask)
	if dst.RGBAAt(1, 1).A != 0 {
		t.Fatalf("fully masked pixel should be erased")
	}
	if a := dst.RGBAAt(2, 2).A; a < 120 || a > 130 {
		t.Fatalf("half masked alpha %d", a)
	}
	if dst.RGBAAt(0, 0).A != 255 {
		t.Fatalf("unmasked pixel changed")
	}
}

func TestSourceIn(t *testing.T) {
	src := solid(8, 8, color.RGBA{R: 200, A: 255})
	mask := image.NewAlpha(image.Rect(0, 0, 8, 8))
	mask.SetAlpha(3, 3, color.Alpha{A: 255})
	out := SourceIn(src, mask, image.Rect(2, 2, 5, 5))
	if !out.Bounds().Eq(image.Rect(2, 2, 5, 5)) {
		t.Fatalf("bounds %v", out.Bounds())
	}
	if out.RGBAAt(3, 3).R != 200 || out.RGBAAt(2, 2).A != 0 {
		t.Fatalf("source-in mismatch %+v %+v", out.RGBAAt(3, 3), out.RGBAAt(2, 2))
	}
}

func TestBlurSpreads(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 21, 21))
	img.SetRGBA(10, 10, color.RGBA{A: 255})
	out := Blur(img, 2)
	if out.RGBAAt(12, 10).A == 0 {
		t.Fatalf("blur should reach neighbours")
	}
	if out.RGBAAt(10, 10).A >= 255 {
		t.Fatalf("centre should be attenuated")
	}
	same := Blur(img, 0)
	if same == img || same.RGBAAt(10, 10).A != 255 {
		t.Fatalf("zero blur should return an identical copy")
	}
}

func TestApplyGlow(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 30, 30))
	mask := image.NewAlpha(image.Rect(10, 10, 20, 20))
	for y := 10; y < 20; y++ {
		for x := 10; x < 20; x++ {
			mask.SetAlpha(x, y, color.Alpha{A: 255})
		}
	}
	ApplyGlow(dst, mask, GlowOptions{Radius: 6, Color: color.NRGBA{G: 255, A: 255}})
	if dst.RGBAAt(15, 15).G == 0 {
		t.Fatalf("glow missing inside the mask")
	}
	if dst.RGBAAt(21, 15).A == 0 {
		t.Fatalf("glow should spread past the mask edge")
	}
	if dst.RGBAAt(0, 0).A != 0 {
		t.Fatalf("glow spread too far")
	}
}

func TestPlace(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 50, 50))
	src := solid(10, 4, color.RGBA{R: 255, A: 255})
	Place(dst, src, geometry.Pt(25, 25), 2, 0)
	if dst.RGBAAt(25, 25).A == 0 || dst.RGBAAt(33, 25).A == 0 {
		t.Fatalf("placed image missing")
	}
	if dst.RGBAAt(25, 32).A != 0 {
		t.Fatalf("placed image too tall")
	}
}
