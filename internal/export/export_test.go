package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/example/mediaedit/internal/brush"
	"github.com/example/mediaedit/internal/geometry"
	"github.com/example/mediaedit/internal/layers"
	"github.com/example/mediaedit/internal/render"
	"github.com/example/mediaedit/internal/sticker"
	"github.com/example/mediaedit/internal/transform"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	render.Fill(img, c)
	return img
}

func baseInput() Input {
	return Input{
		Image:       solid(800, 600, color.RGBA{255, 255, 255, 255}),
		OriginalSrc: "photo.png",
		SessionRef:  "sess-1",
		Values:      transform.Identity(800.0 / 600.0),
		Canvas:      geometry.Size{W: 1000, H: 800},
		CropOffset:  geometry.CropOffset(1000, 800),
		PixelRatio:  1,
	}
}

// fakeSticker is a solid sticker with total+1 frames.
type fakeSticker struct {
	total int
	c     color.RGBA
	cur   int
	seen  []int
}

func (f *fakeSticker) Animated() bool   { return f.total > 0 }
func (f *fakeSticker) TotalFrames() int { return f.total }
func (f *fakeSticker) SetFrame(_ context.Context, n int) error {
	f.cur = n
	f.seen = append(f.seen, n)
	return nil
}
func (f *fakeSticker) Frame() image.Image { return solid(10, 10, f.c) }
func (f *fakeSticker) Size() (int, int)   { return 10, 10 }

type countingEncoder struct {
	frames int
	fail   error
}

func (c *countingEncoder) Begin(int, int, float64) error { return nil }
func (c *countingEncoder) Encode(image.Image) error {
	if c.fail != nil {
		return c.fail
	}
	c.frames++
	return nil
}
func (c *countingEncoder) Finish() ([]byte, error) { return []byte("ok"), nil }
func (c *countingEncoder) MIME() string            { return "test/frames" }

func TestOutputSize(t *testing.T) {
	img := geometry.Size{W: 800, H: 600}
	cases := []struct {
		scale, ratio float64
		img          geometry.Size
		w, h         int
	}{
		{1, 0, img, 800, 600},
		{4, 0, img, 200, 150},
		{10, 0, img, 133, 100},
		{1, 0, geometry.Size{W: 6000, H: 4000}, 2560, 1707},
		{1, 1, img, 800, 800},
	}
	for _, c := range cases {
		v := transform.Identity(c.img.Ratio())
		v.Scale = c.scale
		if c.ratio > 0 {
			v.Ratio = c.ratio
		}
		w, h := OutputSize(c.img, v, SideMin, SideMax)
		if w != c.w || h != c.h {
			t.Errorf("scale %v img %v: got %dx%d want %dx%d", c.scale, c.img, w, h, c.w, c.h)
		}
		if w > SideMax || h > SideMax {
			t.Errorf("size %dx%d exceeds SideMax", w, h)
		}
	}
}

func TestRenderStill(t *testing.T) {
	in := baseInput()
	in.Lines = []brush.Line{{
		Color:  color.NRGBA{255, 0, 0, 255},
		Brush:  brush.Pen,
		Size:   20,
		Points: []geometry.Point{{X: 500, Y: 400}},
	}}
	res, err := Render(context.Background(), in, Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if res.MIME != "image/png" || res.Frames != 1 || res.Width != 800 || res.Height != 600 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.OriginalSrc != "photo.png" || res.SessionRef != "sess-1" {
		t.Fatalf("references not carried: %+v", res)
	}
	img, err := png.Decode(bytes.NewReader(res.Data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	// the live canvas centre maps to the output centre; the 20px dot is
	// scaled by 800/1000
	if r, g, _, _ := img.At(400, 300).RGBA(); r>>8 != 255 || g>>8 != 0 {
		t.Fatalf("centre should be red, got %v", img.At(400, 300))
	}
	if _, g, _, _ := img.At(400, 311).RGBA(); g>>8 != 255 {
		t.Fatalf("dot too large at (400,311): %v", img.At(400, 311))
	}
	if _, g, _, _ := img.At(20, 20).RGBA(); g>>8 != 255 {
		t.Fatalf("image corner should stay white")
	}
}

func TestRenderNoImage(t *testing.T) {
	in := baseInput()
	in.Image = nil
	if _, err := Render(context.Background(), in, Options{}); !errors.Is(err, ErrNoImage) {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}
}

func TestRenderAnimatedFrames(t *testing.T) {
	in := baseInput()
	long := &fakeSticker{total: 3, c: color.RGBA{0, 0, 255, 255}}
	short := &fakeSticker{total: 1, c: color.RGBA{0, 255, 0, 255}}
	still := &fakeSticker{c: color.RGBA{255, 0, 0, 255}}
	docs := map[string]*fakeSticker{"long": long, "short": short, "still": still}
	for i, id := range []string{"long", "short", "still"} {
		in.Layers = append(in.Layers, layers.Layer{
			ID: i + 1, Kind: layers.Sticker, Scale: 1,
			Position: geometry.Pt(200+float64(i)*300, 400),
			Sticker:  &sticker.Document{ID: id},
		})
	}
	enc := &countingEncoder{}
	res, err := Render(context.Background(), in, Options{
		Stickers: func(_ context.Context, d sticker.Document) (sticker.Renderer, error) {
			return docs[d.ID], nil
		},
		NewEncoder: func(animated bool) FrameEncoder {
			if !animated {
				t.Fatalf("animated stickers should request an animation encoder")
			}
			return enc
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if res.Frames != 4 || enc.frames != 4 {
		t.Fatalf("frames result=%d encoded=%d want 4", res.Frames, enc.frames)
	}
	want := map[*fakeSticker][]int{long: {0, 1, 2, 3}, short: {0, 1, 0, 1}, still: {0, 0, 0, 0}}
	for s, seq := range want {
		if len(s.seen) != len(seq) {
			t.Fatalf("frames %v want %v", s.seen, seq)
		}
		for i := range seq {
			if s.seen[i] != seq[i] {
				t.Fatalf("frames %v want %v", s.seen, seq)
			}
		}
	}
}

func TestRenderEncodeErrorAborts(t *testing.T) {
	in := baseInput()
	boom := errors.New("disk full")
	var reported error
	res, err := Render(context.Background(), in, Options{
		NewEncoder: func(bool) FrameEncoder { return &countingEncoder{fail: boom} },
		OnError:    func(err error) { reported = err },
	})
	if res != nil || !errors.Is(err, ErrEncode) || !errors.Is(err, boom) {
		t.Fatalf("expected wrapped encode error, got %v %v", res, err)
	}
	if reported != boom {
		t.Fatalf("OnError got %v", reported)
	}
}

func TestRenderStickerFailurePropagates(t *testing.T) {
	in := baseInput()
	in.Layers = []layers.Layer{{ID: 1, Kind: layers.Sticker, Scale: 1, Sticker: &sticker.Document{ID: "gone"}}}
	_, err := Render(context.Background(), in, Options{
		Stickers: func(context.Context, sticker.Document) (sticker.Renderer, error) {
			return nil, sticker.ErrNotFound
		},
	})
	if !errors.Is(err, sticker.ErrNotFound) {
		t.Fatalf("expected sticker error, got %v", err)
	}
}

func TestLayersInInsertionOrder(t *testing.T) {
	in := baseInput()
	first := &fakeSticker{c: color.RGBA{255, 0, 0, 255}}
	second := &fakeSticker{c: color.RGBA{0, 0, 255, 255}}
	docs := map[string]*fakeSticker{"first": first, "second": second}
	for i, id := range []string{"first", "second"} {
		in.Layers = append(in.Layers, layers.Layer{
			ID: i + 1, Kind: layers.Sticker, Scale: 1,
			Position: geometry.Pt(500, 400),
			Sticker:  &sticker.Document{ID: id},
		})
	}
	res, err := Render(context.Background(), in, Options{
		Stickers: func(_ context.Context, d sticker.Document) (sticker.Renderer, error) { return docs[d.ID], nil },
	})
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(res.Data))
	if err != nil {
		t.Fatal(err)
	}
	if r, _, b, _ := img.At(400, 300).RGBA(); b>>8 != 255 || r>>8 != 0 {
		t.Fatalf("later layer should be on top, got %v", img.At(400, 300))
	}
}

// bbox returns the bounds of the pixels of img matching want.
func bbox(img image.Image, want func(r, g, b uint32) bool) image.Rectangle {
	var out image.Rectangle
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if want(r>>8, g>>8, bl>>8) {
				out = out.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	return out
}

func TestLayerPlacementFollowsPixelRatio(t *testing.T) {
	red := func(r, g, b uint32) bool { return r > 200 && g < 60 && b < 60 }
	var boxes []image.Rectangle
	for _, pr := range []float64{1, 2} {
		in := baseInput()
		in.PixelRatio = pr
		in.Layers = []layers.Layer{{
			ID: 1, Kind: layers.Sticker, Scale: 1,
			Position: geometry.Pt(500, 400),
			Sticker:  &sticker.Document{ID: "dot"},
		}}
		in.RenderInfo = map[int]layers.RenderInfo{1: {Width: 10, Height: 10}}
		res, err := Render(context.Background(), in, Options{
			Stickers: func(context.Context, sticker.Document) (sticker.Renderer, error) {
				return &fakeSticker{c: color.RGBA{255, 0, 0, 255}}, nil
			},
		})
		if err != nil {
			t.Fatal(err)
		}
		img, err := png.Decode(bytes.NewReader(res.Data))
		if err != nil {
			t.Fatal(err)
		}
		box := bbox(img, red)
		if box.Empty() {
			t.Fatalf("pixel ratio %v: sticker missing", pr)
		}
		c := box.Min.Add(box.Max).Div(2)
		if c.X < 398 || c.X > 402 || c.Y < 298 || c.Y > 302 {
			t.Fatalf("pixel ratio %v: sticker centred at %v, want the output centre", pr, c)
		}
		boxes = append(boxes, box)
	}
	if d := boxes[0].Dx() - boxes[1].Dx(); d < -1 || d > 1 {
		t.Fatalf("sticker size depends on pixel ratio: %v vs %v", boxes[0], boxes[1])
	}
}

func TestTextLayerWithoutRenderInfoIsSkipped(t *testing.T) {
	ti := layers.TextInfo{Text: "hi", Color: color.NRGBA{0, 0, 255, 255}, Style: layers.StyleBackground, Size: 40}
	in := baseInput()
	in.Layers = []layers.Layer{{ID: 7, Kind: layers.Text, Scale: 1, Position: geometry.Pt(500, 400), Text: &ti}}
	blue := func(r, g, b uint32) bool { return b > 200 && r < 60 && g < 60 }

	res, err := Render(context.Background(), in, Options{})
	if err != nil {
		t.Fatalf("missing render info should not fail the export: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(res.Data))
	if err != nil {
		t.Fatal(err)
	}
	if box := bbox(img, blue); !box.Empty() {
		t.Fatalf("text layer without render info was drawn at %v", box)
	}

	ri, err := layers.LayoutText(ti)
	if err != nil {
		t.Fatal(err)
	}
	in.RenderInfo = map[int]layers.RenderInfo{7: ri}
	if res, err = Render(context.Background(), in, Options{}); err != nil {
		t.Fatal(err)
	}
	if img, err = png.Decode(bytes.NewReader(res.Data)); err != nil {
		t.Fatal(err)
	}
	box := bbox(img, blue)
	if box.Empty() {
		t.Fatalf("text layer with render info missing from the export")
	}
	// the cached box is scaled by 800/1000 into the output
	if w := float64(box.Dx()); w < ri.Width*0.8-3 || w > ri.Width*0.8+3 {
		t.Fatalf("text box width %v, want about %v", w, ri.Width*0.8)
	}
}
