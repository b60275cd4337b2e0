package sticker

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"os"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	_ "golang.org/x/image/webp"
)

// defaultSVGSize is used when an SVG has no intrinsic size.
const defaultSVGSize = 512

// Renderer produces the frames of one sticker. Frames are addressed from 0
// to TotalFrames inclusive.
type Renderer interface {
	Animated() bool
	// TotalFrames is the index of the last frame.
	TotalFrames() int
	SetFrame(ctx context.Context, n int) error
	Frame() image.Image
	Size() (w, h int)
}

// Open reads d from disk and returns its renderer.
func Open(ctx context.Context, d Document) (Renderer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(d.Path)
	if err != nil {
		return nil, fmt.Errorf("sticker %s: %w", d.ID, err)
	}
	defer f.Close()
	r, err := Decode(f, d)
	if err != nil {
		return nil, fmt.Errorf("sticker %s: %w", d.ID, err)
	}
	return r, nil
}

// Decode builds a renderer from encoded sticker data.
func Decode(r io.Reader, d Document) (Renderer, error) {
	format := d.Format
	if format == "" {
		if f, ok := FormatForPath(d.Path); ok {
			format = f
		}
	}
	switch format {
	case FormatGIF:
		return decodeGIF(r)
	case FormatSVG:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		img, err := rasterizeSVG(data, d.Width, d.Height)
		if err != nil {
			return nil, err
		}
		return &static{img: img}, nil
	default:
		img, _, err := image.Decode(r)
		if err != nil {
			return nil, err
		}
		return &static{img: img}, nil
	}
}

// static is a single frame sticker.
type static struct {
	img image.Image
}

func (s *static) Animated() bool     { return false }
func (s *static) TotalFrames() int   { return 0 }
func (s *static) Frame() image.Image { return s.img }
func (s *static) Size() (int, int)   { return s.img.Bounds().Dx(), s.img.Bounds().Dy() }

func (s *static) SetFrame(ctx context.Context, n int) error { return ctx.Err() }

// animated holds fully composited frames.
type animated struct {
	frames []*image.RGBA
	cur    int
}

func (a *animated) Animated() bool     { return len(a.frames) > 1 }
func (a *animated) TotalFrames() int   { return len(a.frames) - 1 }
func (a *animated) Frame() image.Image { return a.frames[a.cur] }
func (a *animated) Size() (int, int) {
	b := a.frames[0].Bounds()
	return b.Dx(), b.Dy()
}

func (a *animated) SetFrame(ctx context.Context, n int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n < 0 || n >= len(a.frames) {
		return fmt.Errorf("frame %d out of range [0,%d]", n, len(a.frames)-1)
	}
	a.cur = n
	return nil
}

// decodeGIF composites every GIF frame onto the logical screen honouring
// the frame disposal methods.
func decodeGIF(r io.Reader) (*animated, error) {
	g, err := gif.DecodeAll(r)
	if err != nil {
		return nil, err
	}
	if len(g.Image) == 0 {
		return nil, fmt.Errorf("gif has no frames")
	}
	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() {
		bounds = g.Image[0].Bounds()
	}
	canvas := image.NewRGBA(bounds)
	out := &animated{}
	for i, frame := range g.Image {
		var prev *image.RGBA
		disposal := byte(gif.DisposalNone)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		if disposal == gif.DisposalPrevious {
			prev = image.NewRGBA(bounds)
			copy(prev.Pix, canvas.Pix)
		}
		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
		snap := image.NewRGBA(bounds)
		copy(snap.Pix, canvas.Pix)
		out.frames = append(out.frames, snap)
		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = prev
		}
	}
	return out, nil
}

func rasterizeSVG(data []byte, targetW, targetH int) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	intrW := int(math.Ceil(icon.ViewBox.W))
	intrH := int(math.Ceil(icon.ViewBox.H))
	if intrW <= 0 {
		intrW = defaultSVGSize
	}
	if intrH <= 0 {
		intrH = defaultSVGSize
	}
	w, h := intrW, intrH
	if targetW > 0 && targetH > 0 {
		scale := math.Min(float64(targetW)/float64(intrW), float64(targetH)/float64(intrH))
		w = max(1, int(math.Round(float64(intrW)*scale)))
		h = max(1, int(math.Round(float64(intrH)*scale)))
	}
	icon.SetTarget(0, 0, float64(w), float64(h))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)
	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	icon.Draw(dasher, 1.0)
	return dst, nil
}
