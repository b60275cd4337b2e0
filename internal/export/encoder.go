package export

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/png"
	"math"
)

// FrameEncoder turns rendered frames into an output file. Begin is called
// once, then Encode per frame in order, then Finish.
type FrameEncoder interface {
	Begin(w, h int, frameRate float64) error
	Encode(frame image.Image) error
	Finish() ([]byte, error)
	MIME() string
}

// PNGEncoder writes a single still frame.
type PNGEncoder struct {
	frame image.Image
}

func (e *PNGEncoder) Begin(w, h int, frameRate float64) error { return nil }

func (e *PNGEncoder) Encode(frame image.Image) error {
	if e.frame != nil {
		return errors.New("png: only one frame can be encoded")
	}
	e.frame = frame
	return nil
}

func (e *PNGEncoder) Finish() ([]byte, error) {
	if e.frame == nil {
		return nil, errors.New("png: no frame")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, e.frame); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *PNGEncoder) MIME() string { return "image/png" }

// GIFEncoder writes an animation. Frames are dithered to the Plan 9
// palette.
type GIFEncoder struct {
	g     gif.GIF
	delay int
}

func (e *GIFEncoder) Begin(w, h int, frameRate float64) error {
	if frameRate <= 0 {
		frameRate = DefaultFrameRate
	}
	e.g = gif.GIF{Config: image.Config{Width: w, Height: h, ColorModel: color.Palette(palette.Plan9)}}
	e.delay = max(1, int(math.Round(100/frameRate)))
	return nil
}

func (e *GIFEncoder) Encode(frame image.Image) error {
	b := frame.Bounds()
	p := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), palette.Plan9)
	draw.FloydSteinberg.Draw(p, p.Bounds(), frame, b.Min)
	e.g.Image = append(e.g.Image, p)
	e.g.Delay = append(e.g.Delay, e.delay)
	e.g.Disposal = append(e.g.Disposal, gif.DisposalNone)
	return nil
}

func (e *GIFEncoder) Finish() ([]byte, error) {
	if len(e.g.Image) == 0 {
		return nil, errors.New("gif: no frames")
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, &e.g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *GIFEncoder) MIME() string { return "image/gif" }

// DefaultEncoder picks PNG for stills and GIF for animations.
func DefaultEncoder(animated bool) FrameEncoder {
	if animated {
		return &GIFEncoder{}
	}
	return &PNGEncoder{}
}
