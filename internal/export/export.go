// Package export renders an edit session at output resolution: the source
// image under its transform, the brush strokes and every layer, for one or
// many frames.
package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"math"

	"github.com/example/mediaedit/internal/brush"
	"github.com/example/mediaedit/internal/geometry"
	"github.com/example/mediaedit/internal/layers"
	"github.com/example/mediaedit/internal/logging"
	"github.com/example/mediaedit/internal/render"
	"github.com/example/mediaedit/internal/sticker"
	"github.com/example/mediaedit/internal/transform"
)

const (
	SideMin          = 100
	SideMax          = 2560
	DefaultFrameRate = 30
)

var (
	// ErrNoImage is returned when the source image is missing.
	ErrNoImage = errors.New("export: no source image")
	// ErrEncode wraps failures reported by the frame encoder.
	ErrEncode = errors.New("export: encode failed")
)

// StickerOpener returns the renderer of a sticker document.
type StickerOpener func(ctx context.Context, d sticker.Document) (sticker.Renderer, error)

// Input is the session state to render. Canvas, CropOffset and PixelRatio
// describe the live preview the lines and layers were placed on: line
// points are device pixels, layer positions are canvas units. RenderInfo
// holds the measured layout of each layer by id; text layers without an
// entry are skipped.
type Input struct {
	Image       image.Image
	OriginalSrc string
	SessionRef  string
	Values      transform.Values
	Canvas      geometry.Size
	CropOffset  geometry.Rect
	PixelRatio  float64
	Lines       []brush.Line
	Layers      []layers.Layer
	RenderInfo  map[int]layers.RenderInfo
}

// Options tune the output.
type Options struct {
	SideMin    int
	SideMax    int
	FrameRate  float64
	MaxFrames  int
	BlurRadius float64
	Drawer     render.Drawer
	Stickers   StickerOpener
	NewEncoder func(animated bool) FrameEncoder
	// OnError receives encoder failures before Render returns them.
	OnError func(error)
}

func (o Options) withDefaults() Options {
	if o.SideMin <= 0 {
		o.SideMin = SideMin
	}
	if o.SideMax <= 0 {
		o.SideMax = SideMax
	}
	if o.FrameRate <= 0 {
		o.FrameRate = DefaultFrameRate
	}
	if o.BlurRadius <= 0 {
		o.BlurRadius = brush.DefaultBlurRadius
	}
	if o.Drawer == nil {
		o.Drawer = render.Software{}
	}
	if o.Stickers == nil {
		o.Stickers = sticker.Open
	}
	if o.NewEncoder == nil {
		o.NewEncoder = DefaultEncoder
	}
	return o
}

// Result is the encoded output.
type Result struct {
	Data        []byte
	MIME        string
	Width       int
	Height      int
	Frames      int
	OriginalSrc string
	SessionRef  string
}

// OutputSize returns the export resolution: the source width divided by the
// scale at the crop ratio, fitted into [sideMin, sideMax].
func OutputSize(img geometry.Size, v transform.Values, sideMin, sideMax int) (int, int) {
	ratio := v.RatioOrDefault(img.Ratio())
	scale := v.Scale
	if scale <= 0 {
		scale = 1
	}
	w := img.W / scale
	h := w / ratio
	lo, hi := float64(sideMin), float64(sideMax)
	if w > hi || h > hi {
		w, h = geometry.SnapToViewport(ratio, hi, hi)
	}
	if short := math.Min(w, h); short < lo {
		w, h = w*lo/short, h*lo/short
		if w > hi || h > hi {
			w, h = geometry.SnapToViewport(ratio, hi, hi)
		}
	}
	return max(1, int(math.Round(w))), max(1, int(math.Round(h)))
}

// placed is a layer resolved for drawing at output resolution.
type placed struct {
	layer    layers.Layer
	center   geometry.Point
	scale    float64
	text     *image.RGBA
	renderer sticker.Renderer
	box      layers.RenderInfo
}

// Render produces the output file for in. Still sessions yield one frame;
// sessions with animated stickers yield one frame per step of the longest
// animation, every sticker looping over its own frames.
func Render(ctx context.Context, in Input, opts Options) (*Result, error) {
	if in.Image == nil {
		return nil, ErrNoImage
	}
	opts = opts.withDefaults()
	log := logging.Logger()

	src := in.Image.Bounds()
	imgSize := geometry.Size{W: float64(src.Dx()), H: float64(src.Dy())}
	w, h := OutputSize(imgSize, in.Values, opts.SideMin, opts.SideMax)
	outSize := geometry.Size{W: float64(w), H: float64(h)}

	pr := in.PixelRatio
	if pr <= 0 {
		pr = 1
	}
	live := transform.Compute(transform.Inputs{
		Canvas:     in.Canvas,
		Values:     in.Values,
		ImageSize:  imgSize,
		CropOffset: in.CropOffset,
		PixelRatio: pr,
	}).Project(geometry.Size{W: in.Canvas.W * pr, H: in.Canvas.H * pr})
	final := transform.Compute(transform.Inputs{
		Canvas:     outSize,
		Values:     in.Values,
		ImageSize:  imgSize,
		CropOffset: in.CropOffset,
		PixelRatio: 1,
	})
	out := final.Project(outSize)
	mapPoint, k := transform.Reproject(live, out)

	base := image.NewRGBA(image.Rect(0, 0, w, h))
	if err := opts.Drawer.Draw(base, render.Payload{Image: in.Image}, render.Params{Final: final}); err != nil {
		return nil, fmt.Errorf("draw image: %w", err)
	}

	if len(in.Lines) > 0 {
		strokes := image.NewRGBA(base.Bounds())
		blurred := render.Blur(base, opts.BlurRadius*k)
		for _, l := range in.Lines {
			if err := brush.Draw(brush.Surfaces{Dst: strokes, Blurred: blurred}, l.Map(mapPoint, k)); err != nil {
				return nil, fmt.Errorf("draw %s line: %w", l.Brush, err)
			}
		}
		draw.Draw(base, base.Bounds(), strokes, image.Point{}, draw.Over)
	}

	toOutput := func(p geometry.Point) geometry.Point { return mapPoint(p.Mul(pr)) }
	items, err := resolveLayers(ctx, in, toOutput, pr*k, opts)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, it := range items {
		if it.renderer != nil && it.renderer.Animated() {
			total = max(total, it.renderer.TotalFrames())
		}
	}
	frames := total + 1
	animated := total > 0
	if opts.MaxFrames > 0 && frames > opts.MaxFrames {
		frames = opts.MaxFrames
	}

	enc := opts.NewEncoder(animated)
	fail := func(err error) error {
		if opts.OnError != nil {
			opts.OnError(err)
		}
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	if err := enc.Begin(w, h, opts.FrameRate); err != nil {
		return nil, fail(err)
	}
	log.Info("export: start", "width", w, "height", h, "frames", frames, "layers", len(items))

	frame := image.NewRGBA(base.Bounds())
	for n := 0; n < frames; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		render.CopyInto(frame, base)
		for _, it := range items {
			if err := it.draw(ctx, frame, n); err != nil {
				return nil, err
			}
		}
		if err := enc.Encode(frame); err != nil {
			return nil, fail(err)
		}
		log.Debug("export: frame", "n", n)
		if frames > 1 {
			frame = image.NewRGBA(base.Bounds())
		}
	}
	data, err := enc.Finish()
	if err != nil {
		return nil, fail(err)
	}
	log.Info("export: done", "bytes", len(data), "mime", enc.MIME())
	return &Result{
		Data:        data,
		MIME:        enc.MIME(),
		Width:       w,
		Height:      h,
		Frames:      frames,
		OriginalSrc: in.OriginalSrc,
		SessionRef:  in.SessionRef,
	}, nil
}

// resolveLayers places every layer at output resolution. toOutput maps a
// layer position in canvas units to output pixels and k converts canvas
// units to output pixels.
func resolveLayers(ctx context.Context, in Input, toOutput func(geometry.Point) geometry.Point, k float64, opts Options) ([]placed, error) {
	var out []placed
	for _, l := range in.Layers {
		p := placed{layer: l, center: toOutput(l.Position), scale: l.Scale * k}
		ri, cached := in.RenderInfo[l.ID]
		switch l.Kind {
		case layers.Text:
			if l.Text == nil {
				logging.Logger().Warn("export: text layer without content", "id", l.ID)
				continue
			}
			if !cached {
				logging.Logger().Warn("export: text layer without render info", "id", l.ID)
				continue
			}
			img, err := layers.RasterizeLayout(*l.Text, ri, p.scale)
			if err != nil {
				logging.Logger().Warn("export: skipping text layer", "id", l.ID, "err", err)
				continue
			}
			p.text = img
		case layers.Sticker:
			if l.Sticker == nil {
				logging.Logger().Warn("export: sticker layer without document", "id", l.ID)
				continue
			}
			r, err := opts.Stickers(ctx, *l.Sticker)
			if err != nil {
				return nil, fmt.Errorf("sticker layer %d: %w", l.ID, err)
			}
			p.renderer = r
			p.box = ri
			if !cached {
				p.box = layers.StickerInfo(l.Sticker.Width, l.Sticker.Height)
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func (p placed) draw(ctx context.Context, dst *image.RGBA, n int) error {
	if p.text != nil {
		render.Place(dst, p.text, p.center, 1, p.layer.Rotation)
		return nil
	}
	if p.renderer == nil {
		return nil
	}
	if err := p.renderer.SetFrame(ctx, n%(p.renderer.TotalFrames()+1)); err != nil {
		return fmt.Errorf("sticker layer %d frame %d: %w", p.layer.ID, n, err)
	}
	fw, fh := p.renderer.Size()
	if fw <= 0 || fh <= 0 {
		return nil
	}
	fit := math.Min(p.box.Width/float64(fw), p.box.Height/float64(fh))
	render.Place(dst, p.renderer.Frame(), p.center, fit*p.scale, p.layer.Rotation)
	return nil
}
