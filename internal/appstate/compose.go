package appstate

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"math"
	"time"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"

	"github.com/example/mediaedit/internal/crop"
	"github.com/example/mediaedit/internal/export"
	"github.com/example/mediaedit/internal/geometry"
	"github.com/example/mediaedit/internal/layers"
	"github.com/example/mediaedit/internal/logging"
	"github.com/example/mediaedit/internal/render"
	"github.com/example/mediaedit/internal/transform"
)

var (
	shade       = color.RGBA{0, 0, 0, 140}
	handleColor = color.RGBA{255, 255, 255, 255}
	selectColor = color.RGBA{255, 255, 255, 220}
)

// Compose draws the live preview at now onto a canvas sized surface:
// backdrop, image, strokes, layers and the tool overlays.
func (e *Editor) Compose(ctx context.Context, now time.Time) *image.RGBA {
	w, h := e.surfaceSize()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	drawBackdrop(dst)
	if e.started.IsZero() {
		e.started = now
	}

	s := e.Session
	progress := e.anim.Progress(now)
	fin := transform.ComputeAnimated(s.Inputs(false), progress)
	img := image.NewRGBA(dst.Bounds())
	if err := (render.Software{}).Draw(img, render.Payload{Image: e.base}, render.Params{Final: fin}); err != nil {
		logging.Logger().Warn("edit: draw image", "err", err)
	}
	draw.Draw(dst, dst.Bounds(), img, image.Point{}, draw.Over)
	if ctx.Err() != nil {
		return dst
	}

	draw.Draw(dst, dst.Bounds(), e.engine.Image(), image.Point{}, draw.Over)

	for _, l := range s.Layers.RenderOrder() {
		if ctx.Err() != nil {
			return dst
		}
		e.drawLayer(ctx, dst, l, now)
	}

	pr := s.PixelRatio
	if id, ok := s.Layers.Selected(); ok {
		if box, ok := s.Layers.Handles(id); ok {
			pts := make([]geometry.Point, len(box))
			for i, p := range box {
				pts[i] = p.Mul(pr)
			}
			outline(dst, pts, selectColor)
			drawHandle(dst, pts[2], handleColor)
		}
	}

	if e.text != nil {
		info := layers.TextInfo{Text: e.text.buf + "|", Color: e.engine.Color, Size: layers.DefaultTextSize}
		if img, err := layers.RasterizeText(info, pr); err == nil {
			render.Place(dst, img, e.text.pos.Mul(pr), 1, 0)
		}
	}

	if progress >= 1 && e.Tab() == layers.TabCrop {
		e.drawCropOverlay(dst)
	}
	return dst
}

func (e *Editor) drawLayer(ctx context.Context, dst *image.RGBA, l layers.Layer, now time.Time) {
	pr := e.Session.PixelRatio
	at := l.Position.Mul(pr)
	switch l.Kind {
	case layers.Text:
		if l.Text == nil {
			return
		}
		ri, ok := e.Session.Layers.RenderInfo(l.ID)
		if !ok {
			return
		}
		img, err := layers.RasterizeLayout(*l.Text, ri, l.Scale*pr)
		if err != nil {
			logging.Logger().Warn("edit: text layer", "id", l.ID, "err", err)
			return
		}
		render.Place(dst, img, at, 1, l.Rotation)
	case layers.Sticker:
		if l.Sticker == nil {
			return
		}
		r, ok := e.renderers[l.Sticker.ID]
		if !ok {
			var err error
			if r, err = e.Opener(ctx, *l.Sticker); err != nil {
				logging.Logger().Warn("edit: sticker layer", "id", l.ID, "err", err)
				return
			}
			e.renderers[l.Sticker.ID] = r
		}
		fps := e.Export.FrameRate
		if fps <= 0 {
			fps = export.DefaultFrameRate
		}
		n := int(now.Sub(e.started).Seconds() * fps)
		if err := r.SetFrame(ctx, n%(r.TotalFrames()+1)); err != nil {
			return
		}
		fw, fh := r.Size()
		if fw <= 0 || fh <= 0 {
			return
		}
		box, ok := e.Session.Layers.RenderInfo(l.ID)
		if !ok {
			box = layers.StickerInfo(l.Sticker.Width, l.Sticker.Height)
		}
		fit := math.Min(box.Width/float64(fw), box.Height/float64(fh))
		render.Place(dst, r.Frame(), at, fit*l.Scale*pr, l.Rotation)
	}
}

// drawCropOverlay shades the canvas outside the crop window and marks the
// handles.
func (e *Editor) drawCropOverlay(dst *image.RGBA) {
	s := e.Session
	win := s.Frame().Window(s.State.Values())
	if e.resize != nil {
		win = e.resize.Rect()
	}
	pr := s.PixelRatio
	r := image.Rect(
		int(math.Round(win.Left*pr)), int(math.Round(win.Top*pr)),
		int(math.Round(win.Right()*pr)), int(math.Round(win.Bottom()*pr)),
	)
	b := dst.Bounds()
	for _, band := range []image.Rectangle{
		image.Rect(b.Min.X, b.Min.Y, b.Max.X, r.Min.Y),
		image.Rect(b.Min.X, r.Max.Y, b.Max.X, b.Max.Y),
		image.Rect(b.Min.X, r.Min.Y, r.Min.X, r.Max.Y),
		image.Rect(r.Max.X, r.Min.Y, b.Max.X, r.Max.Y),
	} {
		draw.Draw(dst, band.Intersect(b), &image.Uniform{shade}, image.Point{}, draw.Over)
	}
	corners := win.Corners()
	pts := make([]geometry.Point, len(corners))
	for i, c := range corners {
		pts[i] = c.Mul(pr)
	}
	outline(dst, pts, handleColor)
	for _, h := range crop.Handles {
		drawHandle(dst, h.Position(win).Mul(pr), handleColor)
	}
}

func drawHandle(dst *image.RGBA, p geometry.Point, c color.Color) {
	const half = 5
	r := image.Rect(int(p.X)-half, int(p.Y)-half, int(p.X)+half, int(p.Y)+half)
	draw.Draw(dst, r.Intersect(dst.Bounds()), &image.Uniform{c}, image.Point{}, draw.Src)
}

// outline strokes the closed polygon pts with a dashed line.
func outline(dst *image.RGBA, pts []geometry.Point, c color.Color) {
	if len(pts) < 2 {
		return
	}
	b := dst.Bounds()
	sc := rasterx.NewScannerGV(b.Dx(), b.Dy(), dst, b)
	d := rasterx.NewDasher(b.Dx(), b.Dy(), sc)
	d.SetStroke(2*64, 0, rasterx.ButtCap, rasterx.ButtCap, rasterx.FlatGap, rasterx.Miter, []float64{6, 4}, 0)
	d.Start(fixed.Point26_6{X: fixed.Int26_6(pts[0].X * 64), Y: fixed.Int26_6(pts[0].Y * 64)})
	for _, p := range pts[1:] {
		d.Line(fixed.Point26_6{X: fixed.Int26_6(p.X * 64), Y: fixed.Int26_6(p.Y * 64)})
	}
	d.Stop(true)
	d.SetColor(c)
	d.Draw()
}
