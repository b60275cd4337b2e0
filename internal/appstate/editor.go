package appstate

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/mediaedit/internal/brush"
	"github.com/example/mediaedit/internal/clipboard"
	"github.com/example/mediaedit/internal/crop"
	"github.com/example/mediaedit/internal/export"
	"github.com/example/mediaedit/internal/geometry"
	"github.com/example/mediaedit/internal/gesture"
	"github.com/example/mediaedit/internal/layers"
	"github.com/example/mediaedit/internal/logging"
	"github.com/example/mediaedit/internal/notify"
	"github.com/example/mediaedit/internal/prefs"
	"github.com/example/mediaedit/internal/render"
	"github.com/example/mediaedit/internal/session"
	"github.com/example/mediaedit/internal/sticker"
	"github.com/example/mediaedit/internal/transform"
)

// handleReach is how close, in display units, a press must land to grab a
// crop or layer handle.
const handleReach = 20

// brushSizes are the sizes cycled by the size shortcuts.
var brushSizes = []float64{5, 10, 15, 25, 40}

// pointerGesture is what the current swipe drives.
type pointerGesture int

const (
	gestureNone pointerGesture = iota
	gestureBrush
	gestureCropResize
	gesturePan
	gestureLayerDrag
	gestureLayerResize
	gestureTextPlace
)

// textEdit is text typed into a new or existing text layer.
type textEdit struct {
	id  int
	pos geometry.Point
	buf string
}

// Editor is the window independent part of the edit window: it routes
// pointer and key input to the tools of the active tab and composes the
// live preview.
type Editor struct {
	Session  *session.Session
	Prefs    *prefs.Prefs
	Stickers sticker.Lookup
	Opener   export.StickerOpener
	Export   export.Options
	Notifier *notify.Notifier
	// Output is where Save writes the render.
	Output string

	engine *brush.Engine
	swipe  *gesture.Swipe
	anim   transform.Animation
	base   *image.RGBA

	gesture    pointerGesture
	resize     *crop.Resize
	pan        *crop.Pan
	pressAt    geometry.Point
	now        time.Time
	text       *textEdit
	stickerIdx int
	renderers  map[string]sticker.Renderer
	started    time.Time

	message      string
	messageUntil time.Time
}

// EditorOptions tune a new editor.
type EditorOptions struct {
	Throttle   time.Duration
	BlurRadius float64
	Brush      brush.Kind
	Size       float64
}

// NewEditor prepares an editor for s.
func NewEditor(s *session.Session, p *prefs.Prefs, opts EditorOptions) (*Editor, error) {
	img, err := s.Image()
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = prefs.Load(filepath.Join(os.TempDir(), "mediaedit-prefs.json"))
	}
	e := &Editor{
		Session:   s,
		Prefs:     p,
		Opener:    sticker.Open,
		renderers: map[string]sticker.Renderer{},
		base:      render.ToRGBA(img),
	}
	w, h := e.surfaceSize()
	e.engine = brush.NewEngine(w, h, brush.Options{
		PixelRatio: s.PixelRatio,
		Throttle:   opts.Throttle,
		BlurRadius: opts.BlurRadius,
	})
	e.engine.SetLines(s.Lines())
	e.SetBrush(opts.Brush)
	if opts.Size > 0 {
		e.engine.Size = opts.Size
	}
	e.swipe = gesture.NewSwipe(gesture.Handlers{
		OnStart: e.startGesture,
		OnSwipe: e.swipeGesture,
		OnReset: e.endGesture,
	})
	return e, nil
}

func (e *Editor) surfaceSize() (int, int) {
	s := e.Session
	return int(math.Round(s.Canvas.W * s.PixelRatio)), int(math.Round(s.Canvas.H * s.PixelRatio))
}

// Tab returns the active tool tab.
func (e *Editor) Tab() layers.Tab { return e.Session.Layers.Tab() }

// SetTab switches tools. Entering or leaving the crop tab animates.
func (e *Editor) SetTab(t layers.Tab, now time.Time) {
	prev := e.Tab()
	if prev == t {
		return
	}
	e.commitText()
	e.swipe.Release()
	e.Session.Layers.SetTab(t)
	if (prev == layers.TabCrop) != (t == layers.TabCrop) {
		e.anim.Toggle(t == layers.TabCrop, now)
	}
	if t == layers.TabBrush {
		e.refreshBlurSource()
	}
}

// Brush returns the active brush settings.
func (e *Editor) Brush() (brush.Kind, color.NRGBA, float64) {
	return e.engine.Brush, e.engine.Color, e.engine.Size
}

// SetBrush selects a brush and loads its stored colour.
func (e *Editor) SetBrush(k brush.Kind) {
	e.engine.Brush = k
	e.engine.Color = e.Prefs.BrushColor(k).Color()
	if k == brush.Blur {
		e.refreshBlurSource()
	}
}

// CycleBrush selects the next brush kind.
func (e *Editor) CycleBrush() {
	kinds := brush.Kinds()
	for i, k := range kinds {
		if k == e.engine.Brush {
			e.SetBrush(kinds[(i+1)%len(kinds)])
			return
		}
	}
	e.SetBrush(brush.Pen)
}

// ToggleColorSelector flips the active brush between its swatch and picker
// colour and persists the choice.
func (e *Editor) ToggleColorSelector() {
	k := e.engine.Brush
	bc := e.Prefs.BrushColor(k)
	if bc.Selector == prefs.SelectPicker {
		bc.Selector = prefs.SelectSwatch
	} else {
		bc.Selector = prefs.SelectPicker
	}
	e.Prefs.SetBrushColor(k, bc)
	if err := e.Prefs.Save(); err != nil {
		logging.Logger().Warn("edit: saving prefs", "err", err)
	}
	e.engine.Color = bc.Color()
}

// StepBrushSize moves through brushSizes.
func (e *Editor) StepBrushSize(delta int) {
	idx := 0
	for i, s := range brushSizes {
		if s <= e.engine.Size {
			idx = i
		}
	}
	idx = max(0, min(len(brushSizes)-1, idx+delta))
	e.engine.Size = brushSizes[idx]
}

// refreshBlurSource aligns the blurred helper surface with the image as it
// is currently drawn.
func (e *Editor) refreshBlurSource() {
	w, h := e.surfaceSize()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	fin := transform.Compute(e.Session.Inputs(false))
	if err := (render.Software{}).Draw(dst, render.Payload{Image: e.base}, render.Params{Final: fin}); err != nil {
		logging.Logger().Warn("edit: blur source", "err", err)
		return
	}
	e.engine.SetBlurSource(dst)
}

func (e *Editor) flash(format string, args ...any) {
	e.message = fmt.Sprintf(format, args...)
	e.messageUntil = e.now.Add(2 * time.Second)
	logging.Logger().Info("edit: " + e.message)
}

// Message returns the status line to show at now.
func (e *Editor) Message(now time.Time) string {
	if now.Before(e.messageUntil) {
		return e.message
	}
	return ""
}

// Press starts a pointer gesture at p, in canvas display units.
func (e *Editor) Press(p geometry.Point, now time.Time) {
	e.now = now
	e.swipe.Press(p)
}

// Move reports the pointer at p.
func (e *Editor) Move(p geometry.Point, now time.Time) {
	e.now = now
	e.swipe.Move(p)
}

// Release ends the pointer gesture.
func (e *Editor) Release(now time.Time) {
	e.now = now
	e.swipe.Release()
}

func (e *Editor) cropHandleAt(p geometry.Point) (crop.Handle, bool) {
	win := e.Session.Frame().Window(e.Session.State.Values())
	for _, h := range crop.Handles {
		if h.Position(win).Dist(p) <= handleReach {
			return h, true
		}
	}
	return crop.Handle{}, false
}

func (e *Editor) layerHandleAt(p geometry.Point) (int, bool) {
	c := e.Session.Layers
	id, ok := c.Selected()
	if !ok {
		return 0, false
	}
	box, ok := c.Handles(id)
	if !ok {
		return 0, false
	}
	// the resize handle is the bottom right corner
	if box[2].Dist(p) <= handleReach {
		return id, true
	}
	return 0, false
}

func (e *Editor) startGesture(p geometry.Point) {
	s := e.Session
	e.pressAt = p
	e.gesture = gestureNone
	switch tab := e.Tab(); tab {
	case layers.TabBrush:
		e.engine.Begin(p)
		e.gesture = gestureBrush
	case layers.TabCrop:
		if h, ok := e.cropHandleAt(p); ok {
			e.resize = crop.BeginResize(s.Frame(), s.State.Values(), h)
			e.gesture = gestureCropResize
			return
		}
		e.pan = crop.BeginPan(s.Frame(), s.State.Values())
		e.gesture = gesturePan
	case layers.TabAdjust:
		e.pan = crop.BeginPan(s.Frame(), s.State.Values())
		e.gesture = gesturePan
	case layers.TabText, layers.TabStickers:
		e.commitText()
		if id, ok := e.layerHandleAt(p); ok {
			if err := s.Layers.BeginResize(id, p); err == nil {
				e.gesture = gestureLayerResize
			}
			return
		}
		if id, ok := s.Layers.HitTest(p); ok {
			if err := s.Layers.BeginDrag(id); err == nil {
				e.gesture = gestureLayerDrag
			}
			return
		}
		s.Layers.Deselect()
		if tab == layers.TabText {
			e.gesture = gestureTextPlace
		}
	}
}

func (e *Editor) swipeGesture(dx, dy float64, p geometry.Point) {
	s := e.Session
	switch e.gesture {
	case gestureBrush:
		e.engine.Move(p, e.now)
	case gestureCropResize:
		e.resize.Update(dx, dy)
	case gesturePan:
		s.State.Set(e.pan.Update(dx, dy))
	case gestureLayerDrag:
		s.Layers.DragTo(dx, dy)
	case gestureLayerResize:
		s.Layers.ResizeTo(p)
	}
}

func (e *Editor) endGesture() {
	s := e.Session
	g := e.gesture
	e.gesture = gestureNone
	switch g {
	case gestureBrush:
		if l, ok := e.engine.End(); ok {
			if err := s.AddLine(l); err != nil {
				logging.Logger().Warn("edit: line rejected", "err", err)
			}
		}
	case gestureCropResize:
		s.State.Set(e.resize.Release(s.State.Values()))
		e.resize = nil
	case gesturePan:
		d := e.lastDelta()
		s.State.Set(e.pan.Release(d.X, d.Y))
		e.pan = nil
	case gestureLayerDrag, gestureLayerResize:
		_ = s.Edit(func() error {
			s.Layers.EndGesture()
			return nil
		})
	case gestureTextPlace:
		e.text = &textEdit{pos: e.pressAt}
	}
}

// lastDelta recovers the pan offset from the live transform.
func (e *Editor) lastDelta() geometry.Point {
	if e.pan == nil {
		return geometry.Point{}
	}
	start := e.pan.Update(0, 0).Translation
	return e.Session.State.Values().Translation.Sub(start)
}

// Typing reports whether key input goes to a text layer.
func (e *Editor) Typing() bool { return e.text != nil }

// TypeRune appends r to the text being edited.
func (e *Editor) TypeRune(r rune) {
	if e.text != nil {
		e.text.buf += string(r)
	}
}

// Backspace removes the last typed rune.
func (e *Editor) Backspace() {
	if e.text == nil || e.text.buf == "" {
		return
	}
	rs := []rune(e.text.buf)
	e.text.buf = string(rs[:len(rs)-1])
}

// EditText starts editing the selected text layer.
func (e *Editor) EditText() bool {
	id, ok := e.Session.Layers.Selected()
	if !ok {
		return false
	}
	l, ok := e.Session.Layers.Get(id)
	if !ok || l.Kind != layers.Text || l.Text == nil {
		return false
	}
	e.text = &textEdit{id: id, pos: l.Position, buf: l.Text.Text}
	return true
}

// CancelText drops the text being typed.
func (e *Editor) CancelText() { e.text = nil }

// commitText turns typed text into a layer. Empty text is dropped.
func (e *Editor) commitText() {
	t := e.text
	e.text = nil
	if t == nil || strings.TrimSpace(t.buf) == "" {
		return
	}
	s := e.Session
	k, c, _ := e.Brush()
	info := layers.TextInfo{Text: t.buf, Color: c, Size: layers.DefaultTextSize}
	if !k.HasColor() {
		info.Color = color.NRGBA{255, 255, 255, 255}
	}
	if t.id != 0 {
		if l, ok := s.Layers.Get(t.id); ok && l.Text != nil {
			info = *l.Text
			info.Text = t.buf
		}
		if err := s.UpdateText(t.id, info); err != nil {
			e.flash("text: %v", err)
		}
		return
	}
	if _, err := s.AddText(t.pos, info); err != nil {
		e.flash("text: %v", err)
	}
}

// CommitText finishes typing.
func (e *Editor) CommitText() { e.commitText() }

// PlaceNextSticker adds the next sticker from the lookup's recent list, or
// from the first set of a sticker directory when nothing was used yet, at
// the crop area centre.
func (e *Editor) PlaceNextSticker(ctx context.Context) error {
	if e.Stickers == nil {
		return errors.New("no sticker directory configured")
	}
	docs, err := e.Stickers.GetRecentStickers(ctx)
	if err != nil {
		return err
	}
	dl, isDir := e.Stickers.(*sticker.DirLookup)
	if len(docs) == 0 && isDir {
		names, err := dl.SetNames()
		if err != nil {
			return err
		}
		if len(names) > 0 {
			set, err := dl.GetStickerSet(ctx, names[0])
			if err != nil {
				return err
			}
			docs = set.Documents
		}
	}
	if len(docs) == 0 {
		return sticker.ErrNotFound
	}
	d := docs[e.stickerIdx%len(docs)]
	e.stickerIdx++
	if _, err := e.Session.AddSticker(e.Session.CropOffset().Center(), d); err != nil {
		return err
	}
	if isDir {
		if err := dl.MarkRecent(d); err != nil {
			logging.Logger().Warn("edit: recent stickers", "err", err)
		}
	}
	return nil
}

// RemoveSelected deletes the selected layer.
func (e *Editor) RemoveSelected() error {
	id, ok := e.Session.Layers.Selected()
	if !ok {
		return layers.ErrUnknownLayer
	}
	return e.Session.RemoveLayer(id)
}

// Undo reverts the last edit and redraws the strokes.
func (e *Editor) Undo() error {
	if err := e.Session.Undo(); err != nil {
		return err
	}
	e.engine.SetLines(e.Session.Lines())
	return nil
}

// Redo re-applies the last undone edit.
func (e *Editor) Redo() error {
	if err := e.Session.Redo(); err != nil {
		return err
	}
	e.engine.SetLines(e.Session.Lines())
	return nil
}

// QuickRotate turns the image a quarter turn and keeps the window covered.
func (e *Editor) QuickRotate() {
	s := e.Session
	s.State.QuickRotate()
	s.State.Set(crop.Clamp(s.Frame(), s.State.Values()))
}

// CycleRatio switches to the next fixed ratio key.
func (e *Editor) CycleRatio() error {
	s := e.Session
	keys := append([]string{"free"}, transform.RatioKeys...)
	cur := s.State.Values().FixedRatio
	if cur == "" {
		cur = "free"
	}
	next := keys[0]
	for i, k := range keys {
		if k == cur {
			next = keys[(i+1)%len(keys)]
		}
	}
	v, err := crop.SetRatio(s.Frame(), s.State.Values(), next)
	if err != nil {
		return err
	}
	s.State.Set(v)
	e.flash("ratio %s", next)
	return nil
}

// Render exports the session.
func (e *Editor) Render(ctx context.Context) (*export.Result, error) {
	in, err := e.Session.ExportInput()
	if err != nil {
		return nil, err
	}
	opts := e.Export
	if opts.Stickers == nil {
		opts.Stickers = e.Opener
	}
	return export.Render(ctx, in, opts)
}

// Save renders to Output.
func (e *Editor) Save(ctx context.Context) (*export.Result, error) {
	if e.Output == "" {
		return nil, errors.New("no output file")
	}
	res, err := e.Render(ctx)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(e.Output, res.Data, 0o644); err != nil {
		return nil, err
	}
	e.flash("saved %s", e.Output)
	e.Notifier.Export(e.Output, res.Frames, e.base)
	return res, nil
}

// Copy renders to the clipboard.
func (e *Editor) Copy(ctx context.Context) error {
	res, err := e.Render(ctx)
	if err != nil {
		return err
	}
	if err := clipboard.WriteRender(res.Data, res.MIME); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	e.flash("copied render to clipboard")
	e.Notifier.Copy("render")
	return nil
}

// Animating reports whether the preview still changes without input.
func (e *Editor) Animating(now time.Time) bool {
	if e.anim.Running(now) {
		return true
	}
	for _, r := range e.renderers {
		if r.Animated() {
			return true
		}
	}
	return false
}
