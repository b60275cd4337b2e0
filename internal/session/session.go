// Package session ties one editing session together: the source image, its
// transform, the committed brush lines and the layers, with undo history
// and a JSON file form that can be re-opened later.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	_ "golang.org/x/image/webp"

	"github.com/example/mediaedit/internal/brush"
	"github.com/example/mediaedit/internal/crop"
	"github.com/example/mediaedit/internal/export"
	"github.com/example/mediaedit/internal/geometry"
	"github.com/example/mediaedit/internal/layers"
	"github.com/example/mediaedit/internal/logging"
	"github.com/example/mediaedit/internal/sticker"
	"github.com/example/mediaedit/internal/transform"
)

// DefaultCanvas is the live preview size used when none is given.
var DefaultCanvas = geometry.Size{W: 1000, H: 800}

// Session is an open edit. It is not safe for concurrent use.
type Session struct {
	ID         string
	Source     string
	ImageSize  geometry.Size
	Canvas     geometry.Size
	PixelRatio float64
	Margins    geometry.Margins

	State  *transform.State
	Layers *layers.Collection

	lines   []brush.Line
	history History
	img     image.Image
	path    string
}

// file is the on-disk form.
type file struct {
	ID         string           `json:"id"`
	Source     string           `json:"source"`
	ImageSize  geometry.Size    `json:"imageSize"`
	Canvas     geometry.Size    `json:"canvas"`
	PixelRatio float64          `json:"pixelRatio"`
	Margins    geometry.Margins `json:"margins"`
	Transform  transform.Values `json:"transform"`
	Lines      []brush.Line     `json:"lines"`
	Layers     []layers.Layer   `json:"layers"`
	Seed       int              `json:"seed"`
	Undo       []snapshot       `json:"undo,omitempty"`
	Redo       []snapshot       `json:"redo,omitempty"`
}

func newID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "session"
	}
	return hex.EncodeToString(b[:])
}

// LoadImage decodes a PNG, JPEG, GIF or WebP file.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// New starts a session on img, read from source.
func New(source string, img image.Image, canvas geometry.Size) *Session {
	if canvas.Empty() {
		canvas = DefaultCanvas
	}
	b := img.Bounds()
	size := geometry.Size{W: float64(b.Dx()), H: float64(b.Dy())}
	return &Session{
		ID:         newID(),
		Source:     source,
		ImageSize:  size,
		Canvas:     canvas,
		PixelRatio: 1,
		Margins:    geometry.DefaultMargins,
		State:      transform.NewState(transform.Identity(size.Ratio())),
		Layers:     layers.NewCollection(),
		img:        img,
	}
}

// Open reads a session file. The source image is loaded on first use.
func Open(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", path, err)
	}
	if f.Canvas.Empty() {
		f.Canvas = DefaultCanvas
	}
	if f.PixelRatio <= 0 {
		f.PixelRatio = 1
	}
	if f.Margins == (geometry.Margins{}) {
		f.Margins = geometry.DefaultMargins
	}
	s := &Session{
		ID:         f.ID,
		Source:     f.Source,
		ImageSize:  f.ImageSize,
		Canvas:     f.Canvas,
		PixelRatio: f.PixelRatio,
		Margins:    f.Margins,
		State:      transform.NewState(f.Transform),
		Layers:     layers.NewCollection(),
		lines:      f.Lines,
		history:    History{undo: f.Undo, redo: f.Redo},
		path:       path,
	}
	s.Layers.Restore(f.Layers, f.Seed)
	logging.Logger().Debug("session: opened", "id", s.ID, "lines", len(s.lines), "layers", len(f.Layers))
	return s, nil
}

// Path is the file the session was last opened from or saved to.
func (s *Session) Path() string { return s.path }

// Save writes the session to path, or to Path when path is empty.
func (s *Session) Save(path string) error {
	if path == "" {
		path = s.path
	}
	if path == "" {
		return fmt.Errorf("session %s: no path", s.ID)
	}
	f := file{
		ID:         s.ID,
		Source:     s.Source,
		ImageSize:  s.ImageSize,
		Canvas:     s.Canvas,
		PixelRatio: s.PixelRatio,
		Margins:    s.Margins,
		Transform:  s.State.Values(),
		Lines:      s.lines,
		Layers:     s.Layers.Layers(),
		Seed:       s.Layers.Seed(),
		Undo:       s.history.undo,
		Redo:       s.history.redo,
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	s.path = path
	return nil
}

// Image returns the source image, loading it from Source if needed.
func (s *Session) Image() (image.Image, error) {
	if s.img != nil {
		return s.img, nil
	}
	if s.Source == "" {
		return nil, export.ErrNoImage
	}
	src := s.Source
	if !filepath.IsAbs(src) && s.path != "" {
		if _, err := os.Stat(src); err != nil {
			src = filepath.Join(filepath.Dir(s.path), src)
		}
	}
	img, err := LoadImage(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", export.ErrNoImage, err)
	}
	s.img = img
	b := img.Bounds()
	s.ImageSize = geometry.Size{W: float64(b.Dx()), H: float64(b.Dy())}
	return img, nil
}

// CropOffset is the crop area of the live canvas.
func (s *Session) CropOffset() geometry.Rect {
	return s.Margins.CropOffset(s.Canvas.W, s.Canvas.H)
}

// Frame is the crop tool frame of the live canvas.
func (s *Session) Frame() crop.Frame {
	return crop.Frame{Canvas: s.Canvas, CropOffset: s.CropOffset(), ImageSize: s.ImageSize}
}

// Inputs returns the final transform inputs of the live canvas.
func (s *Session) Inputs(cropMode bool) transform.Inputs {
	return transform.Inputs{
		Canvas:     s.Canvas,
		CropMode:   cropMode,
		Values:     s.State.Values(),
		ImageSize:  s.ImageSize,
		CropOffset: s.CropOffset(),
		PixelRatio: s.PixelRatio,
	}
}

// Lines returns a copy of the committed brush lines.
func (s *Session) Lines() []brush.Line {
	out := make([]brush.Line, len(s.lines))
	for i, l := range s.lines {
		out[i] = l.Clone()
	}
	return out
}

// History exposes the undo state.
func (s *Session) History() *History { return &s.history }

func (s *Session) snapshot() snapshot {
	return snapshot{Lines: s.lines, Layers: s.Layers.Layers()}
}

func (s *Session) restore(snap snapshot) {
	s.lines = snap.Lines
	s.Layers.Restore(snap.Layers, s.Layers.Seed())
}

// Edit records an undo step and runs fn. The step is discarded when fn
// fails.
func (s *Session) Edit(fn func() error) error {
	before := s.snapshot().clone()
	if err := fn(); err != nil {
		s.restore(before)
		return err
	}
	s.history.push(before)
	return nil
}

// AddLine commits a brush line.
func (s *Session) AddLine(l brush.Line) error {
	if len(l.Points) == 0 {
		return fmt.Errorf("%s line has no points", l.Brush)
	}
	return s.Edit(func() error {
		s.lines = append(s.lines, l.Clone())
		return nil
	})
}

// AddText creates a text layer centred at pos.
func (s *Session) AddText(pos geometry.Point, t layers.TextInfo) (layers.Layer, error) {
	var out layers.Layer
	err := s.Edit(func() error {
		s.Layers.SetTab(layers.TabText)
		var err error
		out, err = s.Layers.AddText(pos, t)
		return err
	})
	return out, err
}

// AddSticker creates a sticker layer centred at pos.
func (s *Session) AddSticker(pos geometry.Point, d sticker.Document) (layers.Layer, error) {
	var out layers.Layer
	err := s.Edit(func() error {
		s.Layers.SetTab(layers.TabStickers)
		var err error
		out, err = s.Layers.AddSticker(pos, d)
		return err
	})
	return out, err
}

// MoveLayer drags a layer by dx, dy.
func (s *Session) MoveLayer(id int, dx, dy float64) error {
	return s.Edit(func() error {
		if err := s.Layers.BeginDrag(id); err != nil {
			return err
		}
		s.Layers.DragTo(dx, dy)
		s.Layers.EndGesture()
		return nil
	})
}

// ResizeLayer drags the resize handle of a layer from one pointer position
// to another.
func (s *Session) ResizeLayer(id int, from, to geometry.Point) error {
	return s.Edit(func() error {
		if err := s.Layers.BeginResize(id, from); err != nil {
			return err
		}
		s.Layers.ResizeTo(to)
		s.Layers.EndGesture()
		return nil
	})
}

// UpdateText replaces the content of a text layer.
func (s *Session) UpdateText(id int, t layers.TextInfo) error {
	return s.Edit(func() error { return s.Layers.UpdateText(id, t) })
}

// RemoveLayer destroys a layer.
func (s *Session) RemoveLayer(id int) error {
	return s.Edit(func() error { return s.Layers.Remove(id) })
}

// Undo reverts the last edit.
func (s *Session) Undo() error {
	prev, err := s.history.back(s.snapshot())
	if err != nil {
		return err
	}
	s.restore(prev)
	return nil
}

// Redo re-applies the last undone edit.
func (s *Session) Redo() error {
	next, err := s.history.forward(s.snapshot())
	if err != nil {
		return err
	}
	s.restore(next)
	return nil
}

// ExportInput collects everything the export renderer needs.
func (s *Session) ExportInput() (export.Input, error) {
	img, err := s.Image()
	if err != nil {
		return export.Input{}, err
	}
	ls := s.Layers.Layers()
	info := make(map[int]layers.RenderInfo, len(ls))
	for _, l := range ls {
		if ri, ok := s.Layers.RenderInfo(l.ID); ok {
			info[l.ID] = ri
		}
	}
	return export.Input{
		Image:       img,
		OriginalSrc: s.Source,
		SessionRef:  s.ID,
		Values:      s.State.Values(),
		Canvas:      s.Canvas,
		CropOffset:  s.CropOffset(),
		PixelRatio:  s.PixelRatio,
		Lines:       s.Lines(),
		Layers:      ls,
		RenderInfo:  info,
	}, nil
}
