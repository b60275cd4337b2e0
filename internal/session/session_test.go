package session

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/mediaedit/internal/brush"
	"github.com/example/mediaedit/internal/geometry"
	"github.com/example/mediaedit/internal/layers"
	"github.com/example/mediaedit/internal/sticker"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 80, 60))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img
}

func line(x, y float64) brush.Line {
	return brush.Line{Color: color.NRGBA{255, 0, 0, 255}, Brush: brush.Pen, Size: 10, Points: []geometry.Point{{X: x, Y: y}}}
}

func text(s string) layers.TextInfo {
	return layers.TextInfo{Text: s, Color: color.NRGBA{0, 0, 0, 255}, Size: layers.DefaultTextSize}
}

func TestUndoRedoLines(t *testing.T) {
	s := New("in.png", testImage(), geometry.Size{})
	if err := s.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("expected ErrNothingToUndo, got %v", err)
	}
	if err := s.AddLine(line(1, 1)); err != nil {
		t.Fatal(err)
	}
	if err := s.AddLine(line(2, 2)); err != nil {
		t.Fatal(err)
	}
	if err := s.Undo(); err != nil {
		t.Fatal(err)
	}
	if got := len(s.Lines()); got != 1 {
		t.Fatalf("after undo lines = %d", got)
	}
	if err := s.Redo(); err != nil {
		t.Fatal(err)
	}
	if got := len(s.Lines()); got != 2 {
		t.Fatalf("after redo lines = %d", got)
	}
	if err := s.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Fatalf("expected ErrNothingToRedo, got %v", err)
	}
}

func TestEditDropsRedo(t *testing.T) {
	s := New("in.png", testImage(), geometry.Size{})
	_ = s.AddLine(line(1, 1))
	_ = s.Undo()
	_ = s.AddLine(line(3, 3))
	if s.History().CanRedo() {
		t.Fatalf("a new edit should drop the redo branch")
	}
}

func TestEmptyLineRejected(t *testing.T) {
	s := New("in.png", testImage(), geometry.Size{})
	if err := s.AddLine(brush.Line{Brush: brush.Pen, Size: 4}); err == nil {
		t.Fatalf("expected error for line without points")
	}
	if s.History().CanUndo() {
		t.Fatalf("rejected line should not be recorded")
	}
}

func TestLayerUndoKeepsSeed(t *testing.T) {
	s := New("in.png", testImage(), geometry.Size{})
	a, err := s.AddText(geometry.Pt(100, 100), text("a"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Undo(); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Layers.Get(a.ID); ok {
		t.Fatalf("undo should remove the layer")
	}
	b, err := s.AddText(geometry.Pt(100, 100), text("b"))
	if err != nil {
		t.Fatal(err)
	}
	if b.ID <= a.ID {
		t.Fatalf("layer ids must not be reused: a=%d b=%d", a.ID, b.ID)
	}
}

func TestFailedEditIsNotRecorded(t *testing.T) {
	s := New("in.png", testImage(), geometry.Size{})
	if err := s.RemoveLayer(42); !errors.Is(err, layers.ErrUnknownLayer) {
		t.Fatalf("expected ErrUnknownLayer, got %v", err)
	}
	if s.History().CanUndo() {
		t.Fatalf("failed edit recorded")
	}
}

func TestMoveLayer(t *testing.T) {
	s := New("in.png", testImage(), geometry.Size{})
	a, _ := s.AddText(geometry.Pt(100, 100), text("a"))
	if err := s.MoveLayer(a.ID, 10, -5); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Layers.Get(a.ID)
	if !got.Position.Eq(geometry.Pt(110, 95), 1e-9) {
		t.Fatalf("position %v", got.Position)
	}
	_ = s.Undo()
	got, _ = s.Layers.Get(a.ID)
	if !got.Position.Eq(geometry.Pt(100, 100), 1e-9) {
		t.Fatalf("undo position %v", got.Position)
	}
}

func TestSaveOpenRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.png")
	f, err := os.Create(src)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, testImage()); err != nil {
		t.Fatal(err)
	}
	f.Close()

	img, err := LoadImage(src)
	if err != nil {
		t.Fatal(err)
	}
	s := New("in.png", img, geometry.Size{W: 640, H: 480})
	_ = s.AddLine(line(5, 5))
	a, _ := s.AddText(geometry.Pt(50, 50), text("saved"))
	if _, err := s.AddSticker(geometry.Pt(300, 300), sticker.Document{ID: "set/cat", Width: 64, Height: 32}); err != nil {
		t.Fatal(err)
	}
	v := s.State.Values()
	v.Rotation = 0.5
	s.State.Set(v)

	path := filepath.Join(dir, "edit.json")
	if err := s.Save(path); err != nil {
		t.Fatal(err)
	}
	r, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if r.ID != s.ID || r.Canvas != s.Canvas || r.ImageSize != s.ImageSize {
		t.Fatalf("header mismatch: %+v", r)
	}
	if r.State.Values().Rotation != 0.5 {
		t.Fatalf("rotation %v", r.State.Values().Rotation)
	}
	if len(r.Lines()) != 1 || len(r.Layers.Layers()) != 2 {
		t.Fatalf("content mismatch: %d lines %d layers", len(r.Lines()), len(r.Layers.Layers()))
	}
	if r.Layers.Seed() != s.Layers.Seed() {
		t.Fatalf("seed %d want %d", r.Layers.Seed(), s.Layers.Seed())
	}
	got, ok := r.Layers.Get(a.ID)
	if !ok || got.Text == nil || got.Text.Text != "saved" {
		t.Fatalf("text layer lost: %+v", got)
	}
	if !r.History().CanUndo() {
		t.Fatalf("history should survive a reload")
	}
	if err := r.Undo(); err != nil {
		t.Fatal(err)
	}
	if len(r.Layers.Layers()) != 1 {
		t.Fatalf("undo after reload should drop the sticker")
	}

	in, err := r.ExportInput()
	if err != nil {
		t.Fatalf("export input: %v", err)
	}
	if in.Image == nil || in.SessionRef != s.ID || in.OriginalSrc != "in.png" {
		t.Fatalf("bad export input %+v", in)
	}
	want, _ := r.Layers.RenderInfo(a.ID)
	if ri, ok := in.RenderInfo[a.ID]; !ok || ri.Width != want.Width || len(ri.Lines) != 1 {
		t.Fatalf("export input should carry the reloaded text layout, got %+v", in.RenderInfo)
	}
}

func TestMissingSourceImage(t *testing.T) {
	dir := t.TempDir()
	s := New("gone.png", testImage(), geometry.Size{})
	path := filepath.Join(dir, "edit.json")
	if err := s.Save(path); err != nil {
		t.Fatal(err)
	}
	r, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.ExportInput(); err == nil {
		t.Fatalf("expected missing image error")
	}
}
