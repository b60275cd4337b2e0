package sticker

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func writeGIF(t *testing.T, path string, frames int) {
	t.Helper()
	g := &gif.GIF{Config: image.Config{Width: 10, Height: 10, ColorModel: color.Palette(palette.Plan9)}}
	for i := 0; i < frames; i++ {
		p := image.NewPaletted(image.Rect(i, 0, i+1, 10), palette.Plan9)
		for y := 0; y < 10; y++ {
			p.SetColorIndex(i, y, uint8(i+1))
		}
		g.Image = append(g.Image, p)
		g.Delay = append(g.Delay, 4)
		g.Disposal = append(g.Disposal, gif.DisposalNone)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := gif.EncodeAll(f, g); err != nil {
		t.Fatal(err)
	}
}

func fixture(t *testing.T) *DirLookup {
	root := t.TempDir()
	set := filepath.Join(root, "cats")
	if err := os.MkdirAll(set, 0o755); err != nil {
		t.Fatal(err)
	}
	writePNG(t, filepath.Join(set, "grumpy.png"), color.RGBA{200, 0, 0, 255})
	writeGIF(t, filepath.Join(set, "wave.gif"), 3)
	svg := `<svg xmlns="http://www.w3.org/2000/svg" width="20" height="10" viewBox="0 0 20 10"><rect x="0" y="0" width="20" height="10" fill="#00ff00"/></svg>`
	if err := os.WriteFile(filepath.Join(set, "leaf.svg"), []byte(svg), 0o644); err != nil {
		t.Fatal(err)
	}
	manifest := `{"title":"Cats","stickers":[{"file":"grumpy.png","emoji":"😾","keywords":["angry","cat"]},{"file":"wave.gif","emoji":"👋"}]}`
	if err := os.WriteFile(filepath.Join(set, ManifestName), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	return NewDirLookup(root)
}

func TestDirLookup(t *testing.T) {
	l := fixture(t)
	ctx := context.Background()
	set, err := l.GetStickerSet(ctx, "cats")
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if set.Title != "Cats" || len(set.Documents) != 3 {
		t.Fatalf("unexpected set %+v", set)
	}
	if _, err := l.GetStickerSet(ctx, "dogs"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	found, err := l.SearchStickers(ctx, "angry")
	if err != nil || len(found) != 1 || found[0].ID != "cats/grumpy" {
		t.Fatalf("search: %v %+v", err, found)
	}
	byEmoji, err := l.GetStickersByEmoticon(ctx, "👋")
	if err != nil || len(byEmoji) != 1 || byEmoji[0].Format != FormatGIF {
		t.Fatalf("emoji: %v %+v", err, byEmoji)
	}
	if _, err := l.Document(ctx, "cats/nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecent(t *testing.T) {
	l := fixture(t)
	ctx := context.Background()
	recent, err := l.GetRecentStickers(ctx)
	if err != nil || len(recent) != 0 {
		t.Fatalf("fresh recent list: %v %v", recent, err)
	}
	a, _ := l.Document(ctx, "cats/grumpy")
	b, _ := l.Document(ctx, "cats/wave")
	for _, d := range []Document{a, b, a} {
		if err := l.MarkRecent(d); err != nil {
			t.Fatal(err)
		}
	}
	recent, err = l.GetRecentStickers(ctx)
	if err != nil || len(recent) != 2 || recent[0].ID != a.ID || recent[1].ID != b.ID {
		t.Fatalf("recent %+v %v", recent, err)
	}
}

func TestRenderers(t *testing.T) {
	l := fixture(t)
	ctx := context.Background()

	still, _ := l.Document(ctx, "cats/grumpy")
	r, err := Open(ctx, still)
	if err != nil {
		t.Fatalf("open png: %v", err)
	}
	if r.Animated() || r.TotalFrames() != 0 {
		t.Fatalf("png should be static")
	}

	wave, _ := l.Document(ctx, "cats/wave")
	r, err = Open(ctx, wave)
	if err != nil {
		t.Fatalf("open gif: %v", err)
	}
	if !r.Animated() || r.TotalFrames() != 2 {
		t.Fatalf("gif frames: animated=%v total=%d", r.Animated(), r.TotalFrames())
	}
	if err := r.SetFrame(ctx, 2); err != nil {
		t.Fatal(err)
	}
	// frames accumulate with DisposalNone
	f := r.Frame()
	for x := 0; x < 3; x++ {
		if _, _, _, a := f.At(x, 5).RGBA(); a == 0 {
			t.Fatalf("frame 2 missing column %d", x)
		}
	}
	if err := r.SetFrame(ctx, 3); err == nil {
		t.Fatalf("expected out of range error")
	}

	leaf, _ := l.Document(ctx, "cats/leaf")
	r, err = Open(ctx, leaf)
	if err != nil {
		t.Fatalf("open svg: %v", err)
	}
	w, h := r.Size()
	if w != 20 || h != 10 {
		t.Fatalf("svg size %dx%d", w, h)
	}
	if _, g, _, _ := r.Frame().At(10, 5).RGBA(); g>>8 != 255 {
		t.Fatalf("svg not rasterised")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := Open(cancelled, still); err == nil {
		t.Fatalf("cancelled context should fail")
	}
}
