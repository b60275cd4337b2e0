//go:build linux || freebsd || openbsd || netbsd || dragonfly

package clipboard

import (
	"bytes"
	"errors"
	"image"
	"image/gif"
	"image/color/palette"
	"sync"
	"testing"
)

func withoutDisplay(t *testing.T) {
	t.Helper()
	t.Setenv("DISPLAY", "")
	t.Setenv("WAYLAND_DISPLAY", "")
	initOnce = sync.Once{}
	initErr = nil
}

func TestEnsureInitWithoutDisplay(t *testing.T) {
	withoutDisplay(t)
	if err := WriteText("hello world"); !errors.Is(err, errNoDisplay) {
		t.Fatalf("expected errNoDisplay, got %v", err)
	}
}

func TestWriteRenderDecodesAnimations(t *testing.T) {
	withoutDisplay(t)
	var buf bytes.Buffer
	g := &gif.GIF{
		Image: []*image.Paletted{image.NewPaletted(image.Rect(0, 0, 4, 4), palette.Plan9)},
		Delay: []int{3},
	}
	if err := gif.EncodeAll(&buf, g); err != nil {
		t.Fatal(err)
	}
	if err := WriteRender(buf.Bytes(), "image/gif"); !errors.Is(err, errNoDisplay) {
		t.Fatalf("expected errNoDisplay after decoding, got %v", err)
	}
	if err := WriteRender([]byte("junk"), "image/gif"); err == nil || errors.Is(err, errNoDisplay) {
		t.Fatalf("expected decode error, got %v", err)
	}
}
