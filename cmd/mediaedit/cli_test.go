package main

import (
	"bytes"
	"errors"
	"flag"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/mediaedit/internal/config"
	"github.com/example/mediaedit/internal/session"
)

type testEnv struct {
	dir     string
	session string
	prefs   string
	out     bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 800, 600))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	f, err := os.Create(filepath.Join(dir, "in.png"))
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return &testEnv{dir: dir, session: filepath.Join(dir, "s.json"), prefs: filepath.Join(dir, "prefs.json")}
}

func (e *testEnv) run(t *testing.T, args ...string) {
	t.Helper()
	r := newRootWithConfig(config.New())
	r.stdout = &e.out
	r.stderr = &e.out
	full := append([]string{"-prefs", e.prefs}, args...)
	if err := r.Run(full); err != nil {
		t.Fatalf("%s: %v", strings.Join(args, " "), err)
	}
}

func readPNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	return img
}

func isRed(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r > 0xf000 && g < 0x1000 && b < 0x1000
}

func TestNewDrawRenderUndo(t *testing.T) {
	e := newTestEnv(t)
	e.run(t, "new", "-image", filepath.Join(e.dir, "in.png"), "-session", e.session, "-canvas", "1000x800")
	e.run(t, "draw", "-session", e.session, "-color", "red", "-size", "20", "500,400")

	out := filepath.Join(e.dir, "out.png")
	e.run(t, "render", "-session", e.session, "-output", out)
	img := readPNG(t, out)
	if got := img.Bounds().Size(); got != image.Pt(800, 600) {
		t.Fatalf("render size = %v, want 800x600", got)
	}
	if c := img.At(400, 300); !isRed(c) {
		t.Fatalf("stroke missing from render, pixel = %v", c)
	}

	e.run(t, "undo", "-session", e.session)
	e.run(t, "render", "-session", e.session, "-output", out)
	if c := readPNG(t, out).At(400, 300); isRed(c) {
		t.Fatalf("undone stroke still rendered")
	}

	e.run(t, "redo", "-session", e.session)
	s, err := session.Open(e.session)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(s.Lines()); n != 1 {
		t.Fatalf("lines after redo = %d, want 1", n)
	}
}

func TestLayerAndTransformCommands(t *testing.T) {
	e := newTestEnv(t)
	e.run(t, "new", "-image", filepath.Join(e.dir, "in.png"), "-session", e.session)
	e.run(t, "layer", "-session", e.session, "text", "-at", "300,300", "hello", "world")
	e.run(t, "layer", "-session", e.session, "move", "1", "-20,10")
	e.run(t, "transform", "-session", e.session, "-ratio", "square", "-flip", "h")

	s, err := session.Open(e.session)
	if err != nil {
		t.Fatal(err)
	}
	ls := s.Layers.Layers()
	if len(ls) != 1 || ls[0].Text == nil || ls[0].Text.Text != "hello world" {
		t.Fatalf("unexpected layers %+v", ls)
	}
	if p := ls[0].Position; p.X != 280 || p.Y != 310 {
		t.Fatalf("moved layer at %v, want 280,310", p)
	}
	v := s.State.Values()
	if v.FixedRatio != "square" || v.Ratio != 1 || v.Flip.X != -1 {
		t.Fatalf("unexpected transform %+v", v)
	}

	e.run(t, "layer", "-session", e.session, "remove", "1")
	e.run(t, "undo", "-session", e.session)
	s, err = session.Open(e.session)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Layers.Layers()) != 1 {
		t.Fatalf("undo should restore the removed layer")
	}
}

func TestCropHandleShrinksWindow(t *testing.T) {
	e := newTestEnv(t)
	e.run(t, "new", "-image", filepath.Join(e.dir, "in.png"), "-session", e.session)
	before, err := session.Open(e.session)
	if err != nil {
		t.Fatal(err)
	}
	e.run(t, "crop", "-session", e.session, "-handle", "br", "-delta", "-200,-100")
	after, err := session.Open(e.session)
	if err != nil {
		t.Fatal(err)
	}
	if after.State.Values().Scale <= before.State.Values().Scale {
		t.Fatalf("shrinking the window should zoom in: %v -> %v", before.State.Values().Scale, after.State.Values().Scale)
	}
}

func TestInteractiveUsesSession(t *testing.T) {
	e := newTestEnv(t)
	e.run(t, "new", "-image", filepath.Join(e.dir, "in.png"), "-session", e.session)
	e.run(t, "interactive",
		"-e", "use "+e.session,
		"-e", "draw 10,10 20,20",
		"-e", "draw 30,30",
		"-e", "exit",
		"-e", "draw 40,40",
	)
	s, err := session.Open(e.session)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(s.Lines()); n != 2 {
		t.Fatalf("lines = %d, want 2", n)
	}
}

func TestParseErrors(t *testing.T) {
	r := newRootWithConfig(config.New())
	var uerr *UsageError
	if _, err := parseDrawCmd([]string{"-session", "s.json"}, r); !errors.As(err, &uerr) {
		t.Fatalf("draw without points: expected usage error, got %v", err)
	}
	if _, err := parseDrawCmd([]string{"1;2"}, r); err == nil || !strings.Contains(err.Error(), "invalid point") {
		t.Fatalf("expected invalid point error, got %v", err)
	}
	if _, err := parseDrawCmd([]string{"-brush", "crayon", "1,2"}, r); err == nil {
		t.Fatalf("expected unknown brush error")
	}
	if _, err := parseCropCmd([]string{"-handle", "tl", "-pan", "1,1"}, r); !errors.As(err, &uerr) {
		t.Fatalf("crop with handle and pan: expected usage error, got %v", err)
	}
	if _, err := parseCropCmd([]string{"-handle", "middle", "-delta", "1,1"}, r); err == nil {
		t.Fatalf("expected unknown handle error")
	}
	if _, err := parseLayerCmd([]string{"spin", "1"}, r); err == nil {
		t.Fatalf("expected unknown layer action error")
	}
	if _, err := parseLayerCmd([]string{"move", "1"}, r); err == nil {
		t.Fatalf("expected missing argument error")
	}
	if _, err := parseTransformCmd([]string{"-flip", "x"}, r); err == nil {
		t.Fatalf("expected invalid flip error")
	}
	if _, err := parseRenderCmd([]string{"-session", "s.json"}, r); err == nil {
		t.Fatalf("render without a destination should fail")
	}
	if _, err := parseNewCmd([]string{"-image", "in.png"}, r); !errors.As(err, &uerr) {
		t.Fatalf("new without session: expected usage error, got %v", err)
	}
}

func TestMissingSessionImage(t *testing.T) {
	e := newTestEnv(t)
	e.run(t, "new", "-image", filepath.Join(e.dir, "in.png"), "-session", e.session)
	if err := os.Remove(filepath.Join(e.dir, "in.png")); err != nil {
		t.Fatal(err)
	}
	r := newRootWithConfig(config.New())
	r.stdout, r.stderr = &e.out, &e.out
	err := r.Run([]string{"render", "-session", e.session, "-output", filepath.Join(e.dir, "out.png")})
	if err == nil {
		t.Fatalf("render without the source image should fail")
	}
}

func TestSplitArgsKeepsNegativePoints(t *testing.T) {
	fs := flag.NewFlagSet("t", flag.ContinueOnError)
	fs.String("session", "", "")
	fs.Bool("v", false, "")
	flags, pos, err := splitArgs(fs, []string{"move", "-session", "s.json", "1", "-4,5", "-v", "--", "-session"})
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"-session", "s.json", "-v"}; strings.Join(flags, " ") != strings.Join(want, " ") {
		t.Fatalf("flags = %q, want %q", flags, want)
	}
	if want := []string{"move", "1", "-4,5", "-session"}; strings.Join(pos, " ") != strings.Join(want, " ") {
		t.Fatalf("positionals = %q, want %q", pos, want)
	}
	if _, _, err := splitArgs(fs, []string{"-session"}); err == nil {
		t.Fatalf("expected missing value error")
	}
}

func TestUsageTemplatesRender(t *testing.T) {
	r := newRootWithConfig(config.New())
	cmds := []HelpData{
		r,
		&newCmd{root: r.subcommand("new"), fs: flag.NewFlagSet("new", flag.ContinueOnError)},
		&drawCmd{root: r.subcommand("draw"), fs: flag.NewFlagSet("draw", flag.ContinueOnError)},
		&layerCmd{root: r.subcommand("layer"), fs: flag.NewFlagSet("layer", flag.ContinueOnError)},
		&transformCmd{root: r.subcommand("transform"), fs: flag.NewFlagSet("transform", flag.ContinueOnError)},
		&cropCmd{root: r.subcommand("crop"), fs: flag.NewFlagSet("crop", flag.ContinueOnError)},
		&historyCmd{root: r.subcommand("undo"), fs: flag.NewFlagSet("undo", flag.ContinueOnError)},
		&renderCmd{root: r.subcommand("render"), fs: flag.NewFlagSet("render", flag.ContinueOnError)},
		&stickersCmd{root: r.subcommand("stickers"), fs: flag.NewFlagSet("stickers", flag.ContinueOnError)},
		&prefsCmd{root: r.subcommand("prefs"), fs: flag.NewFlagSet("prefs", flag.ContinueOnError)},
		&editCmd{root: r.subcommand("edit"), fs: flag.NewFlagSet("edit", flag.ContinueOnError)},
		&brushesCmd{root: r.subcommand("brushes"), fs: flag.NewFlagSet("brushes", flag.ContinueOnError)},
		&ratiosCmd{root: r.subcommand("ratios"), fs: flag.NewFlagSet("ratios", flag.ContinueOnError)},
		&configCmd{root: r.subcommand("config"), fs: flag.NewFlagSet("config", flag.ContinueOnError)},
	}
	for _, c := range cmds {
		msg := (&UsageError{of: c}).Error()
		if !strings.HasPrefix(msg, "Usage: "+c.Program()) {
			t.Errorf("%s: unexpected help %q", c.Template(), msg)
		}
	}
	if msg := (&UsageError{of: r}).Error(); !strings.Contains(msg, "-verbose") {
		t.Errorf("root help should list flags, got %q", msg)
	}
}

func TestPrefsBrushColor(t *testing.T) {
	e := newTestEnv(t)
	e.run(t, "prefs", "set", "pen", "picker", "#00ff00")
	e.out.Reset()
	e.run(t, "prefs", "get", "pen")
	got := strings.TrimSpace(e.out.String())
	if !strings.HasPrefix(got, "picker ") || !strings.HasSuffix(got, "picker=#00ff00") {
		t.Fatalf("prefs get pen = %q", got)
	}
}
