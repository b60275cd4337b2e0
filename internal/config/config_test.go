package config

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	input := `
save_dir = /tmp/exports
sticker_dir = "/home/user/stickers"

[notify]
export = true
copy = false

[export]
side_max = 1920
frame_rate = 24
max_frames = 90

[crop]
margin_bottom = 80

[brush]
default = marker
size: 22.5

[colors]
pen = #00ff00
`
	r := strings.NewReader(input)
	cfg, err := Parse(r)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.SaveDir != "/tmp/exports" {
		t.Errorf("Expected save_dir '/tmp/exports', got '%s'", cfg.SaveDir)
	}
	if cfg.StickerDir != "/home/user/stickers" {
		t.Errorf("Expected quoted sticker_dir to be unquoted, got '%s'", cfg.StickerDir)
	}
	if !cfg.Notify.Export {
		t.Error("Expected notify.export to be true")
	}
	if cfg.Notify.Copy {
		t.Error("Expected notify.copy to be false")
	}
	if cfg.Export.SideMax != 1920 || cfg.Export.FrameRate != 24 || cfg.Export.MaxFrames != 90 {
		t.Errorf("Unexpected export section: %+v", cfg.Export)
	}
	if cfg.Export.SideMin != 100 {
		t.Errorf("Missing keys should keep defaults, side_min = %d", cfg.Export.SideMin)
	}
	if m := cfg.Crop.Margins(); m.Bottom != 80 || m.Left != 60 {
		t.Errorf("Unexpected margins: %+v", m)
	}
	if cfg.Brush.Default != "marker" || cfg.Brush.Size != 22.5 || cfg.Brush.ThrottleMS != 25 {
		t.Errorf("Unexpected brush section: %+v", cfg.Brush)
	}
	if got := cfg.Colors["pen"]; got != (color.NRGBA{0, 255, 0, 255}) {
		t.Errorf("Unexpected pen colour: %v", got)
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{
		"[notify]\nexport = maybe\n",
		"[export]\nside_max = big\n",
		"[colors]\npen = #12\n",
	} {
		if _, err := Parse(strings.NewReader(input)); err == nil {
			t.Errorf("expected error for %q", input)
		}
	}
}

func TestCircular(t *testing.T) {
	input := `save_dir = /home/user/edits
prefs_file = /home/user/.mediaedit.json

[notify]
export = true
copy = true

[export]
pixel_ratio = 2
frame_rate = 15

[brush]
throttle_ms = 40
blur_radius = 6

[colors]
neon = #62e5e0
`
	// 1. Parse initial input
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Initial parse failed: %v", err)
	}

	// 2. Generate string representation
	generated := cfg.String()

	// 3. Parse generated string
	cfg2, err := Parse(strings.NewReader(generated))
	if err != nil {
		t.Fatalf("Circular parse failed: %v", err)
	}

	// 4. Compare relevant fields
	if cfg.SaveDir != cfg2.SaveDir || cfg.PrefsFile != cfg2.PrefsFile {
		t.Errorf("Root mismatch: %q/%q vs %q/%q", cfg.SaveDir, cfg.PrefsFile, cfg2.SaveDir, cfg2.PrefsFile)
	}
	if cfg.Notify != cfg2.Notify {
		t.Errorf("Notify mismatch: %+v vs %+v", cfg.Notify, cfg2.Notify)
	}
	if cfg.Export != cfg2.Export {
		t.Errorf("Export mismatch: %+v vs %+v", cfg.Export, cfg2.Export)
	}
	if cfg.Crop != cfg2.Crop {
		t.Errorf("Crop mismatch: %+v vs %+v", cfg.Crop, cfg2.Crop)
	}
	if cfg.Brush != cfg2.Brush {
		t.Errorf("Brush mismatch: %+v vs %+v", cfg.Brush, cfg2.Brush)
	}
	if cfg.Colors["neon"] != cfg2.Colors["neon"] {
		t.Errorf("Colour mismatch: %v vs %v", cfg.Colors["neon"], cfg2.Colors["neon"])
	}
}

func TestLoaderSearchOrder(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv(EnvPath, "")

	l := NewLoader("1.0.0", "")
	if p := l.GetConfigPath(); p != "" {
		t.Fatalf("expected no config, got %q", p)
	}

	xdg := filepath.Join(home, ".config", "mediaedit", "config.rc")
	if err := os.MkdirAll(filepath.Dir(xdg), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(xdg, []byte("[export]\nside_max = 512\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if p := l.GetConfigPath(); p != xdg {
		t.Fatalf("expected %q, got %q", xdg, p)
	}
	if p, err := l.SavePath(); err != nil || p != xdg {
		t.Fatalf("save path %q, %v", p, err)
	}

	env := filepath.Join(home, "env.rc")
	if err := os.WriteFile(env, []byte("[brush]\nsize = 9\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvPath, env)
	if p := l.GetConfigPath(); p != env {
		t.Fatalf("environment path not preferred: %q", p)
	}

	override := filepath.Join(home, "custom.rc")
	if err := os.WriteFile(override, []byte("save_dir = /x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	l.OverridePath = override
	cfg, err := l.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SaveDir != "/x" || cfg.Export.SideMax != 2560 {
		t.Fatalf("override not preferred: %+v", cfg)
	}
}
