package prefs

import (
	"encoding/json"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/mediaedit/internal/brush"
)

func TestBrushColorRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	p := Load(path)
	bc := BrushColor{Selector: SelectPicker, Swatch: color.NRGBA{1, 2, 3, 255}, Picker: color.NRGBA{200, 100, 50, 255}}
	p.SetBrushColor(brush.Neon, bc)
	if err := p.Save(); err != nil {
		t.Fatal(err)
	}
	got := Load(path).BrushColor(brush.Neon)
	if got != bc {
		t.Fatalf("got %+v want %+v", got, bc)
	}
	if got.Color() != bc.Picker {
		t.Fatalf("picker selector should pick the picker colour")
	}
}

func TestBrushColorSelfHeals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	bad := `{"brush.pen.color": [3, "#zz", 7], "brush.arrow.color": "red"}`
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}
	p := Load(path)
	if got := p.BrushColor(brush.Pen); got != DefaultBrushColor(brush.Pen) {
		t.Fatalf("malformed pen entry should fall back, got %+v", got)
	}
	if got := p.BrushColor(brush.Arrow); got != DefaultBrushColor(brush.Arrow) {
		t.Fatalf("malformed arrow entry should fall back, got %+v", got)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	entry, ok := raw["brush.pen.color"].([]interface{})
	if !ok || len(entry) != 3 || entry[1] != "#fe4438" {
		t.Fatalf("default should be written back, file has %v", raw["brush.pen.color"])
	}
}

func TestMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	p := Load(path)
	if got := p.String("brush.kind", "pen"); got != "pen" {
		t.Fatalf("fallback %q", got)
	}
	p.SetFloat("brush.size", 12)
	if p.Float("brush.size", 0) != 12 {
		t.Fatalf("float pref not stored")
	}
}

func TestOverrideDefaults(t *testing.T) {
	p := Load(filepath.Join(t.TempDir(), "prefs.json"))
	green := color.NRGBA{0, 200, 0, 255}
	p.OverrideDefaults(map[string]color.NRGBA{"marker": green, "crayon": {1, 1, 1, 255}})
	if got := p.BrushColor(brush.Marker).Color(); got != green {
		t.Fatalf("override ignored, got %v", got)
	}
	if got := p.BrushColor(brush.Pen); got != DefaultBrushColor(brush.Pen) {
		t.Fatalf("pen should keep the built-in default, got %+v", got)
	}
}
