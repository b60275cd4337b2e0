// Package prefs provides JSON-based editor preferences.
package prefs

import (
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sync"

	"github.com/example/mediaedit/internal/brush"
	"github.com/example/mediaedit/internal/colorutil"
	"github.com/example/mediaedit/internal/logging"
)

const prefsFile = "preferences.json"

// Prefs stores preferences as a key-value map.
type Prefs struct {
	mu       sync.RWMutex
	values   map[string]interface{}
	path     string
	defaults map[brush.Kind]color.NRGBA
}

// DefaultPath returns ~/.config/mediaedit/preferences.json.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, "mediaedit", prefsFile)
}

// Load reads preferences from path, or DefaultPath when path is empty. A
// missing or unreadable file yields empty preferences.
func Load(path string) *Prefs {
	if path == "" {
		path = DefaultPath()
	}
	p := &Prefs{values: make(map[string]interface{}), path: path}
	data, err := os.ReadFile(p.path)
	if err != nil {
		return p
	}
	if err := json.Unmarshal(data, &p.values); err != nil {
		logging.Logger().Warn("prefs: ignoring malformed file", "path", p.path, "err", err)
		p.values = make(map[string]interface{})
	}
	return p
}

// Path returns the backing file.
func (p *Prefs) Path() string { return p.path }

// Save writes preferences to disk.
func (p *Prefs) Save() error {
	p.mu.RLock()
	data, err := json.MarshalIndent(p.values, "", "  ")
	p.mu.RUnlock()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0o644)
}

// String returns a string preference, or fallback if not set.
func (p *Prefs) String(key, fallback string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if s, ok := p.values[key].(string); ok {
		return s
	}
	return fallback
}

// SetString stores a string preference.
func (p *Prefs) SetString(key, val string) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// Float returns a float64 preference, or fallback if not set.
func (p *Prefs) Float(key string, fallback float64) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if n, ok := p.values[key].(float64); ok {
		return n
	}
	return fallback
}

// SetFloat stores a float64 preference.
func (p *Prefs) SetFloat(key string, val float64) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// Keys returns the stored keys.
func (p *Prefs) Keys() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, 0, len(p.values))
	for k := range p.values {
		out = append(out, k)
	}
	return out
}

// Selector values of a brush colour entry.
const (
	SelectSwatch = 1
	SelectPicker = 2
)

// BrushColor is the persisted colour choice of one brush: whether the
// swatch or the free picker is active, and the value of each.
type BrushColor struct {
	Selector int
	Swatch   color.NRGBA
	Picker   color.NRGBA
}

// Color returns the active colour.
func (b BrushColor) Color() color.NRGBA {
	if b.Selector == SelectPicker {
		return b.Picker
	}
	return b.Swatch
}

var defaultBrushColors = map[brush.Kind]string{
	brush.Pen:    "#fe4438",
	brush.Arrow:  "#ffd60a",
	brush.Marker: "#ff8901",
	brush.Neon:   "#62e5e0",
	brush.Blur:   "#ffffff",
	brush.Eraser: "#ffffff",
}

// DefaultBrushColor returns the built-in colour entry for k.
func DefaultBrushColor(k brush.Kind) BrushColor {
	c, err := colorutil.Parse(defaultBrushColors[k])
	if err != nil {
		c = color.NRGBA{255, 255, 255, 255}
	}
	return BrushColor{Selector: SelectSwatch, Swatch: c, Picker: c}
}

func brushKey(k brush.Kind) string { return "brush." + k.String() + ".color" }

func decodeBrushColor(v interface{}) (BrushColor, error) {
	arr, ok := v.([]interface{})
	if !ok || len(arr) != 3 {
		return BrushColor{}, fmt.Errorf("want [selector, swatch, picker], got %v", v)
	}
	sel, ok := arr[0].(float64)
	if !ok || (sel != SelectSwatch && sel != SelectPicker) {
		return BrushColor{}, fmt.Errorf("bad selector %v", arr[0])
	}
	var cols [2]color.NRGBA
	for i := range cols {
		s, ok := arr[i+1].(string)
		if !ok {
			return BrushColor{}, fmt.Errorf("bad colour %v", arr[i+1])
		}
		c, err := colorutil.Parse(s)
		if err != nil {
			return BrushColor{}, err
		}
		cols[i] = c
	}
	return BrushColor{Selector: int(sel), Swatch: cols[0], Picker: cols[1]}, nil
}

// BrushColor returns the stored colour entry of k. Missing or malformed
// entries are replaced by the default and written back.
func (p *Prefs) BrushColor(k brush.Kind) BrushColor {
	key := brushKey(k)
	p.mu.RLock()
	v, ok := p.values[key]
	p.mu.RUnlock()
	if ok {
		bc, err := decodeBrushColor(v)
		if err == nil {
			return bc
		}
		logging.Logger().Warn("prefs: resetting brush colour", "brush", k.String(), "err", err)
	}
	def := DefaultBrushColor(k)
	p.mu.RLock()
	if c, ok := p.defaults[k]; ok {
		def = BrushColor{Selector: SelectSwatch, Swatch: c, Picker: c}
	}
	p.mu.RUnlock()
	p.SetBrushColor(k, def)
	if err := p.Save(); err != nil {
		logging.Logger().Warn("prefs: save failed", "path", p.path, "err", err)
	}
	return def
}

// SetBrushColor stores the colour entry of k.
func (p *Prefs) SetBrushColor(k brush.Kind, bc BrushColor) {
	p.mu.Lock()
	p.values[brushKey(k)] = []interface{}{float64(bc.Selector), colorutil.Hex(bc.Swatch), colorutil.Hex(bc.Picker)}
	p.mu.Unlock()
}

// OverrideDefaults replaces the built-in colours used to heal missing brush
// entries. Keys are brush names; unknown names are skipped.
func (p *Prefs) OverrideDefaults(colors map[string]color.NRGBA) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for name, c := range colors {
		k, err := brush.ParseKind(name)
		if err != nil {
			logging.Logger().Warn("prefs: unknown brush in colour overrides", "brush", name)
			continue
		}
		if p.defaults == nil {
			p.defaults = make(map[brush.Kind]color.NRGBA)
		}
		p.defaults[k] = c
	}
}
