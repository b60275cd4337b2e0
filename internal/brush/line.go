// Package brush records pointer strokes and renders them with the editor's
// brushes.
package brush

import (
	"encoding/json"
	"fmt"
	"image/color"
	"strings"

	"github.com/example/mediaedit/internal/colorutil"
	"github.com/example/mediaedit/internal/geometry"
)

// Kind selects how a line is rendered.
type Kind int

const (
	Pen Kind = iota
	Arrow
	Marker
	Neon
	Blur
	Eraser
)

var kindNames = [...]string{
	Pen:    "pen",
	Arrow:  "arrow",
	Marker: "marker",
	Neon:   "neon",
	Blur:   "blur",
	Eraser: "eraser",
}

// Kinds lists every brush in toolbar order.
func Kinds() []Kind { return []Kind{Pen, Arrow, Marker, Neon, Blur, Eraser} }

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// HasColor reports whether the brush uses the line colour.
func (k Kind) HasColor() bool { return k != Blur && k != Eraser }

// ParseKind resolves a brush name. "brush" is accepted for the marker.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "brush" {
		return Marker, nil
	}
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown brush %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(kindNames) {
		return nil, fmt.Errorf("invalid brush %d", int(k))
	}
	return []byte(kindNames[k]), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Line is one stroke. Points are in device pixels of the surface the line
// was drawn on.
type Line struct {
	Color  color.NRGBA
	Brush  Kind
	Size   float64
	Points []geometry.Point
}

type jsonLine struct {
	Color  string           `json:"color"`
	Brush  Kind             `json:"brush"`
	Size   float64          `json:"size"`
	Points []geometry.Point `json:"points"`
}

func (l Line) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonLine{Color: colorutil.Hex(l.Color), Brush: l.Brush, Size: l.Size, Points: l.Points})
}

func (l *Line) UnmarshalJSON(b []byte) error {
	var j jsonLine
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	c, err := colorutil.Parse(j.Color)
	if err != nil {
		return err
	}
	*l = Line{Color: c, Brush: j.Brush, Size: j.Size, Points: j.Points}
	return nil
}

// Clone returns a deep copy of l.
func (l Line) Clone() Line {
	l.Points = append([]geometry.Point(nil), l.Points...)
	return l
}

// Map returns a copy of l with every point passed through fn and the size
// multiplied by k.
func (l Line) Map(fn func(geometry.Point) geometry.Point, k float64) Line {
	out := l
	out.Size = l.Size * k
	out.Points = make([]geometry.Point, len(l.Points))
	for i, p := range l.Points {
		out.Points[i] = fn(p)
	}
	return out
}

// Bounds returns the bounding box of the points grown by the line size.
func (l Line) Bounds() geometry.Rect {
	b := geometry.Bounds(l.Points...)
	return geometry.Rect{
		Left:   b.Left - l.Size,
		Top:    b.Top - l.Size,
		Width:  b.Width + 2*l.Size,
		Height: b.Height + 2*l.Size,
	}
}
