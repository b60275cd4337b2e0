// Package layers manages the text and sticker overlays placed on top of the
// edited image.
package layers

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/example/mediaedit/internal/geometry"
	"github.com/example/mediaedit/internal/sticker"
)

var (
	// ErrToolInactive is returned when a layer is created outside its tab.
	ErrToolInactive = errors.New("layers: tool tab is not active")
	// ErrUnknownLayer is returned for ids that are not in the collection.
	ErrUnknownLayer = errors.New("layers: unknown layer")
	// ErrTargetOccupied is returned when a layer is created on top of an
	// existing layer.
	ErrTargetOccupied = errors.New("layers: target is not empty canvas")
)

// Kind is the layer content type.
type Kind int

const (
	Text Kind = iota
	Sticker
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Sticker:
		return "sticker"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "text":
		*k = Text
	case "sticker":
		*k = Sticker
	default:
		return fmt.Errorf("unknown layer kind %q", b)
	}
	return nil
}

// Tab is the editor tool tab.
type Tab int

const (
	TabAdjust Tab = iota
	TabCrop
	TabText
	TabBrush
	TabStickers
)

var tabNames = [...]string{"adjust", "crop", "text", "brush", "stickers"}

func (t Tab) String() string {
	if t < 0 || int(t) >= len(tabNames) {
		return fmt.Sprintf("Tab(%d)", int(t))
	}
	return tabNames[t]
}

// ParseTab resolves a tab name.
func ParseTab(s string) (Tab, error) {
	for i, n := range tabNames {
		if strings.EqualFold(n, s) {
			return Tab(i), nil
		}
	}
	return 0, fmt.Errorf("unknown tab %q", s)
}

// Owner returns the tab a layer kind belongs to.
func (k Kind) Owner() Tab {
	if k == Sticker {
		return TabStickers
	}
	return TabText
}

// StickerSize is the longest side of a sticker layer at scale 1.
const StickerSize = 200

// Layer is one overlay. Position is the layer centre in canvas units
// (display points, before the pixel ratio is applied); Scale is relative to
// the layout measured at 1.
type Layer struct {
	ID       int               `json:"id"`
	Kind     Kind              `json:"kind"`
	Position geometry.Point    `json:"position"`
	Rotation float64           `json:"rotation"`
	Scale    float64           `json:"scale"`
	Text     *TextInfo         `json:"text,omitempty"`
	Sticker  *sticker.Document `json:"sticker,omitempty"`
}

// Clone returns a deep copy of l.
func (l Layer) Clone() Layer {
	if l.Text != nil {
		t := *l.Text
		l.Text = &t
	}
	if l.Sticker != nil {
		s := *l.Sticker
		s.Keywords = append([]string(nil), s.Keywords...)
		l.Sticker = &s
	}
	return l
}

// Box returns the rotated corners of the layer box given its render info.
func (l Layer) Box(ri RenderInfo) [4]geometry.Point {
	hw, hh := ri.Width*l.Scale/2, ri.Height*l.Scale/2
	local := [4]geometry.Point{{X: -hw, Y: -hh}, {X: hw, Y: -hh}, {X: hw, Y: hh}, {X: -hw, Y: hh}}
	var out [4]geometry.Point
	for i, p := range local {
		out[i] = p.Rotate(l.Rotation).Add(l.Position)
	}
	return out
}

// Hit reports whether p is inside the layer box.
func (l Layer) Hit(ri RenderInfo, p geometry.Point) bool {
	q := p.Sub(l.Position).Rotate(-l.Rotation)
	return math.Abs(q.X) <= ri.Width*l.Scale/2 && math.Abs(q.Y) <= ri.Height*l.Scale/2
}

// StickerInfo returns the box of a sticker of the given pixel size at
// scale 1: its longest side is StickerSize.
func StickerInfo(w, h int) RenderInfo {
	if w <= 0 || h <= 0 {
		return RenderInfo{Width: StickerSize, Height: StickerSize}
	}
	k := StickerSize / math.Max(float64(w), float64(h))
	return RenderInfo{Width: float64(w) * k, Height: float64(h) * k}
}
