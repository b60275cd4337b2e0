package appstate

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/mobile/event/key"

	"github.com/example/mediaedit/internal/layers"
)

const (
	tabHeight    = 24
	bottomHeight = 24
	tabWidth     = 80
)

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

var (
	barColor     = color.RGBA{220, 220, 220, 255}
	checkerLight = color.RGBA{220, 220, 220, 255}
	checkerDark  = color.RGBA{192, 192, 192, 255}
)

var messageFace font.Face

func init() {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		log.Fatalf("parse font: %v", err)
	}
	messageFace, err = opentype.NewFace(f, &opentype.FaceOptions{Size: 32, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		log.Fatalf("font face: %v", err)
	}
}

// KeyShortcut describes a keyboard combination that triggers an action.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

// ButtonState describes the visual state of a button.
type ButtonState int

const (
	StateDefault ButtonState = iota
	StateHover
	StatePressed
)

// Button represents an interactive UI element.
// Activate performs the button's action when clicked.
type Button interface {
	Draw(dst *image.RGBA, state ButtonState)
	Rect() image.Rectangle
	SetRect(r image.Rectangle)
	Activate()
}

// CacheButton wraps another Button and caches its rendered states.
type CacheButton struct {
	Button
	cache [3]*image.RGBA
}

var _ Button = (*CacheButton)(nil)

func (cb *CacheButton) Draw(dst *image.RGBA, state ButtonState) {
	if cb.cache[state] == nil {
		rect := cb.Button.Rect()
		img := image.NewRGBA(rect)
		cb.Button.Draw(img, state)
		cb.cache[state] = img
	}
	draw.Draw(dst, cb.Button.Rect(), cb.cache[state], cb.Button.Rect().Min, draw.Src)
}

func (cb *CacheButton) SetRect(r image.Rectangle) {
	if r != cb.Button.Rect() {
		cb.Button.SetRect(r)
		cb.cache = [3]*image.RGBA{}
	}
}

func stateColor(state ButtonState) color.RGBA {
	switch state {
	case StateHover:
		return color.RGBA{180, 180, 180, 255}
	case StatePressed:
		return color.RGBA{150, 150, 150, 255}
	}
	return color.RGBA{200, 200, 200, 255}
}

// label is a flat button with a text caption. Tab buttons in the header and
// shortcut buttons in the footer are both labels.
type label struct {
	text   string
	rect   image.Rectangle
	border bool
	action func()
}

func (l *label) Draw(dst *image.RGBA, state ButtonState) {
	draw.Draw(dst, l.rect, &image.Uniform{stateColor(state)}, image.Point{}, draw.Src)
	if l.border {
		drawRect(dst, l.rect, color.Black)
	}
	d := &font.Drawer{Dst: dst, Src: image.Black, Face: basicfont.Face7x13,
		Dot: fixed.P(l.rect.Min.X+4, l.rect.Min.Y+16)}
	d.DrawString(l.text)
}

func (l *label) Rect() image.Rectangle     { return l.rect }
func (l *label) SetRect(r image.Rectangle) { l.rect = r }

func (l *label) Activate() {
	if l.action != nil {
		l.action()
	}
}

// chrome holds the header and footer buttons of the window.
type chrome struct {
	tabs       []*CacheButton
	shortcuts  []Button
	hoverTab   int
	hoverShort int
}

func newChrome(selectTab func(layers.Tab)) *chrome {
	c := &chrome{hoverTab: -1, hoverShort: -1}
	for i := layers.TabAdjust; i <= layers.TabStickers; i++ {
		t := i
		c.tabs = append(c.tabs, &CacheButton{Button: &label{
			text:   fmt.Sprintf("%d:%s", int(t)+1, t),
			rect:   image.Rect(int(t)*tabWidth, 0, int(t+1)*tabWidth, tabHeight),
			action: func() { selectTab(t) },
		}})
	}
	return c
}

// drawTabs renders the tool tabs and the brush status in the header.
func (c *chrome) drawTabs(dst *image.RGBA, current layers.Tab, status string) {
	w := dst.Bounds().Dx()
	draw.Draw(dst, image.Rect(0, 0, w, tabHeight), &image.Uniform{barColor}, image.Point{}, draw.Src)
	for i, tb := range c.tabs {
		state := StateDefault
		if layers.Tab(i) == current {
			state = StatePressed
		} else if i == c.hoverTab {
			state = StateHover
		}
		tb.Draw(dst, state)
	}
	d := &font.Drawer{Dst: dst, Src: image.Black, Face: basicfont.Face7x13}
	x := w - d.MeasureString(status).Ceil() - 8
	x = max(x, len(c.tabs)*tabWidth+8)
	d.Dot = fixed.P(x, 16)
	d.DrawString(status)
}

// drawShortcuts lays out the shortcut hints of the current tab along the
// bottom bar.
func (c *chrome) drawShortcuts(dst *image.RGBA, hints []*label) {
	b := dst.Bounds()
	rect := image.Rect(0, b.Max.Y-bottomHeight, b.Max.X, b.Max.Y)
	draw.Draw(dst, rect, &image.Uniform{barColor}, image.Point{}, draw.Src)
	c.shortcuts = c.shortcuts[:0]
	x := 4
	y := b.Max.Y - bottomHeight + 2
	meas := &font.Drawer{Face: basicfont.Face7x13}
	for i, h := range hints {
		w := meas.MeasureString(h.text).Ceil()
		h.border = true
		h.SetRect(image.Rect(x, y, x+w+8, y+20))
		state := StateDefault
		if i == c.hoverShort {
			state = StateHover
		}
		h.Draw(dst, state)
		c.shortcuts = append(c.shortcuts, h)
		x = h.rect.Max.X + 6
	}
}

// hit finds the button under p and activates it when press is set.
func hit(buttons []Button, p image.Point, press bool) int {
	for i, b := range buttons {
		if p.In(b.Rect()) {
			if press {
				b.Activate()
			}
			return i
		}
	}
	return -1
}

func (c *chrome) tabButtons() []Button {
	out := make([]Button, len(c.tabs))
	for i, t := range c.tabs {
		out[i] = t
	}
	return out
}

// drawCheckerboard fills rect of dst with a checkerboard pattern of the given
// colors. size controls the checker square size.
func drawCheckerboard(dst *image.RGBA, rect image.Rectangle, size int, light, dark color.Color) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if ((x/size)+(y/size))%2 == 0 {
				dst.Set(x, y, light)
			} else {
				dst.Set(x, y, dark)
			}
		}
	}
}

// backdropCache holds a cached checkerboard backdrop.
var backdropCache *image.RGBA

// drawBackdrop fills dst with a cached checkerboard pattern.
func drawBackdrop(dst *image.RGBA) {
	b := dst.Bounds()
	if backdropCache == nil || backdropCache.Bounds() != b {
		backdropCache = image.NewRGBA(b)
		drawCheckerboard(backdropCache, backdropCache.Bounds(), 8, checkerLight, checkerDark)
	}
	draw.Draw(dst, b, backdropCache, b.Min, draw.Src)
}

func drawRect(img *image.RGBA, r image.Rectangle, col color.Color) {
	u := &image.Uniform{col}
	draw.Draw(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
}

// drawMessage shows msg in a box centred in r.
func drawMessage(dst *image.RGBA, r image.Rectangle, msg string) {
	if msg == "" {
		return
	}
	d := &font.Drawer{Dst: dst, Src: image.Black, Face: messageFace}
	wmsg := d.MeasureString(msg).Ceil()
	ascent := messageFace.Metrics().Ascent.Ceil()
	descent := messageFace.Metrics().Descent.Ceil()
	px := r.Min.X + (r.Dx()-wmsg)/2
	py := r.Min.Y + (r.Dy()-ascent-descent)/2 + ascent
	box := image.Rect(px-8, py-ascent-8, px+wmsg+8, py+descent+8)
	draw.Draw(dst, box, &image.Uniform{color.RGBA{255, 255, 255, 230}}, image.Point{}, draw.Over)
	drawRect(dst, box, color.Black)
	d.Dot = fixed.P(px, py)
	d.DrawString(msg)
}
