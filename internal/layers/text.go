package layers

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"
	"sync"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/example/mediaedit/internal/colorutil"
)

// Alignment positions lines inside a text layer.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

var alignNames = [...]string{"left", "center", "right"}

func (a Alignment) String() string {
	if a < 0 || int(a) >= len(alignNames) {
		return fmt.Sprintf("Alignment(%d)", int(a))
	}
	return alignNames[a]
}

func (a Alignment) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Alignment) UnmarshalText(b []byte) error {
	for i, n := range alignNames {
		if strings.EqualFold(n, string(b)) {
			*a = Alignment(i)
			return nil
		}
	}
	return fmt.Errorf("unknown alignment %q", b)
}

// Style selects how text is decorated.
type Style int

const (
	StyleNormal Style = iota
	StyleOutline
	StyleBackground
)

var styleNames = [...]string{"normal", "outline", "background"}

func (s Style) String() string {
	if s < 0 || int(s) >= len(styleNames) {
		return fmt.Sprintf("Style(%d)", int(s))
	}
	return styleNames[s]
}

func (s Style) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Style) UnmarshalText(b []byte) error {
	for i, n := range styleNames {
		if strings.EqualFold(n, string(b)) {
			*s = Style(i)
			return nil
		}
	}
	return fmt.Errorf("unknown text style %q", b)
}

// TextInfo is the content of a text layer. Size is the font size in canvas
// pixels at layer scale 1.
type TextInfo struct {
	Text      string
	Color     color.NRGBA
	Alignment Alignment
	Style     Style
	Size      float64
}

type jsonText struct {
	Text      string    `json:"text"`
	Color     string    `json:"color"`
	Alignment Alignment `json:"alignment"`
	Style     Style     `json:"style"`
	Size      float64   `json:"size"`
}

func (t TextInfo) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonText{t.Text, colorutil.Hex(t.Color), t.Alignment, t.Style, t.Size})
}

func (t *TextInfo) UnmarshalJSON(b []byte) error {
	var j jsonText
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	c, err := colorutil.Parse(j.Color)
	if err != nil {
		return err
	}
	*t = TextInfo{Text: j.Text, Color: c, Alignment: j.Alignment, Style: j.Style, Size: j.Size}
	return nil
}

// DefaultTextSize is used when a text layer has no size.
const DefaultTextSize = 40

// TextLine is one laid out line.
type TextLine struct {
	Text  string
	Width float64
}

// RenderInfo is the measured layout of a layer at scale 1. Width and Height
// are the layer box in canvas units.
type RenderInfo struct {
	Lines      []TextLine
	Width      float64
	Height     float64
	LineHeight float64
	Ascent     float64
	Padding    float64
}

var (
	fontOnce sync.Once
	fontErr  error
	regular  *opentype.Font
	faces    sync.Map // map[float64]font.Face
)

func faceForSize(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		regular, fontErr = opentype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return nil, fmt.Errorf("parse font: %w", fontErr)
	}
	size = math.Round(size*4) / 4
	if size < 1 {
		size = 1
	}
	if f, ok := faces.Load(size); ok {
		return f.(font.Face), nil
	}
	face, err := opentype.NewFace(regular, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		return nil, err
	}
	faces.Store(size, face)
	return face, nil
}

// LayoutText measures t at scale 1.
func LayoutText(t TextInfo) (RenderInfo, error) {
	size := t.Size
	if size <= 0 {
		size = DefaultTextSize
	}
	face, err := faceForSize(size)
	if err != nil {
		return RenderInfo{}, err
	}
	m := face.Metrics()
	ri := RenderInfo{
		LineHeight: fixedToFloat(m.Height),
		Ascent:     fixedToFloat(m.Ascent),
		Padding:    math.Round(size * 0.3),
	}
	maxW := 0.0
	for _, s := range strings.Split(t.Text, "\n") {
		w := fixedToFloat(font.MeasureString(face, s))
		ri.Lines = append(ri.Lines, TextLine{Text: s, Width: w})
		maxW = math.Max(maxW, w)
	}
	ri.Width = maxW + 2*ri.Padding
	ri.Height = float64(len(ri.Lines))*ri.LineHeight + 2*ri.Padding
	return ri, nil
}

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }

// Scaled returns ri with every length multiplied by k.
func (ri RenderInfo) Scaled(k float64) RenderInfo {
	out := RenderInfo{
		Width:      ri.Width * k,
		Height:     ri.Height * k,
		LineHeight: ri.LineHeight * k,
		Ascent:     ri.Ascent * k,
		Padding:    ri.Padding * k,
		Lines:      make([]TextLine, len(ri.Lines)),
	}
	for i, l := range ri.Lines {
		out.Lines[i] = TextLine{Text: l.Text, Width: l.Width * k}
	}
	return out
}

// RasterizeText lays t out and draws it at the given scale.
func RasterizeText(t TextInfo, scale float64) (*image.RGBA, error) {
	ri, err := LayoutText(t)
	if err != nil {
		return nil, err
	}
	return RasterizeLayout(t, ri, scale)
}

// RasterizeLayout draws t from its measured layout ri, with ri's line
// breaks and box scaled by scale. The result is the layer box times scale.
func RasterizeLayout(t TextInfo, ri RenderInfo, scale float64) (*image.RGBA, error) {
	if scale <= 0 {
		scale = 1
	}
	size := t.Size
	if size <= 0 {
		size = DefaultTextSize
	}
	size *= scale
	face, err := faceForSize(size)
	if err != nil {
		return nil, err
	}
	ri = ri.Scaled(scale)
	img := image.NewRGBA(image.Rect(0, 0, max(1, int(math.Ceil(ri.Width))), max(1, int(math.Ceil(ri.Height)))))
	fill := t.Color
	switch t.Style {
	case StyleBackground:
		roundRect(img, ri.Width, ri.Height, ri.Padding, t.Color)
		fill = colorutil.Contrast(t.Color)
	case StyleOutline:
		ring := math.Max(1, size/14)
		for a := 0.0; a < 2*math.Pi; a += math.Pi / 8 {
			drawLines(img, face, ri, t.Alignment, ring*math.Cos(a), ring*math.Sin(a), t.Color)
		}
		fill = colorutil.Contrast(t.Color)
	}
	drawLines(img, face, ri, t.Alignment, 0, 0, fill)
	return img, nil
}

func drawLines(dst draw.Image, face font.Face, ri RenderInfo, align Alignment, dx, dy float64, c color.Color) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: face}
	inner := ri.Width - 2*ri.Padding
	for i, l := range ri.Lines {
		x := ri.Padding + dx
		switch align {
		case AlignCenter:
			x += (inner - l.Width) / 2
		case AlignRight:
			x += inner - l.Width
		}
		y := ri.Padding + ri.Ascent + float64(i)*ri.LineHeight + dy
		d.Dot = fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)}
		d.DrawString(l.Text)
	}
}

// roundRect fills a w x h rectangle with corner radius r.
func roundRect(dst draw.Image, w, h, r float64, c color.Color) {
	b := dst.Bounds()
	scanner := rasterx.NewScannerGV(b.Dx(), b.Dy(), dst, b)
	f := rasterx.NewFiller(b.Dx(), b.Dy(), scanner)
	r = math.Min(r, math.Min(w, h)/2)
	p := func(x, y float64) fixed.Point26_6 { return rasterx.ToFixedP(x, y) }
	f.Start(p(r, 0))
	f.Line(p(w-r, 0))
	f.QuadBezier(p(w, 0), p(w, r))
	f.Line(p(w, h-r))
	f.QuadBezier(p(w, h), p(w-r, h))
	f.Line(p(r, h))
	f.QuadBezier(p(0, h), p(0, h-r))
	f.Line(p(0, r))
	f.QuadBezier(p(0, 0), p(r, 0))
	f.Stop(true)
	f.SetColor(c)
	f.Draw()
}
