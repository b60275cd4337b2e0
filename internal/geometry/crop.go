package geometry

// Margins is the inset between the canvas edges and the crop area.
type Margins struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// DefaultMargins leaves room for the crop toolbar below the image.
var DefaultMargins = Margins{Left: 60, Top: 60, Right: 60, Bottom: 120}

// CropOffset returns the crop area of a canvas of size w x h using the
// default margins. An unknown canvas size yields the zero rectangle.
func CropOffset(w, h float64) Rect {
	return DefaultMargins.CropOffset(w, h)
}

// CropOffset returns the crop area inside a w x h canvas.
func (m Margins) CropOffset(w, h float64) Rect {
	if w <= 0 || h <= 0 {
		return Rect{}
	}
	return Rect{
		Left:   m.Left,
		Top:    m.Top,
		Width:  w - m.Left - m.Right,
		Height: h - m.Top - m.Bottom,
	}
}
