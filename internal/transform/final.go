package transform

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/example/mediaedit/internal/geometry"
)

// Inputs are everything the final transform depends on. Canvas is measured
// in display units; PixelRatio converts them to device pixels.
type Inputs struct {
	Canvas     geometry.Size
	CropMode   bool
	Values     Values
	ImageSize  geometry.Size
	CropOffset geometry.Rect
	PixelRatio float64
}

// Final is the transform handed to the draw function. Scale and Translation
// are in device pixels.
type Final struct {
	Flip        geometry.Point
	Rotation    float64
	Scale       float64
	Translation geometry.Point
}

// Compute derives the final transform for the current mode.
func Compute(in Inputs) Final {
	progress := 0.0
	if in.CropMode {
		progress = 1
	}
	return ComputeAnimated(in, progress)
}

// ComputeAnimated interpolates between the regular view (progress 0) and
// the crop view (progress 1). in.CropMode is ignored.
func ComputeAnimated(in Inputs, progress float64) Final {
	pr := in.PixelRatio
	if pr <= 0 {
		pr = 1
	}
	w, h := in.Canvas.W, in.Canvas.H
	iw, ih := in.ImageSize.W, in.ImageSize.H
	co := in.CropOffset
	v := in.Values

	imageRatio := iw / ih
	currentRatio := v.RatioOrDefault(imageRatio)

	toCropScale := geometry.SnappedScaleBetween(imageRatio, co.Width, co.Height, w, h)
	fromCroppedScale := 1 / geometry.SnappedScaleBetween(currentRatio, co.Width, co.Height, w, h)
	snappedImageScale := math.Min(w/iw, h/ih)

	toCropScale *= geometry.Lerp(fromCroppedScale, 1, progress)

	t := v.Translation
	regular := t.Mul(fromCroppedScale).Sub(t)
	// The vertical recentring uses the left margin; it only matches the crop
	// area centre while the left and top margins are equal.
	cropped := geometry.Pt(0, co.Left+co.Height/2-h/2)
	cropTranslation := geometry.LerpPoint(regular, cropped, progress)

	return Final{
		Flip:        v.Flip,
		Rotation:    v.Rotation,
		Scale:       v.Scale * pr * snappedImageScale * toCropScale,
		Translation: cropTranslation.Add(t).Mul(pr),
	}
}

// Matrix returns the 3x3 affine matrix mapping image space (origin at the
// image centre, unit = source pixel) onto a device-pixel surface of size dst.
// Flip is applied first, then scale, rotation and translation.
func (f Final) Matrix(dst geometry.Size) *mat.Dense {
	flip := f.Flip
	if flip.X == 0 {
		flip.X = 1
	}
	if flip.Y == 0 {
		flip.Y = 1
	}
	s, c := math.Sincos(f.Rotation)
	sx, sy := f.Scale*flip.X, f.Scale*flip.Y
	tx := dst.W/2 + f.Translation.X
	ty := dst.H/2 + f.Translation.Y
	return mat.NewDense(3, 3, []float64{
		c * sx, -s * sy, tx,
		s * sx, c * sy, ty,
		0, 0, 1,
	})
}

// Projection maps points between image space and a device surface.
type Projection struct {
	fwd, inv *mat.Dense
	scale    float64
	rotation float64
}

// Project builds the mapping of f onto a surface of size dst. A degenerate
// transform projects everything to the surface centre.
func (f Final) Project(dst geometry.Size) Projection {
	fwd := f.Matrix(dst)
	var inv mat.Dense
	if err := inv.Inverse(fwd); err != nil {
		inv.CloneFrom(mat.NewDense(3, 3, []float64{0, 0, 0, 0, 0, 0, 0, 0, 1}))
	}
	return Projection{fwd: fwd, inv: &inv, scale: f.Scale, rotation: f.Rotation}
}

func apply(m *mat.Dense, p geometry.Point) geometry.Point {
	return geometry.Point{
		X: m.At(0, 0)*p.X + m.At(0, 1)*p.Y + m.At(0, 2),
		Y: m.At(1, 0)*p.X + m.At(1, 1)*p.Y + m.At(1, 2),
	}
}

// ToSurface maps an image-space point onto the surface.
func (p Projection) ToSurface(q geometry.Point) geometry.Point { return apply(p.fwd, q) }

// ToImage maps a surface point back into image space.
func (p Projection) ToImage(q geometry.Point) geometry.Point { return apply(p.inv, q) }

// Scale is the number of surface pixels per image pixel.
func (p Projection) Scale() float64 { return p.scale }

// Rotation is the image rotation on the surface.
func (p Projection) Rotation() float64 { return p.rotation }

// Affine returns the forward mapping as a row-major 2x3 matrix.
func (p Projection) Affine() [6]float64 {
	m := p.fwd
	return [6]float64{m.At(0, 0), m.At(0, 1), m.At(0, 2), m.At(1, 0), m.At(1, 1), m.At(1, 2)}
}

// Reproject returns a function mapping points from surface a to surface b
// through image space, and the ratio between their scales.
func Reproject(from, to Projection) (func(geometry.Point) geometry.Point, float64) {
	k := 1.0
	if from.scale != 0 {
		k = to.scale / from.scale
	}
	return func(q geometry.Point) geometry.Point {
		return to.ToSurface(from.ToImage(q))
	}, k
}
