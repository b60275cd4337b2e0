package geometry

import (
	"math"
	"testing"
)

func TestSnapToViewport(t *testing.T) {
	cases := []struct {
		ratio, w, h float64
	}{
		{1, 100, 50},
		{1, 50, 100},
		{16.0 / 9, 1000, 800},
		{9.0 / 16, 1000, 800},
		{4.0 / 3, 400, 300},
		{0.25, 10, 1000},
	}
	for _, c := range cases {
		w, h := SnapToViewport(c.ratio, c.w, c.h)
		if w > c.w+1e-9 || h > c.h+1e-9 {
			t.Errorf("ratio %v box %vx%v: %vx%v exceeds box", c.ratio, c.w, c.h, w, h)
		}
		if w != c.w && h != c.h {
			t.Errorf("ratio %v box %vx%v: %vx%v touches neither side", c.ratio, c.w, c.h, w, h)
		}
		if got := w / h; math.Abs(got-c.ratio) > 1e-9 {
			t.Errorf("ratio %v box %vx%v: got ratio %v", c.ratio, c.w, c.h, got)
		}
	}
}

func TestSnappedScaleBetweenIdentity(t *testing.T) {
	for _, r := range []float64{0.5, 1, 4.0 / 3, 2.5} {
		if s := SnappedScaleBetween(r, 640, 480, 640, 480); s != 1 {
			t.Fatalf("ratio %v: expected 1, got %v", r, s)
		}
	}
	if s := SnappedScaleBetween(1, 200, 200, 100, 100); s != 2 {
		t.Fatalf("expected 2, got %v", s)
	}
}

func TestCropOffset(t *testing.T) {
	r := CropOffset(1000, 800)
	want := Rect{Left: 60, Top: 60, Width: 880, Height: 620}
	if r != want {
		t.Fatalf("got %+v want %+v", r, want)
	}
	if r := CropOffset(0, 800); r != (Rect{}) {
		t.Fatalf("unknown size should be zero, got %+v", r)
	}
}

func TestLerpEndpoints(t *testing.T) {
	a, b := 0.1, 0.3
	if Lerp(a, b, 0) != a || Lerp(a, b, 1) != b {
		t.Fatalf("lerp endpoints not exact: %v %v", Lerp(a, b, 0), Lerp(a, b, 1))
	}
	if got := Lerp(0, 10, 0.25); got != 2.5 {
		t.Fatalf("lerp midpoint %v", got)
	}
}

func TestPointRotate(t *testing.T) {
	p := Pt(1, 0).Rotate(math.Pi / 2)
	if !p.Eq(Pt(0, 1), 1e-12) {
		t.Fatalf("rotate: %+v", p)
	}
	b := Bounds(Pt(3, 1), Pt(-1, 4), Pt(0, 0))
	if b != (Rect{Left: -1, Top: 0, Width: 4, Height: 4}) {
		t.Fatalf("bounds: %+v", b)
	}
}

func TestPointAndRectHelpers(t *testing.T) {
	p, q := Pt(3, 4), Pt(1, -2)
	if p.Add(q) != Pt(4, 2) || p.Sub(q) != Pt(2, 6) || p.Mul(2) != Pt(6, 8) || p.MulPt(q) != Pt(3, -8) {
		t.Fatalf("arithmetic on %v and %v", p, q)
	}
	if p.Len() != 5 || p.Dist(Pt(0, 0)) != 5 || p.Mid(q) != Pt(2, 1) {
		t.Fatalf("lengths on %v", p)
	}
	if a := Pt(0, 2).Angle(); math.Abs(a-math.Pi/2) > 1e-12 {
		t.Fatalf("angle %v", a)
	}
	r := Rect{Left: 10, Top: 20, Width: 30, Height: 40}
	if r.Right() != 40 || r.Bottom() != 60 || r.Center() != Pt(25, 40) || r.Size() != (Size{W: 30, H: 40}) || r.Empty() {
		t.Fatalf("rect helpers on %+v", r)
	}
	if !(Rect{Width: 0, Height: 5}).Empty() {
		t.Fatalf("zero width rect should be empty")
	}
}
