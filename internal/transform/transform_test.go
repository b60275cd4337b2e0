package transform

import (
	"math"
	"testing"
	"time"

	"github.com/example/mediaedit/internal/geometry"
)

func liveInputs() Inputs {
	return Inputs{
		Canvas:     geometry.Size{W: 1000, H: 800},
		Values:     Identity(800.0 / 600.0),
		ImageSize:  geometry.Size{W: 800, H: 600},
		CropOffset: geometry.CropOffset(1000, 800),
		PixelRatio: 2,
	}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestComputeIdentityScale(t *testing.T) {
	in := liveInputs()
	f := Compute(in)
	want := 2 * math.Min(1000.0/800, 800.0/600)
	if !near(f.Scale, want) {
		t.Fatalf("scale %v want %v", f.Scale, want)
	}
	if !f.Translation.Eq(geometry.Pt(0, 0), 1e-9) {
		t.Fatalf("translation %+v", f.Translation)
	}
}

func TestComputeCropContinuity(t *testing.T) {
	in := liveInputs()
	in.Values.Ratio = 16.0 / 9
	in.Values.Scale = 1.7
	in.Values.Translation = geometry.Pt(35, -12)
	in.Values.Rotation = 0.3

	regular := Compute(in)
	if got := ComputeAnimated(in, 0); got != regular {
		t.Fatalf("progress 0: %+v want %+v", got, regular)
	}
	in.CropMode = true
	crop := Compute(in)
	if got := ComputeAnimated(in, 1); got != crop {
		t.Fatalf("progress 1: %+v want %+v", got, crop)
	}
	if regular == crop {
		t.Fatalf("crop and regular transforms should differ")
	}
	mid := ComputeAnimated(in, 0.5)
	lo, hi := math.Min(regular.Scale, crop.Scale), math.Max(regular.Scale, crop.Scale)
	if mid.Scale < lo || mid.Scale > hi {
		t.Fatalf("mid scale %v outside [%v,%v]", mid.Scale, lo, hi)
	}
}

func TestCropModeTranslation(t *testing.T) {
	in := liveInputs()
	in.CropMode = true
	in.PixelRatio = 1
	f := Compute(in)
	co := in.CropOffset
	want := geometry.Pt(0, co.Left+co.Height/2-in.Canvas.H/2)
	if !f.Translation.Eq(want, 1e-9) {
		t.Fatalf("translation %+v want %+v", f.Translation, want)
	}
}

func TestProjectionRoundTrip(t *testing.T) {
	in := liveInputs()
	in.Values.Rotation = 0.7
	in.Values.Scale = 1.3
	in.Values.Flip = geometry.Pt(-1, 1)
	in.Values.Translation = geometry.Pt(10, 20)
	f := Compute(in)
	dst := geometry.Size{W: 2000, H: 1600}
	p := f.Project(dst)
	for _, q := range []geometry.Point{{X: 0, Y: 0}, {X: 100, Y: -40}, {X: -400, Y: 300}} {
		back := p.ToImage(p.ToSurface(q))
		if !back.Eq(q, 1e-6) {
			t.Fatalf("round trip %+v -> %+v", q, back)
		}
	}
	in.Values = Identity(800.0 / 600.0)
	p = Compute(in).Project(dst)
	if c := p.ToImage(geometry.Pt(1000, 800)); !c.Eq(geometry.Pt(0, 0), 1e-9) {
		t.Fatalf("canvas centre maps to %+v", c)
	}
}

func TestStateNotifies(t *testing.T) {
	s := NewState(Identity(1))
	var got []Values
	cancel := s.Subscribe(func(v Values) { got = append(got, v) })
	s.Update(func(v *Values) { v.Scale = 2 })
	s.Update(func(v *Values) { v.Scale = -1 })
	cancel()
	s.FlipHorizontal()
	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}
	if got[1].Scale != 2 {
		t.Fatalf("non-positive scale should be rejected, got %v", got[1].Scale)
	}
	if s.Values().Flip.X != -1 {
		t.Fatalf("flip not applied")
	}
}

func TestQuickRotate(t *testing.T) {
	s := NewState(Identity(2))
	s.QuickRotate()
	v := s.Values()
	if !near(v.Rotation, -math.Pi/2) || !near(v.Ratio, 0.5) {
		t.Fatalf("after quick rotate: %+v", v)
	}
	for i := 0; i < 3; i++ {
		s.QuickRotate()
	}
	if !near(s.Values().Rotation, 0) {
		t.Fatalf("four turns should return to 0, got %v", s.Values().Rotation)
	}
}

func TestParseRatio(t *testing.T) {
	cases := map[string]float64{"square": 1, "16x9": 16.0 / 9, "4:5": 0.8, "original": 1.5, "free": 0}
	for k, want := range cases {
		got, err := ParseRatio(k, 1.5)
		if err != nil || !near(got, want) {
			t.Errorf("ParseRatio(%q) = %v, %v", k, got, err)
		}
	}
	for _, k := range RatioKeys {
		if _, err := ParseRatio(k, 1); err != nil {
			t.Errorf("listed key %q: %v", k, err)
		}
	}
	if _, err := ParseRatio("wide", 1); err == nil {
		t.Fatalf("expected error")
	}
}

func TestAnimation(t *testing.T) {
	var a Animation
	start := time.Unix(0, 0)
	if a.Progress(start) != 0 {
		t.Fatalf("zero animation should rest at 0")
	}
	a.Toggle(true, start)
	if p := a.Progress(start.Add(100 * time.Millisecond)); !near(p, 0.5) {
		t.Fatalf("halfway progress %v", p)
	}
	if p := a.Progress(start.Add(250 * time.Millisecond)); p != 1 {
		t.Fatalf("finished progress %v", p)
	}
	if a.Running(start.Add(300 * time.Millisecond)) {
		t.Fatalf("animation should be done")
	}
	a.Toggle(false, start.Add(time.Second))
	if p := a.Progress(start.Add(time.Second + 50*time.Millisecond)); !near(p, 0.75) {
		t.Fatalf("reverse progress %v", p)
	}
}
