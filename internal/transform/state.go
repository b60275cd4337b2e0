// Package transform holds the user-editable image transform and derives the
// final on-screen transform from it.
package transform

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/example/mediaedit/internal/geometry"
)

// Values is the editable transform. Translation is in un-scaled display
// units. Flip components are +1 or -1.
type Values struct {
	Ratio       float64        `json:"ratio"`
	FixedRatio  string         `json:"fixedRatio,omitempty"`
	Scale       float64        `json:"scale"`
	Rotation    float64        `json:"rotation"`
	Translation geometry.Point `json:"translation"`
	Flip        geometry.Point `json:"flip"`
}

// Identity returns the untouched transform for an image with the given
// aspect ratio.
func Identity(imageRatio float64) Values {
	return Values{
		Ratio: imageRatio,
		Scale: 1,
		Flip:  geometry.Pt(1, 1),
	}
}

// RatioOrDefault returns v.Ratio, or fallback when the ratio was never set.
func (v Values) RatioOrDefault(fallback float64) float64 {
	if v.Ratio > 0 {
		return v.Ratio
	}
	return fallback
}

func (v Values) normalized(prev Values) Values {
	if !(v.Scale > 0) || math.IsInf(v.Scale, 0) {
		v.Scale = prev.Scale
	}
	if v.Flip.X >= 0 {
		v.Flip.X = 1
	} else {
		v.Flip.X = -1
	}
	if v.Flip.Y >= 0 {
		v.Flip.Y = 1
	} else {
		v.Flip.Y = -1
	}
	return v
}

// State is the shared, observable transform of one editing session. It is
// not safe for concurrent use; the editor drives it from its event loop.
type State struct {
	v         Values
	observers map[int]func(Values)
	nextObs   int
}

// NewState returns a state holding v.
func NewState(v Values) *State {
	if v.Scale <= 0 {
		v.Scale = 1
	}
	return &State{v: v.normalized(v), observers: map[int]func(Values){}}
}

// Values returns a copy of the current transform.
func (s *State) Values() Values { return s.v }

// Set replaces the whole transform and notifies observers. A non-positive
// scale keeps the previous scale.
func (s *State) Set(v Values) {
	s.v = v.normalized(s.v)
	s.notify()
}

// Update applies fn to a copy of the current values and stores the result.
func (s *State) Update(fn func(*Values)) {
	v := s.v
	fn(&v)
	s.Set(v)
}

// Subscribe registers fn to run after every change. The returned function
// removes the subscription.
func (s *State) Subscribe(fn func(Values)) (cancel func()) {
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	return func() { delete(s.observers, id) }
}

func (s *State) notify() {
	ids := make([]int, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	v := s.v
	for _, id := range ids {
		if fn, ok := s.observers[id]; ok {
			fn(v)
		}
	}
}

// QuickRotate turns the image a quarter turn counter-clockwise.
func (s *State) QuickRotate() {
	s.Update(func(v *Values) {
		v.Rotation = NormalizeAngle(v.Rotation - math.Pi/2)
		if v.Ratio > 0 {
			v.Ratio = 1 / v.Ratio
		}
	})
}

// FlipHorizontal mirrors the image around its vertical axis.
func (s *State) FlipHorizontal() {
	s.Update(func(v *Values) { v.Flip.X = -v.Flip.X })
}

// FlipVertical mirrors the image around its horizontal axis.
func (s *State) FlipVertical() {
	s.Update(func(v *Values) { v.Flip.Y = -v.Flip.Y })
}

// NormalizeAngle maps a to (-π, π].
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// RatioOriginal selects the source image's own aspect ratio.
const RatioOriginal = "original"

var namedRatios = map[string]float64{
	"square": 1,
}

// RatioKeys lists the fixed ratios offered by the crop tool.
var RatioKeys = []string{
	RatioOriginal, "square",
	"3x2", "2x3", "4x3", "3x4", "5x4", "4x5", "7x5", "5x7", "16x9", "9x16",
}

// ParseRatio resolves a ratio key. "original" uses imageRatio, "WxH" keys
// divide their sides and "free" returns 0.
func ParseRatio(key string, imageRatio float64) (float64, error) {
	k := strings.ToLower(strings.TrimSpace(key))
	switch k {
	case "", "free":
		return 0, nil
	case RatioOriginal:
		return imageRatio, nil
	}
	if r, ok := namedRatios[k]; ok {
		return r, nil
	}
	parts := strings.Split(k, "x")
	if len(parts) != 2 {
		parts = strings.Split(k, ":")
	}
	if len(parts) == 2 {
		w, err1 := strconv.ParseFloat(parts[0], 64)
		h, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 == nil && err2 == nil && w > 0 && h > 0 {
			return w / h, nil
		}
	}
	return 0, fmt.Errorf("unknown ratio %q", key)
}
