package layers

import (
	"fmt"
	"math"

	"github.com/example/mediaedit/internal/geometry"
	"github.com/example/mediaedit/internal/logging"
	"github.com/example/mediaedit/internal/sticker"
)

type gestureKind int

const (
	gestureNone gestureKind = iota
	gestureDrag
	gestureResize
)

// gesture is the in-flight drag or resize. Its values are presentational
// until the gesture ends.
type gesture struct {
	kind    gestureKind
	id      int
	offset  geometry.Point
	initial geometry.Point
	start   Layer
	live    Layer
}

// Collection owns the layers of one session. Layers keep insertion order for
// export; render order puts the selected layer last. It is not safe for
// concurrent use.
type Collection struct {
	layers   []*Layer
	order    []int
	info     map[int]RenderInfo
	seed     int
	selected int
	tab      Tab
	g        gesture
}

// NewCollection returns an empty collection on the adjust tab.
func NewCollection() *Collection {
	return &Collection{info: map[int]RenderInfo{}}
}

// Tab returns the active tool tab.
func (c *Collection) Tab() Tab { return c.tab }

// SetTab switches the tool tab. Leaving the tab that owns the selected layer
// deselects it.
func (c *Collection) SetTab(t Tab) {
	if sel, ok := c.get(c.selected); ok && sel.Kind.Owner() != t {
		c.Deselect()
	}
	c.tab = t
}

// Seed is the last id handed out.
func (c *Collection) Seed() int { return c.seed }

func (c *Collection) get(id int) (*Layer, bool) {
	if id == 0 {
		return nil, false
	}
	for _, l := range c.layers {
		if l.ID == id {
			return l, true
		}
	}
	return nil, false
}

// Get returns a copy of the layer with its committed values.
func (c *Collection) Get(id int) (Layer, bool) {
	l, ok := c.get(id)
	if !ok {
		return Layer{}, false
	}
	return l.Clone(), true
}

// Presented returns the layer as it should be drawn, including an
// uncommitted drag or resize.
func (c *Collection) Presented(id int) (Layer, bool) {
	if c.g.kind != gestureNone && c.g.id == id {
		return c.g.live.Clone(), true
	}
	return c.Get(id)
}

// Layers returns the committed layers in insertion order.
func (c *Collection) Layers() []Layer {
	out := make([]Layer, len(c.layers))
	for i, l := range c.layers {
		out[i] = l.Clone()
	}
	return out
}

// RenderOrder returns the presented layers bottom to top.
func (c *Collection) RenderOrder() []Layer {
	out := make([]Layer, 0, len(c.order))
	for _, id := range c.order {
		if l, ok := c.Presented(id); ok {
			out = append(out, l)
		}
	}
	return out
}

// RenderInfo returns the cached layout of a layer.
func (c *Collection) RenderInfo(id int) (RenderInfo, bool) {
	ri, ok := c.info[id]
	return ri, ok
}

func (c *Collection) measure(l *Layer) {
	switch l.Kind {
	case Text:
		if l.Text == nil {
			delete(c.info, l.ID)
			return
		}
		ri, err := LayoutText(*l.Text)
		if err != nil {
			logging.Logger().Warn("layers: text layout failed", "id", l.ID, "err", err)
			delete(c.info, l.ID)
			return
		}
		c.info[l.ID] = ri
	case Sticker:
		if l.Sticker == nil {
			delete(c.info, l.ID)
			return
		}
		c.info[l.ID] = StickerInfo(l.Sticker.Width, l.Sticker.Height)
	}
}

func (c *Collection) insert(l *Layer) {
	c.layers = append(c.layers, l)
	c.order = append(c.order, l.ID)
	c.measure(l)
}

// AddText creates a text layer at pos. The text tab must be active and pos
// must not hit an existing layer.
func (c *Collection) AddText(pos geometry.Point, t TextInfo) (Layer, error) {
	if c.tab != TabText {
		return Layer{}, ErrToolInactive
	}
	if id, ok := c.HitTest(pos); ok {
		return Layer{}, fmt.Errorf("layer %d at %v: %w", id, pos, ErrTargetOccupied)
	}
	if t.Size <= 0 {
		t.Size = DefaultTextSize
	}
	c.seed++
	l := &Layer{ID: c.seed, Kind: Text, Position: pos, Scale: 1, Text: &t}
	c.insert(l)
	c.Select(l.ID)
	return l.Clone(), nil
}

// AddSticker creates a sticker layer at pos. The stickers tab must be
// active. Unlike AddText, pos may overlap existing layers: stickers are
// placed from the picker, not by tapping the canvas, so repeated picks
// stack at the same point.
func (c *Collection) AddSticker(pos geometry.Point, d sticker.Document) (Layer, error) {
	if c.tab != TabStickers {
		return Layer{}, ErrToolInactive
	}
	c.seed++
	l := &Layer{ID: c.seed, Kind: Sticker, Position: pos, Scale: 1, Sticker: &d}
	c.insert(l)
	c.Select(l.ID)
	return l.Clone(), nil
}

// UpdateText replaces the content of a text layer and refreshes its layout.
func (c *Collection) UpdateText(id int, t TextInfo) error {
	l, ok := c.get(id)
	if !ok || l.Kind != Text {
		return fmt.Errorf("text layer %d: %w", id, ErrUnknownLayer)
	}
	l.Text = &t
	c.measure(l)
	return nil
}

// Remove deletes a layer.
func (c *Collection) Remove(id int) error {
	idx := -1
	for i, l := range c.layers {
		if l.ID == id {
			idx = i
		}
	}
	if idx < 0 {
		return fmt.Errorf("layer %d: %w", id, ErrUnknownLayer)
	}
	c.layers = append(c.layers[:idx], c.layers[idx+1:]...)
	for i, o := range c.order {
		if o == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	delete(c.info, id)
	if c.selected == id {
		c.selected = 0
	}
	if c.g.id == id {
		c.g = gesture{}
	}
	return nil
}

// Restore replaces every layer, keeping ids. The seed never moves backwards.
func (c *Collection) Restore(layers []Layer, seed int) {
	c.layers, c.order = nil, nil
	c.info = map[int]RenderInfo{}
	c.selected = 0
	c.g = gesture{}
	for _, l := range layers {
		cl := l.Clone()
		c.insert(&cl)
		seed = max(seed, l.ID)
	}
	c.seed = max(c.seed, seed)
}

// Select marks a layer selected and moves it to the top of the render
// order.
func (c *Collection) Select(id int) error {
	if _, ok := c.get(id); !ok {
		return fmt.Errorf("layer %d: %w", id, ErrUnknownLayer)
	}
	for i, o := range c.order {
		if o == id {
			c.order = append(append(c.order[:i:i], c.order[i+1:]...), id)
			break
		}
	}
	c.selected = id
	return nil
}

// Deselect clears the selection.
func (c *Collection) Deselect() { c.selected = 0 }

// Selected returns the selected layer id.
func (c *Collection) Selected() (int, bool) { return c.selected, c.selected != 0 }

// HitTest returns the top-most layer under p. Layers without render info
// cannot be hit.
func (c *Collection) HitTest(p geometry.Point) (int, bool) {
	for i := len(c.order) - 1; i >= 0; i-- {
		id := c.order[i]
		l, ok := c.Presented(id)
		if !ok {
			continue
		}
		ri, ok := c.info[id]
		if !ok {
			continue
		}
		if l.Hit(ri, p) {
			return id, true
		}
	}
	return 0, false
}

// Handles returns the corner handles of a layer, clockwise from top-left.
func (c *Collection) Handles(id int) ([4]geometry.Point, bool) {
	l, ok := c.Presented(id)
	if !ok {
		return [4]geometry.Point{}, false
	}
	ri, ok := c.info[id]
	if !ok {
		return [4]geometry.Point{}, false
	}
	return l.Box(ri), true
}

func (c *Collection) begin(kind gestureKind, id int) (*Layer, error) {
	l, ok := c.get(id)
	if !ok {
		return nil, fmt.Errorf("layer %d: %w", id, ErrUnknownLayer)
	}
	c.Select(id)
	c.g = gesture{kind: kind, id: id, start: l.Clone(), live: l.Clone()}
	return l, nil
}

// BeginDrag starts moving a layer.
func (c *Collection) BeginDrag(id int) error {
	_, err := c.begin(gestureDrag, id)
	return err
}

// DragTo sets the drag offset from the gesture start.
func (c *Collection) DragTo(dx, dy float64) {
	if c.g.kind != gestureDrag {
		return
	}
	c.g.offset = geometry.Pt(dx, dy)
	c.g.live.Position = c.g.start.Position.Add(c.g.offset)
}

// BeginResize starts rotating and scaling a layer from a handle grabbed at
// pointer.
func (c *Collection) BeginResize(id int, pointer geometry.Point) error {
	l, err := c.begin(gestureResize, id)
	if err != nil {
		return err
	}
	c.g.initial = pointer.Sub(l.Position)
	return nil
}

// ResizeTo updates the live rotation and scale from the pointer position.
// Both follow the vector from the layer centre to the pointer relative to
// the vector at the start of the gesture.
func (c *Collection) ResizeTo(pointer geometry.Point) {
	if c.g.kind != gestureResize {
		return
	}
	cur := pointer.Sub(c.g.start.Position)
	init := c.g.initial
	if init.Len() == 0 || cur.Len() == 0 {
		return
	}
	c.g.live.Rotation = normalizeAngle(c.g.start.Rotation + cur.Angle() - init.Angle())
	c.g.live.Scale = c.g.start.Scale * cur.Len() / init.Len()
}

// EndGesture commits the live drag or resize.
func (c *Collection) EndGesture() {
	if c.g.kind == gestureNone {
		return
	}
	if l, ok := c.get(c.g.id); ok {
		l.Position = c.g.live.Position
		l.Rotation = c.g.live.Rotation
		l.Scale = c.g.live.Scale
	}
	c.g = gesture{}
}

// CancelGesture drops the live drag or resize.
func (c *Collection) CancelGesture() { c.g = gesture{} }

func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}
