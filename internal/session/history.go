package session

import (
	"errors"

	"github.com/example/mediaedit/internal/brush"
	"github.com/example/mediaedit/internal/layers"
)

var (
	ErrNothingToUndo = errors.New("session: nothing to undo")
	ErrNothingToRedo = errors.New("session: nothing to redo")
)

// MaxHistory bounds the undo stack.
const MaxHistory = 50

// snapshot is the undoable part of a session: committed lines and layers.
type snapshot struct {
	Lines  []brush.Line   `json:"lines"`
	Layers []layers.Layer `json:"layers"`
}

func (s snapshot) clone() snapshot {
	out := snapshot{
		Lines:  make([]brush.Line, len(s.Lines)),
		Layers: make([]layers.Layer, len(s.Layers)),
	}
	for i, l := range s.Lines {
		out.Lines[i] = l.Clone()
	}
	for i, l := range s.Layers {
		out.Layers[i] = l.Clone()
	}
	return out
}

// History is a bounded undo/redo stack of snapshots.
type History struct {
	undo []snapshot
	redo []snapshot
}

// push records the state before an edit and drops the redo branch.
func (h *History) push(s snapshot) {
	h.undo = append(h.undo, s.clone())
	if len(h.undo) > MaxHistory {
		h.undo = h.undo[len(h.undo)-MaxHistory:]
	}
	h.redo = nil
}

func (h *History) back(cur snapshot) (snapshot, error) {
	if len(h.undo) == 0 {
		return snapshot{}, ErrNothingToUndo
	}
	prev := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, cur.clone())
	return prev, nil
}

func (h *History) forward(cur snapshot) (snapshot, error) {
	if len(h.redo) == 0 {
		return snapshot{}, ErrNothingToRedo
	}
	next := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, cur.clone())
	return next, nil
}

// CanUndo reports whether Undo has anything to restore.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether Redo has anything to restore.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }
