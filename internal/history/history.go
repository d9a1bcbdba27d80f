// Package history keeps the linear undo/redo stack of committed editor
// states.
package history

import (
	"image"

	"github.com/example/pixeledit/internal/annotation"
	"github.com/example/pixeledit/internal/logging"
)

// DefaultLimit is the number of snapshots kept when none is configured.
const DefaultLimit = 50

// Snapshot is one committed state: the working pixels and the annotation
// list at that moment.
type Snapshot struct {
	Image       *image.RGBA
	Annotations []annotation.Annotation
}

// Width returns the snapshot's pixel width.
func (s Snapshot) Width() int { return s.Image.Bounds().Dx() }

// Height returns the snapshot's pixel height.
func (s Snapshot) Height() int { return s.Image.Bounds().Dy() }

func (s Snapshot) clone() Snapshot {
	return Snapshot{Image: cloneRGBA(s.Image), Annotations: cloneAnnotations(s.Annotations)}
}

// Stack is a capped list of snapshots with a cursor. Entries after the
// cursor form the redo branch.
type Stack struct {
	entries []Snapshot
	index   int
	limit   int
}

// New returns an empty stack holding at most limit entries. A limit below
// one selects DefaultLimit.
func New(limit int) *Stack {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &Stack{index: -1, limit: limit}
}

// Push records a copy of img and anns as the newest state. Any redo branch
// is discarded and the oldest entry is evicted once the limit is reached.
// Pushing an empty image is logged and ignored; Push reports whether a
// snapshot was stored.
func (s *Stack) Push(img *image.RGBA, anns []annotation.Annotation) bool {
	if img == nil || img.Bounds().Empty() {
		logging.Logger().Warn("history: ignoring snapshot of empty buffer")
		return false
	}
	s.entries = append(s.entries[:s.index+1], Snapshot{
		Image:       cloneRGBA(img),
		Annotations: cloneAnnotations(anns),
	})
	if over := len(s.entries) - s.limit; over > 0 {
		clear(s.entries[:over])
		s.entries = s.entries[over:]
	}
	s.index = len(s.entries) - 1
	logging.Logger().Debug("history: push", "len", len(s.entries), "index", s.index)
	return true
}

// Undo moves the cursor back and returns a copy of the state there.
func (s *Stack) Undo() (Snapshot, bool) {
	if !s.CanUndo() {
		return Snapshot{}, false
	}
	s.index--
	return s.entries[s.index].clone(), true
}

// Redo moves the cursor forward and returns a copy of the state there.
func (s *Stack) Redo() (Snapshot, bool) {
	if !s.CanRedo() {
		return Snapshot{}, false
	}
	s.index++
	return s.entries[s.index].clone(), true
}

// Current returns a copy of the state under the cursor.
func (s *Stack) Current() (Snapshot, bool) {
	if s.index < 0 {
		return Snapshot{}, false
	}
	return s.entries[s.index].clone(), true
}

// CanUndo reports whether an older snapshot exists.
func (s *Stack) CanUndo() bool { return s.index > 0 }

// CanRedo reports whether a newer snapshot exists.
func (s *Stack) CanRedo() bool { return s.index >= 0 && s.index < len(s.entries)-1 }

// Len returns the number of stored snapshots.
func (s *Stack) Len() int { return len(s.entries) }

// Index returns the cursor position, or -1 when empty.
func (s *Stack) Index() int { return s.index }

// Limit returns the configured capacity.
func (s *Stack) Limit() int { return s.limit }

// Reset drops every entry.
func (s *Stack) Reset() {
	s.entries = nil
	s.index = -1
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	w := b.Dx() * 4
	for y := 0; y < b.Dy(); y++ {
		so := src.PixOffset(b.Min.X, b.Min.Y+y)
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+w], src.Pix[so:so+w])
	}
	return dst
}

func cloneAnnotations(in []annotation.Annotation) []annotation.Annotation {
	if in == nil {
		return nil
	}
	out := make([]annotation.Annotation, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}
	return out
}
