package annotation

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/example/pixeledit/internal/geom"
)

var (
	// ErrUnknownAnnotation is returned when an id does not exist.
	ErrUnknownAnnotation = errors.New("unknown annotation")
	// ErrDuplicateID is returned when adding an id already in use or
	// previously removed.
	ErrDuplicateID = errors.New("duplicate annotation id")
	// ErrNoShape is returned when an annotation has no variant payload.
	ErrNoShape = errors.New("annotation has no shape")
)

// NewID returns a fresh annotation id.
func NewID() string {
	return uuid.NewString()
}

// Model is the ordered annotation list. The zero value is ready to use.
// An id is never handed out twice: removed ids stay reserved.
type Model struct {
	items   []Annotation
	retired map[string]struct{}
}

// Len returns the number of annotations.
func (m *Model) Len() int { return len(m.items) }

// All returns deep copies of the annotations in paint order.
func (m *Model) All() []Annotation {
	out := make([]Annotation, len(m.items))
	for i, a := range m.items {
		out[i] = a.Clone()
	}
	return out
}

// Replace swaps the whole list for copies of items. Used when restoring
// history; retired ids stay reserved so a restored annotation keeps its id.
func (m *Model) Replace(items []Annotation) {
	m.items = make([]Annotation, len(items))
	for i, a := range items {
		m.items[i] = a.Clone()
	}
}

func (m *Model) index(id string) int {
	for i := range m.items {
		if m.items[i].ID == id {
			return i
		}
	}
	return -1
}

// Get returns a copy of the annotation with id.
func (m *Model) Get(id string) (Annotation, bool) {
	i := m.index(id)
	if i < 0 {
		return Annotation{}, false
	}
	return m.items[i].Clone(), true
}

// Add appends a copy of a on top of the others. An empty id is replaced by
// a new one. The stored id is returned.
func (m *Model) Add(a Annotation) (string, error) {
	if a.Shape == nil {
		return "", ErrNoShape
	}
	if a.ID == "" {
		a.ID = NewID()
	} else if m.index(a.ID) >= 0 || m.isRetired(a.ID) {
		return "", fmt.Errorf("%w: %s", ErrDuplicateID, a.ID)
	}
	m.items = append(m.items, a.Clone())
	return a.ID, nil
}

// Upsert replaces the annotation with the same id in place, keeping its
// paint position, or adds it when absent.
func (m *Model) Upsert(a Annotation) (string, error) {
	if a.Shape == nil {
		return "", ErrNoShape
	}
	if a.ID != "" {
		if i := m.index(a.ID); i >= 0 {
			m.items[i] = a.Clone()
			return a.ID, nil
		}
	}
	return m.Add(a)
}

// Update applies fn to the annotation with id. The id cannot be changed by
// fn.
func (m *Model) Update(id string, fn func(*Annotation)) error {
	i := m.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownAnnotation, id)
	}
	a := m.items[i].Clone()
	fn(&a)
	a.ID = id
	m.items[i] = a
	return nil
}

// Remove deletes the annotation with id.
func (m *Model) Remove(id string) error {
	i := m.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownAnnotation, id)
	}
	m.items = append(m.items[:i], m.items[i+1:]...)
	if m.retired == nil {
		m.retired = map[string]struct{}{}
	}
	m.retired[id] = struct{}{}
	return nil
}

func (m *Model) isRetired(id string) bool {
	_, ok := m.retired[id]
	return ok
}

// HitTest returns the id of the topmost visible annotation under p. The
// most recently added annotation wins when several overlap.
func (m *Model) HitTest(p geom.Point) (string, bool) {
	for i := len(m.items) - 1; i >= 0; i-- {
		a := m.items[i]
		if !a.Visible {
			continue
		}
		if a.Contains(p) {
			return a.ID, true
		}
	}
	return "", false
}

// Translate shifts every annotation by d. Used after a crop so overlays
// keep their place relative to the pixels.
func (m *Model) Translate(d geom.Point) {
	for i := range m.items {
		m.items[i].Translate(d)
	}
}

// Move places the annotation with id at origin.
func (m *Model) Move(id string, origin geom.Point) error {
	return m.Update(id, func(a *Annotation) { a.Origin = origin })
}

// Resize drags the bottom-right corner of the annotation with id to
// corner, honouring the size floors of ResizeTo.
func (m *Model) Resize(id string, corner geom.Point) error {
	return m.Update(id, func(a *Annotation) { a.ResizeTo(corner) })
}

// ResizeHandleAt reports whether p grabs the resize handle of the
// annotation with id.
func (m *Model) ResizeHandleAt(id string, p geom.Point) bool {
	i := m.index(id)
	return i >= 0 && m.items[i].OnResizeHandle(p)
}
