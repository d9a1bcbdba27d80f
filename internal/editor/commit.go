package editor

import (
	"errors"
	"image"
	"image/draw"
	"math"

	"github.com/example/pixeledit/internal/annotation"
	"github.com/example/pixeledit/internal/crop"
	"github.com/example/pixeledit/internal/filter"
	"github.com/example/pixeledit/internal/geom"
	"github.com/example/pixeledit/internal/history"
	"github.com/example/pixeledit/internal/logging"
	"github.com/example/pixeledit/internal/render"
)

// ApplyCrop replaces the working buffer with the crop area. Annotations
// keep their place over the pixels. An area under crop.MinSize on either
// side fails with ErrCropTooSmall and changes nothing.
func (e *Editor) ApplyCrop() error {
	area, ok := e.crop.Area()
	if !ok {
		return e.report("crop", crop.ErrNoArea)
	}
	w, h := e.Size()
	r, err := crop.Validate(area, w, h)
	if err != nil {
		return e.report("crop", err)
	}

	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), e.img, r.Min, draw.Src)
	e.img = out
	e.anns.Translate(geom.Pt(-float64(r.Min.X), -float64(r.Min.Y)))
	e.crop.SetBounds(r.Dx(), r.Dy())
	e.commit("crop")
	logging.Logger().Info("cropped", "rect", r)
	e.sink.Cropped(r.Dx(), r.Dy())
	return nil
}

// SetCropArea sets the crop tool's area without committing it.
func (e *Editor) SetCropArea(x, y, w, h float64) {
	e.crop.SetArea(geom.R(x, y, w, h))
}

// CancelCrop drops the crop area. The working buffer is untouched.
func (e *Editor) CancelCrop() {
	e.crop.Reset()
}

// UpsertAnnotation replaces the annotation with a's id, or adds a when the
// id is empty or unknown. The stored id is returned.
func (e *Editor) UpsertAnnotation(a annotation.Annotation) (string, error) {
	id, err := e.anns.Upsert(a)
	if err != nil {
		return "", err
	}
	e.commit("annotate")
	return id, nil
}

// AddAnnotation adds a as a new annotation. Unlike UpsertAnnotation, an id
// already in use is an error.
func (e *Editor) AddAnnotation(a annotation.Annotation) (string, error) {
	id, err := e.anns.Add(a)
	if err != nil {
		return "", err
	}
	e.commit("annotate")
	return id, nil
}

// RemoveAnnotation deletes the annotation with id.
func (e *Editor) RemoveAnnotation(id string) error {
	if err := e.anns.Remove(id); err != nil {
		return err
	}
	if e.selected == id {
		e.selected = ""
	}
	e.commit("remove")
	return nil
}

// Undo restores the previous snapshot.
func (e *Editor) Undo() error {
	s, ok := e.history.Undo()
	if !ok {
		return ErrNothingToUndo
	}
	e.restore(s)
	return nil
}

// Redo restores the next snapshot.
func (e *Editor) Redo() error {
	s, ok := e.history.Redo()
	if !ok {
		return ErrNothingToRedo
	}
	e.restore(s)
	return nil
}

func (e *Editor) restore(s history.Snapshot) {
	e.img = s.Image
	e.anns.Replace(s.Annotations)
	if _, ok := e.anns.Get(e.selected); !ok {
		e.selected = ""
	}
	e.pending = nil
	e.crop.SetBounds(s.Width(), s.Height())
	if e.tool == ToolCrop {
		e.crop.SelectAll()
	}
}

// SetFilters replaces the filter settings. Filters are applied at render
// time and never change the working buffer.
func (e *Editor) SetFilters(s filter.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	e.filters = s
	return nil
}

// SetTransform replaces the view transform.
func (e *Editor) SetTransform(t render.Transform) error {
	if err := t.Validate(); err != nil {
		return err
	}
	e.transform = t
	return nil
}

// Rotate adds deg degrees of clockwise rotation.
func (e *Editor) Rotate(deg float64) error {
	t := e.transform
	t.Rotation = math.Mod(t.Rotation+deg, 360)
	return e.SetTransform(t)
}

// FlipHorizontal toggles the horizontal mirror.
func (e *Editor) FlipHorizontal() {
	e.transform.FlipH = !e.transform.FlipH
}

// FlipVertical toggles the vertical mirror.
func (e *Editor) FlipVertical() {
	e.transform.FlipV = !e.transform.FlipV
}

// SetScale sets the zoom factor of the view transform.
func (e *Editor) SetScale(s float64) error {
	t := e.transform
	t.Scale = s
	return e.SetTransform(t)
}

// BakeTransform draws the working buffer through the view transform into a
// new buffer sized to hold all of it, then resets the transform.
func (e *Editor) BakeTransform() error {
	if e.transform.IsIdentity() {
		return nil
	}
	out, err := render.Bake(e.img, e.transform, e.pipeline.Resample)
	if err != nil {
		return err
	}
	e.img = out
	e.transform = render.IdentityTransform()
	e.crop.SetBounds(out.Bounds().Dx(), out.Bounds().Dy())
	e.commit("bake")
	return nil
}

// ApplyFilters writes the current filters into the working buffer and
// resets them to neutral.
func (e *Editor) ApplyFilters() error {
	if e.filters.IsNeutral() {
		return nil
	}
	if err := e.filters.Validate(); err != nil {
		return err
	}
	e.img = filter.Apply(e.img, e.filters)
	e.filters = filter.Neutral()
	e.commit("filters")
	return nil
}

// isQuiet reports errors that are not worth telling the user about.
func isQuiet(err error) bool {
	return errors.Is(err, ErrNothingToUndo) || errors.Is(err, ErrNothingToRedo)
}
