package editor

import (
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/pixeledit/internal/annotation"
	"github.com/example/pixeledit/internal/crop"
	"github.com/example/pixeledit/internal/geom"
	"github.com/example/pixeledit/internal/logging"
)

// Viewport maps hosting-element pixels to working-buffer pixels.
type Viewport struct {
	// Origin is where the canvas's top-left corner sits in the host.
	Origin geom.Point
	// Scale is canvas pixels per host pixel. Zero means 1.
	Scale float64
}

func (v Viewport) scale() float64 {
	if v.Scale <= 0 || math.IsNaN(v.Scale) || math.IsInf(v.Scale, 0) {
		return 1
	}
	return v.Scale
}

// ToCanvas converts a host position to canvas coordinates.
func (v Viewport) ToCanvas(x, y float64) geom.Point {
	s := v.scale()
	return geom.Pt((x-v.Origin.X)*s, (y-v.Origin.Y)*s)
}

// ToHost converts a canvas rectangle to host pixels.
func (v Viewport) ToHost(r geom.Rect) geom.Rect {
	s := v.scale()
	return geom.R(r.X/s+v.Origin.X, r.Y/s+v.Origin.Y, r.W/s, r.H/s)
}

// drag is the pointer interaction in progress. Exactly one variant is
// active at a time.
type drag interface{ name() string }

type idle struct{}

type moving struct {
	id            string
	start, origin geom.Point
	moved         bool
}

type resizing struct {
	id      string
	start   geom.Point
	changed bool
}

type drawingCrop struct{ start geom.Point }

type draggingHandle struct {
	handle crop.Handle
	start  geom.Point
}

type drawingShape struct{ start geom.Point }

type drawingStroke struct{ points []geom.Point }

func (idle) name() string           { return "idle" }
func (moving) name() string         { return "moving" }
func (resizing) name() string       { return "resizing" }
func (drawingCrop) name() string    { return "drawing-crop" }
func (draggingHandle) name() string { return "dragging-handle" }
func (drawingShape) name() string   { return "drawing-shape" }
func (drawingStroke) name() string  { return "drawing-stroke" }

type textEdit struct {
	id       string
	original annotation.Text
	created  bool
}

// InputController turns host pointer and keyboard events into editor
// operations.
type InputController struct {
	ed     *Editor
	vp     Viewport
	drag   drag
	last   geom.Point
	mods   key.Modifiers
	cursor string
	edit   *textEdit
}

// NewInputController returns a controller driving ed.
func NewInputController(ed *Editor, vp Viewport) *InputController {
	return &InputController{ed: ed, vp: vp, drag: idle{}, cursor: "default"}
}

// SetViewport changes the host to canvas mapping.
func (c *InputController) SetViewport(vp Viewport) { c.vp = vp }

// Viewport returns the host to canvas mapping.
func (c *InputController) Viewport() Viewport { return c.vp }

// State names the pointer interaction in progress.
func (c *InputController) State() string { return c.drag.name() }

// Cursor is the pointer glyph the host should show.
func (c *InputController) Cursor() string { return c.cursor }

// Editing returns the id of the text annotation being edited.
func (c *InputController) Editing() (string, bool) {
	if c.edit == nil {
		return "", false
	}
	return c.edit.id, true
}

// EditSurface is where the host should place its inline text input, in
// host pixels.
func (c *InputController) EditSurface() (geom.Rect, bool) {
	if c.edit == nil {
		return geom.Rect{}, false
	}
	a, ok := c.ed.anns.Get(c.edit.id)
	if !ok {
		return geom.Rect{}, false
	}
	return c.vp.ToHost(a.Bounds()), true
}

// SetTool finishes any edit or drag and switches tools.
func (c *InputController) SetTool(t Tool) {
	if c.edit != nil {
		if err := c.CommitTextEdit(); err != nil {
			logging.Logger().Warn("text edit", "err", err)
		}
	}
	c.drag = idle{}
	c.ed.SetTool(t)
}

// Pointer handles a mouse event in host coordinates. Only the primary
// button draws; wheel steps are ignored.
func (c *InputController) Pointer(e mouse.Event) {
	p := c.vp.ToCanvas(float64(e.X), float64(e.Y))
	switch e.Direction {
	case mouse.DirPress:
		if e.Button == mouse.ButtonLeft {
			c.press(p, e.Modifiers)
		}
	case mouse.DirRelease:
		if e.Button == mouse.ButtonLeft {
			c.release(p, e.Modifiers)
		}
	case mouse.DirNone:
		c.move(p, e.Modifiers)
	}
}

// PointerLeave ends any drag as if the button were released where the
// pointer was last seen, with the modifiers last seen.
func (c *InputController) PointerLeave() {
	if _, ok := c.drag.(idle); ok {
		return
	}
	c.release(c.last, c.mods)
}

func cropModifiers(m key.Modifiers) crop.Modifiers {
	return crop.Modifiers{Square: m&key.ModShift != 0, Center: m&key.ModAlt != 0}
}

func (c *InputController) press(p geom.Point, mods key.Modifiers) {
	ed := c.ed
	c.last, c.mods = p, mods
	if c.edit != nil {
		if a, ok := ed.anns.Get(c.edit.id); ok && a.Contains(p) {
			return
		}
		if err := c.CommitTextEdit(); err != nil {
			logging.Logger().Warn("text edit", "err", err)
		}
	}
	c.drag = idle{}
	ed.pending = nil

	switch ed.tool {
	case ToolSelect, ToolText:
		if c.grab(p) {
			break
		}
		ed.selected = ""
		if ed.tool == ToolText {
			c.createText(p)
		}
	case ToolCrop:
		if ed.crop.Begin(p) == crop.HandleDragging {
			c.drag = draggingHandle{handle: ed.crop.ActiveHandle(), start: p}
		} else {
			c.drag = drawingCrop{start: p}
		}
		c.cursor = ed.crop.Cursor(p)
	case ToolFreehand:
		ed.selected = ""
		c.drag = drawingStroke{points: []geom.Point{p}}
	default:
		if ed.tool.drawsShape() {
			ed.selected = ""
			c.drag = drawingShape{start: p}
		}
	}
}

// grab selects the annotation under p, preferring the handles of the
// current selection, and starts moving or resizing it.
func (c *InputController) grab(p geom.Point) bool {
	ed := c.ed
	if a, ok := ed.anns.Get(ed.selected); ok && a.Visible {
		if a.OnResizeHandle(p) {
			c.drag = resizing{id: a.ID, start: p}
			c.cursor = "se-resize"
			return true
		}
		if a.OnMoveHandle(p) {
			c.drag = moving{id: a.ID, start: p, origin: a.Origin}
			c.cursor = "move"
			return true
		}
	}
	id, ok := ed.anns.HitTest(p)
	if !ok {
		return false
	}
	a, _ := ed.anns.Get(id)
	ed.selected = id
	c.drag = moving{id: id, start: p, origin: a.Origin}
	c.cursor = "move"
	return true
}

func (c *InputController) move(p geom.Point, mods key.Modifiers) {
	ed := c.ed
	c.last, c.mods = p, mods
	switch d := c.drag.(type) {
	case idle:
		c.cursor = c.hover(p)
	case moving:
		delta := p.Sub(d.start)
		if err := ed.anns.Move(d.id, d.origin.Add(delta)); err != nil {
			c.drag = idle{}
			return
		}
		d.moved = d.moved || delta != (geom.Point{})
		c.drag = d
	case resizing:
		if err := ed.anns.Resize(d.id, p); err != nil {
			c.drag = idle{}
			return
		}
		d.changed = true
		c.drag = d
	case drawingCrop, draggingHandle:
		ed.crop.Move(p, cropModifiers(mods))
	case drawingShape:
		if a, ok := c.shape(d.start, p, mods); ok {
			ed.pending = &a
		} else {
			ed.pending = nil
		}
	case drawingStroke:
		if p != d.points[len(d.points)-1] {
			d.points = append(d.points, p)
			c.drag = d
		}
		a := c.stroke(d.points)
		ed.pending = &a
	}
}

func (c *InputController) release(p geom.Point, mods key.Modifiers) {
	ed := c.ed
	c.move(p, mods)
	ed.pending = nil
	switch d := c.drag.(type) {
	case moving:
		if d.moved {
			c.finish(d.id)
		} else if ed.tool == ToolText {
			if a, ok := ed.anns.Get(d.id); ok && a.Kind() == annotation.KindText {
				if err := c.BeginTextEdit(d.id); err != nil {
					logging.Logger().Warn("text edit", "err", err)
				}
			}
		}
	case resizing:
		if d.changed {
			c.finish(d.id)
		}
	case drawingCrop, draggingHandle:
		ed.crop.End()
	case drawingShape:
		if a, ok := c.shape(d.start, p, mods); ok {
			c.add(a)
		}
	case drawingStroke:
		if len(d.points) > 1 {
			c.add(c.stroke(d.points))
		}
	}
	c.drag = idle{}
	c.cursor = c.hover(p)
}

func (c *InputController) add(a annotation.Annotation) {
	id, err := c.ed.AddAnnotation(a)
	if err != nil {
		logging.Logger().Warn("add annotation", "err", err)
		return
	}
	c.ed.selected = id
}

// finish records the live state of an annotation changed by a drag or an
// edit.
func (c *InputController) finish(id string) {
	a, ok := c.ed.anns.Get(id)
	if !ok {
		return
	}
	if _, err := c.ed.UpsertAnnotation(a); err != nil {
		logging.Logger().Warn("update annotation", "id", id, "err", err)
	}
}

func (c *InputController) hover(p geom.Point) string {
	ed := c.ed
	switch ed.tool {
	case ToolCrop:
		return ed.crop.Cursor(p)
	case ToolSelect, ToolText:
		if a, ok := ed.anns.Get(ed.selected); ok && a.Visible {
			if a.OnResizeHandle(p) {
				return "se-resize"
			}
			if a.OnMoveHandle(p) {
				return "move"
			}
		}
		if _, ok := ed.anns.HitTest(p); ok {
			return "move"
		}
		if ed.tool == ToolText {
			return "text"
		}
		return "default"
	}
	return "crosshair"
}

// shape builds the annotation for a drag from start to end with the
// current tool. Shift makes rectangles square and snaps lines to 45°.
func (c *InputController) shape(start, end geom.Point, mods key.Modifiers) (annotation.Annotation, bool) {
	d := end.Sub(start)
	if math.Abs(d.X) < 1 && math.Abs(d.Y) < 1 {
		return annotation.Annotation{}, false
	}
	square := mods&key.ModShift != 0
	a := annotation.Annotation{Origin: start, Style: c.ed.style, Visible: true}
	switch c.ed.tool {
	case ToolRect:
		w, h := d.X, d.Y
		if square {
			s := math.Max(math.Abs(w), math.Abs(h))
			w, h = math.Copysign(s, w), math.Copysign(s, h)
		}
		r := geom.R(start.X, start.Y, w, h).Normalize()
		a.Origin = r.Min()
		a.Shape = annotation.Rect{W: r.W, H: r.H}
	case ToolCircle:
		s := math.Max(math.Abs(d.X), math.Abs(d.Y))
		r := geom.R(start.X, start.Y, math.Copysign(s, d.X), math.Copysign(s, d.Y)).Normalize()
		a.Origin = r.Min()
		a.Shape = annotation.Circle{D: s}
	case ToolLine, ToolArrow:
		if square {
			step := math.Pi / 4
			ang := math.Round(math.Atan2(d.Y, d.X)/step) * step
			l := math.Hypot(d.X, d.Y)
			d = geom.Pt(l*math.Cos(ang), l*math.Sin(ang))
		}
		if c.ed.tool == ToolLine {
			a.Shape = annotation.Line{W: d.X, H: d.Y}
		} else {
			a.Shape = annotation.Arrow{W: d.X, H: d.Y}
		}
	default:
		return annotation.Annotation{}, false
	}
	return a, true
}

func (c *InputController) stroke(points []geom.Point) annotation.Annotation {
	origin := points[0]
	rel := make([]geom.Point, len(points))
	for i, p := range points {
		rel[i] = p.Sub(origin)
	}
	return annotation.Annotation{
		Origin:  origin,
		Style:   c.ed.style,
		Visible: true,
		Shape:   annotation.Freehand{Points: rel},
	}
}

func (c *InputController) createText(p geom.Point) {
	t := annotation.Text{Font: c.ed.font}
	id, err := c.ed.anns.Add(annotation.Annotation{Origin: p, Style: c.ed.style, Visible: true, Shape: t})
	if err != nil {
		logging.Logger().Warn("add text", "err", err)
		return
	}
	c.ed.selected = id
	c.edit = &textEdit{id: id, original: t, created: true}
}

// BeginTextEdit starts editing the text annotation with id. Any other
// edit in progress is committed first.
func (c *InputController) BeginTextEdit(id string) error {
	a, ok := c.ed.anns.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAnnotation, id)
	}
	t, ok := a.Shape.(annotation.Text)
	if !ok {
		return fmt.Errorf("annotation %s is %s, not text", id, a.Kind())
	}
	if c.edit != nil && c.edit.id != id {
		if err := c.CommitTextEdit(); err != nil {
			return err
		}
	}
	c.edit = &textEdit{id: id, original: t}
	c.ed.selected = id
	c.drag = idle{}
	return nil
}

// CommitTextEdit ends editing. Text left empty is removed.
func (c *InputController) CommitTextEdit() error {
	ed := c.edit
	c.edit = nil
	if ed == nil {
		return nil
	}
	a, ok := c.ed.anns.Get(ed.id)
	if !ok {
		return nil
	}
	t, _ := a.Shape.(annotation.Text)
	if strings.TrimSpace(t.Content) == "" {
		if ed.created {
			c.discard(ed.id)
			return nil
		}
		return c.ed.RemoveAnnotation(ed.id)
	}
	if ed.created || t != ed.original {
		_, err := c.ed.UpsertAnnotation(a)
		return err
	}
	return nil
}

// CancelTextEdit ends editing and puts the text back as it was.
func (c *InputController) CancelTextEdit() {
	ed := c.edit
	c.edit = nil
	if ed == nil {
		return
	}
	if ed.created {
		c.discard(ed.id)
		return
	}
	_ = c.ed.anns.Update(ed.id, func(a *annotation.Annotation) { a.Shape = ed.original })
}

// discard removes an annotation that never reached history.
func (c *InputController) discard(id string) {
	_ = c.ed.anns.Remove(id)
	if c.ed.selected == id {
		c.ed.selected = ""
	}
}

func (c *InputController) editText(fn func(string) string) {
	if c.edit == nil {
		return
	}
	_ = c.ed.anns.Update(c.edit.id, func(a *annotation.Annotation) {
		if t, ok := a.Shape.(annotation.Text); ok {
			t.Content = fn(t.Content)
			a.Shape = t
		}
	})
}

// TypeText appends s to the text being edited.
func (c *InputController) TypeText(s string) {
	c.editText(func(cur string) string { return cur + s })
}

func (c *InputController) backspace() {
	c.editText(func(cur string) string {
		_, n := utf8.DecodeLastRuneInString(cur)
		return cur[:len(cur)-n]
	})
}

func keyIs(e key.Event, code key.Code, r rune) bool {
	return e.Code == code || unicode.ToLower(e.Rune) == r
}

var toolKeys = map[rune]Tool{
	'm': ToolSelect,
	'r': ToolCrop,
	't': ToolText,
	'x': ToolRect,
	'o': ToolCircle,
	'l': ToolLine,
	'a': ToolArrow,
	'b': ToolFreehand,
}

// Key handles a key press. While text is being edited keys go to the
// text; otherwise Enter applies the crop or edits the selected text,
// Escape cancels, Delete removes the selection and Ctrl+Z/Ctrl+Y undo and
// redo.
func (c *InputController) Key(e key.Event) error {
	if e.Direction == key.DirRelease {
		return nil
	}
	ed := c.ed
	ctrl := e.Modifiers&(key.ModControl|key.ModMeta) != 0
	shift := e.Modifiers&key.ModShift != 0

	if c.edit != nil {
		switch e.Code {
		case key.CodeReturnEnter:
			if shift {
				c.TypeText("\n")
				return nil
			}
			return c.CommitTextEdit()
		case key.CodeEscape:
			c.CancelTextEdit()
			return nil
		case key.CodeDeleteBackspace:
			c.backspace()
			return nil
		}
		if e.Rune > 0 && !ctrl && unicode.IsPrint(e.Rune) {
			c.TypeText(string(e.Rune))
		}
		return nil
	}

	if ctrl {
		var err error
		switch {
		case keyIs(e, key.CodeZ, 'z') && shift, keyIs(e, key.CodeY, 'y'):
			err = ed.Redo()
		case keyIs(e, key.CodeZ, 'z'):
			err = ed.Undo()
		default:
			return nil
		}
		c.drag = idle{}
		if isQuiet(err) {
			logging.Logger().Debug("history", "err", err)
			return nil
		}
		return err
	}

	switch e.Code {
	case key.CodeReturnEnter:
		if ed.tool == ToolCrop {
			c.drag = idle{}
			return ed.ApplyCrop()
		}
		if a, ok := ed.anns.Get(ed.selected); ok && a.Kind() == annotation.KindText {
			return c.BeginTextEdit(a.ID)
		}
		return nil
	case key.CodeEscape:
		c.drag = idle{}
		ed.pending = nil
		if ed.tool == ToolCrop {
			ed.CancelCrop()
			return nil
		}
		ed.selected = ""
		return nil
	case key.CodeDeleteBackspace, key.CodeDeleteForward:
		if ed.selected != "" {
			return ed.RemoveAnnotation(ed.selected)
		}
		return nil
	}
	if t, ok := toolKeys[unicode.ToLower(e.Rune)]; ok {
		c.SetTool(t)
	}
	return nil
}
