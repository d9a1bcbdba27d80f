// Package annotation models the overlay items drawn above the image: text,
// rectangles, circles, lines, arrows and freehand strokes. Annotations are
// stored in insertion order, which is also their paint order.
package annotation

import (
	"image/color"
	"math"

	"github.com/example/pixeledit/internal/geom"
)

// Kind identifies an annotation variant.
type Kind int

const (
	KindText Kind = iota
	KindRect
	KindCircle
	KindLine
	KindArrow
	KindFreehand
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindRect:
		return "rectangle"
	case KindCircle:
		return "circle"
	case KindLine:
		return "line"
	case KindArrow:
		return "arrow"
	case KindFreehand:
		return "freehand"
	}
	return "unknown"
}

// Shape is the variant specific payload of an annotation. It is
// implemented only by the types in this package.
type Shape interface {
	Kind() Kind
	clone() Shape
}

// Align controls how wrapped text lines sit inside their box.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

func (a Align) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	}
	return "left"
}

// ParseAlign maps "left", "center" and "right". Anything else is left.
func ParseAlign(s string) Align {
	switch s {
	case "center", "centre":
		return AlignCenter
	case "right":
		return AlignRight
	}
	return AlignLeft
}

// Font selects a face. Family "mono" (or "monospace") picks Go Mono,
// anything else Go Regular.
type Font struct {
	Family string
	Size   float64
	Bold   bool
	Italic bool
}

// DefaultFont is used when a text annotation has no size.
var DefaultFont = Font{Family: "sans", Size: 16}

// Text is drawn with its first baseline at the annotation origin. A
// positive WrapWidth turns on greedy word wrapping inside a box of that
// width; BoxHeight, if larger than the laid out text, extends the bounds.
type Text struct {
	Content   string
	Font      Font
	Align     Align
	WrapWidth float64
	BoxHeight float64
}

// Rect is a stroked rectangle with its top-left corner at the origin.
type Rect struct{ W, H float64 }

// Circle is inscribed in the D×D square whose top-left is the origin.
type Circle struct{ D float64 }

// Line runs from the origin to origin+(W,H).
type Line struct{ W, H float64 }

// Arrow is a line with an arrowhead at its far end.
type Arrow struct{ W, H float64 }

// Freehand is a polyline; points are relative to the origin.
type Freehand struct{ Points []geom.Point }

func (Text) Kind() Kind     { return KindText }
func (Rect) Kind() Kind     { return KindRect }
func (Circle) Kind() Kind   { return KindCircle }
func (Line) Kind() Kind     { return KindLine }
func (Arrow) Kind() Kind    { return KindArrow }
func (Freehand) Kind() Kind { return KindFreehand }

func (t Text) clone() Shape   { return t }
func (r Rect) clone() Shape   { return r }
func (c Circle) clone() Shape { return c }
func (l Line) clone() Shape   { return l }
func (a Arrow) clone() Shape  { return a }
func (f Freehand) clone() Shape {
	return Freehand{Points: append([]geom.Point(nil), f.Points...)}
}

// Style is shared by all variants.
type Style struct {
	Color       color.RGBA
	StrokeWidth float64
}

// DefaultStyle is red with a 3px stroke.
var DefaultStyle = Style{Color: color.RGBA{255, 0, 0, 255}, StrokeWidth: 3}

// Annotation is one overlay item.
type Annotation struct {
	ID      string
	Origin  geom.Point
	Style   Style
	Visible bool
	Shape   Shape
}

// Clone returns a deep copy.
func (a Annotation) Clone() Annotation {
	if a.Shape != nil {
		a.Shape = a.Shape.clone()
	}
	return a
}

// Kind returns the variant of a, or -1 when it has no shape.
func (a Annotation) Kind() Kind {
	if a.Shape == nil {
		return -1
	}
	return a.Shape.Kind()
}

// Arrowhead geometry.
const (
	ArrowHeadLength = 10
	ArrowHeadAngle  = math.Pi / 6
)

// ArrowHead returns the two barb end points for an arrow from start to tip.
func ArrowHead(start, tip geom.Point) (geom.Point, geom.Point) {
	angle := math.Atan2(tip.Y-start.Y, tip.X-start.X)
	a := geom.Pt(
		tip.X-ArrowHeadLength*math.Cos(angle-ArrowHeadAngle),
		tip.Y-ArrowHeadLength*math.Sin(angle-ArrowHeadAngle),
	)
	b := geom.Pt(
		tip.X-ArrowHeadLength*math.Cos(angle+ArrowHeadAngle),
		tip.Y-ArrowHeadLength*math.Sin(angle+ArrowHeadAngle),
	)
	return a, b
}

// Bounds returns the normalized bounding box of a in working-buffer
// coordinates. Stroke width is not included.
func (a Annotation) Bounds() geom.Rect {
	o := a.Origin
	switch s := a.Shape.(type) {
	case Text:
		l, err := LayoutText(s, o)
		if err != nil {
			return geom.R(o.X, o.Y-s.Font.Size, 0, s.Font.Size)
		}
		return l.Bounds
	case Rect:
		return geom.R(o.X, o.Y, s.W, s.H).Normalize()
	case Circle:
		return geom.R(o.X, o.Y, s.D, s.D).Normalize()
	case Line:
		return geom.R(o.X, o.Y, s.W, s.H).Normalize()
	case Arrow:
		tip := geom.Pt(o.X+s.W, o.Y+s.H)
		b := geom.R(o.X, o.Y, s.W, s.H).Normalize()
		if s.W == 0 && s.H == 0 {
			return b
		}
		h1, h2 := ArrowHead(o, tip)
		return b.Union(geom.R(h1.X, h1.Y, 0, 0)).Union(geom.R(h2.X, h2.Y, 0, 0))
	case Freehand:
		if len(s.Points) == 0 {
			return geom.R(o.X, o.Y, 0, 0)
		}
		b := geom.R(o.X+s.Points[0].X, o.Y+s.Points[0].Y, 0, 0)
		for _, p := range s.Points[1:] {
			b = b.Union(geom.R(o.X+p.X, o.Y+p.Y, 0, 0))
		}
		return b
	}
	return geom.R(o.X, o.Y, 0, 0)
}

// Hit tolerances in working-buffer pixels.
const (
	HitPadding      = 8
	ResizeTolerance = 12
	MoveHandleSize  = 10
	MinSize         = 20
)

// Contains reports whether p falls within the bounds of a grown by
// HitPadding.
func (a Annotation) Contains(p geom.Point) bool {
	return a.Bounds().Contains(p, HitPadding)
}

// ResizeHandle returns the bottom-right corner of the bounds.
func (a Annotation) ResizeHandle() geom.Point {
	return a.Bounds().Max()
}

// OnResizeHandle reports whether p is within ResizeTolerance of the
// bottom-right corner on both axes.
func (a Annotation) OnResizeHandle(p geom.Point) bool {
	h := a.ResizeHandle()
	return math.Abs(p.X-h.X) <= ResizeTolerance && math.Abs(p.Y-h.Y) <= ResizeTolerance
}

// MoveHandle returns the centre of the circular drag handle drawn just
// outside the top-left corner of the selection box.
func (a Annotation) MoveHandle() geom.Point {
	b := a.Bounds()
	return geom.Pt(b.X-HitPadding, b.Y-HitPadding)
}

// OnMoveHandle reports whether p grabs the drag handle.
func (a Annotation) OnMoveHandle(p geom.Point) bool {
	h := a.MoveHandle()
	return math.Abs(p.X-h.X) <= MoveHandleSize && math.Abs(p.Y-h.Y) <= MoveHandleSize
}

// Translate moves a by d.
func (a *Annotation) Translate(d geom.Point) {
	a.Origin = a.Origin.Add(d)
}

// ResizeTo drags the bottom-right corner of the bounds to corner. Widths
// never go below MinSize and text boxes never get shorter than their font
// size. Lines, arrows and freehand strokes scale about the top-left of
// their bounds.
func (a *Annotation) ResizeTo(corner geom.Point) {
	b := a.Bounds()
	w := math.Max(MinSize, corner.X-b.X)
	h := corner.Y - b.Y
	switch s := a.Shape.(type) {
	case Text:
		s.WrapWidth = w
		size := s.Font.Size
		if size <= 0 {
			size = DefaultFont.Size
		}
		s.BoxHeight = math.Max(size, h)
		a.Shape = s
	case Rect:
		s.W, s.H = w, math.Max(MinSize, h)
		a.Shape = s
	case Circle:
		s.D = math.Max(w, math.Max(MinSize, h))
		a.Shape = s
	case Line:
		s.W, s.H = scaleVector(b, a.Origin, s.W, s.H, w, h, &a.Origin)
		a.Shape = s
	case Arrow:
		s.W, s.H = scaleVector(b, a.Origin, s.W, s.H, w, h, &a.Origin)
		a.Shape = s
	case Freehand:
		sx, sy := scaleFactors(b, w, h)
		start := a.Origin
		pts := make([]geom.Point, len(s.Points))
		for i, p := range s.Points {
			abs := scaleAbout(b.Min(), start.Add(p), sx, sy)
			pts[i] = abs
		}
		a.Origin = scaleAbout(b.Min(), start, sx, sy)
		for i := range pts {
			pts[i] = pts[i].Sub(a.Origin)
		}
		s.Points = pts
		a.Shape = s
	}
}

func scaleFactors(b geom.Rect, w, h float64) (float64, float64) {
	sx, sy := 1.0, 1.0
	if b.W > 0 {
		sx = w / b.W
	}
	if b.H > 0 {
		sy = math.Max(MinSize, h) / b.H
	}
	return sx, sy
}

func scaleAbout(pivot, p geom.Point, sx, sy float64) geom.Point {
	return geom.Pt(pivot.X+(p.X-pivot.X)*sx, pivot.Y+(p.Y-pivot.Y)*sy)
}

func scaleVector(b geom.Rect, origin geom.Point, vw, vh, w, h float64, newOrigin *geom.Point) (float64, float64) {
	sx, sy := scaleFactors(b, w, h)
	start := scaleAbout(b.Min(), origin, sx, sy)
	end := scaleAbout(b.Min(), origin.Add(geom.Pt(vw, vh)), sx, sy)
	*newOrigin = start
	return end.X - start.X, end.Y - start.Y
}
