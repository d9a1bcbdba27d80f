// Package crop implements the interactive crop rectangle: drawing a new
// area, dragging one of its eight handles, and the square and centre
// modifiers. It never touches pixels; the editor commits the area.
package crop

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/example/pixeledit/internal/geom"
)

const (
	// MinSize is the smallest committed width or height.
	MinSize = 10
	// HandleRadius is how far from a handle a press still grabs it.
	HandleRadius = 12
	// HandleSize is the drawn side length of a handle square.
	HandleSize = 8
)

// ErrTooSmall is returned when a crop area is below MinSize on an axis.
var ErrTooSmall = errors.New("crop area too small")

// ErrNoArea is returned when committing without an area.
var ErrNoArea = errors.New("no crop area")

// Handle names one of the eight resize handles.
type Handle int

const (
	HandleNone Handle = iota
	HandleNW
	HandleN
	HandleNE
	HandleE
	HandleSE
	HandleS
	HandleSW
	HandleW
)

// Handles lists every handle in drawing order.
var Handles = []Handle{HandleNW, HandleN, HandleNE, HandleE, HandleSE, HandleS, HandleSW, HandleW}

func (h Handle) String() string {
	switch h {
	case HandleNW:
		return "nw"
	case HandleN:
		return "n"
	case HandleNE:
		return "ne"
	case HandleE:
		return "e"
	case HandleSE:
		return "se"
	case HandleS:
		return "s"
	case HandleSW:
		return "sw"
	case HandleW:
		return "w"
	}
	return ""
}

// Cursor returns the pointer glyph hint for the handle.
func (h Handle) Cursor() string {
	if h == HandleNone {
		return "crosshair"
	}
	return h.String() + "-resize"
}

func (h Handle) movesLeft() bool   { return h == HandleNW || h == HandleW || h == HandleSW }
func (h Handle) movesRight() bool  { return h == HandleNE || h == HandleE || h == HandleSE }
func (h Handle) movesTop() bool    { return h == HandleNW || h == HandleN || h == HandleNE }
func (h Handle) movesBottom() bool { return h == HandleSW || h == HandleS || h == HandleSE }

// IsCorner reports whether h moves two edges.
func (h Handle) IsCorner() bool {
	return h == HandleNW || h == HandleNE || h == HandleSE || h == HandleSW
}

// Point returns the position of h on area r.
func (h Handle) Point(r geom.Rect) geom.Point {
	r = r.Normalize()
	cx, cy := r.X+r.W/2, r.Y+r.H/2
	switch h {
	case HandleNW:
		return geom.Pt(r.X, r.Y)
	case HandleN:
		return geom.Pt(cx, r.Y)
	case HandleNE:
		return geom.Pt(r.Right(), r.Y)
	case HandleE:
		return geom.Pt(r.Right(), cy)
	case HandleSE:
		return geom.Pt(r.Right(), r.Bottom())
	case HandleS:
		return geom.Pt(cx, r.Bottom())
	case HandleSW:
		return geom.Pt(r.X, r.Bottom())
	case HandleW:
		return geom.Pt(r.X, cy)
	}
	return geom.Point{}
}

// HandleAt returns the handle nearest to p within HandleRadius, or
// HandleNone.
func HandleAt(r geom.Rect, p geom.Point) Handle {
	best, bestDist := HandleNone, math.Inf(1)
	for _, h := range Handles {
		if d := h.Point(r).Dist(p); d <= HandleRadius && d < bestDist {
			best, bestDist = h, d
		}
	}
	return best
}

// State is the controller's interaction state.
type State int

const (
	Idle State = iota
	Drawing
	HandleDragging
)

func (s State) String() string {
	switch s {
	case Drawing:
		return "drawing"
	case HandleDragging:
		return "handle-dragging"
	}
	return "idle"
}

// Modifiers are the keyboard flags sampled with each pointer event.
type Modifiers struct {
	// Square forces width == height.
	Square bool
	// Center grows a newly drawn area symmetrically around the press
	// point. It has no effect on handle drags.
	Center bool
}

// Controller tracks the crop area for an image of fixed size.
type Controller struct {
	w, h    float64
	area    geom.Rect
	hasArea bool

	state   State
	start   geom.Point
	handle  Handle
	initial geom.Rect
}

// New returns a controller for a w×h image with no area.
func New(w, h int) *Controller {
	return &Controller{w: float64(w), h: float64(h)}
}

// SetBounds changes the image size, e.g. after a crop or undo. Any area
// and drag in progress is dropped.
func (c *Controller) SetBounds(w, h int) {
	c.w, c.h = float64(w), float64(h)
	c.Reset()
}

// Bounds returns the image size.
func (c *Controller) Bounds() (w, h int) { return int(c.w), int(c.h) }

// Area returns the current area as stored, possibly with negative size.
func (c *Controller) Area() (geom.Rect, bool) { return c.area, c.hasArea }

// SetArea replaces the area. The area is clipped to the image.
func (c *Controller) SetArea(r geom.Rect) {
	r = r.Normalize()
	x0 := geom.Clamp(r.X, 0, c.w)
	y0 := geom.Clamp(r.Y, 0, c.h)
	x1 := geom.Clamp(r.Right(), 0, c.w)
	y1 := geom.Clamp(r.Bottom(), 0, c.h)
	c.area = geom.R(x0, y0, x1-x0, y1-y0)
	c.hasArea = true
}

// SelectAll sets the area to the whole image.
func (c *Controller) SelectAll() {
	c.SetArea(geom.R(0, 0, c.w, c.h))
}

// Reset clears the area and any drag.
func (c *Controller) Reset() {
	c.area = geom.Rect{}
	c.hasArea = false
	c.state = Idle
	c.handle = HandleNone
}

// State returns the interaction state.
func (c *Controller) State() State { return c.state }

// ActiveHandle returns the handle being dragged.
func (c *Controller) ActiveHandle() Handle { return c.handle }

// Cursor returns the glyph hint for a pointer hovering at p.
func (c *Controller) Cursor(p geom.Point) string {
	if c.state == HandleDragging {
		return c.handle.Cursor()
	}
	if !c.hasArea {
		return HandleNone.Cursor()
	}
	return HandleAt(c.area, p).Cursor()
}

// Begin starts an interaction at p. Pressing on a handle of the existing
// area starts a handle drag; anywhere else starts drawing a new area.
func (c *Controller) Begin(p geom.Point) State {
	if c.hasArea {
		if h := HandleAt(c.area, p); h != HandleNone {
			c.state = HandleDragging
			c.handle = h
			c.start = p
			c.initial = c.area.Normalize()
			return c.state
		}
	}
	p = c.clampPoint(p)
	c.state = Drawing
	c.handle = HandleNone
	c.start = p
	c.initial = geom.R(p.X, p.Y, 0, 0)
	c.area = c.initial
	c.hasArea = true
	return c.state
}

// Move updates the area for a pointer at p.
func (c *Controller) Move(p geom.Point, mods Modifiers) {
	switch c.state {
	case Drawing:
		c.area = c.draw(p, mods)
	case HandleDragging:
		c.area = c.drag(p, mods)
	}
}

// End finishes the interaction and returns the resulting area.
func (c *Controller) End() (geom.Rect, bool) {
	c.state = Idle
	c.handle = HandleNone
	return c.area, c.hasArea
}

func (c *Controller) clampPoint(p geom.Point) geom.Point {
	return geom.Pt(geom.Clamp(p.X, 0, c.w), geom.Clamp(p.Y, 0, c.h))
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// draw computes a freshly drawn area from the press point to p.
func (c *Controller) draw(p geom.Point, mods Modifiers) geom.Rect {
	p = c.clampPoint(p)
	s := c.start
	dx, dy := p.X-s.X, p.Y-s.Y

	// room available in the drag direction on each axis
	roomX := c.w - s.X
	if dx < 0 {
		roomX = s.X
	}
	roomY := c.h - s.Y
	if dy < 0 {
		roomY = s.Y
	}
	if mods.Center {
		roomX = math.Min(s.X, c.w-s.X)
		roomY = math.Min(s.Y, c.h-s.Y)
		dx = sign(dx) * math.Min(math.Abs(dx), roomX)
		dy = sign(dy) * math.Min(math.Abs(dy), roomY)
	}
	if mods.Square {
		size := math.Max(math.Abs(dx), math.Abs(dy))
		size = math.Min(size, math.Min(roomX, roomY))
		dx = sign(dx) * size
		dy = sign(dy) * size
	}
	if mods.Center {
		return geom.R(s.X-dx, s.Y-dy, 2*dx, 2*dy)
	}
	return geom.R(s.X, s.Y, dx, dy)
}

// drag applies the cumulative pointer delta to the edges owned by the
// active handle. Moving edges stop at the image border and at MinSize from
// the opposite edge, which never moves.
func (c *Controller) drag(p geom.Point, mods Modifiers) geom.Rect {
	in := c.initial
	h := c.handle
	dx, dy := p.X-c.start.X, p.Y-c.start.Y
	l, t, r, b := in.X, in.Y, in.Right(), in.Bottom()

	if h.movesLeft() {
		l = geom.Clamp(l+dx, 0, math.Max(0, r-MinSize))
	}
	if h.movesRight() {
		r = geom.Clamp(r+dx, math.Min(c.w, l+MinSize), c.w)
	}
	if h.movesTop() {
		t = geom.Clamp(t+dy, 0, math.Max(0, b-MinSize))
	}
	if h.movesBottom() {
		b = geom.Clamp(b+dy, math.Min(c.h, t+MinSize), c.h)
	}

	if mods.Square {
		l, t, r, b = c.square(h, l, t, r, b)
	}
	return geom.R(l, t, r-l, b-t)
}

// square makes the area square using the larger side, anchored on the
// edges the handle does not move, and shrinks it if that would leave the
// image.
func (c *Controller) square(h Handle, l, t, r, b float64) (float64, float64, float64, float64) {
	size := math.Max(r-l, b-t)
	roomX := c.w - l
	if h.movesLeft() {
		roomX = r
	}
	roomY := c.h - t
	if h.movesTop() {
		roomY = b
	}
	size = math.Min(size, math.Min(roomX, roomY))
	if h.movesLeft() {
		l = r - size
	} else {
		r = l + size
	}
	if h.movesTop() {
		t = b - size
	} else {
		b = t + size
	}
	return l, t, r, b
}

// Validate normalizes r and converts it to pixel bounds inside a w×h image.
// Areas smaller than MinSize on either axis fail with ErrTooSmall.
func Validate(r geom.Rect, w, h int) (image.Rectangle, error) {
	n := r.Normalize()
	if n.W < MinSize || n.H < MinSize {
		return image.Rectangle{}, fmt.Errorf("%w: %.0fx%.0f (minimum %dx%d)", ErrTooSmall, n.W, n.H, MinSize, MinSize)
	}
	ir := n.Image().Intersect(image.Rect(0, 0, w, h))
	if ir.Dx() < MinSize || ir.Dy() < MinSize {
		return image.Rectangle{}, fmt.Errorf("%w: %dx%d inside image", ErrTooSmall, ir.Dx(), ir.Dy())
	}
	return ir, nil
}
