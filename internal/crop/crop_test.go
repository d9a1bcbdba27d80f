package crop

import (
	"errors"
	"image"
	"testing"

	"github.com/example/pixeledit/internal/geom"
)

func dragHandle(t *testing.T, area geom.Rect, h Handle, dx, dy float64, mods Modifiers) geom.Rect {
	t.Helper()
	c := New(400, 300)
	c.SetArea(area)
	start := h.Point(area)
	if got := c.Begin(start); got != HandleDragging {
		t.Fatalf("Begin on %s handle = %v", h, got)
	}
	if c.ActiveHandle() != h {
		t.Fatalf("active handle = %s, want %s", c.ActiveHandle(), h)
	}
	c.Move(start.Add(geom.Pt(dx, dy)), mods)
	r, _ := c.End()
	return r
}

func TestSEHandleGrows(t *testing.T) {
	got := dragHandle(t, geom.R(50, 50, 100, 100), HandleSE, 30, 20, Modifiers{})
	if want := geom.R(50, 50, 130, 120); got != want {
		t.Fatalf("se drag = %+v, want %+v", got, want)
	}
}

func TestNWHandleShrinks(t *testing.T) {
	got := dragHandle(t, geom.R(50, 50, 100, 100), HandleNW, 20, 10, Modifiers{})
	if want := geom.R(70, 60, 80, 90); got != want {
		t.Fatalf("nw drag = %+v, want %+v", got, want)
	}
	got = dragHandle(t, geom.R(50, 50, 100, 100), HandleNW, 95, 200, Modifiers{})
	if want := geom.R(140, 140, 10, 10); got != want {
		t.Fatalf("nw drag past floor = %+v, want %+v", got, want)
	}
}

func TestOutOfBoundsShrinksNotTranslates(t *testing.T) {
	tests := []struct {
		h      Handle
		dx, dy float64
		want   geom.Rect
	}{
		{HandleE, 500, 0, geom.R(50, 50, 350, 100)},
		{HandleNW, -100, -100, geom.R(0, 0, 150, 150)},
		{HandleS, 0, 1000, geom.R(50, 50, 100, 250)},
		{HandleW, -70, 0, geom.R(0, 50, 150, 100)},
		{HandleN, 0, 500, geom.R(50, 140, 100, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.h.String(), func(t *testing.T) {
			got := dragHandle(t, geom.R(50, 50, 100, 100), tt.h, tt.dx, tt.dy, Modifiers{})
			if got != tt.want {
				t.Fatalf("drag %s by (%v,%v) = %+v, want %+v", tt.h, tt.dx, tt.dy, got, tt.want)
			}
		})
	}
}

func TestSquareModifierOnCorners(t *testing.T) {
	deltas := []geom.Point{{30, 5}, {-40, 60}, {200, -10}, {-300, -300}, {5, 90}}
	for _, h := range []Handle{HandleNW, HandleNE, HandleSE, HandleSW} {
		for _, d := range deltas {
			got := dragHandle(t, geom.R(100, 80, 120, 60), h, d.X, d.Y, Modifiers{Square: true})
			if got.W != got.H {
				t.Errorf("%s by %v: %vx%v not square", h, d, got.W, got.H)
			}
			if got.X < 0 || got.Y < 0 || got.Right() > 400 || got.Bottom() > 300 {
				t.Errorf("%s by %v: %+v leaves the image", h, d, got)
			}
		}
	}
}

func TestSquareAnchorsOppositeCorner(t *testing.T) {
	got := dragHandle(t, geom.R(100, 100, 100, 50), HandleNW, 10, 0, Modifiers{Square: true})
	if got.Right() != 200 || got.Bottom() != 150 {
		t.Fatalf("nw square moved the fixed corner: %+v", got)
	}
	if got.W != 90 || got.H != 90 {
		t.Fatalf("nw square size = %vx%v, want 90x90", got.W, got.H)
	}
}

func TestHandleAtPicksNearest(t *testing.T) {
	r := geom.R(0, 0, 10, 10)
	if h := HandleAt(r, geom.Pt(3, 0)); h != HandleN {
		t.Fatalf("HandleAt(3,0) = %s, want n", h)
	}
	if h := HandleAt(r, geom.Pt(-1, -1)); h != HandleNW {
		t.Fatalf("HandleAt(-1,-1) = %s, want nw", h)
	}
	big := geom.R(100, 100, 200, 100)
	if h := HandleAt(big, geom.Pt(200, 150)); h != HandleNone {
		t.Fatalf("centre of area should not grab a handle, got %s", h)
	}
	if h := HandleAt(big, geom.Pt(310, 205)); h != HandleSE {
		t.Fatalf("HandleAt near se = %s", h)
	}
}

func TestCursor(t *testing.T) {
	c := New(400, 300)
	if got := c.Cursor(geom.Pt(10, 10)); got != "crosshair" {
		t.Fatalf("cursor without area = %q", got)
	}
	c.SetArea(geom.R(50, 50, 100, 100))
	if got := c.Cursor(geom.Pt(51, 149)); got != "sw-resize" {
		t.Fatalf("cursor = %q, want sw-resize", got)
	}
	if got := c.Cursor(geom.Pt(100, 100)); got != "crosshair" {
		t.Fatalf("cursor = %q, want crosshair", got)
	}
}

func TestDrawAllowsNegativeAndClamps(t *testing.T) {
	c := New(400, 300)
	if c.Begin(geom.Pt(100, 100)) != Drawing {
		t.Fatalf("expected drawing")
	}
	c.Move(geom.Pt(50, 80), Modifiers{})
	if a, _ := c.Area(); a != geom.R(100, 100, -50, -20) {
		t.Fatalf("area = %+v", a)
	}
	c.Move(geom.Pt(-50, 500), Modifiers{})
	if a, _ := c.Area(); a != geom.R(100, 100, -100, 200) {
		t.Fatalf("clamped area = %+v", a)
	}
}

func TestDrawModifiers(t *testing.T) {
	c := New(400, 300)
	c.Begin(geom.Pt(200, 150))
	c.Move(geom.Pt(230, 170), Modifiers{Center: true})
	if a, _ := c.Area(); a != geom.R(170, 130, 60, 40) {
		t.Fatalf("centred area = %+v", a)
	}
	c.Move(geom.Pt(230, 170), Modifiers{Center: true, Square: true})
	if a, _ := c.Area(); a != geom.R(170, 120, 60, 60) {
		t.Fatalf("centred square = %+v", a)
	}

	c.Begin(geom.Pt(100, 100))
	c.Move(geom.Pt(70, 110), Modifiers{Square: true})
	if a, _ := c.Area(); a != geom.R(100, 100, -30, 30) {
		t.Fatalf("square draw = %+v", a)
	}
	c.Move(geom.Pt(390, 110), Modifiers{Square: true})
	if a, _ := c.Area(); a.W != a.H || a.Bottom() > 300 {
		t.Fatalf("square draw should stay inside: %+v", a)
	}
}

func TestValidate(t *testing.T) {
	got, err := Validate(geom.R(50, 50, -40, -40), 400, 300)
	if err != nil {
		t.Fatal(err)
	}
	if got != image.Rect(10, 10, 50, 50) {
		t.Fatalf("Validate = %v", got)
	}
	if _, err := Validate(geom.R(0, 0, 5, 50), 400, 300); !errors.Is(err, ErrTooSmall) {
		t.Fatalf("expected ErrTooSmall, got %v", err)
	}
	if _, err := Validate(geom.R(395, 0, 50, 50), 400, 300); !errors.Is(err, ErrTooSmall) {
		t.Fatalf("area mostly outside should be too small, got %v", err)
	}
}
