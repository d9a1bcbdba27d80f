package annotation

import (
	"errors"
	"math"
	"testing"

	"github.com/example/pixeledit/internal/geom"
)

func rect(id string, x, y, w, h float64) Annotation {
	return Annotation{ID: id, Origin: geom.Pt(x, y), Style: DefaultStyle, Visible: true, Shape: Rect{W: w, H: h}}
}

func TestRectHitTest(t *testing.T) {
	var m Model
	if _, err := m.Add(rect("r", 10, 10, 50, 30)); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		p    geom.Point
		want bool
	}{
		{geom.Pt(30, 20), true},
		{geom.Pt(65, 20), true},
		{geom.Pt(100, 100), false},
		{geom.Pt(69, 20), false},
		{geom.Pt(2, 2), true},
	}
	for _, tt := range tests {
		id, ok := m.HitTest(tt.p)
		if ok != tt.want {
			t.Errorf("HitTest(%v) = %v, want %v", tt.p, ok, tt.want)
		}
		if ok && id != "r" {
			t.Errorf("HitTest(%v) id = %q", tt.p, id)
		}
	}
}

func TestHitTestTopmostWins(t *testing.T) {
	var m Model
	m.Add(rect("bottom", 0, 0, 100, 100))
	m.Add(rect("top", 20, 20, 40, 40))
	if id, _ := m.HitTest(geom.Pt(30, 30)); id != "top" {
		t.Fatalf("HitTest overlap = %q, want top", id)
	}
	if id, _ := m.HitTest(geom.Pt(90, 90)); id != "bottom" {
		t.Fatalf("HitTest = %q, want bottom", id)
	}
	m.Update("top", func(a *Annotation) { a.Visible = false })
	if id, _ := m.HitTest(geom.Pt(30, 30)); id != "bottom" {
		t.Fatalf("hidden annotations must not be hit, got %q", id)
	}
}

func TestAddAssignsUniqueIDs(t *testing.T) {
	var m Model
	a, err := m.Add(Annotation{Shape: Circle{D: 10}})
	if err != nil {
		t.Fatal(err)
	}
	b, _ := m.Add(Annotation{Shape: Circle{D: 10}})
	if a == "" || a == b {
		t.Fatalf("ids %q and %q should be distinct and non-empty", a, b)
	}
	if _, err := m.Add(Annotation{ID: a, Shape: Circle{D: 1}}); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	if _, err := m.Add(Annotation{}); !errors.Is(err, ErrNoShape) {
		t.Fatalf("expected ErrNoShape, got %v", err)
	}
}

func TestUpsertKeepsOrder(t *testing.T) {
	var m Model
	m.Add(rect("a", 0, 0, 10, 10))
	m.Add(rect("b", 0, 0, 10, 10))
	m.Upsert(rect("a", 5, 5, 10, 10))
	all := m.All()
	if all[0].ID != "a" || all[0].Origin.X != 5 {
		t.Fatalf("upsert should replace in place, got %+v", all)
	}
	if err := m.Remove("a"); err != nil {
		t.Fatal(err)
	}
	if err := m.Remove("a"); !errors.Is(err, ErrUnknownAnnotation) {
		t.Fatalf("expected ErrUnknownAnnotation, got %v", err)
	}
	if m.Len() != 1 {
		t.Fatalf("Len = %d", m.Len())
	}
}

func TestRemovedIDStaysReserved(t *testing.T) {
	var m Model
	if _, err := m.Add(rect("a", 0, 0, 10, 10)); err != nil {
		t.Fatal(err)
	}
	snapshot := m.All()
	if err := m.Remove("a"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Add(rect("a", 0, 0, 10, 10)); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("add after remove = %v, want ErrDuplicateID", err)
	}
	if _, err := m.Upsert(rect("a", 0, 0, 10, 10)); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("upsert after remove = %v, want ErrDuplicateID", err)
	}

	m.Replace(snapshot)
	if _, ok := m.Get("a"); !ok {
		t.Fatal("restored annotation lost its id")
	}
	if _, err := m.Upsert(rect("a", 3, 3, 10, 10)); err != nil {
		t.Fatalf("upsert of restored id = %v", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	a := Annotation{ID: "f", Shape: Freehand{Points: []geom.Point{{0, 0}, {5, 5}}}}
	c := a.Clone()
	c.Shape.(Freehand).Points[1] = geom.Pt(9, 9)
	if a.Shape.(Freehand).Points[1] != geom.Pt(5, 5) {
		t.Fatalf("clone shares point storage")
	}
}

func TestTextBoundsAnchoredAtBaseline(t *testing.T) {
	a := Annotation{ID: "t", Origin: geom.Pt(10, 50), Visible: true,
		Shape: Text{Content: "Hello", Font: Font{Size: 20}}}
	b := a.Bounds()
	if b.X != 10 {
		t.Fatalf("bounds x = %v, want 10", b.X)
	}
	if b.Y >= 50 || b.Bottom() <= 50 {
		t.Fatalf("baseline 50 should lie inside [%v, %v]", b.Y, b.Bottom())
	}
	if b.W <= 0 {
		t.Fatalf("width = %v", b.W)
	}
}

func TestTextWrap(t *testing.T) {
	txt := Text{Content: "one two three four five six", Font: Font{Size: 16}, WrapWidth: 60}
	l, err := LayoutText(txt, geom.Pt(0, 20))
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Lines) < 2 {
		t.Fatalf("expected wrapping, got %d lines", len(l.Lines))
	}
	for i, line := range l.Lines {
		if line.Width > 60 && len(line.Text) > 5 {
			t.Errorf("line %d %q is %v wide", i, line.Text, line.Width)
		}
		want := 20 + float64(i)*16*LineHeightFactor
		if math.Abs(line.Baseline-want) > 1e-9 {
			t.Errorf("line %d baseline = %v, want %v", i, line.Baseline, want)
		}
	}
	if l.Bounds.W != 60 {
		t.Fatalf("wrapped box width = %v, want 60", l.Bounds.W)
	}

	txt.Align = AlignRight
	r, _ := LayoutText(txt, geom.Pt(0, 20))
	for _, line := range r.Lines {
		if math.Abs(line.X+line.Width-60) > 1e-9 {
			t.Errorf("right aligned line %q ends at %v", line.Text, line.X+line.Width)
		}
	}
	txt.Align = AlignCenter
	c, _ := LayoutText(txt, geom.Pt(0, 20))
	for _, line := range c.Lines {
		if math.Abs(line.X-(60-line.Width)/2) > 1e-9 {
			t.Errorf("centred line %q starts at %v", line.Text, line.X)
		}
	}
}

func TestBoldAndMonoFaces(t *testing.T) {
	for _, f := range []Font{{Size: 12}, {Size: 12, Bold: true}, {Family: "mono", Size: 12, Italic: true}} {
		if _, err := Face(f); err != nil {
			t.Fatalf("Face(%+v): %v", f, err)
		}
	}
	reg, _ := LayoutText(Text{Content: "iiii", Font: Font{Size: 20}}, geom.Pt(0, 0))
	mono, _ := LayoutText(Text{Content: "iiii", Font: Font{Family: "mono", Size: 20}}, geom.Pt(0, 0))
	if mono.Bounds.W <= reg.Bounds.W {
		t.Fatalf("mono 'iiii' (%v) should be wider than proportional (%v)", mono.Bounds.W, reg.Bounds.W)
	}
}

func TestResizeFloors(t *testing.T) {
	a := rect("r", 10, 10, 50, 50)
	a.ResizeTo(geom.Pt(15, 15))
	r := a.Shape.(Rect)
	if r.W != MinSize || r.H != MinSize {
		t.Fatalf("rect resize floor = %+v", r)
	}
	a.ResizeTo(geom.Pt(110, 90))
	r = a.Shape.(Rect)
	if r.W != 100 || r.H != 80 {
		t.Fatalf("rect resize = %+v", r)
	}

	txt := Annotation{Origin: geom.Pt(0, 40), Shape: Text{Content: "hi", Font: Font{Size: 24}}}
	txt.ResizeTo(geom.Pt(5, 20))
	tt := txt.Shape.(Text)
	if tt.WrapWidth != MinSize || tt.BoxHeight != 24 {
		t.Fatalf("text resize floor = %+v", tt)
	}
}

func TestResizeScalesLine(t *testing.T) {
	a := Annotation{Origin: geom.Pt(10, 10), Shape: Line{W: 40, H: 0}}
	a.ResizeTo(geom.Pt(90, 10))
	l := a.Shape.(Line)
	if l.W != 80 || a.Origin != geom.Pt(10, 10) {
		t.Fatalf("line resize = %+v at %v", l, a.Origin)
	}
}

func TestArrowHead(t *testing.T) {
	h1, h2 := ArrowHead(geom.Pt(0, 0), geom.Pt(100, 0))
	if math.Abs(h1.X-(100-10*math.Cos(math.Pi/6))) > 1e-9 || math.Abs(h1.Y-5) > 1e-9 {
		t.Fatalf("barb 1 = %v", h1)
	}
	if math.Abs(h2.Y+5) > 1e-9 {
		t.Fatalf("barb 2 = %v", h2)
	}
}

func TestTranslate(t *testing.T) {
	var m Model
	m.Add(rect("a", 50, 60, 10, 10))
	m.Translate(geom.Pt(-20, -30))
	a, _ := m.Get("a")
	if a.Origin != geom.Pt(30, 30) {
		t.Fatalf("origin = %v", a.Origin)
	}
}
