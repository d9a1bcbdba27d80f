package geom

import (
	"image"
	"testing"
)

func TestNormalize(t *testing.T) {
	got := R(50, 40, -20, -10).Normalize()
	want := R(30, 30, 20, 10)
	if got != want {
		t.Fatalf("Normalize() = %+v, want %+v", got, want)
	}
}

func TestContains(t *testing.T) {
	r := R(10, 10, 20, 20)
	tests := []struct {
		p    Point
		tol  float64
		want bool
	}{
		{Pt(15, 15), 0, true},
		{Pt(5, 15), 0, false},
		{Pt(5, 15), 8, true},
		{Pt(39, 39), 8, false},
		{Pt(38, 38), 8, true},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.p, tt.tol); got != tt.want {
			t.Errorf("Contains(%v, %v) = %v, want %v", tt.p, tt.tol, got, tt.want)
		}
	}
}

func TestImageRoundTrip(t *testing.T) {
	ir := image.Rect(3, 4, 13, 24)
	if got := FromImage(ir).Image(); got != ir {
		t.Fatalf("round trip = %v, want %v", got, ir)
	}
}

func TestSegmentDist(t *testing.T) {
	if d := SegmentDist(Pt(5, 3), Pt(0, 0), Pt(10, 0)); d != 3 {
		t.Fatalf("distance to middle = %v, want 3", d)
	}
	if d := SegmentDist(Pt(13, 4), Pt(0, 0), Pt(10, 0)); d != 5 {
		t.Fatalf("distance past end = %v, want 5", d)
	}
}
