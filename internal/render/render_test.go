package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math"
	"math/rand"
	"testing"

	"github.com/gogpu/gg"

	"github.com/example/pixeledit/internal/annotation"
	"github.com/example/pixeledit/internal/filter"
	"github.com/example/pixeledit/internal/geom"
)

func noise(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	rand.New(rand.NewSource(7)).Read(img.Pix)
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	return img
}

func white(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

func TestNeutralRenderIsIdentical(t *testing.T) {
	src := noise(64, 48)
	p := New(nil)
	out := p.Render(Scene{Image: src, Transform: IdentityTransform(), Filters: filter.Neutral()})
	if out == nil {
		t.Fatal("Render returned nil")
	}
	if !bytes.Equal(out.Pix, src.Pix) {
		t.Fatalf("neutral render differs from source")
	}
}

func TestRenderBrightness(t *testing.T) {
	src := noise(40, 30)
	s := filter.Neutral()
	s.Brightness = 150
	out := New(nil).Render(Scene{Image: src, Transform: IdentityTransform(), Filters: s})
	for i := 0; i < len(src.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			want := math.Min(255, math.Round(float64(src.Pix[i+c])*1.5))
			if float64(out.Pix[i+c]) != want {
				t.Fatalf("pixel %d channel %d = %d, want %v", i/4, c, out.Pix[i+c], want)
			}
		}
	}
}

func TestFlipHorizontal(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 1))
	src.SetRGBA(0, 0, color.RGBA{255, 0, 0, 255})
	src.SetRGBA(1, 0, color.RGBA{0, 255, 0, 255})
	src.SetRGBA(2, 0, color.RGBA{0, 0, 255, 255})
	out, err := ApplyTransform(src, Transform{Scale: 1, FlipH: true}, ResampleAuto)
	if err != nil {
		t.Fatal(err)
	}
	if out.RGBAAt(0, 0) != src.RGBAAt(2, 0) || out.RGBAAt(2, 0) != src.RGBAAt(0, 0) {
		t.Fatalf("flip did not reverse the row: %v", out.Pix)
	}
}

func TestBakeQuarterTurn(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	a := color.RGBA{255, 0, 0, 255}
	b := color.RGBA{0, 0, 255, 255}
	src.SetRGBA(0, 0, a)
	src.SetRGBA(1, 0, b)
	out, err := Bake(src, Transform{Scale: 1, Rotation: 90}, ResampleAuto)
	if err != nil {
		t.Fatal(err)
	}
	if out.Bounds().Dx() != 1 || out.Bounds().Dy() != 2 {
		t.Fatalf("baked size = %v, want 1x2", out.Bounds())
	}
	if out.RGBAAt(0, 0) != a || out.RGBAAt(0, 1) != b {
		t.Fatalf("clockwise turn put %v on top, want %v", out.RGBAAt(0, 0), a)
	}
}

func TestMatrixOrder(t *testing.T) {
	tr := Transform{Scale: 2, Rotation: 90, FlipH: true}
	m := tr.Matrix(100, 100)
	// (60,50) is 10 right of centre: scale → 20 right, flip → 20 left,
	// rotate 90 clockwise → 20 up.
	p := m.TransformPoint(gg.Pt(60, 50))
	if math.Abs(p.X-50) > 1e-9 || math.Abs(p.Y-30) > 1e-9 {
		t.Fatalf("mapped point = %v, want (50,30)", p)
	}
	x, y := tr.InverseMap(100, 100, p.X, p.Y)
	if math.Abs(x-60) > 1e-9 || math.Abs(y-50) > 1e-9 {
		t.Fatalf("inverse = (%v,%v)", x, y)
	}
}

func TestInvalidTransformKeepsLastFrame(t *testing.T) {
	p := New(nil)
	src := noise(10, 10)
	good := p.Render(Scene{Image: src, Transform: IdentityTransform(), Filters: filter.Neutral()})
	for _, tr := range []Transform{{Scale: 0}, {Scale: math.NaN()}, {Scale: 1, Rotation: math.Inf(1)}} {
		if got := p.Render(Scene{Image: src, Transform: tr, Filters: filter.Neutral()}); got != good {
			t.Fatalf("transform %+v: expected previous frame", tr)
		}
	}
	if _, err := ApplyTransform(src, Transform{Scale: -1}, ResampleAuto); !errors.Is(err, ErrInvalidTransform) {
		t.Fatalf("expected ErrInvalidTransform, got %v", err)
	}
}

func TestEmptySceneIsNoOp(t *testing.T) {
	p := New(nil)
	if got := p.Render(Scene{}); got != nil {
		t.Fatalf("expected nil frame")
	}
	if got := p.Render(Scene{Image: image.NewRGBA(image.Rect(0, 0, 0, 5)), Transform: IdentityTransform()}); got != nil {
		t.Fatalf("expected nil frame for zero width")
	}
	if _, err := p.Flatten(Scene{}); !errors.Is(err, ErrEmptyScene) {
		t.Fatalf("Flatten error = %v", err)
	}
}

func TestAnnotationsDrawn(t *testing.T) {
	red := color.RGBA{255, 0, 0, 255}
	scene := Scene{
		Image:     white(100, 100),
		Transform: IdentityTransform(),
		Filters:   filter.Neutral(),
		Annotations: []annotation.Annotation{{
			ID: "r", Origin: geom.Pt(20, 20), Visible: true,
			Style: annotation.Style{Color: red, StrokeWidth: 4},
			Shape: annotation.Rect{W: 40, H: 40},
		}, {
			ID: "hidden", Origin: geom.Pt(70, 70), Visible: false,
			Style: annotation.Style{Color: red, StrokeWidth: 4},
			Shape: annotation.Rect{W: 20, H: 20},
		}},
	}
	out, err := New(nil).Flatten(scene)
	if err != nil {
		t.Fatal(err)
	}
	edge := out.RGBAAt(20, 40)
	if edge.R != 255 || edge.G > 50 {
		t.Fatalf("edge pixel = %v, want red", edge)
	}
	if got := out.RGBAAt(40, 40); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("interior pixel = %v, want white", got)
	}
	if got := out.RGBAAt(70, 80); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("hidden annotation drawn: %v", got)
	}
}

func TestDecorationsOnlyInRender(t *testing.T) {
	area := geom.R(10, 10, 50, 50)
	scene := Scene{
		Image:     white(80, 80),
		Transform: IdentityTransform(),
		Filters:   filter.Neutral(),
		Crop:      &area,
	}
	p := New(nil)
	flat, err := p.Flatten(scene)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(flat.Pix, white(80, 80).Pix) {
		t.Fatalf("Flatten drew the crop overlay")
	}
	shown := p.Render(scene)
	if got := shown.RGBAAt(10, 10); got.G != 255 || got.R == 255 {
		t.Fatalf("crop handle pixel = %v, want green", got)
	}
}

func TestSelectionDecoration(t *testing.T) {
	a := annotation.Annotation{
		ID: "sel", Origin: geom.Pt(30, 30), Visible: true,
		Style: annotation.Style{Color: color.RGBA{0, 0, 255, 255}, StrokeWidth: 2},
		Shape: annotation.Rect{W: 30, H: 30},
	}
	scene := Scene{Image: white(100, 100), Transform: IdentityTransform(), Filters: filter.Neutral(), Annotations: []annotation.Annotation{a}}
	p := New(nil)
	plain := p.Render(scene)
	scene.Selected = "sel"
	decorated := p.Render(scene)
	// resize handle square centred on the bottom-right corner
	if plain.RGBAAt(64, 64) == decorated.RGBAAt(64, 64) {
		t.Fatalf("selection resize handle not drawn")
	}
}
