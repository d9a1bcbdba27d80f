package render

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// ErrInvalidTransform is returned for non-finite or non-positive scale
// and non-finite rotation.
var ErrInvalidTransform = errors.New("invalid transform")

// Transform is the geometric view applied to the working buffer. Rotation
// is in degrees, clockwise on screen.
type Transform struct {
	Scale    float64
	Rotation float64
	FlipH    bool
	FlipV    bool
}

// IdentityTransform leaves the image as is.
func IdentityTransform() Transform { return Transform{Scale: 1} }

// IsIdentity reports whether t has no effect.
func (t Transform) IsIdentity() bool {
	return t.Scale == 1 && math.Mod(t.Rotation, 360) == 0 && !t.FlipH && !t.FlipV
}

// Validate checks that t can be turned into an invertible matrix.
func (t Transform) Validate() error {
	if math.IsNaN(t.Scale) || math.IsInf(t.Scale, 0) || t.Scale <= 0 {
		return fmt.Errorf("%w: scale %v", ErrInvalidTransform, t.Scale)
	}
	if math.IsNaN(t.Rotation) || math.IsInf(t.Rotation, 0) {
		return fmt.Errorf("%w: rotation %v", ErrInvalidTransform, t.Rotation)
	}
	return nil
}

// axisAligned reports whether the rotation is a multiple of 90 degrees.
func (t Transform) axisAligned() bool {
	return math.Mod(t.Rotation, 90) == 0
}

// rotation returns the rotation matrix, using exact values for quarter
// turns so that they map pixels without resampling error.
func rotation(deg float64) gg.Matrix {
	switch q := math.Mod(deg, 360); {
	case q == 0:
		return gg.Identity()
	case q == 90 || q == -270:
		return gg.Matrix{A: 0, B: -1, D: 1, E: 0}
	case q == 180 || q == -180:
		return gg.Matrix{A: -1, B: 0, D: 0, E: -1}
	case q == 270 || q == -90:
		return gg.Matrix{A: 0, B: 1, D: -1, E: 0}
	}
	return gg.Rotate(deg * math.Pi / 180)
}

// Matrix composes, in this order, translate to the centre of a w×h frame,
// rotate, flip horizontally, flip vertically, scale and translate back. The
// result maps working-buffer coordinates to frame coordinates.
func (t Transform) Matrix(w, h int) gg.Matrix {
	cx, cy := float64(w)/2, float64(h)/2
	fh, fv := 1.0, 1.0
	if t.FlipH {
		fh = -1
	}
	if t.FlipV {
		fv = -1
	}
	return gg.Translate(cx, cy).
		Multiply(rotation(t.Rotation)).
		Multiply(gg.Scale(fh, 1)).
		Multiply(gg.Scale(1, fv)).
		Multiply(gg.Scale(t.Scale, t.Scale)).
		Multiply(gg.Translate(-cx, -cy))
}

// Resample selects the interpolator used when drawing through a transform.
type Resample int

const (
	// ResampleAuto uses nearest neighbour for quarter turns and bilinear
	// otherwise.
	ResampleAuto Resample = iota
	ResampleNearest
	ResampleBilinear
	ResampleCatmullRom
)

func (r Resample) String() string {
	switch r {
	case ResampleNearest:
		return "nearest"
	case ResampleBilinear:
		return "bilinear"
	case ResampleCatmullRom:
		return "catmullrom"
	}
	return "auto"
}

// ParseResample maps a configuration value to a Resample.
func ParseResample(s string) (Resample, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ResampleAuto, nil
	case "nearest":
		return ResampleNearest, nil
	case "bilinear":
		return ResampleBilinear, nil
	case "catmullrom", "bicubic":
		return ResampleCatmullRom, nil
	}
	return ResampleAuto, fmt.Errorf("unknown resample mode %q", s)
}

func (r Resample) interpolator(t Transform) xdraw.Transformer {
	switch r {
	case ResampleNearest:
		return xdraw.NearestNeighbor
	case ResampleBilinear:
		return xdraw.BiLinear
	case ResampleCatmullRom:
		return xdraw.CatmullRom
	}
	if t.axisAligned() && t.Scale == math.Trunc(t.Scale) {
		return xdraw.NearestNeighbor
	}
	return xdraw.BiLinear
}

func aff3(m gg.Matrix) f64.Aff3 {
	return f64.Aff3{m.A, m.B, m.C, m.D, m.E, m.F}
}

// ApplyTransform draws src through t into a new image of the same size.
// Areas not covered by the transformed image are transparent. The identity
// transform is an exact copy.
func ApplyTransform(src *image.RGBA, t Transform, rs Resample) (*image.RGBA, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	if t.IsIdentity() {
		xdraw.Copy(dst, image.Point{}, src, b, xdraw.Src, nil)
		return dst, nil
	}
	m := t.Matrix(b.Dx(), b.Dy())
	if b.Min != (image.Point{}) {
		m = m.Multiply(gg.Translate(-float64(b.Min.X), -float64(b.Min.Y)))
	}
	rs.interpolator(t).Transform(dst, aff3(m), src, b, xdraw.Src, nil)
	return dst, nil
}

// Bake draws src through t into an image sized to fit the whole transformed
// result, so quarter turns swap width and height and nothing is clipped.
func Bake(src *image.RGBA, t Transform, rs Resample) (*image.RGBA, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	m := t.Matrix(w, h).Multiply(gg.Translate(-float64(b.Min.X), -float64(b.Min.Y)))

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range []gg.Point{{X: 0, Y: 0}, {X: float64(w), Y: 0}, {X: 0, Y: float64(h)}, {X: float64(w), Y: float64(h)}} {
		p := m.TransformPoint(gg.Pt(c.X+float64(b.Min.X), c.Y+float64(b.Min.Y)))
		minX, minY = math.Min(minX, p.X), math.Min(minY, p.Y)
		maxX, maxY = math.Max(maxX, p.X), math.Max(maxY, p.Y)
	}
	ow := int(math.Round(maxX - minX))
	oh := int(math.Round(maxY - minY))
	if ow <= 0 || oh <= 0 {
		return nil, fmt.Errorf("%w: empty result", ErrInvalidTransform)
	}
	dst := image.NewRGBA(image.Rect(0, 0, ow, oh))
	m = gg.Translate(-minX, -minY).Multiply(m)
	rs.interpolator(t).Transform(dst, aff3(m), src, b, xdraw.Src, nil)
	return dst, nil
}

// InverseMap converts a frame coordinate back to working-buffer
// coordinates for a w×h frame.
func (t Transform) InverseMap(w, h int, x, y float64) (float64, float64) {
	p := t.Matrix(w, h).Invert().TransformPoint(gg.Pt(x, y))
	return p.X, p.Y
}
