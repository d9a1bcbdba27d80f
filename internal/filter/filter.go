// Package filter implements the non-destructive colour adjustments applied
// to every rendered frame. Filters are never baked into the working buffer:
// Apply always receives the untouched (transformed) pixels and returns a new
// image.
package filter

import (
	"fmt"
	"image"
	"math"
	"runtime"
	"sync"
)

// Settings holds the adjustable filter values. Brightness, Contrast and
// Saturation are percentages with 100 as neutral. Hue is a rotation in
// degrees. Blur is a radius in pixels. Sepia and Grayscale are blend
// percentages with 0 as neutral.
type Settings struct {
	Brightness float64 `yaml:"brightness"`
	Contrast   float64 `yaml:"contrast"`
	Saturation float64 `yaml:"saturation"`
	Hue        float64 `yaml:"hue"`
	Blur       float64 `yaml:"blur"`
	Sepia      float64 `yaml:"sepia"`
	Grayscale  float64 `yaml:"grayscale"`
}

// Range limits.
const (
	MaxPercent = 200
	MaxHue     = 180
	MaxBlur    = 20
	MaxBlend   = 100
)

// Neutral returns settings that leave pixels unchanged.
func Neutral() Settings {
	return Settings{Brightness: 100, Contrast: 100, Saturation: 100}
}

// IsNeutral reports whether s has no visible effect.
func (s Settings) IsNeutral() bool {
	return s == Neutral()
}

// Validate reports the first value outside its allowed range.
func (s Settings) Validate() error {
	check := func(name string, v, lo, hi float64) error {
		if math.IsNaN(v) || v < lo || v > hi {
			return fmt.Errorf("%s %v out of range [%v, %v]", name, v, lo, hi)
		}
		return nil
	}
	for _, c := range []struct {
		name      string
		v, lo, hi float64
	}{
		{"brightness", s.Brightness, 0, MaxPercent},
		{"contrast", s.Contrast, 0, MaxPercent},
		{"saturation", s.Saturation, 0, MaxPercent},
		{"hue", s.Hue, -MaxHue, MaxHue},
		{"blur", s.Blur, 0, MaxBlur},
		{"sepia", s.Sepia, 0, MaxBlend},
		{"grayscale", s.Grayscale, 0, MaxBlend},
	} {
		if err := check(c.name, c.v, c.lo, c.hi); err != nil {
			return err
		}
	}
	return nil
}

// Clamp returns s with every value forced into its allowed range. NaN is
// replaced by the neutral value.
func (s Settings) Clamp() Settings {
	n := Neutral()
	clamp := func(v, neutral, lo, hi float64) float64 {
		switch {
		case math.IsNaN(v):
			return neutral
		case v < lo:
			return lo
		case v > hi:
			return hi
		}
		return v
	}
	return Settings{
		Brightness: clamp(s.Brightness, n.Brightness, 0, MaxPercent),
		Contrast:   clamp(s.Contrast, n.Contrast, 0, MaxPercent),
		Saturation: clamp(s.Saturation, n.Saturation, 0, MaxPercent),
		Hue:        clamp(s.Hue, 0, -MaxHue, MaxHue),
		Blur:       clamp(s.Blur, 0, 0, MaxBlur),
		Sepia:      clamp(s.Sepia, 0, 0, MaxBlend),
		Grayscale:  clamp(s.Grayscale, 0, 0, MaxBlend),
	}
}

// Luminance weights.
const (
	lumR = 0.2989
	lumG = 0.5870
	lumB = 0.1140
)

// parallelThreshold is the pixel count above which rows are split across
// goroutines.
const parallelThreshold = 256 * 256

// Apply returns a filtered copy of src. src is never modified. The colour
// stages run per pixel in a fixed order and the blur runs last over the
// whole image.
func Apply(src *image.RGBA, s Settings) *image.RGBA {
	if src == nil {
		return nil
	}
	b := src.Bounds()
	dst := image.NewRGBA(b)
	if b.Empty() {
		return dst
	}
	s = s.Clamp()
	if s.IsNeutral() {
		copyRGBA(dst, src)
		return dst
	}

	p := newPixelOp(s)
	if p.identity {
		copyRGBA(dst, src)
	} else {
		forRows(b.Dy(), b.Dx()*b.Dy(), func(y0, y1 int) {
			for y := y0; y < y1; y++ {
				si := y * src.Stride
				di := y * dst.Stride
				for x := 0; x < b.Dx(); x++ {
					p.apply(dst.Pix[di+4*x:di+4*x+4], src.Pix[si+4*x:si+4*x+4])
				}
			}
		})
	}

	if s.Blur > 0 {
		dst = gaussianBlur(dst, s.Blur)
	}
	return dst
}

func copyRGBA(dst, src *image.RGBA) {
	h := src.Bounds().Dy()
	w := src.Bounds().Dx() * 4
	for y := 0; y < h; y++ {
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+w], src.Pix[y*src.Stride:y*src.Stride+w])
	}
}

// forRows calls fn over [0, rows) either directly or split into bands, one
// per CPU. Bands write disjoint rows so no locking is required.
func forRows(rows, pixels int, fn func(y0, y1 int)) {
	workers := runtime.GOMAXPROCS(0)
	if pixels < parallelThreshold || workers < 2 || rows < workers {
		fn(0, rows)
		return
	}
	band := (rows + workers - 1) / workers
	var wg sync.WaitGroup
	for y0 := 0; y0 < rows; y0 += band {
		y1 := min(y0+band, rows)
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(y0, y1)
		}()
	}
	wg.Wait()
}

type pixelOp struct {
	identity bool

	brightness, contrast, saturation float64
	grayscale, sepia                 float64
	hue                              [9]float64
	rotateHue                        bool
}

func newPixelOp(s Settings) *pixelOp {
	p := &pixelOp{
		brightness: s.Brightness / 100,
		contrast:   s.Contrast / 100,
		saturation: s.Saturation / 100,
		grayscale:  s.Grayscale / 100,
		sepia:      s.Sepia / 100,
	}
	if s.Hue != 0 {
		p.rotateHue = true
		p.hue = hueMatrix(s.Hue)
	}
	colourNeutral := s
	colourNeutral.Blur = 0
	p.identity = colourNeutral.IsNeutral()
	return p
}

// hueMatrix is the usual luminance preserving hue rotation approximation.
func hueMatrix(deg float64) [9]float64 {
	rad := deg * math.Pi / 180
	c, s := math.Cos(rad), math.Sin(rad)
	return [9]float64{
		0.299 + 0.701*c + 0.168*s, 0.587 - 0.587*c + 0.330*s, 0.114 - 0.114*c - 0.497*s,
		0.299 - 0.299*c - 0.328*s, 0.587 + 0.413*c + 0.035*s, 0.114 - 0.114*c + 0.292*s,
		0.299 - 0.300*c + 1.250*s, 0.587 - 0.588*c - 1.050*s, 0.114 + 0.886*c - 0.203*s,
	}
}

// apply filters one pixel. Pixels with partial alpha are processed in
// straight (non-premultiplied) space and premultiplied again afterwards.
func (p *pixelOp) apply(dst, src []uint8) {
	a := src[3]
	if a == 0 {
		copy(dst, src)
		return
	}
	r, g, b := float64(src[0]), float64(src[1]), float64(src[2])
	if a != 0xff {
		k := 255 / float64(a)
		r, g, b = r*k, g*k, b*k
	}

	if p.brightness != 1 {
		r, g, b = r*p.brightness, g*p.brightness, b*p.brightness
	}
	if p.contrast != 1 {
		r = (r-128)*p.contrast + 128
		g = (g-128)*p.contrast + 128
		b = (b-128)*p.contrast + 128
	}
	if p.saturation != 1 {
		lum := lumR*r + lumG*g + lumB*b
		r = r*p.saturation + lum*(1-p.saturation)
		g = g*p.saturation + lum*(1-p.saturation)
		b = b*p.saturation + lum*(1-p.saturation)
	}
	if p.rotateHue {
		m := &p.hue
		r, g, b = r*m[0]+g*m[1]+b*m[2], r*m[3]+g*m[4]+b*m[5], r*m[6]+g*m[7]+b*m[8]
	}
	if p.grayscale > 0 {
		lum := lumR*r + lumG*g + lumB*b
		r = r*(1-p.grayscale) + lum*p.grayscale
		g = g*(1-p.grayscale) + lum*p.grayscale
		b = b*(1-p.grayscale) + lum*p.grayscale
	}
	if p.sepia > 0 {
		sr := 0.393*r + 0.769*g + 0.189*b
		sg := 0.349*r + 0.686*g + 0.168*b
		sb := 0.272*r + 0.534*g + 0.131*b
		r = r*(1-p.sepia) + sr*p.sepia
		g = g*(1-p.sepia) + sg*p.sepia
		b = b*(1-p.sepia) + sb*p.sepia
	}

	if a != 0xff {
		k := float64(a) / 255
		r = math.Min(math.Max(r, 0), 255) * k
		g = math.Min(math.Max(g, 0), 255) * k
		b = math.Min(math.Max(b, 0), 255) * k
	}
	dst[0] = clampByte(r)
	dst[1] = clampByte(g)
	dst[2] = clampByte(b)
	dst[3] = a
}

func clampByte(v float64) uint8 {
	v = math.Round(v)
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
