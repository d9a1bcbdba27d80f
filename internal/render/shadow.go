package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/example/pixeledit/internal/filter"
)

// ShadowOptions configures the drop shadow added around an exported image.
type ShadowOptions struct {
	Radius  float64
	Offset  image.Point
	Opacity float64
	Color   color.RGBA
}

// DefaultShadowOptions suits most images on a light page.
func DefaultShadowOptions() ShadowOptions {
	return ShadowOptions{
		Radius:  12,
		Offset:  image.Pt(8, 8),
		Opacity: 0.55,
		Color:   color.RGBA{A: 255},
	}
}

// Enabled reports whether o draws anything.
func (o ShadowOptions) Enabled() bool {
	return o.Opacity > 0 && !math.IsNaN(o.Opacity)
}

// ApplyShadow places img on a transparent canvas big enough for a blurred
// copy of its alpha, shifted by Offset, and draws img over it. It returns
// the new image and where img's top-left corner landed.
func ApplyShadow(img *image.RGBA, opts ShadowOptions) (*image.RGBA, image.Point) {
	if img == nil || img.Bounds().Empty() || !opts.Enabled() {
		return img, image.Point{}
	}
	opacity := math.Min(opts.Opacity, 1)
	pad := 0
	if opts.Radius > 0 {
		pad = int(math.Ceil(opts.Radius * 3))
	}

	src := img.Bounds()
	shadow := src.Inset(-pad).Add(opts.Offset)
	all := src.Union(shadow)
	shift := src.Min.Sub(all.Min)

	// The mask carries the shadow colour premultiplied by the source alpha.
	mask := image.NewRGBA(image.Rect(0, 0, shadow.Dx(), shadow.Dy()))
	c := opts.Color
	for y := src.Min.Y; y < src.Max.Y; y++ {
		for x := src.Min.X; x < src.Max.X; x++ {
			a := float64(img.RGBAAt(x, y).A) / 255 * opacity
			if a == 0 {
				continue
			}
			i := mask.PixOffset(x-src.Min.X+pad, y-src.Min.Y+pad)
			mask.Pix[i+0] = uint8(float64(c.R)*a + 0.5)
			mask.Pix[i+1] = uint8(float64(c.G)*a + 0.5)
			mask.Pix[i+2] = uint8(float64(c.B)*a + 0.5)
			mask.Pix[i+3] = uint8(255*a + 0.5)
		}
	}
	blurred := filter.Blur(mask, opts.Radius)

	dst := image.NewRGBA(image.Rect(0, 0, all.Dx(), all.Dy()))
	draw.Draw(dst, blurred.Bounds().Add(shadow.Min.Sub(all.Min)), blurred, image.Point{}, draw.Over)
	draw.Draw(dst, src.Sub(all.Min), img, src.Min, draw.Over)
	return dst, shift
}
