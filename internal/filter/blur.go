package filter

import (
	"image"
	"math"
	"sync"
)

var kernels sync.Map // map[float64][]float64

// gaussianKernel returns a normalised 1D kernel using radius as sigma and
// covering three standard deviations either side.
func gaussianKernel(radius float64) []float64 {
	if k, ok := kernels.Load(radius); ok {
		return k.([]float64)
	}
	half := int(math.Ceil(radius * 3))
	k := make([]float64, 2*half+1)
	twoSigmaSq := 2 * radius * radius
	sum := 0.0
	for i := range k {
		x := float64(i - half)
		k[i] = math.Exp(-(x * x) / twoSigmaSq)
		sum += k[i]
	}
	for i := range k {
		k[i] /= sum
	}
	kernels.Store(radius, k)
	return k
}

// gaussianBlur runs a horizontal then a vertical pass. Samples beyond the
// edge repeat the edge pixel. All four channels are blurred; image.RGBA is
// premultiplied so colour does not bleed out of transparent areas.
func gaussianBlur(src *image.RGBA, radius float64) *image.RGBA {
	if radius <= 0 {
		return src
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	k := gaussianKernel(radius)
	half := len(k) / 2

	tmp := image.NewRGBA(b)
	forRows(h, w*h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			row := src.Pix[y*src.Stride:]
			out := tmp.Pix[y*tmp.Stride:]
			for x := 0; x < w; x++ {
				var acc [4]float64
				for i, kv := range k {
					sx := min(max(x+i-half, 0), w-1)
					p := row[sx*4 : sx*4+4]
					acc[0] += float64(p[0]) * kv
					acc[1] += float64(p[1]) * kv
					acc[2] += float64(p[2]) * kv
					acc[3] += float64(p[3]) * kv
				}
				for c := 0; c < 4; c++ {
					out[x*4+c] = clampByte(acc[c])
				}
			}
		}
	})

	dst := image.NewRGBA(b)
	forRows(h, w*h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			out := dst.Pix[y*dst.Stride:]
			for x := 0; x < w; x++ {
				var acc [4]float64
				for i, kv := range k {
					sy := min(max(y+i-half, 0), h-1)
					p := tmp.Pix[sy*tmp.Stride+x*4 : sy*tmp.Stride+x*4+4]
					acc[0] += float64(p[0]) * kv
					acc[1] += float64(p[1]) * kv
					acc[2] += float64(p[2]) * kv
					acc[3] += float64(p[3]) * kv
				}
				for c := 0; c < 4; c++ {
					out[x*4+c] = clampByte(acc[c])
				}
			}
		}
	})
	return dst
}

// Blur returns src blurred with a Gaussian of the given radius, or src
// itself when radius is not positive.
func Blur(src *image.RGBA, radius float64) *image.RGBA {
	return gaussianBlur(src, radius)
}
