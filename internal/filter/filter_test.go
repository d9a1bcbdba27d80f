package filter

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"math/rand"
	"testing"
)

func noise(w, h int, seed int64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	r := rand.New(rand.NewSource(seed))
	r.Read(img.Pix)
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	return img
}

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestNeutralIsIdentity(t *testing.T) {
	src := noise(37, 23, 1)
	// some translucent pixels too
	src.Pix[3] = 10
	src.Pix[7] = 128
	out := Apply(src, Neutral())
	if !bytes.Equal(out.Pix, src.Pix) {
		t.Fatalf("neutral filters changed pixels")
	}
	if &out.Pix[0] == &src.Pix[0] {
		t.Fatalf("Apply must return a new buffer")
	}
}

func TestApplyDoesNotMutateSource(t *testing.T) {
	src := noise(20, 20, 2)
	orig := append([]uint8(nil), src.Pix...)
	Apply(src, Settings{Brightness: 150, Contrast: 80, Saturation: 20, Hue: 45, Blur: 3, Sepia: 40, Grayscale: 10})
	if !bytes.Equal(orig, src.Pix) {
		t.Fatalf("source buffer was modified")
	}
}

func TestBrightness(t *testing.T) {
	s := Neutral()
	s.Brightness = 150
	for _, v := range []uint8{0, 1, 100, 101, 169, 170, 200, 255} {
		out := Apply(solid(2, 2, color.RGBA{v, v, v, 255}), s)
		want := math.Min(255, math.Round(float64(v)*1.5))
		if got := out.Pix[0]; float64(got) != want {
			t.Errorf("brightness 150 on %d = %d, want %v", v, got, want)
		}
		if out.Pix[3] != 255 {
			t.Errorf("alpha changed to %d", out.Pix[3])
		}
	}
}

func TestContrastZeroIsMidGray(t *testing.T) {
	s := Neutral()
	s.Contrast = 0
	out := Apply(noise(8, 8, 3), s)
	for i := 0; i < len(out.Pix); i += 4 {
		if out.Pix[i] != 128 || out.Pix[i+1] != 128 || out.Pix[i+2] != 128 {
			t.Fatalf("pixel %d = %v, want 128 gray", i/4, out.Pix[i:i+3])
		}
	}
}

func TestSaturationZeroIsGray(t *testing.T) {
	s := Neutral()
	s.Saturation = 0
	out := Apply(noise(8, 8, 4), s)
	for i := 0; i < len(out.Pix); i += 4 {
		if out.Pix[i] != out.Pix[i+1] || out.Pix[i+1] != out.Pix[i+2] {
			t.Fatalf("pixel %d not gray: %v", i/4, out.Pix[i:i+3])
		}
	}
}

func TestGrayscaleAndSepia(t *testing.T) {
	tests := []struct {
		name string
		s    Settings
		in   color.RGBA
		want [3]uint8
	}{
		{"grayscale red", Settings{Brightness: 100, Contrast: 100, Saturation: 100, Grayscale: 100}, color.RGBA{255, 0, 0, 255}, [3]uint8{76, 76, 76}},
		{"sepia gray", Settings{Brightness: 100, Contrast: 100, Saturation: 100, Sepia: 100}, color.RGBA{100, 100, 100, 255}, [3]uint8{135, 120, 94}},
		{"half grayscale", Settings{Brightness: 100, Contrast: 100, Saturation: 100, Grayscale: 50}, color.RGBA{255, 0, 0, 255}, [3]uint8{166, 38, 38}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Apply(solid(1, 1, tt.in), tt.s)
			got := [3]uint8{out.Pix[0], out.Pix[1], out.Pix[2]}
			if got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHueRotationKeepsGray(t *testing.T) {
	s := Neutral()
	s.Hue = 180
	out := Apply(solid(1, 1, color.RGBA{90, 90, 90, 255}), s)
	for c := 0; c < 3; c++ {
		if d := int(out.Pix[c]) - 90; d < -1 || d > 1 {
			t.Fatalf("channel %d = %d, want ~90", c, out.Pix[c])
		}
	}
	s.Hue = 120
	out = Apply(solid(1, 1, color.RGBA{200, 20, 20, 255}), s)
	if out.Pix[0] >= out.Pix[1] {
		t.Fatalf("rotating red by 120 should favour green, got %v", out.Pix[:3])
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	s := Settings{Brightness: 120, Contrast: 90, Saturation: 130, Hue: 30, Sepia: 20}
	big := noise(300, 300, 5)
	out := Apply(big, s)
	p := newPixelOp(s)
	want := make([]uint8, 4)
	for _, i := range []int{0, 4 * 299, 4 * (300*150 + 17), len(big.Pix) - 4} {
		p.apply(want, big.Pix[i:i+4])
		if !bytes.Equal(want, out.Pix[i:i+4]) {
			t.Fatalf("pixel at %d = %v, want %v", i/4, out.Pix[i:i+4], want)
		}
	}
}

func TestBlurUniformUnchanged(t *testing.T) {
	src := solid(16, 12, color.RGBA{10, 200, 30, 255})
	s := Neutral()
	s.Blur = 4
	out := Apply(src, s)
	if !bytes.Equal(out.Pix, src.Pix) {
		t.Fatalf("blurring a uniform image should not change it")
	}
}

func TestBlurSpreadsPoint(t *testing.T) {
	src := solid(21, 21, color.RGBA{0, 0, 0, 255})
	i := src.PixOffset(10, 10)
	src.Pix[i], src.Pix[i+1], src.Pix[i+2] = 255, 255, 255
	s := Neutral()
	s.Blur = 2
	out := Apply(src, s)
	centre := out.Pix[out.PixOffset(10, 10)]
	near := out.Pix[out.PixOffset(11, 10)]
	far := out.Pix[out.PixOffset(20, 10)]
	if centre == 255 || centre == 0 {
		t.Fatalf("centre = %d, want partially spread", centre)
	}
	if near == 0 || near > centre {
		t.Fatalf("neighbour = %d, centre = %d", near, centre)
	}
	if far != 0 {
		t.Fatalf("far pixel = %d, want 0", far)
	}
}

func TestGaussianKernelNormalised(t *testing.T) {
	k := gaussianKernel(3)
	if len(k) != 19 {
		t.Fatalf("kernel size = %d, want 19", len(k))
	}
	sum := 0.0
	for _, v := range k {
		sum += v
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("kernel sums to %v", sum)
	}
}

func TestValidateAndClamp(t *testing.T) {
	if err := Neutral().Validate(); err != nil {
		t.Fatalf("neutral invalid: %v", err)
	}
	bad := Settings{Brightness: 250, Contrast: 100, Saturation: 100, Hue: -200, Blur: 30}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
	c := bad.Clamp()
	if c.Brightness != 200 || c.Hue != -180 || c.Blur != 20 {
		t.Fatalf("Clamp() = %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("clamped settings invalid: %v", err)
	}
	if n := (Settings{Brightness: math.NaN(), Contrast: 100, Saturation: 100}).Clamp(); !n.IsNeutral() {
		t.Fatalf("NaN should clamp to neutral, got %+v", n)
	}
}

func TestPreset(t *testing.T) {
	s, err := Preset("Sepia", nil)
	if err != nil || s.Sepia != 100 {
		t.Fatalf("Preset(Sepia) = %+v, %v", s, err)
	}
	custom := map[string]Settings{"sepia": {Brightness: 100, Contrast: 100, Saturation: 100, Sepia: 30}}
	if s, _ := Preset("sepia", custom); s.Sepia != 30 {
		t.Fatalf("custom preset should win, got %+v", s)
	}
	if _, err := Preset("nope", nil); err == nil {
		t.Fatalf("expected error for unknown preset")
	}
}
