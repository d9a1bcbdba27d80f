package main

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/pixeledit/internal/config"
	"github.com/example/pixeledit/internal/notify"
)

const quietConfig = `[notify]
crop = false
export = false
errors = false

[filters.warm]
brightness = 110
sepia = 30
`

type harness struct {
	r      *root
	stdout bytes.Buffer
	stderr bytes.Buffer
	config string
	dir    string
}

func newHarness(t *testing.T, rc string) *harness {
	t.Helper()
	h := &harness{dir: t.TempDir()}
	h.config = filepath.Join(h.dir, "config.rc")
	if err := os.WriteFile(h.config, []byte(rc), 0o644); err != nil {
		t.Fatal(err)
	}
	h.r = newRoot()
	h.r.stdout = &h.stdout
	h.r.stderr = &h.stderr
	return h
}

func (h *harness) run(args ...string) error {
	return h.r.Run(append([]string{"-config", h.config}, args...))
}

func writePNG(t *testing.T, path string, w, hgt int, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, hgt))
	for y := 0; y < hgt; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func readPNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	return img
}

func TestUsageErrors(t *testing.T) {
	for name, args := range map[string][]string{
		"no command":      nil,
		"unknown command": {"explode"},
		"help":            {"help"},
		"filter no file":  {"filter", "-output", "x.png"},
		"apply no script": {"apply", "-file", "x.png"},
		"edit no file":    {"edit"},
	} {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, quietConfig)
			err := h.run(args...)
			var uerr *UsageError
			if !errors.As(err, &uerr) {
				t.Fatalf("err = %v, want *UsageError", err)
			}
			if !strings.Contains(uerr.Error(), "Usage: pixeledit") {
				t.Errorf("help text = %q", uerr.Error())
			}
		})
	}
}

func TestBadFlagMentionsUsage(t *testing.T) {
	h := newHarness(t, quietConfig)
	err := h.run("filter", "-brightness", "lots")
	if err == nil || !strings.Contains(err.Error(), "Usage: pixeledit filter") {
		t.Errorf("err = %v", err)
	}
}

func TestVersion(t *testing.T) {
	h := newHarness(t, quietConfig)
	if err := h.run("version"); err != nil {
		t.Fatal(err)
	}
	if got := h.stdout.String(); got != "pixeledit version dev\n" {
		t.Errorf("stdout = %q", got)
	}
}

func TestConfigPrintAndSave(t *testing.T) {
	h := newHarness(t, "save_dir = /srv/out\n"+quietConfig)
	if err := h.run("config", "print"); err != nil {
		t.Fatal(err)
	}
	out := h.stdout.String()
	for _, want := range []string{"save_dir = /srv/out", "[filters.warm]", "sepia = 30"} {
		if !strings.Contains(out, want) {
			t.Errorf("config print missing %q:\n%s", want, out)
		}
	}

	h2 := newHarness(t, quietConfig)
	if err := h2.run("config", "save"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(h2.config)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Parse(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Filters["warm"].Sepia != 30 {
		t.Errorf("saved config lost the preset: %s", data)
	}
}

func TestMissingConfigOverrideFails(t *testing.T) {
	r := newRoot()
	r.stderr = &bytes.Buffer{}
	err := r.Run([]string{"-config", filepath.Join(t.TempDir(), "nope.rc"), "version"})
	if err == nil {
		t.Fatal("expected error for a missing -config file")
	}
}

func TestNotifyFlagsOverrideConfig(t *testing.T) {
	h := newHarness(t, "[notify]\ncrop = true\nexport = true\nerrors = false\n")
	if err := h.run("-notify-crop=false", "version"); err != nil {
		t.Fatal(err)
	}
	if h.r.notifier.Enabled(notify.EventCrop) {
		t.Error("flag should disable crop notifications")
	}
	if !h.r.notifier.Enabled(notify.EventExport) {
		t.Error("config should enable export notifications")
	}
}

func TestFilterCommand(t *testing.T) {
	h := newHarness(t, quietConfig)
	in := filepath.Join(h.dir, "in.png")
	out := filepath.Join(h.dir, "out.png")
	writePNG(t, in, 4, 3, color.RGBA{100, 100, 100, 255})

	if err := h.run("filter", "-file", in, "-output", out, "-brightness", "150"); err != nil {
		t.Fatal(err)
	}
	img := readPNG(t, out)
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
		t.Errorf("bounds = %v", b)
	}
	r, _, _, _ := img.At(1, 1).RGBA()
	if r>>8 <= 100 {
		t.Errorf("red = %d, want brighter than 100", r>>8)
	}
	if !strings.Contains(h.stderr.String(), "wrote "+out) {
		t.Errorf("stderr = %q", h.stderr.String())
	}
}

func TestFilterPresetWithOverride(t *testing.T) {
	h := newHarness(t, quietConfig)
	if err := h.r.fs.Parse([]string{"-config", h.config}); err != nil {
		t.Fatal(err)
	}
	if err := h.r.setup(); err != nil {
		t.Fatal(err)
	}
	c, err := parseFilterCmd([]string{"-file", "a.png", "-output", "b.png", "-preset", "warm", "-sepia", "50"}, h.r)
	if err != nil {
		t.Fatal(err)
	}
	s, err := c.settings()
	if err != nil {
		t.Fatal(err)
	}
	if s.Brightness != 110 || s.Sepia != 50 || s.Contrast != 100 {
		t.Errorf("settings = %+v", s)
	}

	c, err = parseFilterCmd([]string{"-file", "a.png", "-output", "b.png", "-preset", "missing"}, h.r)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.settings(); err == nil {
		t.Error("unknown preset accepted")
	}
}

func TestApplyCommand(t *testing.T) {
	h := newHarness(t, quietConfig)
	writePNG(t, filepath.Join(h.dir, "photo.png"), 200, 150, color.RGBA{0, 0, 200, 255})
	scriptPath := filepath.Join(h.dir, "edits.yaml")
	err := os.WriteFile(scriptPath, []byte(`
version: 1
input: photo.png
output: result.png
steps:
  - op: filters
    preset: warm
  - op: crop
    x: 20
    y: 10
    w: 120
    h: 80
  - op: rect
    x: 5
    y: 5
    w: 40
    h: 30
    color: yellow
`), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if err := h.run("apply", "-script", scriptPath); err != nil {
		t.Fatal(err)
	}
	img := readPNG(t, filepath.Join(h.dir, "result.png"))
	if b := img.Bounds(); b.Dx() != 120 || b.Dy() != 80 {
		t.Errorf("bounds = %v, want 120x80", b)
	}
}

func TestApplyReportsFailingStep(t *testing.T) {
	h := newHarness(t, quietConfig)
	in := filepath.Join(h.dir, "in.png")
	writePNG(t, in, 8, 8, color.RGBA{255, 255, 255, 255})
	scriptPath := filepath.Join(h.dir, "bad.yaml")
	if err := os.WriteFile(scriptPath, []byte("steps:\n  - op: rotate\n    degrees: 90\n  - op: redo\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := h.run("apply", "-script", scriptPath, "-file", in)
	if err == nil || !strings.Contains(err.Error(), "step 2 (redo") {
		t.Errorf("err = %v", err)
	}
}

func TestApplyWithoutInput(t *testing.T) {
	h := newHarness(t, quietConfig)
	scriptPath := filepath.Join(h.dir, "s.yaml")
	if err := os.WriteFile(scriptPath, []byte("steps: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := h.run("apply", "-script", scriptPath); err == nil || !strings.Contains(err.Error(), "no input image") {
		t.Errorf("err = %v", err)
	}
}

func TestParseEdit(t *testing.T) {
	h := newHarness(t, quietConfig)
	c, err := parseEditCmd([]string{"photo.jpg"}, h.r)
	if err != nil {
		t.Fatal(err)
	}
	if c.file != "photo.jpg" {
		t.Errorf("file = %q", c.file)
	}
	if _, err := parseEditCmd([]string{"-from-clipboard"}, h.r); err == nil || !strings.Contains(err.Error(), "output file is required") {
		t.Errorf("err = %v", err)
	}
	if _, err := parseEditCmd([]string{"-file", "a.png", "-from-clipboard", "-output", "b.png"}, h.r); err == nil {
		t.Error("-file with -from-clipboard accepted")
	}
	if got := defaultOutput("/tmp/shots/photo.jpg"); got != "photo-edited.jpg" {
		t.Errorf("defaultOutput = %q", got)
	}
}

func TestOutputPathUsesSaveDir(t *testing.T) {
	r := &root{config: config.New()}
	r.config.SaveDir = "/srv/out"
	if got := r.outputPath("a.png"); got != filepath.Join("/srv/out", "a.png") {
		t.Errorf("outputPath = %q", got)
	}
	if got := r.outputPath("sub/a.png"); got != "sub/a.png" {
		t.Errorf("outputPath kept relative dir? got %q", got)
	}
}
