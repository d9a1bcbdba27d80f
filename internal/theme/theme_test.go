package theme

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseKeepsDefaults(t *testing.T) {
	th, err := Parse(strings.NewReader("Name: Mine\ncropstroke: #FF000080\n# comment\nUnknown: #000000\n"))
	if err != nil {
		t.Fatal(err)
	}
	if th.Name != "Mine" {
		t.Fatalf("Name = %q", th.Name)
	}
	if th.CropStroke != (color.RGBA{255, 0, 0, 128}) {
		t.Fatalf("CropStroke = %v", th.CropStroke)
	}
	if th.SelectionStroke != Default().SelectionStroke {
		t.Fatalf("missing keys should keep defaults")
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
		ok   bool
	}{
		{"#FFD700", color.RGBA{255, 215, 0, 255}, true},
		{"#0f0", color.RGBA{0, 255, 0, 255}, true},
		{"#01020304", color.RGBA{1, 2, 3, 4}, true},
		{"gold", color.RGBA{255, 215, 0, 255}, true},
		{"#12345", color.RGBA{}, false},
		{"notacolor", color.RGBA{}, false},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseColor(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatRoundTrip(t *testing.T) {
	orig := Default()
	orig.Name = "Trip"
	orig.CropHandleFill = color.RGBA{1, 2, 3, 4}
	var buf bytes.Buffer
	if err := Format(&buf, orig, ": "); err != nil {
		t.Fatal(err)
	}
	got, err := Parse(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if *got != *orig {
		t.Fatalf("round trip = %+v, want %+v", got, orig)
	}
}

func TestLoaderOrder(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "mine.theme"), []byte("Name: Mine\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := NewLoader()
	l.ConfigDir = dir
	l.SystemDir = ""
	l.Extra = map[string]*Theme{"inline": {Name: "Inline"}}

	for name, want := range map[string]string{
		"":                               "Default",
		"inline":                         "Inline",
		"high_contrast":                  "High Contrast",
		"mine":                           "Mine",
		filepath.Join(dir, "mine.theme"): "Mine",
	} {
		th, err := l.Load(name)
		if err != nil {
			t.Fatalf("Load(%q): %v", name, err)
		}
		if th.Name != want {
			t.Errorf("Load(%q).Name = %q, want %q", name, th.Name, want)
		}
	}
	if _, err := l.Load("missing"); err == nil {
		t.Fatalf("expected error for a missing theme")
	}
}
