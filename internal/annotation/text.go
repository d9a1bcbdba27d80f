package annotation

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/example/pixeledit/internal/geom"
)

// LineHeightFactor is the spacing between wrapped lines as a multiple of
// the font size.
const LineHeightFactor = 1.2

type faceKey struct {
	mono, bold, italic bool
	size               float64
}

var (
	fontsOnce sync.Once
	fontsErr  error
	fonts     map[faceKey]*opentype.Font // size is zero in these keys
	faces     sync.Map                   // map[faceKey]font.Face
)

func loadFonts() {
	src := map[faceKey][]byte{
		{}:                                     goregular.TTF,
		{bold: true}:                           gobold.TTF,
		{italic: true}:                         goitalic.TTF,
		{bold: true, italic: true}:             gobolditalic.TTF,
		{mono: true}:                           gomono.TTF,
		{mono: true, bold: true}:               gomonobold.TTF,
		{mono: true, italic: true}:             gomonoitalic.TTF,
		{mono: true, bold: true, italic: true}: gomonobolditalic.TTF,
	}
	fonts = make(map[faceKey]*opentype.Font, len(src))
	for k, ttf := range src {
		f, err := opentype.Parse(ttf)
		if err != nil {
			fontsErr = fmt.Errorf("parse go font: %w", err)
			return
		}
		fonts[k] = f
	}
}

// FontData returns the TrueType bytes of the Go font variant selected by f.
func FontData(f Font) []byte {
	switch mono := isMono(f.Family); {
	case mono && f.Bold && f.Italic:
		return gomonobolditalic.TTF
	case mono && f.Bold:
		return gomonobold.TTF
	case mono && f.Italic:
		return gomonoitalic.TTF
	case mono:
		return gomono.TTF
	case f.Bold && f.Italic:
		return gobolditalic.TTF
	case f.Bold:
		return gobold.TTF
	case f.Italic:
		return goitalic.TTF
	}
	return goregular.TTF
}

func isMono(family string) bool {
	switch strings.ToLower(strings.TrimSpace(family)) {
	case "mono", "monospace", "gomono", "courier", "courier new":
		return true
	}
	return false
}

// Face returns a cached font face for f. Faces are shared, so callers must
// not use them from several goroutines at once.
func Face(f Font) (font.Face, error) {
	fontsOnce.Do(loadFonts)
	if fontsErr != nil {
		return nil, fontsErr
	}
	size := f.Size
	if size <= 0 {
		size = DefaultFont.Size
	}
	key := faceKey{mono: isMono(f.Family), bold: f.Bold, italic: f.Italic, size: size}
	if face, ok := faces.Load(key); ok {
		return face.(font.Face), nil
	}
	base := key
	base.size = 0
	face, err := opentype.NewFace(fonts[base], &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	actual, _ := faces.LoadOrStore(key, face)
	return actual.(font.Face), nil
}

// TextLine is one laid out line. X is the left edge of the ink and
// Baseline the y of its baseline.
type TextLine struct {
	Text     string
	X        float64
	Baseline float64
	Width    float64
}

// TextLayout is the result of LayoutText.
type TextLayout struct {
	Lines   []TextLine
	Ascent  float64
	Descent float64
	Bounds  geom.Rect
}

// LayoutText positions t with its first baseline at origin. Explicit
// newlines always break. With a wrap width, words are packed greedily and
// each line is aligned inside [origin.X, origin.X+WrapWidth]; without one
// the box is as wide as the widest line and alignment applies inside that.
func LayoutText(t Text, origin geom.Point) (TextLayout, error) {
	face, err := Face(t.Font)
	if err != nil {
		return TextLayout{}, err
	}
	size := t.Font.Size
	if size <= 0 {
		size = DefaultFont.Size
	}
	m := face.Metrics()
	l := TextLayout{
		Ascent:  float64(m.Ascent.Ceil()),
		Descent: float64(m.Descent.Ceil()),
	}
	measure := func(s string) float64 {
		return float64(font.MeasureString(face, s).Ceil())
	}

	var raw []string
	for _, para := range strings.Split(t.Content, "\n") {
		if t.WrapWidth > 0 {
			raw = append(raw, wrapWords(para, t.WrapWidth, measure)...)
		} else {
			raw = append(raw, para)
		}
	}

	boxW := t.WrapWidth
	widths := make([]float64, len(raw))
	for i, s := range raw {
		widths[i] = measure(s)
		if t.WrapWidth <= 0 {
			boxW = math.Max(boxW, widths[i])
		}
	}

	lineHeight := size * LineHeightFactor
	for i, s := range raw {
		x := origin.X
		switch t.Align {
		case AlignCenter:
			x += (boxW - widths[i]) / 2
		case AlignRight:
			x += boxW - widths[i]
		}
		l.Lines = append(l.Lines, TextLine{
			Text:     s,
			X:        x,
			Baseline: origin.Y + float64(i)*lineHeight,
			Width:    widths[i],
		})
	}

	top := origin.Y - l.Ascent
	bottom := origin.Y + float64(len(raw)-1)*lineHeight + l.Descent
	h := math.Max(bottom-top, t.BoxHeight)
	l.Bounds = geom.R(origin.X, top, boxW, h)
	return l, nil
}

// wrapWords splits s on spaces and packs words while the measured line
// fits. A single word wider than max gets a line of its own.
func wrapWords(s string, max float64, measure func(string) float64) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		candidate := line + " " + w
		if measure(candidate) > max {
			lines = append(lines, line)
			line = w
			continue
		}
		line = candidate
	}
	return append(lines, line)
}
