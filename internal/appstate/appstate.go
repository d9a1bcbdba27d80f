// Package appstate is the desktop host: a shiny window that shows the
// rendered canvas, a tool bar and a status line, and forwards pointer and
// keyboard input to an editor.InputController.
package appstate

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"sync"
	"time"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"golang.org/x/exp/shiny/screen"

	"github.com/example/pixeledit/internal/annotation"
	"github.com/example/pixeledit/internal/editor"
	"github.com/example/pixeledit/internal/geom"
	"github.com/example/pixeledit/internal/theme"
)

const (
	statusHeight = 24
	buttonHeight = 24
	swatchSize   = 16
	widthRowH    = 16
	checkerSize  = 8
)

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

type toolButton struct {
	tool  editor.Tool
	label string
}

var toolButtons = []toolButton{
	{editor.ToolSelect, "M:Select"},
	{editor.ToolCrop, "R:Crop"},
	{editor.ToolText, "T:Text"},
	{editor.ToolRect, "X:Rect"},
	{editor.ToolCircle, "O:Circle"},
	{editor.ToolLine, "L:Line"},
	{editor.ToolArrow, "A:Arrow"},
	{editor.ToolFreehand, "B:Draw"},
}

var palette = []color.RGBA{
	{0, 0, 0, 255},
	{255, 255, 255, 255},
	{255, 0, 0, 255},
	{0, 255, 0, 255},
	{0, 0, 255, 255},
	{255, 255, 0, 255},
	{0, 255, 255, 255},
	{255, 0, 255, 255},
	{255, 165, 0, 255},
	{128, 128, 128, 255},
}

var widths = []float64{1, 2, 3, 5, 8}

// toolbarWidth fits the longest tool label.
var toolbarWidth = func() int {
	d := &font.Drawer{Face: basicfont.Face7x13}
	w := 64
	for _, b := range toolButtons {
		w = max(w, d.MeasureString(b.label).Ceil()+8)
	}
	return w
}()

// layout places the tool bar, canvas and status line for one window size.
type layout struct {
	width, height int
	zoom          float64
	canvas        image.Rectangle
	tools         []image.Rectangle
	swatches      []image.Rectangle
	widths        []image.Rectangle
	status        image.Rectangle
}

// fitZoom picks the largest scale at which an imgW×imgH frame fits beside
// the tool bar and above the status line.
func fitZoom(imgW, imgH, winW, winH int) float64 {
	availW := winW - toolbarWidth
	availH := winH - statusHeight
	if imgW <= 0 || imgH <= 0 || availW <= 0 || availH <= 0 {
		return 1
	}
	return min(float64(availW)/float64(imgW), float64(availH)/float64(imgH))
}

// newLayout anchors the canvas at the top-left corner beside the tool bar so
// its position stays put as the image changes size.
func newLayout(imgW, imgH, winW, winH int) layout {
	l := layout{width: winW, height: winH, zoom: fitZoom(imgW, imgH, winW, winH)}
	w := int(float64(imgW) * l.zoom)
	h := int(float64(imgH) * l.zoom)
	l.canvas = image.Rect(toolbarWidth, 0, toolbarWidth+w, h)
	l.status = image.Rect(0, winH-statusHeight, winW, winH)

	y := 0
	for range toolButtons {
		l.tools = append(l.tools, image.Rect(0, y, toolbarWidth, y+buttonHeight))
		y += buttonHeight
	}
	y += 4
	x := 4
	for range palette {
		if x+swatchSize > toolbarWidth {
			x = 4
			y += swatchSize + 2
		}
		l.swatches = append(l.swatches, image.Rect(x, y, x+swatchSize, y+swatchSize))
		x += swatchSize + 2
	}
	y += swatchSize + 6
	for range widths {
		l.widths = append(l.widths, image.Rect(0, y, toolbarWidth, y+widthRowH))
		y += widthRowH
	}
	return l
}

// toolbarBottom is the height the tool bar needs.
func toolbarBottom() int {
	l := newLayout(1, 1, toolbarWidth+1, statusHeight+1)
	return l.widths[len(l.widths)-1].Max.Y
}

// viewport maps window pixels to canvas pixels.
func (l layout) viewport() editor.Viewport {
	return editor.Viewport{
		Origin: geom.Pt(float64(l.canvas.Min.X), float64(l.canvas.Min.Y)),
		Scale:  1 / l.zoom,
	}
}

type hitKind int

const (
	hitNone hitKind = iota
	hitTool
	hitSwatch
	hitWidth
	hitCanvas
	hitStatus
)

// hit reports which control is under p.
func (l layout) hit(p image.Point) (hitKind, int) {
	if p.In(l.status) {
		return hitStatus, 0
	}
	if p.X < toolbarWidth {
		for i, r := range l.tools {
			if p.In(r) {
				return hitTool, i
			}
		}
		for i, r := range l.swatches {
			if p.In(r) {
				return hitSwatch, i
			}
		}
		for i, r := range l.widths {
			if p.In(r) {
				return hitWidth, i
			}
		}
		return hitNone, 0
	}
	return hitCanvas, 0
}

// drawCheckerboard fills rect of dst with a checkerboard pattern of the given
// colors. size controls the checker square size.
func drawCheckerboard(dst *image.RGBA, rect image.Rectangle, size int, light, dark color.RGBA) {
	rect = rect.Intersect(dst.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			c := dark
			if ((x-rect.Min.X)/size+(y-rect.Min.Y)/size)%2 == 0 {
				c = light
			}
			dst.SetRGBA(x, y, c)
		}
	}
}

var (
	checkerMu    sync.Mutex
	checkerCache *image.RGBA
	checkerTheme theme.Theme
)

// drawBacking paints the window background and a checkerboard under the
// canvas so transparent pixels are visible. The checkerboard is cached per
// size and theme.
func drawBacking(dst *image.RGBA, canvas image.Rectangle, th *theme.Theme) {
	draw.Draw(dst, dst.Bounds(), &image.Uniform{th.Background}, image.Point{}, draw.Src)
	checkerMu.Lock()
	defer checkerMu.Unlock()
	if checkerCache == nil || checkerCache.Bounds().Size() != canvas.Size() || checkerTheme != *th {
		checkerCache = image.NewRGBA(image.Rectangle{Max: canvas.Size()})
		drawCheckerboard(checkerCache, checkerCache.Bounds(), checkerSize, th.CheckerLight, th.CheckerDark)
		checkerTheme = *th
	}
	draw.Draw(dst, canvas, checkerCache, image.Point{}, draw.Src)
}

func strokeRect(dst *image.RGBA, r image.Rectangle, c color.Color, thick int) {
	u := &image.Uniform{c}
	for _, edge := range []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thick),
		image.Rect(r.Min.X, r.Max.Y-thick, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+thick, r.Max.Y),
		image.Rect(r.Max.X-thick, r.Min.Y, r.Max.X, r.Max.Y),
	} {
		draw.Draw(dst, edge.Intersect(dst.Bounds()), u, image.Point{}, draw.Over)
	}
}

func drawLabel(dst *image.RGBA, x, y int, s string, c color.Color) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: basicfont.Face7x13, Dot: fixed.P(x, y)}
	d.DrawString(s)
}

func drawToolbar(dst *image.RGBA, l layout, th *theme.Theme, st paintState) {
	shade := func(c color.RGBA, d int) color.RGBA {
		up := func(v uint8) uint8 { return uint8(min(int(v)+d, 255)) }
		return color.RGBA{up(c.R), up(c.G), up(c.B), 255}
	}
	for i, b := range toolButtons {
		r := l.tools[i]
		bg := shade(th.Background, 16)
		if b.tool == st.tool {
			bg = shade(th.Background, 48)
		}
		draw.Draw(dst, r, &image.Uniform{bg}, image.Point{}, draw.Src)
		drawLabel(dst, r.Min.X+4, r.Min.Y+16, b.label, th.Foreground)
	}
	for i, c := range palette {
		r := l.swatches[i]
		draw.Draw(dst, r, &image.Uniform{c}, image.Point{}, draw.Src)
		if c == st.style.Color {
			strokeRect(dst, r.Inset(-2), th.Foreground, 1)
		}
	}
	for i, w := range widths {
		r := l.widths[i]
		if w == st.style.StrokeWidth {
			draw.Draw(dst, r, &image.Uniform{shade(th.Background, 48)}, image.Point{}, draw.Src)
		}
		drawLabel(dst, r.Min.X+4, r.Min.Y+12, fmt.Sprintf("%g", w), th.Foreground)
		y := r.Min.Y + r.Dy()/2
		t := max(int(w), 1)
		line := image.Rect(r.Min.X+28, y-t/2, r.Max.X-4, y-t/2+t)
		draw.Draw(dst, line, &image.Uniform{st.style.Color}, image.Point{}, draw.Over)
	}
}

type paintState struct {
	layout       layout
	frame        *image.RGBA
	theme        *theme.Theme
	tool         editor.Tool
	style        annotation.Style
	status       string
	message      string
	messageUntil time.Time
	editRect     image.Rectangle
	editing      bool
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, st paintState) {
	l := st.layout
	b, err := s.NewBuffer(image.Point{l.width, l.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()
	dst := b.RGBA()

	drawBacking(dst, l.canvas, st.theme)
	if ctx.Err() != nil {
		return
	}

	if st.frame != nil {
		scaler := xdraw.Scaler(xdraw.ApproxBiLinear)
		if l.zoom >= 1 {
			scaler = xdraw.NearestNeighbor
		}
		scaler.Scale(dst, l.canvas, st.frame, st.frame.Bounds(), draw.Over, nil)
	}
	if ctx.Err() != nil {
		return
	}

	if st.editing {
		strokeRect(dst, st.editRect.Inset(-3), st.theme.SelectionStroke, 1)
	}

	drawToolbar(dst, l, st.theme, st)

	draw.Draw(dst, l.status, &image.Uniform{st.theme.Background}, image.Point{}, draw.Src)
	line := st.status
	if st.message != "" && time.Now().Before(st.messageUntil) {
		line = st.message
	}
	drawLabel(dst, l.status.Min.X+4, l.status.Min.Y+16, line, st.theme.Foreground)

	if ctx.Err() != nil {
		return
	}
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}
