package appstate

import (
	"context"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/pixeledit/internal/clipboard"
	"github.com/example/pixeledit/internal/editor"
	"github.com/example/pixeledit/internal/theme"
)

// messageTimeout is how long a status message replaces the status line.
const messageTimeout = 3 * time.Second

// AppState hosts one editor in a window.
type AppState struct {
	Editor *editor.Editor
	Output string
	Export editor.ExportOptions
	Theme  *theme.Theme

	input    *editor.InputController
	updateCh chan struct{}

	message      string
	messageUntil time.Time

	onClose   func()
	closeOnce sync.Once
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithOutput sets the file written by Ctrl+S.
func WithOutput(out string) Option { return func(a *AppState) { a.Output = out } }

// WithExportOptions sets the encoding used by Ctrl+S and Ctrl+C.
func WithExportOptions(o editor.ExportOptions) Option { return func(a *AppState) { a.Export = o } }

// WithTheme sets the window colours.
func WithTheme(th *theme.Theme) Option { return func(a *AppState) { a.Theme = th } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates an AppState for ed.
func New(ed *editor.Editor, opts ...Option) *AppState {
	a := &AppState{
		Editor:   ed,
		updateCh: make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(a)
	}
	if a.Theme == nil {
		a.Theme = theme.Default()
	}
	a.input = editor.NewInputController(ed, editor.Viewport{Scale: 1})
	return a
}

// Input returns the controller receiving window events.
func (a *AppState) Input() *editor.InputController { return a.input }

// NotifyImageChanged requests a repaint when the editor was changed from
// outside the event loop.
func (a *AppState) NotifyImageChanged() {
	select {
	case a.updateCh <- struct{}{}:
	default:
	}
}

func (a *AppState) notifyClose() {
	a.closeOnce.Do(func() {
		if a.onClose != nil {
			a.onClose()
		}
	})
}

func (a *AppState) flash(format string, args ...any) {
	a.message = fmt.Sprintf(format, args...)
	a.messageUntil = time.Now().Add(messageTimeout)
	log.Print(a.message)
}

// Run executes the UI loop using shiny's driver.
func (a *AppState) Run() { driver.Main(a.Main) }

// Main runs the window event loop on s until the window closes.
func (a *AppState) Main(s screen.Screen) {
	imgW, imgH := a.Editor.Size()
	width := imgW + toolbarWidth
	height := max(imgH, toolbarBottom()) + statusHeight
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: "pixeledit"})
	if err != nil {
		log.Fatalf("new window: %v", err)
	}
	defer w.Release()
	defer a.notifyClose()

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-a.updateCh:
				w.Send(paint.Event{})
			case <-done:
				return
			}
		}
	}()

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	defer close(paintCh)
	go func() {
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			drawFrame(ctx, s, w, st)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			cancel()
		}
	}()

	l := newLayout(imgW, imgH, width, height)
	relayout := func() {
		iw, ih := a.Editor.Size()
		l = newLayout(iw, ih, width, height)
		a.input.SetViewport(l.viewport())
	}
	relayout()

	for {
		e := w.NextEvent()
		switch e := e.(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				paintMu.Lock()
				if paintCancel != nil {
					paintCancel()
				}
				paintMu.Unlock()
				return
			}
			if e.Crosses(lifecycle.StageFocused) == lifecycle.CrossOff {
				a.input.PointerLeave()
				w.Send(paint.Event{})
			}
		case size.Event:
			width = e.WidthPx
			height = e.HeightPx
			relayout()
			w.Send(paint.Event{})
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			relayout()
			st := a.paintState(l)
			select {
			case paintCh <- st:
			default:
				select {
				case <-paintCh:
				default:
				}
				paintCh <- st
			}
		case mouse.Event:
			if a.pointer(e, l) {
				w.Send(paint.Event{})
			}
		case key.Event:
			if a.key(e) {
				w.Send(paint.Event{})
			}
		case error:
			log.Printf("window: %v", e)
		}
	}
}

func (a *AppState) paintState(l layout) paintState {
	ed := a.Editor
	iw, ih := ed.Size()
	status := fmt.Sprintf("%s  %dx%d  zoom %.0f%%", ed.Tool(), iw, ih, l.zoom*100)
	if area, ok := ed.Crop().Area(); ok && ed.Tool() == editor.ToolCrop {
		area = area.Normalize()
		status += fmt.Sprintf("  crop %.0fx%.0f", area.W, area.H)
	}
	if !ed.Filters().IsNeutral() {
		status += "  filtered"
	}
	st := paintState{
		layout:       l,
		frame:        ed.Render(),
		theme:        a.Theme,
		tool:         ed.Tool(),
		style:        ed.Style(),
		status:       status,
		message:      a.message,
		messageUntil: a.messageUntil,
	}
	if r, ok := a.input.EditSurface(); ok {
		st.editing = true
		st.editRect = image.Rect(int(r.X), int(r.Y), int(r.X+r.W+0.5), int(r.Y+r.H+0.5))
	}
	return st
}

// pointer routes a mouse event to the tool bar or the canvas. It reports
// whether a repaint is needed.
func (a *AppState) pointer(e mouse.Event, l layout) bool {
	if e.Button == mouse.ButtonWheelUp || e.Button == mouse.ButtonWheelDown {
		return false
	}
	// A drag that started on the canvas keeps receiving events when it
	// leaves it.
	if a.input.State() != "idle" {
		a.input.Pointer(e)
		return true
	}
	kind, idx := l.hit(image.Pt(int(e.X), int(e.Y)))
	if e.Direction != mouse.DirPress || e.Button != mouse.ButtonLeft {
		if kind == hitCanvas {
			a.input.Pointer(e)
			return e.Direction != mouse.DirNone || a.Editor.Tool() != editor.ToolSelect
		}
		return false
	}
	switch kind {
	case hitTool:
		a.input.SetTool(toolButtons[idx].tool)
	case hitSwatch:
		st := a.Editor.Style()
		st.Color = palette[idx]
		a.Editor.SetStyle(st)
	case hitWidth:
		st := a.Editor.Style()
		st.StrokeWidth = widths[idx]
		a.Editor.SetStyle(st)
	case hitCanvas:
		a.input.Pointer(e)
	default:
		return false
	}
	return true
}

// key handles window shortcuts and passes everything else to the input
// controller. It reports whether a repaint is needed.
func (a *AppState) key(e key.Event) bool {
	if e.Direction == key.DirRelease {
		return false
	}
	ctrl := e.Modifiers&(key.ModControl|key.ModMeta) != 0
	if ctrl {
		switch e.Code {
		case key.CodeS:
			a.save()
			return true
		case key.CodeC:
			a.copy()
			return true
		case key.CodeB:
			if err := a.Editor.BakeTransform(); err != nil {
				a.flash("bake: %v", err)
			}
			return true
		}
	}
	if _, editing := a.input.Editing(); !editing && !ctrl && a.viewKey(e.Rune) {
		return true
	}
	if err := a.input.Key(e); err != nil {
		a.flash("%v", err)
	}
	return true
}

// viewKey applies the rotate and flip shortcuts.
func (a *AppState) viewKey(r rune) bool {
	ed := a.Editor
	var err error
	switch r {
	case '[':
		err = ed.Rotate(-90)
	case ']':
		err = ed.Rotate(90)
	case 'h', 'H':
		ed.FlipHorizontal()
	case 'v', 'V':
		ed.FlipVertical()
	default:
		return false
	}
	if err != nil {
		a.flash("%v", err)
	}
	return true
}

func (a *AppState) save() {
	if a.Output == "" {
		a.flash("no output file; start with -output")
		return
	}
	if err := a.Editor.ExportFile(a.Output, a.Export); err != nil {
		a.flash("save: %v", err)
		return
	}
	a.flash("saved %s", a.Output)
}

func (a *AppState) copy() {
	img, err := a.Editor.ExportImage(a.Export)
	if err != nil {
		a.flash("copy: %v", err)
		return
	}
	if err := clipboard.WriteImage(img); err != nil {
		a.flash("copy: %v", err)
		return
	}
	a.flash("image copied to clipboard")
}
