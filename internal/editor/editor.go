// Package editor holds the canvas state of one open image and the
// operations that change it. Every operation that touches history or the
// annotation list goes through an Editor method, and the InputController
// turns pointer and keyboard events into those calls.
package editor

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/example/pixeledit/internal/annotation"
	"github.com/example/pixeledit/internal/crop"
	"github.com/example/pixeledit/internal/filter"
	"github.com/example/pixeledit/internal/history"
	"github.com/example/pixeledit/internal/logging"
	"github.com/example/pixeledit/internal/render"
	"github.com/example/pixeledit/internal/theme"
)

var (
	// ErrInvalidInput is returned when an image cannot be decoded or has
	// no pixels.
	ErrInvalidInput = errors.New("invalid input image")
	// ErrCropTooSmall is returned by ApplyCrop when either side of the
	// area is under crop.MinSize.
	ErrCropTooSmall = crop.ErrTooSmall
	// ErrNothingToUndo is returned by Undo at the oldest snapshot.
	ErrNothingToUndo = errors.New("nothing to undo")
	// ErrNothingToRedo is returned by Redo at the newest snapshot.
	ErrNothingToRedo = errors.New("nothing to redo")
	// ErrUnknownAnnotation is returned for ids not in the document.
	ErrUnknownAnnotation = annotation.ErrUnknownAnnotation
	// ErrDuplicateID is returned when an added annotation reuses an id.
	ErrDuplicateID = annotation.ErrDuplicateID
)

// Sink receives user-facing outcomes. Each failure is reported once.
type Sink interface {
	Cropped(w, h int)
	Exported(dest string)
	Failed(op string, err error)
}

type nopSink struct{}

func (nopSink) Cropped(int, int)     {}
func (nopSink) Exported(string)      {}
func (nopSink) Failed(string, error) {}

// Editor is the state of one open image: the working buffer, the view
// transform and filters, annotations, the crop tool and history.
type Editor struct {
	img       *image.RGBA
	transform render.Transform
	filters   filter.Settings
	anns      annotation.Model
	crop      *crop.Controller
	history   *history.Stack
	pipeline  *render.Pipeline
	sink      Sink

	tool     Tool
	style    annotation.Style
	font     annotation.Font
	selected string
	// pending is the shape being drawn, shown but not yet in the model.
	pending *annotation.Annotation
}

type settings struct {
	sink     Sink
	theme    *theme.Theme
	limit    int
	resample render.Resample
	style    annotation.Style
	font     annotation.Font
}

// Option configures an Editor.
type Option func(*settings)

// WithSink sets where crop, export and failure notices go.
func WithSink(s Sink) Option { return func(o *settings) { o.sink = s } }

// WithTheme sets the overlay colours.
func WithTheme(th *theme.Theme) Option { return func(o *settings) { o.theme = th } }

// WithHistoryLimit caps the number of snapshots kept.
func WithHistoryLimit(n int) Option { return func(o *settings) { o.limit = n } }

// WithResample picks the interpolator used for the view transform.
func WithResample(r render.Resample) Option { return func(o *settings) { o.resample = r } }

// WithStyle sets the colour and stroke width of new annotations.
func WithStyle(s annotation.Style) Option { return func(o *settings) { o.style = s } }

// WithFont sets the font of new text annotations.
func WithFont(f annotation.Font) Option { return func(o *settings) { o.font = f } }

// New starts editing a copy of img. The initial state is the first history
// entry.
func New(img image.Image, opts ...Option) (*Editor, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidInput)
	}
	o := settings{
		sink:  nopSink{},
		limit: history.DefaultLimit,
		style: annotation.DefaultStyle,
		font:  annotation.DefaultFont,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.sink == nil {
		o.sink = nopSink{}
	}

	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	p := render.New(o.theme)
	p.Resample = o.resample
	e := &Editor{
		img:       rgba,
		transform: render.IdentityTransform(),
		filters:   filter.Neutral(),
		crop:      crop.New(b.Dx(), b.Dy()),
		history:   history.New(o.limit),
		pipeline:  p,
		sink:      o.sink,
		tool:      ToolSelect,
		style:     o.style,
		font:      o.font,
	}
	e.commit("open")
	return e, nil
}

// Load decodes an image from r and starts editing it.
func Load(r io.Reader, opts ...Option) (*Editor, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	logging.Logger().Debug("decoded image", "format", format, "bounds", img.Bounds())
	return New(img, opts...)
}

// Open decodes the image file at path.
func Open(path string, opts ...Option) (*Editor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	e, err := Load(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return e, nil
}

// Image returns the working buffer. It must not be modified.
func (e *Editor) Image() *image.RGBA { return e.img }

// Size returns the working buffer dimensions.
func (e *Editor) Size() (w, h int) {
	b := e.img.Bounds()
	return b.Dx(), b.Dy()
}

// Transform returns the view transform.
func (e *Editor) Transform() render.Transform { return e.transform }

// Filters returns the filter settings.
func (e *Editor) Filters() filter.Settings { return e.filters }

// Annotations returns copies of the annotations in paint order.
func (e *Editor) Annotations() []annotation.Annotation { return e.anns.All() }

// Annotation returns a copy of the annotation with id.
func (e *Editor) Annotation(id string) (annotation.Annotation, bool) { return e.anns.Get(id) }

// Selected returns the id of the selected annotation, or "".
func (e *Editor) Selected() string { return e.selected }

// Select makes id the selected annotation. An empty id clears the
// selection.
func (e *Editor) Select(id string) error {
	if id != "" {
		if _, ok := e.anns.Get(id); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownAnnotation, id)
		}
	}
	e.selected = id
	return nil
}

// Style returns the style given to new annotations.
func (e *Editor) Style() annotation.Style { return e.style }

// SetStyle changes the style given to new annotations.
func (e *Editor) SetStyle(s annotation.Style) { e.style = s }

// Font returns the font given to new text annotations.
func (e *Editor) Font() annotation.Font { return e.font }

// SetFont changes the font given to new text annotations.
func (e *Editor) SetFont(f annotation.Font) { e.font = f }

// Crop returns the crop tool state.
func (e *Editor) Crop() *crop.Controller { return e.crop }

// CanUndo reports whether Undo would succeed.
func (e *Editor) CanUndo() bool { return e.history.CanUndo() }

// CanRedo reports whether Redo would succeed.
func (e *Editor) CanRedo() bool { return e.history.CanRedo() }

// HistoryLen returns the number of stored snapshots.
func (e *Editor) HistoryLen() int { return e.history.Len() }

// Scene describes what Render would draw.
func (e *Editor) Scene() render.Scene {
	anns := e.anns.All()
	if e.pending != nil {
		anns = append(anns, e.pending.Clone())
	}
	s := render.Scene{
		Image:       e.img,
		Transform:   e.transform,
		Filters:     e.filters,
		Annotations: anns,
		Selected:    e.selected,
	}
	if e.tool == ToolCrop {
		if area, ok := e.crop.Area(); ok {
			area = area.Normalize()
			s.Crop = &area
		}
	}
	return s
}

// Render draws the display frame. On failure the previous frame is
// returned.
func (e *Editor) Render() *image.RGBA {
	return e.pipeline.Render(e.Scene())
}

// Flatten draws the image as exported: transform, filters and annotations
// without any tool decoration.
func (e *Editor) Flatten() (*image.RGBA, error) {
	return e.pipeline.Flatten(e.Scene())
}

// commit records the current pixels and annotations in history.
func (e *Editor) commit(op string) {
	if !e.history.Push(e.img, e.anns.All()) {
		logging.Logger().Warn("history snapshot skipped", "op", op)
		return
	}
	logging.Logger().Debug("committed", "op", op, "history", e.history.Len())
}

// report sends err to the sink and returns it.
func (e *Editor) report(op string, err error) error {
	logging.Logger().Warn(op+" failed", "err", err)
	e.sink.Failed(op, err)
	return err
}
