// Package render composes the displayed frame from the working buffer: the
// view transform, the colour filters, the crop overlay, annotations and the
// selection decoration, in that order.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/gogpu/gg"

	"github.com/example/pixeledit/internal/annotation"
	"github.com/example/pixeledit/internal/filter"
	"github.com/example/pixeledit/internal/geom"
	"github.com/example/pixeledit/internal/logging"
	"github.com/example/pixeledit/internal/theme"
)

// ErrEmptyScene is returned when there is no image or it has no pixels.
var ErrEmptyScene = errors.New("nothing to render")

// Scene is everything needed to draw one frame.
type Scene struct {
	Image       *image.RGBA
	Transform   Transform
	Filters     filter.Settings
	Annotations []annotation.Annotation
	// Crop, when set, is drawn as the crop overlay.
	Crop *geom.Rect
	// Selected is the id of the annotation to decorate.
	Selected string
}

// Pipeline renders scenes and remembers the last good frame.
type Pipeline struct {
	Theme    *theme.Theme
	Resample Resample

	last *image.RGBA
}

// New returns a pipeline using th, or the default theme when th is nil.
func New(th *theme.Theme) *Pipeline {
	if th == nil {
		th = theme.Default()
	}
	return &Pipeline{Theme: th}
}

// Render draws s. Failures, including panics inside drawing code, are
// logged and the previous frame is returned instead, which is nil before
// the first success.
func (p *Pipeline) Render(s Scene) *image.RGBA {
	frame, err := p.safeCompose(s, true)
	if err != nil {
		logging.Logger().Warn("render failed, keeping previous frame", "err", err)
		return p.last
	}
	p.last = frame
	return frame
}

// Last returns the last successfully rendered frame.
func (p *Pipeline) Last() *image.RGBA { return p.last }

// Flatten draws s without the crop overlay or selection decoration, for
// export. Errors are returned rather than swallowed.
func (p *Pipeline) Flatten(s Scene) (*image.RGBA, error) {
	return p.safeCompose(s, false)
}

func (p *Pipeline) safeCompose(s Scene, decorate bool) (frame *image.RGBA, err error) {
	defer func() {
		if r := recover(); r != nil {
			frame, err = nil, fmt.Errorf("render panic: %v", r)
		}
	}()
	return p.compose(s, decorate)
}

func (p *Pipeline) compose(s Scene, decorate bool) (*image.RGBA, error) {
	if s.Image == nil || s.Image.Bounds().Empty() {
		return nil, ErrEmptyScene
	}
	base, err := ApplyTransform(s.Image, s.Transform, p.Resample)
	if err != nil {
		return nil, err
	}
	frame := filter.Apply(base, s.Filters)

	var selected *annotation.Annotation
	visible := make([]annotation.Annotation, 0, len(s.Annotations))
	for i := range s.Annotations {
		a := s.Annotations[i]
		if !a.Visible {
			continue
		}
		visible = append(visible, a)
		if decorate && s.Selected != "" && a.ID == s.Selected {
			selected = &s.Annotations[i]
		}
	}
	showCrop := decorate && s.Crop != nil
	if !showCrop && selected == nil && len(visible) == 0 {
		return frame, nil
	}

	th := p.Theme
	if th == nil {
		th = theme.Default()
	}
	b := frame.Bounds()
	dc := gg.NewContext(b.Dx(), b.Dy())
	defer dc.Close()

	var errs []error
	if showCrop {
		errs = append(errs, drawCropOverlay(dc, *s.Crop, th))
	}
	for _, a := range visible {
		errs = append(errs, drawAnnotation(dc, a))
	}
	if selected != nil {
		errs = append(errs, drawSelection(dc, *selected, th))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := dc.FlushGPU(); err != nil {
		return nil, err
	}
	draw.Draw(frame, b, dc.Image(), image.Point{}, draw.Over)
	return frame, nil
}
