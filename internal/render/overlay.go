package render

import (
	"errors"
	"image/color"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"github.com/example/pixeledit/internal/annotation"
	"github.com/example/pixeledit/internal/crop"
	"github.com/example/pixeledit/internal/geom"
	"github.com/example/pixeledit/internal/theme"
)

// Overlay stroke geometry.
const (
	cropStrokeWidth      = 2
	cropDash             = 5
	selectionStrokeWidth = 1.5
	selectionInset       = 4
	moveHandleRadius     = 6
	resizeHandleSize     = annotation.ResizeTolerance
)

var fontSources sync.Map // map[annotation.Font (size zero)]*text.FontSource

func fontSource(f annotation.Font) (*text.FontSource, error) {
	f.Size = 0
	if src, ok := fontSources.Load(f); ok {
		return src.(*text.FontSource), nil
	}
	src, err := text.NewFontSource(annotation.FontData(f))
	if err != nil {
		return nil, err
	}
	actual, _ := fontSources.LoadOrStore(f, src)
	return actual.(*text.FontSource), nil
}

func setStroke(dc *gg.Context, c color.Color, width float64, dash ...float64) {
	dc.SetColor(c)
	s := gg.DefaultStroke().WithWidth(width).WithCap(gg.LineCapRound).WithJoin(gg.LineJoinRound)
	if len(dash) > 0 {
		s = s.WithDashPattern(dash...)
	}
	dc.SetStroke(s)
}

// drawAnnotation strokes or fills one annotation onto dc.
func drawAnnotation(dc *gg.Context, a annotation.Annotation) error {
	o := a.Origin
	width := a.Style.StrokeWidth
	if width <= 0 {
		width = 1
	}
	setStroke(dc, a.Style.Color, width)

	switch s := a.Shape.(type) {
	case annotation.Text:
		return drawText(dc, a, s)
	case annotation.Rect:
		if s.W == 0 || s.H == 0 {
			return nil
		}
		dc.DrawRectangle(o.X, o.Y, s.W, s.H)
		return dc.Stroke()
	case annotation.Circle:
		if s.D == 0 {
			return nil
		}
		r := s.D / 2
		dc.DrawCircle(o.X+r, o.Y+r, r)
		return dc.Stroke()
	case annotation.Line:
		if s.W == 0 && s.H == 0 {
			return nil
		}
		dc.DrawLine(o.X, o.Y, o.X+s.W, o.Y+s.H)
		return dc.Stroke()
	case annotation.Arrow:
		if s.W == 0 && s.H == 0 {
			return nil
		}
		tip := geom.Pt(o.X+s.W, o.Y+s.H)
		dc.DrawLine(o.X, o.Y, tip.X, tip.Y)
		h1, h2 := annotation.ArrowHead(o, tip)
		dc.DrawLine(tip.X, tip.Y, h1.X, h1.Y)
		dc.DrawLine(tip.X, tip.Y, h2.X, h2.Y)
		return dc.Stroke()
	case annotation.Freehand:
		if len(s.Points) < 2 {
			return nil
		}
		dc.MoveTo(o.X+s.Points[0].X, o.Y+s.Points[0].Y)
		for _, p := range s.Points[1:] {
			dc.LineTo(o.X+p.X, o.Y+p.Y)
		}
		return dc.Stroke()
	}
	return nil
}

func drawText(dc *gg.Context, a annotation.Annotation, t annotation.Text) error {
	if t.Content == "" {
		return nil
	}
	layout, err := annotation.LayoutText(t, a.Origin)
	if err != nil {
		return err
	}
	src, err := fontSource(t.Font)
	if err != nil {
		return err
	}
	size := t.Font.Size
	if size <= 0 {
		size = annotation.DefaultFont.Size
	}
	dc.SetFont(src.Face(size))
	dc.SetColor(a.Style.Color)
	for _, line := range layout.Lines {
		dc.DrawString(line.Text, line.X, line.Baseline)
	}
	return nil
}

// drawCropOverlay draws the dashed crop outline and its eight handles.
func drawCropOverlay(dc *gg.Context, area geom.Rect, th *theme.Theme) error {
	r := area.Normalize()
	setStroke(dc, th.CropStroke, cropStrokeWidth, cropDash, cropDash)
	dc.DrawRectangle(r.X, r.Y, r.W, r.H)
	errs := []error{dc.Stroke()}

	half := float64(crop.HandleSize) / 2
	for _, h := range crop.Handles {
		p := h.Point(r)
		dc.DrawRectangle(p.X-half, p.Y-half, crop.HandleSize, crop.HandleSize)
		dc.SetColor(th.CropHandleFill)
		errs = append(errs, dc.Fill())
		setStroke(dc, th.CropHandleBorder, 1)
		dc.DrawRectangle(p.X-half, p.Y-half, crop.HandleSize, crop.HandleSize)
		errs = append(errs, dc.Stroke())
	}
	return errors.Join(errs...)
}

// drawSelection draws the dashed box around a selected annotation, the
// round move handle at its top-left and the square resize handle at its
// bottom-right.
func drawSelection(dc *gg.Context, a annotation.Annotation, th *theme.Theme) error {
	b := a.Bounds().Inflate(selectionInset)
	setStroke(dc, th.SelectionStroke, selectionStrokeWidth, 4, 3)
	dc.DrawRectangle(b.X, b.Y, b.W, b.H)
	errs := []error{dc.Stroke()}

	mh := a.MoveHandle()
	dc.DrawCircle(mh.X, mh.Y, moveHandleRadius)
	dc.SetColor(th.SelectionHandleFill)
	errs = append(errs, dc.Fill())
	setStroke(dc, th.SelectionHandleBorder, 1)
	dc.DrawCircle(mh.X, mh.Y, moveHandleRadius)
	errs = append(errs, dc.Stroke())

	rh := a.ResizeHandle()
	half := float64(resizeHandleSize) / 2
	dc.DrawRectangle(rh.X-half, rh.Y-half, resizeHandleSize, resizeHandleSize)
	dc.SetColor(th.SelectionHandleFill)
	errs = append(errs, dc.Fill())
	setStroke(dc, th.SelectionHandleBorder, 1)
	dc.DrawRectangle(rh.X-half, rh.Y-half, resizeHandleSize, resizeHandleSize)
	errs = append(errs, dc.Stroke())
	return errors.Join(errs...)
}
