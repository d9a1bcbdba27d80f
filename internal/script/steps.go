package script

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/pixeledit/internal/annotation"
	"github.com/example/pixeledit/internal/editor"
	"github.com/example/pixeledit/internal/filter"
	"github.com/example/pixeledit/internal/geom"
	"github.com/example/pixeledit/internal/render"
	"github.com/example/pixeledit/internal/theme"
)

var actions = map[string]func() action{
	"filters":  func() action { return &filtersStep{} },
	"rotate":   func() action { return &rotateStep{} },
	"flip":     func() action { return &flipStep{} },
	"scale":    func() action { return &scaleStep{} },
	"bake":     func() action { return bakeStep{} },
	"crop":     func() action { return &cropStep{} },
	"text":     func() action { return &textStep{} },
	"rect":     func() action { return &rectStep{kind: annotation.KindRect} },
	"circle":   func() action { return &circleStep{} },
	"line":     func() action { return &rectStep{kind: annotation.KindLine} },
	"arrow":    func() action { return &rectStep{kind: annotation.KindArrow} },
	"freehand": func() action { return &freehandStep{} },
	"remove":   func() action { return &removeStep{} },
	"tool":     func() action { return &toolStep{} },
	"pointer":  func() action { return &pointerStep{} },
	"key":      func() action { return &keyStep{} },
	"undo":     func() action { return &historyStep{redo: false} },
	"redo":     func() action { return &historyStep{redo: true} },
	"export":   func() action { return &exportStep{} },
}

type filtersStep struct {
	Preset string `yaml:"preset"`
	Reset  bool   `yaml:"reset"`
	// Apply bakes the result into the image and resets the filters.
	Apply bool `yaml:"apply"`

	Brightness *float64 `yaml:"brightness"`
	Contrast   *float64 `yaml:"contrast"`
	Saturation *float64 `yaml:"saturation"`
	Hue        *float64 `yaml:"hue"`
	Blur       *float64 `yaml:"blur"`
	Sepia      *float64 `yaml:"sepia"`
	Grayscale  *float64 `yaml:"grayscale"`
}

func (s *filtersStep) apply(_ context.Context, r *runner) error {
	fs := r.ed.Filters()
	if s.Reset {
		fs = filter.Neutral()
	}
	if s.Preset != "" {
		p, err := filter.Preset(s.Preset, r.opts.Presets)
		if err != nil {
			return err
		}
		fs = p
	}
	for _, o := range []struct {
		v   *float64
		dst *float64
	}{
		{s.Brightness, &fs.Brightness},
		{s.Contrast, &fs.Contrast},
		{s.Saturation, &fs.Saturation},
		{s.Hue, &fs.Hue},
		{s.Blur, &fs.Blur},
		{s.Sepia, &fs.Sepia},
		{s.Grayscale, &fs.Grayscale},
	} {
		if o.v != nil {
			*o.dst = *o.v
		}
	}
	if err := r.ed.SetFilters(fs); err != nil {
		return err
	}
	if s.Apply {
		return r.ed.ApplyFilters()
	}
	return nil
}

type rotateStep struct {
	Degrees float64 `yaml:"degrees"`
}

func (s *rotateStep) apply(_ context.Context, r *runner) error { return r.ed.Rotate(s.Degrees) }

type flipStep struct {
	Axis string `yaml:"axis"`
}

func (s *flipStep) apply(_ context.Context, r *runner) error {
	switch strings.ToLower(s.Axis) {
	case "horizontal", "h", "x":
		r.ed.FlipHorizontal()
	case "vertical", "v", "y":
		r.ed.FlipVertical()
	default:
		return fmt.Errorf("flip axis must be horizontal or vertical, got %q", s.Axis)
	}
	return nil
}

type scaleStep struct {
	Factor float64 `yaml:"factor"`
}

func (s *scaleStep) apply(_ context.Context, r *runner) error { return r.ed.SetScale(s.Factor) }

type bakeStep struct{}

func (bakeStep) apply(_ context.Context, r *runner) error { return r.ed.BakeTransform() }

type cropStep struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

func (s *cropStep) apply(_ context.Context, r *runner) error {
	r.ed.SetCropArea(s.X, s.Y, s.W, s.H)
	if err := r.ed.ApplyCrop(); err != nil {
		r.ed.CancelCrop()
		return err
	}
	return nil
}

// common annotation fields
type base struct {
	ID     string  `yaml:"id"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Color  string  `yaml:"color"`
	Width  float64 `yaml:"width"`
	Hidden bool    `yaml:"hidden"`
}

func (b base) annotation(r *runner, shape annotation.Shape) (annotation.Annotation, error) {
	style := r.ed.Style()
	if b.Color != "" {
		c, err := theme.ParseColor(b.Color)
		if err != nil {
			return annotation.Annotation{}, err
		}
		style.Color = c
	}
	if b.Width > 0 {
		style.StrokeWidth = b.Width
	}
	return annotation.Annotation{
		ID:      b.ID,
		Origin:  geom.Pt(b.X, b.Y),
		Style:   style,
		Visible: !b.Hidden,
		Shape:   shape,
	}, nil
}

func (b base) upsert(r *runner, shape annotation.Shape) error {
	a, err := b.annotation(r, shape)
	if err != nil {
		return err
	}
	_, err = r.ed.UpsertAnnotation(a)
	return err
}

type textStep struct {
	base   `yaml:",inline"`
	Text   string  `yaml:"text"`
	Family string  `yaml:"font"`
	Size   float64 `yaml:"size"`
	Bold   bool    `yaml:"bold"`
	Italic bool    `yaml:"italic"`
	Align  string  `yaml:"align"`
	Wrap   float64 `yaml:"wrap"`
	Box    float64 `yaml:"box_height"`
}

func (s *textStep) apply(_ context.Context, r *runner) error {
	if strings.TrimSpace(s.Text) == "" {
		return errors.New("text is empty")
	}
	f := r.ed.Font()
	if s.Family != "" {
		f.Family = s.Family
	}
	if s.Size > 0 {
		f.Size = s.Size
	}
	f.Bold = f.Bold || s.Bold
	f.Italic = f.Italic || s.Italic
	return s.upsert(r, annotation.Text{
		Content:   s.Text,
		Font:      f,
		Align:     annotation.ParseAlign(s.Align),
		WrapWidth: s.Wrap,
		BoxHeight: s.Box,
	})
}

// rectStep covers the shapes spanned by a W×H vector.
type rectStep struct {
	base `yaml:",inline"`
	W    float64 `yaml:"w"`
	H    float64 `yaml:"h"`
	kind annotation.Kind
}

func (s *rectStep) apply(_ context.Context, r *runner) error {
	switch s.kind {
	case annotation.KindLine:
		return s.upsert(r, annotation.Line{W: s.W, H: s.H})
	case annotation.KindArrow:
		return s.upsert(r, annotation.Arrow{W: s.W, H: s.H})
	}
	return s.upsert(r, annotation.Rect{W: s.W, H: s.H})
}

type circleStep struct {
	base `yaml:",inline"`
	D    float64 `yaml:"d"`
}

func (s *circleStep) apply(_ context.Context, r *runner) error {
	return s.upsert(r, annotation.Circle{D: s.D})
}

type freehandStep struct {
	base   `yaml:",inline"`
	Points [][2]float64 `yaml:"points"`
}

// Points are absolute; the first one becomes the origin.
func (s *freehandStep) apply(_ context.Context, r *runner) error {
	if len(s.Points) < 2 {
		return errors.New("freehand needs at least two points")
	}
	origin := geom.Pt(s.Points[0][0], s.Points[0][1])
	pts := make([]geom.Point, len(s.Points))
	for i, p := range s.Points {
		pts[i] = geom.Pt(p[0], p[1]).Sub(origin)
	}
	b := s.base
	b.X, b.Y = origin.X, origin.Y
	return b.upsert(r, annotation.Freehand{Points: pts})
}

type removeStep struct {
	ID string `yaml:"id"`
}

func (s *removeStep) apply(_ context.Context, r *runner) error { return r.ed.RemoveAnnotation(s.ID) }

type toolStep struct {
	Name string `yaml:"name"`
}

func (s *toolStep) apply(_ context.Context, r *runner) error {
	t, err := editor.ParseTool(s.Name)
	if err != nil {
		return err
	}
	r.in.SetTool(t)
	return nil
}

type pointerEvent struct {
	Action string  `yaml:"action"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
}

// pointerStep replays mouse input through the same controller the desktop
// host uses.
type pointerStep struct {
	Tool      string         `yaml:"tool"`
	Modifiers []string       `yaml:"modifiers"`
	Events    []pointerEvent `yaml:"events"`
}

func (s *pointerStep) apply(ctx context.Context, r *runner) error {
	if s.Tool != "" {
		t, err := editor.ParseTool(s.Tool)
		if err != nil {
			return err
		}
		r.in.SetTool(t)
	}
	var mods key.Modifiers
	for _, m := range s.Modifiers {
		mod, ok := modifierNames[strings.ToLower(m)]
		if !ok {
			return fmt.Errorf("unknown modifier %q", m)
		}
		mods |= mod
	}
	for i, ev := range s.Events {
		if err := ctx.Err(); err != nil {
			return err
		}
		e := mouse.Event{X: float32(ev.X), Y: float32(ev.Y), Button: mouse.ButtonLeft, Modifiers: mods}
		switch strings.ToLower(ev.Action) {
		case "press", "down":
			e.Direction = mouse.DirPress
		case "move", "drag":
			e.Direction = mouse.DirNone
		case "release", "up":
			e.Direction = mouse.DirRelease
		case "leave":
			r.in.PointerLeave()
			continue
		default:
			return fmt.Errorf("event %d: unknown action %q", i+1, ev.Action)
		}
		r.in.Pointer(e)
	}
	return nil
}

// keyStep sends key presses, then types Text into the open text edit.
type keyStep struct {
	Keys []string `yaml:"keys"`
	Text string   `yaml:"text"`
}

func (s *keyStep) apply(_ context.Context, r *runner) error {
	for _, k := range s.Keys {
		ev, err := parseKey(k)
		if err != nil {
			return err
		}
		if err := r.in.Key(ev); err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
	}
	for _, ch := range s.Text {
		ev := key.Event{Rune: ch, Code: key.CodeUnknown, Direction: key.DirPress}
		if ch == '\n' {
			ev = key.Event{Rune: -1, Code: key.CodeReturnEnter, Modifiers: key.ModShift, Direction: key.DirPress}
		}
		if err := r.in.Key(ev); err != nil {
			return err
		}
	}
	return nil
}

type historyStep struct {
	Count int `yaml:"count"`
	redo  bool
}

func (s *historyStep) apply(_ context.Context, r *runner) error {
	n := max(s.Count, 1)
	for range n {
		var err error
		if s.redo {
			err = r.ed.Redo()
		} else {
			err = r.ed.Undo()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type exportStep struct {
	Path    string `yaml:"path"`
	Format  string `yaml:"format"`
	Quality int    `yaml:"quality"`
	Shadow  bool   `yaml:"shadow"`
}

func (s *exportStep) apply(_ context.Context, r *runner) error {
	path := s.Path
	if path == "" {
		path = r.s.Output
	}
	if path == "" {
		return errors.New("export needs a path")
	}
	opts := editor.ExportOptions{Quality: s.Quality}
	if s.Format != "" {
		f, err := editor.ParseFormat(s.Format)
		if err != nil {
			return err
		}
		opts.Format = f
	}
	if s.Shadow {
		opts.Shadow = render.DefaultShadowOptions()
	}
	return r.ed.ExportFile(r.s.Path(path), opts)
}
