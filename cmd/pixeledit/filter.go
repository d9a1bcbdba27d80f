package main

import (
	"flag"
	"fmt"

	"github.com/example/pixeledit/internal/editor"
	"github.com/example/pixeledit/internal/filter"
)

// filterCmd applies filter settings to an image and exports it.
type filterCmd struct {
	r       *root
	fs      *flag.FlagSet
	program string

	file   string
	output string
	preset string
	values filter.Settings
	export exportFlags
}

func (c *filterCmd) Program() string        { return c.program }
func (c *filterCmd) FlagSet() *flag.FlagSet { return c.fs }

func parseFilterCmd(args []string, r *root) (*filterCmd, error) {
	c := &filterCmd{r: r, fs: flag.NewFlagSet("filter", flag.ContinueOnError), program: r.subcommand("filter")}
	n := filter.Neutral()
	c.fs.StringVar(&c.file, "file", "", "input image")
	c.fs.StringVar(&c.output, "output", "", "output image")
	c.fs.StringVar(&c.preset, "preset", "", "start from a named preset")
	c.fs.Float64Var(&c.values.Brightness, "brightness", n.Brightness, "brightness percent, 0-200")
	c.fs.Float64Var(&c.values.Contrast, "contrast", n.Contrast, "contrast percent, 0-200")
	c.fs.Float64Var(&c.values.Saturation, "saturation", n.Saturation, "saturation percent, 0-200")
	c.fs.Float64Var(&c.values.Hue, "hue", n.Hue, "hue rotation in degrees, -180 to 180")
	c.fs.Float64Var(&c.values.Blur, "blur", n.Blur, "blur radius in pixels, 0-20")
	c.fs.Float64Var(&c.values.Sepia, "sepia", n.Sepia, "sepia percent, 0-100")
	c.fs.Float64Var(&c.values.Grayscale, "grayscale", n.Grayscale, "grayscale percent, 0-100")
	c.export.register(c.fs)
	if err := parseFlags(c.fs, args, c); err != nil {
		return nil, err
	}
	if c.file == "" || c.output == "" {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

// settings starts from the preset, if any, and applies the flags that were
// given explicitly.
func (c *filterCmd) settings() (filter.Settings, error) {
	s := filter.Neutral()
	if c.preset != "" {
		p, err := filter.Preset(c.preset, c.r.config.Filters)
		if err != nil {
			return s, err
		}
		s = p
	}
	c.fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "brightness":
			s.Brightness = c.values.Brightness
		case "contrast":
			s.Contrast = c.values.Contrast
		case "saturation":
			s.Saturation = c.values.Saturation
		case "hue":
			s.Hue = c.values.Hue
		case "blur":
			s.Blur = c.values.Blur
		case "sepia":
			s.Sepia = c.values.Sepia
		case "grayscale":
			s.Grayscale = c.values.Grayscale
		}
	})
	return s, nil
}

func (c *filterCmd) Run() error {
	s, err := c.settings()
	if err != nil {
		return err
	}
	opts, err := c.r.editorOptions()
	if err != nil {
		return err
	}
	ed, err := editor.Open(c.file, opts...)
	if err != nil {
		return err
	}
	if err := ed.SetFilters(s); err != nil {
		return err
	}
	exp, err := c.r.exportOptions(c.export.format, c.export.quality, c.export.shadow)
	if err != nil {
		return err
	}
	out := c.r.outputPath(c.output)
	if err := ed.ExportFile(out, exp); err != nil {
		return err
	}
	fmt.Fprintf(c.r.stderr, "wrote %s\n", out)
	return nil
}
