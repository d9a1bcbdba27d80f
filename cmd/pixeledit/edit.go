package main

import (
	"errors"
	"flag"
	"path/filepath"
	"strings"

	"github.com/example/pixeledit/internal/appstate"
	"github.com/example/pixeledit/internal/clipboard"
	"github.com/example/pixeledit/internal/editor"
)

// editCmd opens an image in the desktop editor.
type editCmd struct {
	r       *root
	fs      *flag.FlagSet
	program string

	file          string
	output        string
	fromClipboard bool
	export        exportFlags
}

func (c *editCmd) Program() string        { return c.program }
func (c *editCmd) FlagSet() *flag.FlagSet { return c.fs }

func parseEditCmd(args []string, r *root) (*editCmd, error) {
	c := &editCmd{r: r, fs: flag.NewFlagSet("edit", flag.ContinueOnError), program: r.subcommand("edit")}
	c.fs.StringVar(&c.file, "file", "", "image file to edit")
	c.fs.StringVar(&c.output, "output", "", "file written by Ctrl+S (default <file>-edited.<ext>)")
	c.fs.BoolVar(&c.fromClipboard, "from-clipboard", false, "edit the image on the clipboard")
	c.export.register(c.fs)
	if err := parseFlags(c.fs, args, c); err != nil {
		return nil, err
	}
	if c.file == "" && c.fs.NArg() > 0 {
		c.file = c.fs.Arg(0)
	}
	if c.file == "" && !c.fromClipboard {
		return nil, &UsageError{of: c}
	}
	if c.file != "" && c.fromClipboard {
		return nil, errors.New("-file and -from-clipboard cannot be used together")
	}
	if c.fromClipboard && c.output == "" {
		return nil, errors.New("output file is required when reading from the clipboard")
	}
	return c, nil
}

// defaultOutput derives photo-edited.png from photo.png.
func defaultOutput(file string) string {
	ext := filepath.Ext(file)
	if ext == "" {
		ext = ".png"
	}
	return strings.TrimSuffix(filepath.Base(file), filepath.Ext(file)) + "-edited" + ext
}

func (c *editCmd) open() (*editor.Editor, error) {
	opts, err := c.r.editorOptions()
	if err != nil {
		return nil, err
	}
	if c.fromClipboard {
		img, err := clipboard.ReadImage()
		if err != nil {
			return nil, err
		}
		return editor.New(img, opts...)
	}
	return editor.Open(c.file, opts...)
}

func (c *editCmd) Run() error {
	ed, err := c.open()
	if err != nil {
		return err
	}
	exp, err := c.r.exportOptions(c.export.format, c.export.quality, c.export.shadow)
	if err != nil {
		return err
	}
	out := c.output
	if out == "" {
		out = filepath.Join(filepath.Dir(c.file), defaultOutput(c.file))
		if c.r.config.SaveDir != "" {
			out = filepath.Join(c.r.config.SaveDir, defaultOutput(c.file))
		}
	} else {
		out = c.r.outputPath(out)
	}
	st := appstate.New(ed,
		appstate.WithOutput(out),
		appstate.WithExportOptions(exp),
		appstate.WithTheme(c.r.activeTheme),
	)
	st.Run()
	return nil
}
