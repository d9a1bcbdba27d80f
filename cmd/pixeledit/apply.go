package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/example/pixeledit/internal/clipboard"
	"github.com/example/pixeledit/internal/editor"
	"github.com/example/pixeledit/internal/script"
)

// applyCmd runs an edit script without a window.
type applyCmd struct {
	r       *root
	fs      *flag.FlagSet
	program string

	file          string
	script        string
	output        string
	toClipboard   bool
	fromClipboard bool
	export        exportFlags
}

func (c *applyCmd) Program() string        { return c.program }
func (c *applyCmd) FlagSet() *flag.FlagSet { return c.fs }

func parseApplyCmd(args []string, r *root) (*applyCmd, error) {
	c := &applyCmd{r: r, fs: flag.NewFlagSet("apply", flag.ContinueOnError), program: r.subcommand("apply")}
	c.fs.StringVar(&c.file, "file", "", "input image (overrides the script's input)")
	c.fs.StringVar(&c.script, "script", "", "YAML edit script")
	c.fs.StringVar(&c.output, "output", "", "output image (overrides the script's output)")
	c.fs.BoolVar(&c.toClipboard, "to-clipboard", false, "copy the result to the clipboard")
	c.fs.BoolVar(&c.fromClipboard, "from-clipboard", false, "read the input image from the clipboard")
	c.export.register(c.fs)
	if err := parseFlags(c.fs, args, c); err != nil {
		return nil, err
	}
	if c.script == "" {
		return nil, &UsageError{of: c}
	}
	if c.file != "" && c.fromClipboard {
		return nil, errors.New("-file and -from-clipboard cannot be used together")
	}
	return c, nil
}

func (c *applyCmd) Run() error {
	s, err := script.LoadFile(c.script)
	if err != nil {
		return err
	}
	opts, err := c.r.editorOptions()
	if err != nil {
		return err
	}

	var ed *editor.Editor
	switch {
	case c.fromClipboard:
		img, err := clipboard.ReadImage()
		if err != nil {
			return err
		}
		ed, err = editor.New(img, opts...)
		if err != nil {
			return err
		}
	case c.file != "" || s.Input != "":
		in := c.file
		if in == "" {
			in = s.Path(s.Input)
		}
		ed, err = editor.Open(in, opts...)
		if err != nil {
			return err
		}
	default:
		return errors.New("no input image: use -file or set input in the script")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := script.Run(ctx, ed, s, script.Options{Presets: c.r.config.Filters}); err != nil {
		return fmt.Errorf("%s: %w", c.script, err)
	}

	exp, err := c.r.exportOptions(c.export.format, c.export.quality, c.export.shadow)
	if err != nil {
		return err
	}
	out := c.r.outputPath(c.output)
	if out == "" && s.Output != "" {
		out = s.Path(s.Output)
	}
	if out != "" {
		if err := ed.ExportFile(out, exp); err != nil {
			return err
		}
		fmt.Fprintf(c.r.stderr, "wrote %s\n", out)
	}
	if c.toClipboard {
		img, err := ed.ExportImage(exp)
		if err != nil {
			return err
		}
		if err := clipboard.WriteImage(img); err != nil {
			return err
		}
		fmt.Fprintln(c.r.stderr, "copied result to clipboard")
	}
	if out == "" && !c.toClipboard && !hasExport(s) {
		fmt.Fprintln(c.r.stderr, "warning: no output given; the edits were not saved")
	}
	return nil
}

func hasExport(s *script.Script) bool {
	for _, st := range s.Steps {
		if st.Op == "export" {
			return true
		}
	}
	return false
}
