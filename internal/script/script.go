// Package script runs headless edit sessions described in YAML. A script
// lists steps that are applied to an Editor in order, the same calls the
// desktop host makes in response to user input.
//
//	version: 1
//	input: photo.png
//	output: out.jpg
//	steps:
//	  - op: filters
//	    brightness: 150
//	  - op: crop
//	    x: 50
//	    y: 50
//	    w: 100
//	    h: 100
//	  - op: text
//	    x: 10
//	    y: 30
//	    text: Hello
package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/example/pixeledit/internal/editor"
	"github.com/example/pixeledit/internal/filter"
	"github.com/example/pixeledit/internal/logging"
)

// Version is the newest script format understood by Load.
const Version = 1

// Script is a parsed edit script.
type Script struct {
	Version int    `yaml:"version"`
	Input   string `yaml:"input,omitempty"`
	Output  string `yaml:"output,omitempty"`
	Steps   []Step `yaml:"steps"`

	// Dir resolves relative paths. Set by LoadFile.
	Dir string `yaml:"-"`
}

// Step is one operation. Its arguments depend on Op.
type Step struct {
	Op   string
	Line int
	args action
}

type action interface {
	apply(ctx context.Context, r *runner) error
}

// UnmarshalYAML decodes the op name first and then the arguments for it.
func (s *Step) UnmarshalYAML(n *yaml.Node) error {
	var head struct {
		Op string `yaml:"op"`
	}
	if err := n.Decode(&head); err != nil {
		return err
	}
	newArgs, ok := actions[head.Op]
	if !ok {
		return fmt.Errorf("line %d: unknown op %q", n.Line, head.Op)
	}
	args := newArgs()
	if err := n.Decode(args); err != nil {
		return fmt.Errorf("line %d: %s: %w", n.Line, head.Op, err)
	}
	s.Op, s.Line, s.args = head.Op, n.Line, args
	return nil
}

// Load parses a script.
func Load(r io.Reader) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty script")
		}
		return nil, err
	}
	if s.Version == 0 {
		s.Version = Version
	}
	if s.Version > Version {
		return nil, fmt.Errorf("script version %d is newer than %d", s.Version, Version)
	}
	return &s, nil
}

// LoadFile parses the script at path. Relative paths inside it are taken
// from the script's directory.
func LoadFile(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Dir = filepath.Dir(path)
	return s, nil
}

// Path resolves p against the script directory.
func (s *Script) Path(p string) string {
	if p == "" || filepath.IsAbs(p) || s.Dir == "" {
		return p
	}
	return filepath.Join(s.Dir, p)
}

// StepError reports which step failed.
type StepError struct {
	Index int
	Op    string
	Line  int
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s, line %d): %v", e.Index+1, e.Op, e.Line, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Options adjusts how a script runs.
type Options struct {
	// Presets are extra named filter presets, as loaded from configuration.
	Presets map[string]filter.Settings
}

type runner struct {
	s    *Script
	ed   *editor.Editor
	in   *editor.InputController
	opts Options
}

// Run applies the steps of s to ed in order and stops at the first
// failure, which is returned as a *StepError.
func Run(ctx context.Context, ed *editor.Editor, s *Script, opts Options) error {
	r := &runner{
		s:    s,
		ed:   ed,
		in:   editor.NewInputController(ed, editor.Viewport{Scale: 1}),
		opts: opts,
	}
	for i, st := range s.Steps {
		if err := ctx.Err(); err != nil {
			return &StepError{Index: i, Op: st.Op, Line: st.Line, Err: err}
		}
		if st.args == nil {
			return &StepError{Index: i, Op: st.Op, Line: st.Line, Err: errors.New("step has no op")}
		}
		logging.Logger().Debug("script step", "index", i, "op", st.Op)
		if err := st.args.apply(ctx, r); err != nil {
			return &StepError{Index: i, Op: st.Op, Line: st.Line, Err: err}
		}
	}
	// A text edit left open by key steps is kept, as the host would on
	// focus loss.
	if _, ok := r.in.Editing(); ok {
		if err := r.in.CommitTextEdit(); err != nil {
			return &StepError{Index: len(s.Steps) - 1, Op: "commit", Err: err}
		}
	}
	return nil
}
