package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/pixeledit/internal/config"
	"github.com/example/pixeledit/internal/editor"
	"github.com/example/pixeledit/internal/logging"
	"github.com/example/pixeledit/internal/notify"
	"github.com/example/pixeledit/internal/render"
	"github.com/example/pixeledit/internal/theme"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs       *flag.FlagSet
	program  string
	stdout   io.Writer
	stderr   io.Writer
	notifier *notify.Notifier
	config   *config.Config
	loader   *config.Loader

	configPath   string
	themeName    string
	cropAlerts   bool
	exportAlerts bool
	errorAlerts  bool
	verbose      bool
	activeTheme  *theme.Theme
}

func (r *root) Program() string { return r.program }

func (r *root) FlagSet() *flag.FlagSet { return r.fs }

func newRoot() *root {
	r := &root{
		fs:       flag.NewFlagSet("pixeledit", flag.ContinueOnError),
		program:  "pixeledit",
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		notifier: notify.New(notify.LoadPreferences()),
	}
	r.fs.SetOutput(io.Discard)
	r.fs.StringVar(&r.configPath, "config", configPathOverride, "configuration file to read instead of the default locations")
	// Precedence: CLI > Env > Config > Default
	r.fs.StringVar(&r.themeName, "theme", "", "overlay theme (default, high_contrast, or a .theme file)")
	r.fs.BoolVar(&r.cropAlerts, "notify-crop", false, "show a desktop notification after a crop is applied")
	r.fs.BoolVar(&r.exportAlerts, "notify-export", false, "show a desktop notification after an image is exported")
	r.fs.BoolVar(&r.errorAlerts, "notify-errors", false, "show a desktop notification when an operation fails")
	r.fs.BoolVar(&r.verbose, "v", false, "log debug output to stderr")
	r.fs.Usage = usageFunc(r)
	return r
}

// setup installs logging, reads the configuration and resolves the theme.
func (r *root) setup() error {
	level := slog.LevelWarn
	if r.verbose {
		level = slog.LevelDebug
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(r.stderr, &slog.HandlerOptions{Level: level})))

	r.loader = config.NewLoader(version, r.configPath)
	cfg, err := r.loader.Load()
	if err != nil {
		if r.configPath != "" {
			return err
		}
		fmt.Fprintf(r.stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}
	r.config = cfg

	set := map[string]bool{}
	r.fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if !set["notify-crop"] {
		r.cropAlerts = cfg.Notify.Crop
	}
	if !set["notify-export"] {
		r.exportAlerts = cfg.Notify.Export
	}
	if !set["notify-errors"] {
		r.errorAlerts = cfg.Notify.Errors
	}
	r.notifier.Enable(notify.EventCrop, r.cropAlerts)
	r.notifier.Enable(notify.EventExport, r.exportAlerts)
	r.notifier.Enable(notify.EventError, r.errorAlerts)

	name := r.themeName
	if name == "" {
		name = cfg.ThemeName()
	}
	loader := theme.NewLoader()
	loader.Extra = cfg.Themes
	t, err := loader.Load(name)
	if err != nil {
		fmt.Fprintf(r.stderr, "warning: failed to load theme '%s': %v. using default.\n", name, err)
		t = theme.Default()
	}
	r.activeTheme = t
	return nil
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return &UsageError{of: r}
		}
		return fmt.Errorf("%w\n%v", err, &UsageError{of: r})
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if err := r.setup(); err != nil {
		return err
	}

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "edit":
		cmd, err = parseEditCmd(subArgs, r)
	case "apply":
		cmd, err = parseApplyCmd(subArgs, r)
	case "filter":
		cmd, err = parseFilterCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "version":
		cmd = &versionCmd{root: r}
	case "help":
		return &UsageError{of: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

// editorOptions applies configuration and flags to a new editor.
func (r *root) editorOptions() ([]editor.Option, error) {
	opts := []editor.Option{
		editor.WithSink(r.notifier),
		editor.WithTheme(r.activeTheme),
	}
	if r.config.HistoryLimit > 0 {
		opts = append(opts, editor.WithHistoryLimit(r.config.HistoryLimit))
	}
	if r.config.Resample != "" {
		rs, err := render.ParseResample(r.config.Resample)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		opts = append(opts, editor.WithResample(rs))
	}
	return opts, nil
}

// exportOptions merges flag values over the configured defaults. An empty
// format is left for the output file extension to decide.
func (r *root) exportOptions(format string, quality int, shadow bool) (editor.ExportOptions, error) {
	var o editor.ExportOptions
	if format == "" {
		format = r.config.Format
	}
	if format != "" {
		f, err := editor.ParseFormat(format)
		if err != nil {
			return o, err
		}
		o.Format = f
	}
	o.Quality = quality
	if o.Quality <= 0 {
		o.Quality = r.config.JPEGQuality
	}
	if shadow {
		o.Shadow = render.DefaultShadowOptions()
	}
	return o, nil
}

// outputPath places a bare file name in the configured save directory.
func (r *root) outputPath(p string) string {
	if p == "" || r.config == nil || r.config.SaveDir == "" {
		return p
	}
	if filepath.IsAbs(p) || strings.ContainsRune(p, filepath.Separator) {
		return p
	}
	return filepath.Join(r.config.SaveDir, p)
}

func (r *root) subcommand(name string) string {
	return strings.TrimSpace(r.program + " " + name)
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
