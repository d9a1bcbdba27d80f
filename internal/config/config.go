// Package config reads and writes the pixeledit RC file.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/example/pixeledit/internal/filter"
	"github.com/example/pixeledit/internal/theme"
)

// EnvTheme names the environment variable consulted when no theme is set.
const EnvTheme = "PIXELEDIT_THEME"

// Notify holds notification settings.
type Notify struct {
	Crop   bool
	Export bool
	Errors bool
}

// Config holds the application configuration.
type Config struct {
	Theme        string
	SaveDir      string
	Format       string
	JPEGQuality  int
	HistoryLimit int
	Resample     string
	Notify       Notify
	// Filters holds named filter presets, keyed by lower-case name.
	Filters map[string]filter.Settings
	Themes  map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Notify:  Notify{Errors: true},
		Filters: make(map[string]filter.Settings),
		Themes:  make(map[string]*theme.Theme),
	}
}

// ThemeName returns the configured theme, falling back to $PIXELEDIT_THEME.
func (c *Config) ThemeName() string {
	if c.Theme != "" {
		return c.Theme
	}
	return os.Getenv(EnvTheme)
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	root := []struct {
		key, value string
	}{
		{"theme", c.Theme},
		{"save_dir", c.SaveDir},
		{"format", c.Format},
		{"resample", c.Resample},
	}
	for _, kv := range root {
		if kv.value != "" {
			fmt.Fprintf(&sb, "%s = %s\n", kv.key, kv.value)
		}
	}
	if c.JPEGQuality > 0 {
		fmt.Fprintf(&sb, "jpeg_quality = %d\n", c.JPEGQuality)
	}
	if c.HistoryLimit > 0 {
		fmt.Fprintf(&sb, "history_limit = %d\n", c.HistoryLimit)
	}
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "crop = %v\n", c.Notify.Crop)
	fmt.Fprintf(&sb, "export = %v\n", c.Notify.Export)
	fmt.Fprintf(&sb, "errors = %v\n", c.Notify.Errors)
	sb.WriteString("\n")

	for _, name := range sortedKeys(c.Filters) {
		fmt.Fprintf(&sb, "[filters.%s]\n", name)
		for _, f := range filterFields(ptr(c.Filters[name])) {
			fmt.Fprintf(&sb, "%s = %g\n", f.key, *f.v)
		}
		sb.WriteString("\n")
	}

	for _, name := range sortedKeys(c.Themes) {
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		// strings.Builder never fails
		_ = theme.Format(&sb, c.Themes[name], ": ")
		sb.WriteString("\n")
	}

	return sb.String()
}

func ptr[T any](v T) *T { return &v }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
