package filter

import (
	"fmt"
	"sort"
	"strings"
)

var builtinPresets = map[string]Settings{
	"none":      Neutral(),
	"grayscale": {Brightness: 100, Contrast: 100, Saturation: 100, Grayscale: 100},
	"sepia":     {Brightness: 100, Contrast: 100, Saturation: 100, Sepia: 100},
	"vivid":     {Brightness: 105, Contrast: 120, Saturation: 150},
	"faded":     {Brightness: 110, Contrast: 80, Saturation: 70},
	"soft":      {Brightness: 100, Contrast: 100, Saturation: 100, Blur: 2},
}

// Presets returns the names of the built-in presets in sorted order.
func Presets() []string {
	names := make([]string, 0, len(builtinPresets))
	for n := range builtinPresets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Preset looks up name first in extra, then among the built-ins. Lookup is
// case-insensitive.
func Preset(name string, extra map[string]Settings) (Settings, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if s, ok := extra[key]; ok {
		return s, nil
	}
	if s, ok := builtinPresets[key]; ok {
		return s, nil
	}
	return Settings{}, fmt.Errorf("unknown filter preset %q", name)
}
