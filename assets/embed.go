// Package assets embeds the built-in overlay themes.
package assets

import (
	"embed"
	"io/fs"
	"sort"
	"strings"
)

//go:embed themes/*.theme
var embedded embed.FS

// Themes returns the embedded theme files rooted at the themes directory.
func Themes() fs.FS {
	sub, err := fs.Sub(embedded, "themes")
	if err != nil {
		panic(err) // the directory is embedded at build time
	}
	return sub
}

// ThemeNames lists the embedded themes without their extension.
func ThemeNames() []string {
	entries, err := fs.ReadDir(embedded, "themes")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".theme"); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
