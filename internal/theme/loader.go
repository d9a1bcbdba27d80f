package theme

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/pixeledit/assets"
)

// Loader finds themes by name or path.
type Loader struct {
	Embedded  fs.FS
	ConfigDir string
	SystemDir string
	// Extra holds themes defined inline in the configuration file.
	Extra map[string]*Theme
}

// NewLoader creates a Loader with the standard search paths.
func NewLoader() *Loader {
	home, _ := os.UserHomeDir()
	return &Loader{
		Embedded:  assets.Themes(),
		ConfigDir: filepath.Join(home, ".config", "pixeledit", "themes"),
		SystemDir: "/usr/share/pixeledit/themes",
	}
}

// Load resolves name in this order: configuration themes, an existing file
// path, embedded themes, the user config dir, then the system dir. An empty
// name yields Default.
func (l *Loader) Load(name string) (*Theme, error) {
	if name == "" {
		return Default(), nil
	}
	if t, ok := l.Extra[name]; ok {
		return t, nil
	}
	if st, err := os.Stat(name); err == nil && !st.IsDir() {
		return parseFile(os.DirFS(filepath.Dir(name)), filepath.Base(name))
	}

	filename := name
	if !strings.HasSuffix(filename, ".theme") {
		filename += ".theme"
	}
	if l.Embedded != nil {
		if t, err := parseFile(l.Embedded, filename); err == nil {
			return t, nil
		}
	}
	for _, dir := range []string{l.ConfigDir, l.SystemDir} {
		if dir == "" {
			continue
		}
		if t, err := parseFile(os.DirFS(dir), filename); err == nil {
			return t, nil
		}
	}
	return nil, fmt.Errorf("theme %q not found", name)
}

func parseFile(fsys fs.FS, name string) (*Theme, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}
