package assets

import (
	"io/fs"
	"slices"
	"testing"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	for _, want := range []string{"default", "high_contrast"} {
		if !slices.Contains(names, want) {
			t.Fatalf("ThemeNames() = %v, missing %s", names, want)
		}
	}
	if _, err := fs.ReadFile(Themes(), "default.theme"); err != nil {
		t.Fatalf("read default.theme: %v", err)
	}
}
