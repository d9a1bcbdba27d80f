package script

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/mobile/event/key"
)

var modifierNames = map[string]key.Modifiers{
	"shift":   key.ModShift,
	"ctrl":    key.ModControl,
	"control": key.ModControl,
	"alt":     key.ModAlt,
	"meta":    key.ModMeta,
	"cmd":     key.ModMeta,
}

var keyNames = map[string]key.Event{
	"enter":     {Code: key.CodeReturnEnter, Rune: -1},
	"return":    {Code: key.CodeReturnEnter, Rune: -1},
	"escape":    {Code: key.CodeEscape, Rune: -1},
	"esc":       {Code: key.CodeEscape, Rune: -1},
	"backspace": {Code: key.CodeDeleteBackspace, Rune: -1},
	"delete":    {Code: key.CodeDeleteForward, Rune: -1},
	"del":       {Code: key.CodeDeleteForward, Rune: -1},
	"tab":       {Code: key.CodeTab, Rune: '\t'},
	"space":     {Code: key.CodeSpacebar, Rune: ' '},
}

// parseKey reads a chord such as "ctrl+shift+z", "enter" or "t".
func parseKey(s string) (key.Event, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	name := parts[len(parts)-1]
	var mods key.Modifiers
	for _, m := range parts[:len(parts)-1] {
		mod, ok := modifierNames[m]
		if !ok {
			return key.Event{}, fmt.Errorf("unknown modifier %q in %q", m, s)
		}
		mods |= mod
	}

	ev, ok := keyNames[name]
	if !ok {
		r, size := utf8.DecodeRuneInString(name)
		if name == "" || size != len(name) {
			return key.Event{}, fmt.Errorf("unknown key %q", s)
		}
		ev = key.Event{Rune: r, Code: key.CodeUnknown}
		if r >= 'a' && r <= 'z' {
			ev.Code = key.CodeA + key.Code(r-'a')
		}
		if mods&key.ModShift != 0 {
			ev.Rune = unicode.ToUpper(r)
		}
	}
	ev.Modifiers = mods
	ev.Direction = key.DirPress
	return ev, nil
}
