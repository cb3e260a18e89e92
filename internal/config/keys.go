package config

import (
	"fmt"
	"unicode/utf8"
)

// Fixed bindings. They cannot be remapped, so configured keys must avoid
// them.
const (
	KeyQuit         = "ctrl+c"
	KeySaveSource   = "ctrl+s"
	KeyReloadConfig = "ctrl+r"
	KeyToggleHelp   = "f1"
)

// reservedKeys are the fixed bindings plus the keys the editor uses for
// motion and editing.
var reservedKeys = map[string]struct{}{
	KeyQuit: {}, KeySaveSource: {}, KeyReloadConfig: {}, KeyToggleHelp: {},
	"left": {}, "right": {}, "up": {}, "down": {},
	"home": {}, "end": {}, "pgup": {}, "pgdown": {},
	"ctrl+home": {}, "ctrl+end": {},
	"shift+left": {}, "shift+right": {}, "shift+up": {}, "shift+down": {},
	"shift+home": {}, "shift+end": {},
	"esc": {}, "enter": {}, "tab": {}, " ": {}, "backspace": {}, "delete": {},
}

// Reserved reports whether binding is taken by a fixed action or by the
// editor itself.
func Reserved(binding string) bool {
	_, ok := reservedKeys[binding]
	return ok
}

// checkBinding rejects bindings that would shadow a fixed action or plain
// typing.
func checkBinding(name, binding string) error {
	if Reserved(binding) {
		return fmt.Errorf("%s: %q is reserved", name, binding)
	}
	if utf8.RuneCountInString(binding) == 1 {
		return fmt.Errorf("%s: %q would capture typed text", name, binding)
	}
	return nil
}
