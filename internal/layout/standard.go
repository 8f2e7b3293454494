package layout

import "github.com/victorgalvez56/nvim-voice/internal/geometry"

// standardCodes is the base layer of the 61-key ANSI board in index order.
var standardCodes = []string{
	"KC_ESC", "KC_1", "KC_2", "KC_3", "KC_4", "KC_5", "KC_6",
	"KC_7", "KC_8", "KC_9", "KC_0", "KC_MINS", "KC_EQL", "KC_BSPC",

	"KC_TAB", "KC_Q", "KC_W", "KC_E", "KC_R", "KC_T", "KC_Y",
	"KC_U", "KC_I", "KC_O", "KC_P", "KC_LBRC", "KC_RBRC", "KC_BSLS",

	"KC_CAPS", "KC_A", "KC_S", "KC_D", "KC_F", "KC_G", "KC_H",
	"KC_J", "KC_K", "KC_L", "KC_SCLN", "KC_QUOT", "KC_ENT",

	"KC_LSFT", "KC_Z", "KC_X", "KC_C", "KC_V", "KC_B", "KC_N",
	"KC_M", "KC_COMM", "KC_DOT", "KC_SLSH", "KC_RSFT",

	"KC_LCTL", "KC_LALT", "KC_LGUI", "KC_SPC", "KC_RGUI", "KC_RALT",
	"KC_LEFT", "KC_RIGHT",
}

// Standard returns the built-in layout used when no Keymapp configuration is
// available: a single "Base" layer on the standard geometry.
func Standard() *KeyboardLayout {
	keys := make([]KeyAction, len(standardCodes))
	for i, code := range standardCodes {
		kc := NewKeyCode(code)
		keys[i] = KeyAction{Tap: &kc}
	}
	return &KeyboardLayout{
		Title:    "Standard",
		Geometry: geometry.Standard,
		Layers:   []KeyboardLayer{{Title: "Base", Keys: keys}},
	}
}
