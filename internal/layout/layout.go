// Package layout holds the canonical in-memory model of a keyboard's layers
// and keys, and builds it from a Keymapp configuration document or from the
// built-in standard board.
//
// A KeyboardLayout is immutable once built. Callers that need a "current"
// layout keep it in a Snapshot and replace it wholesale.
package layout

import (
	"fmt"

	"github.com/victorgalvez56/nvim-voice/internal/geometry"
	"github.com/victorgalvez56/nvim-voice/internal/keycode"
)

// KeyCode is a raw firmware key identifier with its display label.
type KeyCode struct {
	Code  string
	Label string
}

// NewKeyCode builds a KeyCode, computing its label once.
func NewKeyCode(code string) KeyCode {
	return KeyCode{Code: code, Label: keycode.Normalize(code)}
}

// KeyAction is one physical key's behaviour on one layer. Every field is
// optional.
type KeyAction struct {
	Tap         *KeyCode
	Hold        *KeyCode
	HoldLayer   *int
	CustomLabel *string
}

// IsEmpty reports whether the action carries nothing at all.
func (a KeyAction) IsEmpty() bool {
	return a.Tap == nil && a.Hold == nil && a.HoldLayer == nil && a.CustomLabel == nil
}

// IsTransparent reports whether the tap falls through to a lower layer.
// Only the tap decides transparency.
func (a KeyAction) IsTransparent() bool {
	return a.Tap != nil && keycode.IsTransparent(a.Tap.Code)
}

// Kind classifies a key for rendering.
type Kind int

const (
	KindEmpty Kind = iota
	KindTransparent
	KindHoldOnly // hold code or layer, no tap
	KindDual     // tap plus hold code or layer
	KindRegular  // tap only
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindTransparent:
		return "transparent"
	case KindHoldOnly:
		return "hold-only"
	case KindDual:
		return "dual"
	case KindRegular:
		return "regular"
	default:
		return "unknown"
	}
}

// Kind returns the rendering class of the action. A key with only a custom
// label counts as empty.
func (a KeyAction) Kind() Kind {
	holds := a.Hold != nil || a.HoldLayer != nil
	switch {
	case a.IsTransparent():
		return KindTransparent
	case a.Tap == nil && !holds:
		return KindEmpty
	case a.Tap == nil:
		return KindHoldOnly
	case holds:
		return KindDual
	default:
		return KindRegular
	}
}

// TransparentGlyph is shown on keys that fall through to a lower layer.
const TransparentGlyph = "▽"

// DisplayLabel returns the text a renderer puts on the key cap.
func (a KeyAction) DisplayLabel() string {
	switch {
	case a.IsTransparent():
		return TransparentGlyph
	case a.Tap != nil:
		return a.Tap.Label
	case a.CustomLabel != nil && *a.CustomLabel != "":
		return *a.CustomLabel
	case a.Hold != nil:
		return a.Hold.Label
	case a.HoldLayer != nil:
		return fmt.Sprintf("L%d", *a.HoldLayer)
	default:
		return ""
	}
}

// KeyboardLayer is one complete assignment of actions to key indices.
type KeyboardLayer struct {
	Title string
	Keys  []KeyAction
}

// Key returns the action at index, or false when index is out of range.
func (l KeyboardLayer) Key(index int) (KeyAction, bool) {
	if index < 0 || index >= len(l.Keys) {
		return KeyAction{}, false
	}
	return l.Keys[index], true
}

// KeyboardLayout is a keyboard's full configuration. Layer 0 is the base
// layer.
type KeyboardLayout struct {
	Title    string
	Geometry geometry.Geometry
	Layers   []KeyboardLayer
}

// Base returns layer 0, or false for a layout without layers.
func (l *KeyboardLayout) Base() (KeyboardLayer, bool) {
	if l == nil || len(l.Layers) == 0 {
		return KeyboardLayer{}, false
	}
	return l.Layers[0], true
}

// PositionFor returns the physical position of index under the layout's
// geometry.
func (l *KeyboardLayout) PositionFor(index int) (geometry.PhysicalPosition, bool) {
	if l == nil {
		return geometry.PhysicalPosition{}, false
	}
	return geometry.PositionFor(index, l.Geometry)
}

// Conforms reports whether every layer has exactly one action per physical
// key of the geometry. Non-conforming layouts are still usable; indices
// past the geometry simply have no position.
func (l *KeyboardLayout) Conforms() bool {
	if l == nil {
		return false
	}
	for _, layer := range l.Layers {
		if len(layer.Keys) != l.Geometry.KeyCount() {
			return false
		}
	}
	return true
}

// Equal reports whether two layouts hold the same values.
func (l *KeyboardLayout) Equal(other *KeyboardLayout) bool {
	if l == nil || other == nil {
		return l == other
	}
	if l.Title != other.Title || l.Geometry != other.Geometry || len(l.Layers) != len(other.Layers) {
		return false
	}
	for i := range l.Layers {
		a, b := l.Layers[i], other.Layers[i]
		if a.Title != b.Title || len(a.Keys) != len(b.Keys) {
			return false
		}
		for j := range a.Keys {
			if !a.Keys[j].equal(b.Keys[j]) {
				return false
			}
		}
	}
	return true
}

func (a KeyAction) equal(b KeyAction) bool {
	return equalPtr(a.Tap, b.Tap) &&
		equalPtr(a.Hold, b.Hold) &&
		equalPtr(a.HoldLayer, b.HoldLayer) &&
		equalPtr(a.CustomLabel, b.CustomLabel)
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
