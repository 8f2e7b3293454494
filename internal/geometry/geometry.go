// Package geometry describes the physical keyboard shapes a layout can target
// and maps linear key indices to hand, finger and row.
package geometry

import (
	"errors"
	"fmt"
)

// ErrUnknownGeometry is returned by Parse for identifiers that name no
// supported keyboard.
var ErrUnknownGeometry = errors.New("unknown keyboard geometry")

// Geometry is a supported physical keyboard shape.
type Geometry int

const (
	Moonlander Geometry = iota + 1
	Voyager
	ErgodoxEZ
	Standard
)

// All lists every supported geometry.
var All = []Geometry{Moonlander, Voyager, ErgodoxEZ, Standard}

// Geometry identifiers as written by the Keymapp configurator.
const (
	IDMoonlander = "moonlander"
	IDVoyager    = "voyager"
	IDErgodoxEZ  = "ergodox-ez"
	IDStandard   = "standard"
)

// Parse maps a geometry identifier to its Geometry.
func Parse(id string) (Geometry, error) {
	switch id {
	case IDMoonlander:
		return Moonlander, nil
	case IDVoyager:
		return Voyager, nil
	case IDErgodoxEZ:
		return ErgodoxEZ, nil
	case IDStandard:
		return Standard, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownGeometry, id)
	}
}

// String returns the geometry identifier.
func (g Geometry) String() string {
	switch g {
	case Moonlander:
		return IDMoonlander
	case Voyager:
		return IDVoyager
	case ErgodoxEZ:
		return IDErgodoxEZ
	case Standard:
		return IDStandard
	default:
		return "unknown"
	}
}

// DisplayName returns the marketing name of the keyboard.
func (g Geometry) DisplayName() string {
	switch g {
	case Moonlander:
		return "Moonlander"
	case Voyager:
		return "Voyager"
	case ErgodoxEZ:
		return "ErgoDox EZ"
	case Standard:
		return "Standard"
	default:
		return "Unknown"
	}
}

// KeyCount returns the number of physical keys.
func (g Geometry) KeyCount() int {
	switch g {
	case Moonlander:
		return 72
	case Voyager:
		return 52
	case ErgodoxEZ:
		return 76
	case Standard:
		return 61
	default:
		return 0
	}
}

// IsSplit reports whether the keyboard is built as two separate halves.
func (g Geometry) IsSplit() bool {
	switch g {
	case Moonlander, Voyager, ErgodoxEZ:
		return true
	default:
		return false
	}
}

// Valid reports whether g is one of the supported geometries.
func (g Geometry) Valid() bool {
	return g >= Moonlander && g <= Standard
}

// MarshalText implements encoding.TextMarshaler using the identifier.
func (g Geometry) MarshalText() ([]byte, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownGeometry, int(g))
	}
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *Geometry) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}
