package layout

import "github.com/victorgalvez56/nvim-voice/internal/geometry"

// KeyDescription summarizes one base-layer key for listings.
type KeyDescription struct {
	Index       int
	Position    geometry.PhysicalPosition
	HasPosition bool
	Label       string
	Tap         string
	Hold        string
	HoldLayer   *int
}

// Describe lists the base-layer keys that do something, in index order.
// Empty and transparent keys are skipped.
func Describe(l *KeyboardLayout) []KeyDescription {
	base, ok := l.Base()
	if !ok {
		return nil
	}
	var out []KeyDescription
	for i, key := range base.Keys {
		if key.IsEmpty() || key.IsTransparent() {
			continue
		}
		d := KeyDescription{
			Index:     i,
			Label:     key.DisplayLabel(),
			HoldLayer: key.HoldLayer,
		}
		d.Position, d.HasPosition = l.PositionFor(i)
		if key.Tap != nil {
			d.Tap = key.Tap.Label
		}
		if key.Hold != nil {
			d.Hold = key.Hold.Label
		}
		out = append(out, d)
	}
	return out
}
