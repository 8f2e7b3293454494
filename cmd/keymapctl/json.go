package main

import (
	"github.com/victorgalvez56/nvim-voice/internal/keyboard"
	"github.com/victorgalvez56/nvim-voice/internal/layout"
	"github.com/victorgalvez56/nvim-voice/internal/sequence"
)

type statusOut struct {
	Title    string `json:"title"`
	Geometry string `json:"geometry"`
	Origin   string `json:"origin"`
	Version  uint64 `json:"version"`
	Fallback string `json:"fallback,omitempty"`
}

type positionOut struct {
	Hand   string `json:"hand"`
	Finger string `json:"finger"`
	Row    string `json:"row"`
}

type keyOut struct {
	Index     int          `json:"index"`
	Label     string       `json:"label"`
	Tap       string       `json:"tap,omitempty"`
	Hold      string       `json:"hold,omitempty"`
	HoldLayer *int         `json:"hold_layer,omitempty"`
	Position  *positionOut `json:"position,omitempty"`
	Steps     []int        `json:"steps,omitempty"`
}

func layoutJSON(st keyboard.Status, keys []layout.KeyDescription) any {
	out := struct {
		Layout statusOut `json:"layout"`
		Keys   []keyOut  `json:"keys"`
	}{
		Layout: toStatus(st),
		Keys:   make([]keyOut, 0, len(keys)),
	}
	for _, k := range keys {
		ko := keyOut{
			Index:     k.Index,
			Label:     k.Label,
			Tap:       k.Tap,
			Hold:      k.Hold,
			HoldLayer: k.HoldLayer,
		}
		if k.HasPosition {
			ko.Position = &positionOut{
				Hand:   k.Position.Hand.String(),
				Finger: k.Position.Finger.String(),
				Row:    k.Position.Row.String(),
			}
		}
		out.Keys = append(out.Keys, ko)
	}
	return out
}

func resolveJSON(seq string, l *layout.KeyboardLayout, hm sequence.HighlightMap) any {
	out := struct {
		Sequence string   `json:"sequence"`
		Layout   string   `json:"layout"`
		Keys     []keyOut `json:"keys"`
	}{
		Sequence: seq,
		Layout:   l.Title,
		Keys:     make([]keyOut, 0, len(hm)),
	}
	for _, idx := range hm.Indices() {
		ko := keyOut{Index: idx, Label: labelAt(l, idx), Steps: hm.Steps(idx)}
		if p, ok := l.PositionFor(idx); ok {
			ko.Position = &positionOut{Hand: p.Hand.String(), Finger: p.Finger.String(), Row: p.Row.String()}
		}
		out.Keys = append(out.Keys, ko)
	}
	return out
}

func toStatus(st keyboard.Status) statusOut {
	return statusOut{
		Title:    st.Title,
		Geometry: st.Geometry.String(),
		Origin:   string(st.Origin),
		Version:  st.Version,
		Fallback: st.Reason,
	}
}
