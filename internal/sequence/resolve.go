package sequence

import (
	"slices"

	"github.com/victorgalvez56/nvim-voice/internal/layout"
)

// HighlightMap maps a key index to the steps, in increasing order, at which
// that key is pressed.
type HighlightMap map[int][]int

// Indices returns the highlighted key indices in ascending order.
func (h HighlightMap) Indices() []int {
	out := make([]int, 0, len(h))
	for i := range h {
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}

// Steps returns the steps at which index is pressed, or nil.
func (h HighlightMap) Steps(index int) []int {
	return h[index]
}

// Resolve maps each token of seq to a key on the base layer of l. Tokens
// naming no key are dropped. Resolve never fails; a nil layout or one
// without layers yields an empty map.
func Resolve(seq string, l *layout.KeyboardLayout) HighlightMap {
	out := HighlightMap{}
	index := labelIndex(l)
	if len(index) == 0 {
		return out
	}
	for _, tok := range Tokenize(seq) {
		if i, ok := index[tok.Label]; ok {
			out[i] = append(out[i], tok.Step)
		}
	}
	return out
}

// labelIndex maps each label on the base layer to the first key carrying it.
// A key's label is its tap label, else its hold label. Transparent keys are
// never indexed.
func labelIndex(l *layout.KeyboardLayout) map[string]int {
	base, ok := l.Base()
	if !ok {
		return nil
	}
	index := make(map[string]int, len(base.Keys))
	for i, key := range base.Keys {
		if key.IsTransparent() {
			continue
		}
		label := keyLabel(key)
		if label == "" {
			continue
		}
		if _, seen := index[label]; !seen {
			index[label] = i
		}
	}
	return index
}

func keyLabel(key layout.KeyAction) string {
	switch {
	case key.Tap != nil:
		return key.Tap.Label
	case key.Hold != nil:
		return key.Hold.Label
	default:
		return ""
	}
}
