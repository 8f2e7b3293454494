package sequence

import (
	"strings"

	"github.com/victorgalvez56/nvim-voice/internal/layout"
)

// Explain renders seq as the physical keys a typist presses, for example
// "Space (left thumb) -> F (left index) -> F (left index)". Tokens that name
// no key, or whose key has no position, are shown by label alone.
func Explain(seq string, l *layout.KeyboardLayout) string {
	index := labelIndex(l)
	var parts []string
	for _, tok := range Tokenize(seq) {
		part := tok.Label
		if i, ok := index[tok.Label]; ok {
			if pos, ok := l.PositionFor(i); ok {
				part += " (" + pos.FingerHint() + ")"
			}
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, " -> ")
}
