// Package sequence turns key-sequence notation such as "<leader>ff" or
// ":w<CR>" into highlight data for the keys of a layout.
package sequence

import (
	"strings"

	"github.com/rivo/uniseg"
)

// Token is one key press of a sequence. Steps are numbered from 1 and only
// contributing tokens consume a step.
type Token struct {
	Step  int
	Label string
}

var tagLabels = map[string]string{
	"leader":    "Space",
	"space":     "Space",
	"cr":        "Enter",
	"enter":     "Enter",
	"return":    "Enter",
	"esc":       "Esc",
	"escape":    "Esc",
	"tab":       "Tab",
	"bs":        "Bksp",
	"backspace": "Bksp",
	"del":       "Del",
	"delete":    "Del",
}

// Tokenize scans seq left to right.
//
// A run from "<" to the next ">" is a tag, looked up case-insensitively in
// the tag table. A three-character tag of the form "x-y" contributes y,
// upper-cased; the modifier is dropped. Other tags contribute nothing. A "<"
// with no closing ">" is skipped and scanning resumes after it. ":" is
// skipped. Any other user-perceived character (grapheme cluster) is its own
// token, upper-cased, so "e" followed by a combining acute accent is one
// token that matches no plain E key.
func Tokenize(seq string) []Token {
	var tokens []Token
	emit := func(label string) {
		tokens = append(tokens, Token{Step: len(tokens) + 1, Label: label})
	}

	state := -1
	for rest := seq; rest != ""; {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		switch cluster {
		case "<":
			end := strings.IndexByte(rest, '>')
			if end < 0 {
				continue
			}
			if label, ok := tagLabel(strings.ToLower(rest[:end])); ok {
				emit(label)
			}
			rest, state = rest[end+1:], -1
		case ":":
		default:
			emit(strings.ToUpper(cluster))
		}
	}
	return tokens
}

func tagLabel(tag string) (string, bool) {
	if label, ok := tagLabels[tag]; ok {
		return label, true
	}
	if uniseg.GraphemeClusterCount(tag) != 3 {
		return "", false
	}
	g := uniseg.NewGraphemes(tag)
	var parts []string
	for g.Next() {
		parts = append(parts, g.Str())
	}
	if parts[1] != "-" {
		return "", false
	}
	return strings.ToUpper(parts[2]), true
}
