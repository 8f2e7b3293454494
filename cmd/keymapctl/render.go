package main

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/victorgalvez56/nvim-voice/internal/geometry"
	"github.com/victorgalvez56/nvim-voice/internal/layout"
	"github.com/victorgalvez56/nvim-voice/internal/sequence"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	keyStyle = lipgloss.NewStyle().
			Width(7).
			Align(lipgloss.Center).
			Foreground(lipgloss.Color("245"))
	pressedStyle = keyStyle.
			Foreground(lipgloss.Color("212")).
			Bold(true)
)

const halfGap = "      "

// renderDiagram draws the base layer row by row, left half then right
// half, marking pressed keys with their step numbers.
func renderDiagram(l *layout.KeyboardLayout, hm sequence.HighlightMap) string {
	base, _ := l.Base()

	type rowCells struct {
		left, right []string
	}
	var order []geometry.Row
	rows := make(map[geometry.Row]*rowCells)

	for _, seg := range geometry.Segments(l.Geometry) {
		rc, ok := rows[seg.Row]
		if !ok {
			rc = &rowCells{}
			rows[seg.Row] = rc
			order = append(order, seg.Row)
		}
		for i := seg.Start; i < seg.Start+seg.Count; i++ {
			cell := renderKey(base, i, hm.Steps(i))
			if seg.Hand == geometry.Left {
				rc.left = append(rc.left, cell)
			} else {
				rc.right = append(rc.right, cell)
			}
		}
	}

	lines := make([]string, 0, len(order))
	for _, r := range order {
		rc := rows[r]
		left := lipgloss.JoinHorizontal(lipgloss.Top, rc.left...)
		right := lipgloss.JoinHorizontal(lipgloss.Top, rc.right...)
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, left, halfGap, right))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderKey(base layout.KeyboardLayer, i int, steps []int) string {
	label := "·"
	if key, ok := base.Key(i); ok && !key.IsEmpty() && !key.IsTransparent() {
		label = truncate(key.DisplayLabel(), 5)
	}
	if len(steps) == 0 {
		return keyStyle.Render(label)
	}
	return pressedStyle.Render(label + superscript(steps[0]))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var superscripts = []rune("⁰¹²³⁴⁵⁶⁷⁸⁹")

func superscript(n int) string {
	var b strings.Builder
	for _, d := range strconv.Itoa(n) {
		b.WriteRune(superscripts[d-'0'])
	}
	return b.String()
}
