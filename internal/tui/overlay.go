package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// placeCentered draws box over the middle of base. Rows of base outside the
// box keep their styling; ANSI sequences are cut at cell boundaries.
func placeCentered(base, box string, width, height int) string {
	if box == "" {
		return base
	}
	rows := strings.Split(base, "\n")
	boxRows := strings.Split(box, "\n")

	top := max((height-len(boxRows))/2, 1)
	left := max((width-lipgloss.Width(box))/2, 1)

	for i, fg := range boxRows {
		row := top + i
		if row >= len(rows) {
			break
		}
		rows[row] = spliceRow(rows[row], fg, left)
	}
	return strings.Join(rows, "\n")
}

// spliceRow replaces the cells of bg starting at col with fg.
func spliceRow(bg, fg string, col int) string {
	end := col + lipgloss.Width(fg)
	var b strings.Builder
	b.WriteString(ansi.Truncate(bg, col, ""))
	b.WriteString(ansi.ResetStyle)
	b.WriteString(fg)
	b.WriteString(ansi.ResetStyle)
	if w := lipgloss.Width(bg); end < w {
		b.WriteString(ansi.Cut(bg, end, w))
	}
	return b.String()
}
