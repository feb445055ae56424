package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/bunkerdash/internal/tui/theme"
)

// Column is one table column. Weight shares the space left after the fixed
// minimum widths; Right aligns cells to the right.
type Column struct {
	Title  string
	Min    int
	Weight int
	Right  bool
}

// Table renders a header row and data rows into width columns. The row at
// cursor is highlighted; pass -1 for none.
func Table(cols []Column, rows [][]string, cursor, width int) string {
	t := theme.Active
	widths := columnWidths(cols, width)

	headerStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)
	ruleStyle := lipgloss.NewStyle().Foreground(t.Border).Background(t.Surface)

	var b strings.Builder
	b.WriteString(renderCells(cols, widths, titles(cols), headerStyle))
	b.WriteString("\n")
	b.WriteString(ruleStyle.Render(strings.Repeat("─", sum(widths))))
	for i, row := range rows {
		b.WriteString("\n")
		style := rowStyle
		if i == cursor {
			style = selStyle
		}
		b.WriteString(renderCells(cols, widths, row, style))
	}
	return b.String()
}

func titles(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Title
	}
	return out
}

func sum(ws []int) int {
	total := 0
	for _, w := range ws {
		total += w
	}
	return total
}

// columnWidths gives every column its minimum, then splits the rest by
// weight. The last weighted column absorbs rounding.
func columnWidths(cols []Column, width int) []int {
	widths := make([]int, len(cols))
	used, weights := 0, 0
	for i, c := range cols {
		widths[i] = c.Min
		used += c.Min
		weights += c.Weight
	}
	spare := width - used
	if spare <= 0 || weights == 0 {
		return widths
	}
	last := -1
	given := 0
	for i, c := range cols {
		if c.Weight == 0 {
			continue
		}
		extra := spare * c.Weight / weights
		widths[i] += extra
		given += extra
		last = i
	}
	widths[last] += spare - given
	return widths
}

func renderCells(cols []Column, widths []int, cells []string, style lipgloss.Style) string {
	var b strings.Builder
	for i, c := range cols {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		w := widths[i]
		inner := max(w-1, 1)
		cell = truncate(cell, inner)
		gap := strings.Repeat(" ", max(inner-lipgloss.Width(cell), 0))
		if c.Right {
			cell = gap + cell + " "
		} else {
			cell = " " + cell + gap
		}
		b.WriteString(style.Render(cell))
	}
	return b.String()
}

func truncate(s string, limit int) string {
	if lipgloss.Width(s) <= limit {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
