package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/bunkerdash/internal/metrics"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorYellow    = lipgloss.Color("#D0A215")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	labelStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// LevelColor maps a goal progress level to its bar color.
func LevelColor(l metrics.Level) lipgloss.Color {
	switch l {
	case metrics.LevelLow:
		return ColorRed
	case metrics.LevelMedium:
		return ColorYellow
	default:
		return ColorGreen
	}
}

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	// LeftCols lists columns aligned left; the others are right-aligned.
	// When nil only the first column is left-aligned.
	LeftCols []int
}

func (t Table) leftAligned(col int) bool {
	if t.LeftCols == nil {
		return col == 0
	}
	for _, c := range t.LeftCols {
		if c == col {
			return true
		}
	}
	return false
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderKeyValues renders aligned "label  value" lines.
func RenderKeyValues(pairs [][2]string) string {
	width := 0
	for _, p := range pairs {
		width = max(width, lipgloss.Width(p[0]))
	}
	var b strings.Builder
	for _, p := range pairs {
		b.WriteString("  ")
		b.WriteString(labelStyle.Render(pad(p[0], width, true)))
		b.WriteString("  ")
		b.WriteString(valueStyle.Render(p[1]))
		b.WriteString("\n")
	}
	return b.String()
}

// pad fills s with spaces to width display cells. Formatted amounts carry
// narrow no-break spaces, so widths are measured in cells, not bytes.
func pad(s string, width int, left bool) string {
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	if left {
		return s + strings.Repeat(" ", gap)
	}
	return strings.Repeat(" ", gap) + s
}

func rule(widths []int, l, m, r string) string {
	var b strings.Builder
	b.WriteString(dimStyle.Render(l))
	for i, w := range widths {
		b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
		if i < len(widths)-1 {
			b.WriteString(dimStyle.Render(m))
		}
	}
	b.WriteString(dimStyle.Render(r))
	b.WriteString("\n")
	return b.String()
}

// RenderTable renders a bordered table with headers and rows.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	numCols := len(t.Headers)
	if numCols == 0 {
		numCols = len(t.Rows[0])
	}

	widths := make([]int, numCols)
	for i, h := range t.Headers {
		widths[i] = max(widths[i], lipgloss.Width(h))
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < numCols {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	b.WriteString(rule(widths, "╭", "┬", "╮"))

	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, h := range t.Headers {
			b.WriteString(headerStyle.Render(" " + pad(h, widths[i], t.leftAligned(i)) + " "))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
		b.WriteString(rule(widths, "├", "┼", "┤"))
	}

	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			b.WriteString(rule(widths, "├", "┼", "┤"))
			continue
		}

		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(valueStyle.Render(" " + pad(cell, widths[i], t.leftAligned(i)) + " "))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}

	b.WriteString(rule(widths, "╰", "┴", "╯"))
	return b.String()
}

// RenderProgressBar renders the goal progress bar, colored by level.
func RenderProgressBar(pct float64, width int) string {
	if width < 1 {
		return ""
	}
	pct = min(max(pct, 0), 100)
	filled := int(pct / 100 * float64(width))

	bar := lipgloss.NewStyle().
		Foreground(LevelColor(metrics.ProgressLevel(pct))).
		Render(strings.Repeat("█", filled))
	return "[" + bar + dimStyle.Render(strings.Repeat("░", width-filled)) + "] " +
		metrics.FormatPercent(pct)
}

// RenderSparkline generates a unicode block sparkline from a series of values.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	top := values[0]
	for _, v := range values[1:] {
		top = max(top, v)
	}
	if top == 0 {
		top = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int(v / top * float64(len(blocks)-1))
		idx = min(max(idx, 0), len(blocks)-1)
		b.WriteRune(blocks[idx])
	}
	return b.String()
}
