// Package components provides reusable TUI widgets for the dashboard.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/bunkerdash/internal/tui/theme"
)

// LayoutRow distributes totalWidth into n widths that sum to exactly totalWidth.
// First items absorb the remainder from integer division.
func LayoutRow(totalWidth, n int) []int {
	if n <= 0 {
		return nil
	}
	base := totalWidth / n
	remainder := totalWidth % n
	widths := make([]int, n)
	for i := range widths {
		widths[i] = base
		if i < remainder {
			widths[i]++
		}
	}
	return widths
}

// Metric is one KPI card.
type Metric struct {
	Label string
	Value string
	Delta string
	// Color overrides the value color when set.
	Color lipgloss.Color
}

// MetricCard renders a KPI card with label, value and an optional subline.
// outerWidth is the total rendered width including border.
func MetricCard(m Metric, outerWidth int) string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		BorderBackground(t.Background).
		Background(t.Surface).
		Width(max(outerWidth-2, 10)).
		Padding(0, 1)

	valueColor := t.TextPrimary
	if m.Color != "" {
		valueColor = m.Color
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(valueColor).Background(t.Surface).Bold(true)
	deltaStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	content := labelStyle.Render(m.Label) + "\n" + valueStyle.Render(m.Value)
	if m.Delta != "" {
		content += "\n" + deltaStyle.Render(m.Delta)
	}
	return cardStyle.Render(content)
}

// MetricCardRow renders a row of KPI cards whose widths sum to totalWidth.
func MetricCardRow(cards []Metric, totalWidth int) string {
	if len(cards) == 0 {
		return ""
	}
	widths := LayoutRow(totalWidth, len(cards))
	rendered := make([]string, len(cards))
	for i, c := range cards {
		rendered[i] = MetricCard(c, widths[i])
	}
	return CardRow(rendered)
}

// ContentCard renders a bordered content card with an optional title.
// outerWidth controls the total rendered width including border.
func ContentCard(title, body string, outerWidth int) string {
	return contentCard(title, body, outerWidth, false)
}

// FocusedCard is a ContentCard with an accent border, used for the table
// that owns the row cursor.
func FocusedCard(title, body string, outerWidth int) string {
	return contentCard(title, body, outerWidth, true)
}

func contentCard(title, body string, outerWidth int, focused bool) string {
	t := theme.Active

	border := t.Border
	if focused {
		border = t.BorderAccent
	}

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		BorderBackground(t.Background).
		Background(t.Surface).
		Width(max(outerWidth-2, 10)).
		Padding(0, 1)

	titleStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Bold(true)

	content := ""
	if title != "" {
		content = titleStyle.Render(title) + "\n"
	}
	content += body

	return cardStyle.Render(content)
}

// CardRow joins pre-rendered cards horizontally. Shorter cards are padded
// with background-colored lines so the row has no unstyled gaps.
func CardRow(cards []string) string {
	if len(cards) == 0 {
		return ""
	}

	height := 0
	for _, c := range cards {
		height = max(height, lipgloss.Height(c))
	}

	fill := lipgloss.NewStyle().Background(theme.Active.Background)
	padded := make([]string, len(cards))
	for i, c := range cards {
		h := lipgloss.Height(c)
		if h == height {
			padded[i] = c
			continue
		}
		blank := fill.Render(strings.Repeat(" ", lipgloss.Width(c)))
		padded[i] = c + strings.Repeat("\n"+blank, height-h)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, padded...)
}

// CardInnerWidth returns the usable text width inside a ContentCard
// given its outer width (subtracts border + padding).
func CardInnerWidth(outerWidth int) int {
	return max(outerWidth-4, 10)
}
