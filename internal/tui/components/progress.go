package components

import (
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/bunkerdash/internal/metrics"
	"github.com/theirongolddev/bunkerdash/internal/tui/theme"
)

// GoalBar renders the MRR goal bar. pct is on a 0-100 scale; the fill color
// follows the progress level.
func GoalBar(pct float64, width int) string {
	t := theme.Active

	pct = min(max(pct, 0), 100)
	color := t.Level(metrics.ProgressLevel(pct))

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(max(width-9, 4)),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return bar.ViewAs(pct/100) + spaceStyle.Render(" ") + pctStyle.Render(metrics.FormatPercent(pct))
}
