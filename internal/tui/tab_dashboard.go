package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/bunkerdash/internal/chart"
	"github.com/theirongolddev/bunkerdash/internal/cli"
	"github.com/theirongolddev/bunkerdash/internal/metrics"
	"github.com/theirongolddev/bunkerdash/internal/model"
	"github.com/theirongolddev/bunkerdash/internal/tui/components"
	"github.com/theirongolddev/bunkerdash/internal/tui/theme"
)

const (
	minChartHeight = 6
	maxChartHeight = 20
	// Chart card chrome: two border rows, the title and the tooltip row.
	chartChrome = 4
)

func windowOf(s *model.State) []model.MrrPoint {
	return metrics.Window(s.MrrHistory, s.UI.MrrTimeRange)
}

// dashboardTop renders the KPI cards and the goal bar above the chart.
func (a App) dashboardTop(cw int) string {
	t := theme.Active
	sum := metrics.Summarize(a.state)

	mrrDelta := ""
	if n := len(a.state.MrrHistory); n >= 2 {
		mrrDelta = cli.FormatDelta(a.state.MrrHistory[n-1].Value, a.state.MrrHistory[n-2].Value) + " sur un mois"
	}

	cards := []components.Metric{
		{Label: "MRR Actuel", Value: metrics.FormatCurrency(sum.MRR), Delta: mrrDelta, Color: t.AccentBright},
		{Label: "Objectif MRR", Value: metrics.FormatCurrency(sum.MRRGoal), Delta: "Reste " + metrics.FormatCurrency(max(sum.MRRGoal-sum.MRR, 0))},
		{
			Label: "Abonnés Actifs",
			Value: metrics.FormatInt(sum.ActiveSubscribers),
			Delta: metrics.FormatSigned("+", sum.LatestGained) + " / " + metrics.FormatSigned("-", sum.LatestLost) + " ce mois",
		},
		{Label: "Paiements affiliés", Value: metrics.FormatCurrency(sum.TotalPayout), Delta: metrics.FormatInt(sum.Affiliates) + " affiliés"},
	}

	goal := components.ContentCard(
		"Progression vers l'objectif",
		components.GoalBar(sum.Progress, components.CardInnerWidth(cw)),
		cw,
	)
	return components.MetricCardRow(cards, cw) + "\n" + goal
}

func (a App) chartSize(cw, contentH, topH int) (int, int) {
	h := contentH - topH - chartChrome
	return components.CardInnerWidth(cw), min(max(h, minChartHeight), maxChartHeight)
}

func (a App) renderDashboardTab(cw, contentH int) string {
	top := a.dashboardTop(cw)
	w, h := a.chartSize(cw, contentH, lipgloss.Height(top))

	title := "Évolution du MRR · " + a.state.UI.MrrTimeRange.Label()
	body, err := components.LineChart(a.window(), w, h, a.hover)
	if errors.Is(err, chart.ErrInsufficientData) {
		body = chart.InsufficientDataMessage
	} else if err != nil {
		body = err.Error()
	}

	var b strings.Builder
	b.WriteString(top)
	b.WriteString("\n")
	b.WriteString(components.ContentCard(title, body, cw))
	return b.String()
}

// chartHoverAt maps a screen position to the chart point under it, or -1.
// The geometry mirrors viewMain: one header row, the top cards, then the
// chart card's border and title.
func (a App) chartHoverAt(x, y int) int {
	cw := a.contentWidth()
	topH := lipgloss.Height(a.dashboardTop(cw))
	w, h := a.chartSize(cw, a.contentHeight(), topH)

	col := x - a.contentLeft() - 2
	row := y - 1 - topH - 2
	if row < 0 || row >= h || col < 0 || col >= w {
		return -1
	}
	return components.HoverIndex(col, w, h, len(a.window()))
}
