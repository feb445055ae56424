package tui

import (
	"sort"
	"strings"

	"github.com/theirongolddev/bunkerdash/internal/cli"
	"github.com/theirongolddev/bunkerdash/internal/metrics"
	"github.com/theirongolddev/bunkerdash/internal/model"
	"github.com/theirongolddev/bunkerdash/internal/tui/components"
	"github.com/theirongolddev/bunkerdash/internal/tui/theme"
)

var activityColumns = []components.Column{
	{Title: "Mois", Min: 16, Weight: 2},
	{Title: "Gagnés", Min: 10, Weight: 1, Right: true},
	{Title: "Perdus", Min: 10, Weight: 1, Right: true},
	{Title: "Solde", Min: 8, Weight: 1, Right: true},
}

func (a App) renderActivityTab(cw int) string {
	t := theme.Active
	if len(a.state.ClientActivity) == 0 {
		return components.ContentCard("Activité clients", emptyHint("Aucune activité enregistrée.", "[n] ajouter un mois"), cw)
	}

	// Oldest first for the sparklines, newest first for the table.
	activity := append([]model.ActivityPoint(nil), a.state.ClientActivity...)
	sort.SliceStable(activity, func(i, j int) bool { return activity[i].Month < activity[j].Month })

	gained := make([]float64, len(activity))
	lost := make([]float64, len(activity))
	for i, p := range activity {
		gained[i] = float64(p.Gained)
		lost[i] = float64(p.Lost)
	}

	spark := components.ContentCard("Tendance",
		"Gagnés "+components.Sparkline(gained, t.Green)+"   Perdus "+components.Sparkline(lost, t.Red),
		cw)

	visible := a.contentHeight() - tableChrome - 3
	rows := make([][]string, 0, len(activity))
	for i := len(activity) - 1; i >= 0 && len(rows) < max(visible, 1); i-- {
		p := activity[i]
		rows = append(rows, []string{
			metrics.LongMonth(p.Month),
			metrics.FormatSigned("+", p.Gained),
			metrics.FormatSigned("-", p.Lost),
			cli.FormatNet(p.Gained, p.Lost),
		})
	}

	sum := metrics.Summarize(a.state)
	inner := components.CardInnerWidth(cw)
	var b strings.Builder
	b.WriteString(components.Table(activityColumns, rows, -1, inner))
	b.WriteString("\n")
	b.WriteString(footer(inner,
		metrics.FormatInt(len(activity))+" mois",
		"Dernier mois "+cli.FormatNet(sum.LatestGained, sum.LatestLost),
		t.TextMuted))
	return spark + "\n" + components.ContentCard("Activité clients", b.String(), cw)
}
