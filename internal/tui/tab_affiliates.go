package tui

import (
	"strings"

	"github.com/theirongolddev/bunkerdash/internal/cli"
	"github.com/theirongolddev/bunkerdash/internal/metrics"
	"github.com/theirongolddev/bunkerdash/internal/tui/components"
	"github.com/theirongolddev/bunkerdash/internal/tui/theme"
)

var affiliateColumns = []components.Column{
	{Title: "Nom", Min: 12, Weight: 2},
	{Title: "Clients parrainés", Min: 16, Weight: 4},
	{Title: "IBAN", Min: 12, Weight: 2},
}

var payoutColumns = []components.Column{
	{Title: "Affilié", Min: 12, Weight: 2},
	{Title: "Parrainés", Min: 10, Right: true},
	{Title: "Mode", Min: 8},
	{Title: "Paiement mensuel", Min: 16, Weight: 1, Right: true},
}

func (a App) renderAffiliatesTab(cw int) string {
	t := theme.Active
	affs := a.state.Affiliates
	if len(affs) == 0 {
		return components.ContentCard("Affiliés", emptyHint("Aucun affilié.", "[n] ajouter un affilié"), cw)
	}

	cursor := a.cursor[tabAffiliates]
	start, end := scrollWindow(len(affs), cursor, a.contentHeight()-tableChrome)
	rows := make([][]string, 0, end-start)
	for _, af := range affs[start:end] {
		referred := strings.Join(metrics.ReferredNames(af, a.state.Clients), ", ")
		if referred == "" {
			referred = "-"
		}
		rows = append(rows, []string{af.Name, referred, af.IBAN})
	}

	inner := components.CardInnerWidth(cw)
	var b strings.Builder
	b.WriteString(components.Table(affiliateColumns, rows, cursor-start, inner))
	b.WriteString("\n")
	b.WriteString(footer(inner, metrics.FormatInt(len(affs))+" affiliés", "[e] modifier  [x] supprimer", t.TextMuted))
	return components.FocusedCard("Affiliés", b.String(), cw)
}

func (a App) renderPayoutsTab(cw int) string {
	t := theme.Active
	affs := a.state.Affiliates
	if len(affs) == 0 {
		return components.ContentCard("Paiements", emptyHint("Aucun affilié.", "Ajoutez des affiliés dans l'onglet Affiliés"), cw)
	}

	cursor := a.cursor[tabPayouts]
	start, end := scrollWindow(len(affs), cursor, a.contentHeight()-tableChrome)
	rows := make([][]string, 0, end-start)
	for _, af := range affs[start:end] {
		mode := cli.FormatOverride(metrics.HasOverride(af))
		if mode == "" {
			mode = "calculé"
		}
		rows = append(rows, []string{
			af.Name,
			metrics.FormatInt(len(af.ReferredIDs)),
			mode,
			metrics.FormatCurrency(metrics.AffiliatePayout(af, a.state.Clients)),
		})
	}

	inner := components.CardInnerWidth(cw)
	var b strings.Builder
	b.WriteString(components.Table(payoutColumns, rows, cursor-start, inner))
	b.WriteString("\n")
	b.WriteString(footer(inner,
		"[e] définir un montant fixe",
		"Total "+metrics.FormatCurrency(metrics.TotalPayout(affs, a.state.Clients)),
		t.Accent))
	return components.FocusedCard("Paiements", b.String(), cw)
}
