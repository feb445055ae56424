package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/bunkerdash/internal/cli"
	"github.com/theirongolddev/bunkerdash/internal/metrics"
	"github.com/theirongolddev/bunkerdash/internal/model"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print KPIs, clients and payouts as tables",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if !cli.IsTerminal(cmd.OutOrStdout()) {
		cli.DisableColor()
	}
	if !s.stored {
		info("  Aucune donnée enregistrée, affichage des valeurs par défaut.\n")
	}

	state := s.dispatch.Store().State()
	fmt.Print(renderSummary(state))
	return nil
}

func renderSummary(state *model.State) string {
	sum := metrics.Summarize(state)
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(cli.RenderTitle("DASHBOARD BUNKER AD"))
	b.WriteString("\n\n")

	kv := [][2]string{
		{"MRR Actuel", metrics.FormatCurrency(sum.MRR)},
		{"Objectif MRR", metrics.FormatCurrency(sum.MRRGoal)},
		{"Progression", cli.RenderProgressBar(sum.Progress, 30)},
		{"Abonnés Actifs", metrics.FormatInt(sum.ActiveSubscribers)},
	}
	if n := len(state.MrrHistory); n >= 2 {
		kv = append(kv, [2]string{"Sur un mois", cli.FormatDelta(state.MrrHistory[n-1].Value, state.MrrHistory[n-2].Value)})
	}
	window := metrics.Window(state.MrrHistory, state.UI.MrrTimeRange)
	if len(window) > 0 {
		vals := make([]float64, len(window))
		for i, p := range window {
			vals[i] = p.Value
		}
		kv = append(kv, [2]string{"MRR · " + state.UI.MrrTimeRange.Label(), cli.RenderSparkline(vals)})
	}
	b.WriteString(cli.RenderKeyValues(kv))
	b.WriteString("\n")

	clients := cli.Table{
		Title:    "Clients",
		Headers:  []string{"Nom", "Téléphone", "Intégration", "Compte publicitaire", "Dépensé"},
		LeftCols: []int{0, 1, 2, 3},
	}
	for _, c := range state.Clients {
		phone := c.Phone
		if phone == "" {
			phone = "N/A"
		}
		clients.Rows = append(clients.Rows, []string{
			c.Name, phone, metrics.FormatDate(c.IntegrationDate), c.AdAccountID, metrics.FormatCurrency(c.TotalSpent),
		})
	}
	if len(clients.Rows) > 0 {
		clients.Rows = append(clients.Rows, []string{"---"}, []string{"Total", "", "", "", metrics.FormatCurrency(sum.TotalSpent)})
		b.WriteString(cli.RenderTable(clients))
		b.WriteString("\n")
	}

	activity := cli.Table{
		Title:   "Activité clients",
		Headers: []string{"Mois", "Gagnés", "Perdus", "Solde"},
	}
	points := append([]model.ActivityPoint(nil), state.ClientActivity...)
	sort.SliceStable(points, func(i, j int) bool { return points[i].Month > points[j].Month })
	for _, p := range points {
		activity.Rows = append(activity.Rows, []string{
			metrics.LongMonth(p.Month),
			metrics.FormatSigned("+", p.Gained),
			metrics.FormatSigned("-", p.Lost),
			cli.FormatNet(p.Gained, p.Lost),
		})
	}
	if len(activity.Rows) > 0 {
		b.WriteString(cli.RenderTable(activity))
		b.WriteString("\n")
	}

	payouts := cli.Table{
		Title:    "Paiements affiliés",
		Headers:  []string{"Affilié", "Clients parrainés", "IBAN", "Mode", "Paiement"},
		LeftCols: []int{0, 1, 2, 3},
	}
	for _, a := range state.Affiliates {
		referred := strings.Join(metrics.ReferredNames(a, state.Clients), ", ")
		if referred == "" {
			referred = "-"
		}
		payouts.Rows = append(payouts.Rows, []string{
			a.Name,
			referred,
			a.IBAN,
			cli.FormatOverride(metrics.HasOverride(a)),
			metrics.FormatCurrency(metrics.AffiliatePayout(a, state.Clients)),
		})
	}
	if len(payouts.Rows) > 0 {
		payouts.Rows = append(payouts.Rows, []string{"---"}, []string{"Total", "", "", "", metrics.FormatCurrency(sum.TotalPayout)})
		b.WriteString(cli.RenderTable(payouts))
	}
	return b.String()
}
