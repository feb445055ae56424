package view

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/theirongolddev/bunkerdash/internal/chart"
	"github.com/theirongolddev/bunkerdash/internal/metrics"
	"github.com/theirongolddev/bunkerdash/internal/model"
)

// KPICard is one headline card.
type KPICard struct {
	Title string
	Value string
}

// RangeOption is one entry of the chart range selector.
type RangeOption struct {
	Value    string
	Label    string
	Selected bool
}

// ActivityRow is a formatted client-activity line. Gained and Lost are
// unsigned; the template prints the signs.
type ActivityRow struct {
	Month  string
	Gained string
	Lost   string
}

// ClientRow is a formatted client line.
type ClientRow struct {
	ID              int64
	Name            string
	Phone           string
	IntegrationDate string
	AdAccountID     string
	TotalSpent      string
}

// AffiliateRow is a formatted affiliate line, shared by the affiliate and
// payout tables.
type AffiliateRow struct {
	ID       int64
	Name     string
	Referred string
	IBAN     string
	Payout   string
	Fixed    bool
}

// Page is the fully formatted dashboard, ready for a template.
type Page struct {
	Title         string
	MRR           KPICard
	Goal          KPICard
	Subscribers   KPICard
	Progress      string
	ProgressLevel metrics.Level
	ProgressLabel string
	TimeRange     model.TimeRange
	Ranges        []RangeOption
	ChartSVG      string
	ChartMessage  string
	Activity      []ActivityRow
	Clients       []ClientRow
	Affiliates    []AffiliateRow
	TotalPayout   string
	Modal         *ModalView
}

// BuildPage projects state into display strings. It never modifies state.
func BuildPage(state *model.State) (Page, error) {
	sum := metrics.Summarize(state)
	p := Page{
		Title:         "Dashboard Bunker AD",
		MRR:           KPICard{Title: "MRR Actuel", Value: metrics.FormatCurrency(sum.MRR)},
		Goal:          KPICard{Title: "Objectif MRR", Value: metrics.FormatCurrency(sum.MRRGoal)},
		Subscribers:   KPICard{Title: "Abonnés Actifs", Value: metrics.FormatInt(sum.ActiveSubscribers)},
		Progress:      strconv.FormatFloat(sum.Progress, 'f', 1, 64),
		ProgressLevel: sum.Level,
		ProgressLabel: metrics.FormatPercent(sum.Progress),
		TimeRange:     state.UI.MrrTimeRange,
		TotalPayout:   metrics.FormatCurrency(sum.TotalPayout),
		Modal:         BuildModal(state),
	}

	for _, r := range model.TimeRanges {
		p.Ranges = append(p.Ranges, RangeOption{
			Value:    string(r),
			Label:    r.Label(),
			Selected: r == state.UI.MrrTimeRange,
		})
	}

	svg, err := ChartSVG(state, state.UI.MrrTimeRange, nil)
	switch {
	case errors.Is(err, chart.ErrInsufficientData):
		p.ChartMessage = chart.InsufficientDataMessage
	case err != nil:
		return Page{}, err
	default:
		p.ChartSVG = svg
	}

	activity := append([]model.ActivityPoint(nil), state.ClientActivity...)
	sort.SliceStable(activity, func(i, j int) bool { return activity[i].Month > activity[j].Month })
	for _, a := range activity {
		p.Activity = append(p.Activity, ActivityRow{
			Month:  metrics.LongMonth(a.Month),
			Gained: metrics.FormatInt(a.Gained),
			Lost:   metrics.FormatInt(a.Lost),
		})
	}

	for _, c := range state.Clients {
		phone := c.Phone
		if phone == "" {
			phone = "N/A"
		}
		p.Clients = append(p.Clients, ClientRow{
			ID:              c.ID,
			Name:            c.Name,
			Phone:           phone,
			IntegrationDate: c.IntegrationDate,
			AdAccountID:     c.AdAccountID,
			TotalSpent:      metrics.FormatCurrency(c.TotalSpent),
		})
	}

	for _, a := range state.Affiliates {
		p.Affiliates = append(p.Affiliates, AffiliateRow{
			ID:       a.ID,
			Name:     a.Name,
			Referred: strings.Join(metrics.ReferredNames(a, state.Clients), ", "),
			IBAN:     a.IBAN,
			Payout:   metrics.FormatCurrency(metrics.AffiliatePayout(a, state.Clients)),
			Fixed:    metrics.HasOverride(a),
		})
	}
	return p, nil
}

// ChartSVG renders the MRR chart for the trailing window r. A non-nil hover
// is a pointer x in viewBox units; out-of-range positions draw no tooltip.
func ChartSVG(state *model.State, r model.TimeRange, hover *float64) (string, error) {
	g, err := chart.Compute(metrics.Window(state.MrrHistory, r), chart.DefaultLayout)
	if err != nil {
		return "", err
	}
	var tip *chart.Tooltip
	if hover != nil {
		if t, ok := g.Hover(*hover); ok {
			tip = &t
		}
	}
	return chart.RenderSVG(g, tip), nil
}
