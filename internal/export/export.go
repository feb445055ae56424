// Package export writes dashboard tables as CSV.
package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/bunkerdash/internal/metrics"
	"github.com/theirongolddev/bunkerdash/internal/model"
)

// Kind names an exportable table.
type Kind string

const (
	KindClients  Kind = "clients"
	KindPayouts  Kind = "payouts"
	KindActivity Kind = "activity"
	KindMRR      Kind = "mrr"
)

// Kinds lists every exportable table.
var Kinds = []Kind{KindClients, KindPayouts, KindActivity, KindMRR}

// ParseKind validates a table name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown table %q (want clients, payouts, activity or mrr)", s)
}

type clientRecord struct {
	ID              int64  `csv:"id"`
	Name            string `csv:"name"`
	Phone           string `csv:"phone"`
	IntegrationDate string `csv:"integration_date"`
	AdAccountID     string `csv:"ad_account_id"`
	TotalSpent      string `csv:"total_spent"`
}

type payoutRecord struct {
	ID          int64  `csv:"affiliate_id"`
	Name        string `csv:"affiliate"`
	IBAN        string `csv:"iban"`
	Referred    string `csv:"referred_clients"`
	Fixed       bool   `csv:"fixed"`
	MonthlyPaid string `csv:"monthly_payout"`
}

type activityRecord struct {
	Month  string `csv:"month"`
	Gained int    `csv:"gained"`
	Lost   int    `csv:"lost"`
	Net    int    `csv:"net"`
}

type mrrRecord struct {
	Month string `csv:"month"`
	Value string `csv:"mrr"`
}

func amount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Write marshals table k of state to w. Amounts are plain decimals with two
// places so spreadsheets parse them regardless of locale.
func Write(w io.Writer, k Kind, state *model.State) error {
	var records any
	switch k {
	case KindClients:
		records = clientRecords(state)
	case KindPayouts:
		records = payoutRecords(state)
	case KindActivity:
		records = activityRecords(state)
	case KindMRR:
		records = mrrRecords(state)
	default:
		return fmt.Errorf("unknown table %q", k)
	}
	if err := gocsv.Marshal(records, w); err != nil {
		return fmt.Errorf("writing %s csv: %w", k, err)
	}
	return nil
}

func clientRecords(state *model.State) []*clientRecord {
	out := make([]*clientRecord, 0, len(state.Clients))
	for _, c := range state.Clients {
		out = append(out, &clientRecord{
			ID:              c.ID,
			Name:            c.Name,
			Phone:           c.Phone,
			IntegrationDate: c.IntegrationDate,
			AdAccountID:     c.AdAccountID,
			TotalSpent:      amount(c.TotalSpent),
		})
	}
	return out
}

func payoutRecords(state *model.State) []*payoutRecord {
	out := make([]*payoutRecord, 0, len(state.Affiliates))
	for _, a := range state.Affiliates {
		out = append(out, &payoutRecord{
			ID:          a.ID,
			Name:        a.Name,
			IBAN:        a.IBAN,
			Referred:    strings.Join(metrics.ReferredNames(a, state.Clients), "; "),
			Fixed:       metrics.HasOverride(a),
			MonthlyPaid: amount(metrics.AffiliatePayout(a, state.Clients)),
		})
	}
	return out
}

func activityRecords(state *model.State) []*activityRecord {
	points := append([]model.ActivityPoint(nil), state.ClientActivity...)
	sort.SliceStable(points, func(i, j int) bool { return points[i].Month < points[j].Month })
	out := make([]*activityRecord, 0, len(points))
	for _, p := range points {
		out = append(out, &activityRecord{Month: p.Month, Gained: p.Gained, Lost: p.Lost, Net: p.Gained - p.Lost})
	}
	return out
}

func mrrRecords(state *model.State) []*mrrRecord {
	out := make([]*mrrRecord, 0, len(state.MrrHistory))
	for _, p := range state.MrrHistory {
		out = append(out, &mrrRecord{Month: p.Month, Value: amount(p.Value)})
	}
	return out
}
