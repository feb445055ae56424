package metrics

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/bunkerdash/internal/model"
)

// PayoutRate is the share of referred client spend paid to an affiliate.
var PayoutRate = decimal.RequireFromString("0.3")

// HasOverride reports whether a is paid a fixed amount. An override of 0
// counts as unset.
func HasOverride(a model.Affiliate) bool {
	return a.MonthlyPayoutOverride != nil && *a.MonthlyPayoutOverride != 0
}

// AffiliatePayout returns the monthly payout owed to a: the override when
// HasOverride, otherwise 30% of the total spend of the clients a refers.
func AffiliatePayout(a model.Affiliate, clients []model.Client) float64 {
	if HasOverride(a) {
		return *a.MonthlyPayoutOverride
	}
	referred := lo.Filter(clients, func(c model.Client, _ int) bool {
		return lo.Contains(a.ReferredIDs, c.ID)
	})
	total := decimal.Zero
	for _, c := range referred {
		total = total.Add(decimal.NewFromFloat(c.TotalSpent))
	}
	v, _ := total.Mul(PayoutRate).Float64()
	return v
}

// TotalPayout sums the payouts of every affiliate.
func TotalPayout(affiliates []model.Affiliate, clients []model.Client) float64 {
	total := decimal.Zero
	for _, a := range affiliates {
		total = total.Add(decimal.NewFromFloat(AffiliatePayout(a, clients)))
	}
	v, _ := total.Float64()
	return v
}

// ReferredNames resolves an affiliate's referral ids to client names in
// referral order, skipping ids with no client.
func ReferredNames(a model.Affiliate, clients []model.Client) []string {
	byID := lo.SliceToMap(clients, func(c model.Client) (int64, string) {
		return c.ID, c.Name
	})
	return lo.FilterMap(a.ReferredIDs, func(id int64, _ int) (string, bool) {
		name, ok := byID[id]
		return name, ok
	})
}
