package metrics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/bunkerdash/internal/model"
)

// normalizeSpaces folds the grouping separators CLDR may use for French
// (narrow no-break space, no-break space) into plain spaces.
func normalizeSpaces(s string) string {
	return strings.NewReplacer("\u202f", " ", "\u00a0", " ").Replace(s)
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{12540, "12 540 €"},
		{0, "0 €"},
		{950, "950 €"},
		{1234.5, "1 234,5 €"},
		{1500000, "1 500 000 €"},
	}
	for _, tt := range tests {
		got := normalizeSpaces(FormatCurrency(tt.in))
		if got != tt.want {
			t.Errorf("FormatCurrency(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatThousands(t *testing.T) {
	assert.Equal(t, "13K", FormatThousands(12540))
	assert.Equal(t, "0K", FormatThousands(0))
	assert.Equal(t, "3K", FormatThousands(2500))
}

func TestMonthLabels(t *testing.T) {
	assert.Equal(t, "janv.", ShortMonth("2024-01"))
	assert.Equal(t, "déc.", ShortMonth("2023-12"))
	assert.Equal(t, "janvier 2024", LongMonth("2024-01"))
	assert.Equal(t, "août 2023", LongMonth("2023-08"))
	assert.Equal(t, "garbage", LongMonth("garbage"))
	assert.Equal(t, "15/01/2023", FormatDate("2023-01-15"))

	_, _, err := ParseMonth("2024-13")
	assert.Error(t, err)
}

func TestAffiliatePayout(t *testing.T) {
	clients := []model.Client{
		{ID: 1, TotalSpent: 10000},
		{ID: 2, TotalSpent: 5000},
		{ID: 3, TotalSpent: 25000},
	}

	t.Run("override wins", func(t *testing.T) {
		v := 1000.0
		a := model.Affiliate{ReferredIDs: []int64{1, 2}, MonthlyPayoutOverride: &v}
		assert.Equal(t, 1000.0, AffiliatePayout(a, clients))
	})

	t.Run("zero override falls back to the thirty percent rule", func(t *testing.T) {
		v := 0.0
		a := model.Affiliate{ReferredIDs: []int64{1}, MonthlyPayoutOverride: &v}
		assert.False(t, HasOverride(a))
		assert.InDelta(t, 3000.0, AffiliatePayout(a, clients), 1e-9)
	})

	t.Run("thirty percent of referred spend", func(t *testing.T) {
		a := model.Affiliate{ReferredIDs: []int64{1, 2}}
		assert.InDelta(t, 4500.0, AffiliatePayout(a, clients), 1e-9)
	})

	t.Run("empty referral set", func(t *testing.T) {
		assert.Equal(t, 0.0, AffiliatePayout(model.Affiliate{}, clients))
	})

	t.Run("dangling id ignored", func(t *testing.T) {
		a := model.Affiliate{ReferredIDs: []int64{99, 3}}
		assert.InDelta(t, 7500.0, AffiliatePayout(a, clients), 1e-9)
	})
}

func TestDefaultPayouts(t *testing.T) {
	s := model.DefaultState()
	assert.InDelta(t, 3600.0, AffiliatePayout(s.Affiliates[0], s.Clients), 1e-9)
	assert.Equal(t, 1000.0, AffiliatePayout(s.Affiliates[1], s.Clients))
	assert.InDelta(t, 4600.0, TotalPayout(s.Affiliates, s.Clients), 1e-9)
	assert.Equal(t, []string{"Client Beta", "Client Gamma"}, ReferredNames(s.Affiliates[1], s.Clients))
}

func TestGoalProgress(t *testing.T) {
	tests := []struct {
		mrr, goal float64
		want      float64
		level     Level
	}{
		{25000, 20000, 100, LevelHigh},
		{12540, 20000, 62.7, LevelMedium},
		{5000, 20000, 25, LevelLow},
		{8000, 20000, 40, LevelMedium},
		{16000, 20000, 80, LevelHigh},
		{100, 0, 100, LevelHigh},
		{0, 0, 0, LevelLow},
	}
	for _, tt := range tests {
		got := GoalProgress(tt.mrr, tt.goal)
		assert.InDelta(t, tt.want, got, 1e-9, "GoalProgress(%v, %v)", tt.mrr, tt.goal)
		assert.Equal(t, tt.level, ProgressLevel(got), "ProgressLevel(%v)", got)
	}
}

func TestWindowDoesNotMutate(t *testing.T) {
	s := model.DefaultState()
	before := append([]model.MrrPoint(nil), s.MrrHistory...)

	got := Window(s.MrrHistory, model.Range3)
	require.Len(t, got, 3)
	assert.Equal(t, "2023-10", got[0].Month)
	assert.Equal(t, "2023-12", got[2].Month)

	got[0].Value = -1
	assert.Equal(t, before, s.MrrHistory)

	short := Window(s.MrrHistory[:2], model.Range6)
	assert.Len(t, short, 2)
	assert.Empty(t, Window(nil, model.Range12))
}

func TestSummarize(t *testing.T) {
	sum := Summarize(model.DefaultState())
	assert.Equal(t, 3, sum.Clients)
	assert.Equal(t, 2, sum.Affiliates)
	assert.InDelta(t, 45500.0, sum.TotalSpent, 1e-9)
	assert.Equal(t, 25, sum.LatestGained)
	assert.Equal(t, 6, sum.LatestLost)
	assert.Equal(t, LevelMedium, sum.Level)
}
