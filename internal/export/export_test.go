package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/bunkerdash/internal/model"
)

func lines(t *testing.T, k Kind, s *model.State) []string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, k, s))
	return strings.Split(strings.TrimSpace(buf.String()), "\n")
}

func TestWriteHeaders(t *testing.T) {
	s := model.DefaultState()
	cases := map[Kind]string{
		KindClients:  "id,name,phone,integration_date,ad_account_id,total_spent",
		KindPayouts:  "affiliate_id,affiliate,iban,referred_clients,fixed,monthly_payout",
		KindActivity: "month,gained,lost,net",
		KindMRR:      "month,mrr",
	}
	for k, header := range cases {
		got := lines(t, k, s)
		assert.Equal(t, header, got[0], "kind %s", k)
	}
}

func TestWriteMRRRows(t *testing.T) {
	s := &model.State{MrrHistory: []model.MrrPoint{{Month: "2024-01", Value: 13000}, {Month: "2024-02", Value: 1234.5}}}
	got := lines(t, KindMRR, s)
	assert.Equal(t, []string{"month,mrr", "2024-01,13000.00", "2024-02,1234.50"}, got)
}

func TestWritePayoutsUsesOverride(t *testing.T) {
	fixed := 250.0
	s := &model.State{
		Clients: []model.Client{{ID: 1, Name: "Alpha", TotalSpent: 1000}},
		Affiliates: []model.Affiliate{
			{ID: 1, Name: "Jean", ReferredIDs: []int64{1}},
			{ID: 2, Name: "Marie", ReferredIDs: []int64{1}, MonthlyPayoutOverride: &fixed},
		},
	}
	got := lines(t, KindPayouts, s)
	require.Len(t, got, 3)
	assert.Equal(t, "1,Jean,,Alpha,false,300.00", got[1])
	assert.Equal(t, "2,Marie,,Alpha,true,250.00", got[2])
}

func TestWriteActivitySortsAndNets(t *testing.T) {
	s := &model.State{ClientActivity: []model.ActivityPoint{
		{Month: "2024-02", Gained: 3, Lost: 8},
		{Month: "2024-01", Gained: 22, Lost: 5},
	}}
	got := lines(t, KindActivity, s)
	assert.Equal(t, []string{"month,gained,lost,net", "2024-01,22,5,17", "2024-02,3,8,-5"}, got)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("payouts")
	require.NoError(t, err)
	assert.Equal(t, KindPayouts, k)

	_, err = ParseKind("invoices")
	assert.Error(t, err)
}
