package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultState(t *testing.T) {
	s := DefaultState()

	assert.Equal(t, 12540.0, s.KPIs.MRR)
	assert.Equal(t, 20000.0, s.KPIs.MRRGoal)
	assert.Equal(t, 284, s.KPIs.ActiveSubscribers)
	require.Len(t, s.MrrHistory, 12)
	assert.Equal(t, "2023-01", s.MrrHistory[0].Month)
	assert.Equal(t, 12540.0, s.MrrHistory[11].Value)
	assert.Len(t, s.Clients, 3)
	assert.Len(t, s.ClientActivity, 3)
	require.Len(t, s.Affiliates, 2)
	assert.Nil(t, s.Affiliates[0].MonthlyPayoutOverride)
	require.NotNil(t, s.Affiliates[1].MonthlyPayoutOverride)
	assert.Equal(t, 1000.0, *s.Affiliates[1].MonthlyPayoutOverride)
	assert.Equal(t, Range12, s.UI.MrrTimeRange)
	assert.False(t, s.UI.Modal.IsOpen)
}

func TestCloneIsDeep(t *testing.T) {
	s := DefaultState()
	s.UI.Modal = Modal{IsOpen: true, Type: ModalClient, Data: &ModalData{ID: 1}}
	c := s.Clone()

	c.MrrHistory[0].Value = 1
	c.Clients[0].Name = "changed"
	c.Affiliates[1].ReferredIDs[0] = 99
	*c.Affiliates[1].MonthlyPayoutOverride = 5
	c.UI.Modal.Data.ID = 42

	assert.Equal(t, 5200.0, s.MrrHistory[0].Value)
	assert.Equal(t, "Client Alpha", s.Clients[0].Name)
	assert.Equal(t, int64(2), s.Affiliates[1].ReferredIDs[0])
	assert.Equal(t, 1000.0, *s.Affiliates[1].MonthlyPayoutOverride)
	assert.Equal(t, int64(1), s.UI.Modal.Data.ID)
}

func TestNormalizeMigratesReferralNames(t *testing.T) {
	s := &State{
		Clients: []Client{{ID: 10, Name: "A"}, {ID: 11, Name: "B"}, {ID: 12, Name: "A"}},
		Affiliates: []Affiliate{
			{ID: 1, Referred: []string{"A", "Ghost", "B"}},
			{ID: 2},
		},
		UI: UIState{
			MrrTimeRange: "24",
			Modal:        Modal{IsOpen: true, Type: ModalKPIs},
		},
	}

	unresolved := s.Normalize()

	assert.Equal(t, []string{"Ghost"}, unresolved)
	assert.Equal(t, []int64{10, 11}, s.Affiliates[0].ReferredIDs)
	assert.Nil(t, s.Affiliates[0].Referred)
	assert.NotNil(t, s.Affiliates[1].ReferredIDs)
	assert.NotNil(t, s.MrrHistory)
	assert.NotNil(t, s.ClientActivity)
	assert.Equal(t, Range12, s.UI.MrrTimeRange)
	assert.Equal(t, Modal{IsOpen: true, Type: ModalKPIs}, s.UI.Modal)
}

func TestNormalizeClosesUnknownModal(t *testing.T) {
	s := DefaultState()
	s.UI.Modal = Modal{IsOpen: true, Type: "invoice"}
	s.Normalize()
	assert.Equal(t, Modal{}, s.UI.Modal)
}

func TestModalDataToleratesLegacyPayloads(t *testing.T) {
	raw := `{"ui":{"mrrTimeRange":"6","modal":{"isOpen":true,"type":"mrrHistory","data":[{"month":"2023-01","value":1}]}}}`
	var s State
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	require.NotNil(t, s.UI.Modal.Data)
	assert.Equal(t, ModalData{}, *s.UI.Modal.Data)
	assert.Equal(t, Range6, s.UI.MrrTimeRange)

	raw = `{"ui":{"modal":{"isOpen":true,"type":"confirmDelete","data":{"type":"client","id":3,"name":"Client Gamma"}}}}`
	s = State{}
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	assert.Equal(t, ModalData{Kind: KindClient, ID: 3, Name: "Client Gamma"}, *s.UI.Modal.Data)
}

func TestTimeRange(t *testing.T) {
	tests := []struct {
		in     TimeRange
		months int
		next   TimeRange
	}{
		{Range3, 3, Range6},
		{Range6, 6, Range12},
		{Range12, 12, Range3},
	}
	for _, tt := range tests {
		if got := tt.in.Months(); got != tt.months {
			t.Errorf("%s.Months() = %d, want %d", tt.in, got, tt.months)
		}
		if got := tt.in.Next(); got != tt.next {
			t.Errorf("%s.Next() = %s, want %s", tt.in, got, tt.next)
		}
	}

	_, err := ParseTimeRange("5")
	assert.Error(t, err)
	r, err := ParseTimeRange("6")
	require.NoError(t, err)
	assert.Equal(t, Range6, r)
	assert.Equal(t, "6 derniers mois", r.Label())
}

func TestReferredClientsSkipsMissing(t *testing.T) {
	s := DefaultState()
	a := Affiliate{ReferredIDs: []int64{3, 99, 1}}
	got := s.ReferredClients(a)
	require.Len(t, got, 2)
	assert.Equal(t, "Client Gamma", got[0].Name)
	assert.Equal(t, "Client Alpha", got[1].Name)
}
