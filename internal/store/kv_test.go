package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/bunkerdash/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "dash.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestLoadEmptyReturnsNil(t *testing.T) {
	s := openTestStore(t)
	assert.Nil(t, s.Load(context.Background()))

	ts, err := s.UpdatedAt(context.Background())
	require.NoError(t, err)
	assert.True(t, ts.IsZero())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	want := model.DefaultState()
	want.UI.MrrTimeRange = model.Range6
	want.Clients[0].Phone = ""
	s.Save(ctx, want)

	got := s.Load(ctx)
	require.NotNil(t, got)
	assert.Equal(t, want, got)
}

func TestSaveLoadRoundTripKeepsOpenModal(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	want := model.DefaultState()
	want.UI.Modal = model.Modal{IsOpen: true, Type: model.ModalClient, Data: &model.ModalData{ID: 2}}
	require.NoError(t, s.Put(ctx, want))

	got := s.Load(ctx)
	require.NotNil(t, got)
	assert.Equal(t, want, got)
}

func TestLoadCorruptBlobReturnsNil(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.db.Exec("INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)",
		StateKey, "{not json", time.Now().UTC().Format(time.RFC3339Nano))
	require.NoError(t, err)

	assert.Nil(t, s.Load(ctx))
	assert.Equal(t, model.DefaultState(), s.LoadOrDefault(ctx))
}

func TestLoadMigratesLegacyReferrals(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	legacy := `{"kpis":{"mrr":1,"mrrGoal":2,"activeSubscribers":3},
		"clients":[{"id":1700000000000,"name":"Acme","integrationDate":"2024-01-01","adAccountId":"a","totalSpent":100}],
		"affiliates":[{"id":5,"name":"Bob","referred":["Acme"],"iban":"FR","monthlyPayoutOverride":null}],
		"ui":{"mrrTimeRange":"3","modal":{"isOpen":false,"type":null,"data":null}}}`
	_, err := s.db.Exec("INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)",
		StateKey, legacy, time.Now().UTC().Format(time.RFC3339Nano))
	require.NoError(t, err)

	got := s.Load(ctx)
	require.NotNil(t, got)
	assert.Equal(t, []int64{1700000000000}, got.Affiliates[0].ReferredIDs)
	assert.Equal(t, model.Range3, got.UI.MrrTimeRange)
	assert.NotNil(t, got.MrrHistory)
}

func TestUpdatedAtAndReset(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	s.Save(ctx, model.DefaultState())
	ts, err := s.UpdatedAt(ctx)
	require.NoError(t, err)
	assert.True(t, ts.Equal(fixed))

	require.NoError(t, s.Reset(ctx))
	assert.Nil(t, s.Load(ctx))
}

func TestLastSavedMatchesUpdatedAt(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "dash.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	assert.True(t, s.LastSaved().IsZero())

	fixed := time.Date(2024, 3, 1, 12, 0, 0, 123456789, time.UTC)
	s.now = func() time.Time { return fixed }
	s.Save(ctx, model.DefaultState())

	ts, err := s.UpdatedAt(ctx)
	require.NoError(t, err)
	assert.True(t, s.LastSaved().Equal(ts))

	other, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = other.Close() })
	other.now = func() time.Time { return fixed.Add(time.Minute) }
	other.Save(ctx, model.DefaultState())

	ts, err = s.UpdatedAt(ctx)
	require.NoError(t, err)
	assert.False(t, s.LastSaved().Equal(ts), "a write from another handle is not ours")
}

func TestSaveAfterCloseDoesNotPanic(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "dash.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s.Save(context.Background(), model.DefaultState())
	assert.Error(t, s.Put(context.Background(), model.DefaultState()))
}
