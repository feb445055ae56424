package source

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/theirongolddev/bunkerdash/internal/model"
)

const legacyDoc = `{
  "kpis": {"mrr": 15000, "mrrGoal": 20000, "activeSubscribers": 300},
  "mrrHistory": [{"month": "2024-01", "value": 14000}, {"month": "2024-02", "value": 15000}],
  "clients": [
    {"id": 1718000000000, "name": "Acme", "integrationDate": "2024-01-10", "adAccountId": "act_1", "totalSpent": 1000},
    {"id": 1718000000001, "name": "Globex", "integrationDate": "2024-02-10", "adAccountId": "act_2", "totalSpent": 2000, "phone": "0600000000"}
  ],
  "clientActivity": [{"month": "2024-02", "gained": 3, "lost": 0}],
  "affiliates": [
    {"id": 1, "name": "Ann", "referred": ["Globex", "Initech"], "iban": "FR76", "monthlyPayoutOverride": null}
  ],
  "ui": {"mrrTimeRange": "6", "modal": {"isOpen": true, "type": "client", "data": {"id": 1718000000000, "name": "Acme"}}}
}`

func TestParse_BareDocument(t *testing.T) {
	res, err := Parse([]byte(legacyDoc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if res.Wrapped {
		t.Error("Wrapped = true, want false")
	}
	s := res.State
	if s.KPIs.MRR != 15000 {
		t.Errorf("MRR = %v, want 15000", s.KPIs.MRR)
	}
	if got := s.Affiliates[0].ReferredIDs; len(got) != 1 || got[0] != 1718000000001 {
		t.Errorf("ReferredIDs = %v, want [1718000000001]", got)
	}
	if len(res.Unresolved) != 1 || res.Unresolved[0] != "Initech" {
		t.Errorf("Unresolved = %v, want [Initech]", res.Unresolved)
	}
	if !s.UI.Modal.IsOpen || s.UI.Modal.Type != model.ModalClient {
		t.Errorf("Modal = %+v, want the stored client dialog", s.UI.Modal)
	}
	if s.UI.MrrTimeRange != model.Range6 {
		t.Errorf("MrrTimeRange = %q, want 6", s.UI.MrrTimeRange)
	}
}

func TestParse_LocalStorageExportWithStringValue(t *testing.T) {
	wrapped := `{"theme":"dark","bunkerAdDashboardState":` + strconv.Quote(legacyDoc) + `}`
	res, err := Parse([]byte(wrapped))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !res.Wrapped {
		t.Error("Wrapped = false, want true")
	}
	if len(res.State.Clients) != 2 {
		t.Errorf("Clients = %d, want 2", len(res.State.Clients))
	}
}

func TestParse_LocalStorageExportWithObjectValue(t *testing.T) {
	wrapped := `{"bunkerAdDashboardState":` + legacyDoc + `}`
	res, err := Parse([]byte(wrapped))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !res.Wrapped || len(res.State.MrrHistory) != 2 {
		t.Errorf("Wrapped = %v, history = %d", res.Wrapped, len(res.State.MrrHistory))
	}
}

func TestParse_Warnings(t *testing.T) {
	doc := `{"mrrHistory":[{"month":"Jan 2024","value":1},{"month":"2024-02","value":2}],
		"clients":[{"id":5,"name":"a"},{"id":5,"name":"b"}]}`
	res, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(res.Warnings) != 2 {
		t.Errorf("Warnings = %v, want 2 entries", res.Warnings)
	}
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"empty":     "",
		"array":     `[1,2]`,
		"unrelated": `{"foo": 1}`,
	}
	for name, in := range cases {
		if _, err := Parse([]byte(in)); !errors.Is(err, ErrNoState) {
			t.Errorf("%s: error = %v, want ErrNoState", name, err)
		}
	}
	if _, err := Parse([]byte(`{"kpis": {"mrr": "lots"}}`)); err == nil {
		t.Error("type mismatch: error = nil, want decode error")
	}
}

func TestResolveDirectoryPicksNewest(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.json")
	newer := filepath.Join(dir, "new.json")
	for _, p := range []string{old, newer, filepath.Join(dir, "notes.txt")} {
		if err := os.WriteFile(p, []byte(legacyDoc), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}

	files, err := ScanDir(dir)
	if err != nil {
		t.Fatalf("ScanDir() error = %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("ScanDir() = %d files, want 2", len(files))
	}

	got, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != newer {
		t.Errorf("Resolve() = %q, want %q", got, newer)
	}

	if got, _ := Resolve(old); got != old {
		t.Errorf("Resolve(file) = %q, want %q", got, old)
	}
	if _, err := Resolve(t.TempDir()); !errors.Is(err, ErrNoState) {
		t.Errorf("Resolve(empty dir) error = %v, want ErrNoState", err)
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.json")
	if err := os.WriteFile(path, []byte(legacyDoc), 0o600); err != nil {
		t.Fatal(err)
	}
	res, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if res.State.KPIs.ActiveSubscribers != 300 {
		t.Errorf("ActiveSubscribers = %d, want 300", res.State.KPIs.ActiveSubscribers)
	}
}
