package server

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/theirongolddev/bunkerdash/internal/dashboard"
	"github.com/theirongolddev/bunkerdash/internal/model"
)

type fakeSource struct {
	mu      sync.Mutex
	state   *model.State
	updated time.Time
	saved   time.Time
}

func (f *fakeSource) Get(context.Context) (*model.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.Clone(), nil
}

func (f *fakeSource) UpdatedAt(context.Context) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updated, nil
}

func (f *fakeSource) LastSaved() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saved
}

// Save records a write made through the service's own dispatcher.
func (f *fakeSource) Save(_ context.Context, state *model.State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = state.Clone()
	f.updated = f.updated.Add(time.Second)
	f.saved = f.updated
}

func (f *fakeSource) set(state *model.State, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = state
	f.updated = at
}

func newTestService(t *testing.T, source StateSource) *Service {
	t.Helper()
	d := dashboard.NewDispatcher(dashboard.NewStore(model.DefaultState()), nil)
	return New(Config{Interval: 10 * time.Second, EventsBuffer: 50}, d, source)
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{MRR: 12540, ActiveSubscribers: 284, Clients: 3, TotalPayout: 1000}
	curr := Snapshot{MRR: 13000, ActiveSubscribers: 290, Clients: 4, TotalPayout: 1012.5}

	delta := diffSnapshots(prev, curr)
	if delta.MRR != 460 {
		t.Fatalf("MRR delta = %.2f, want 460", delta.MRR)
	}
	if delta.ActiveSubscribers != 6 {
		t.Fatalf("ActiveSubscribers delta = %d, want 6", delta.ActiveSubscribers)
	}
	if delta.Clients != 1 {
		t.Fatalf("Clients delta = %d, want 1", delta.Clients)
	}
	if math.Abs(delta.TotalPayout-12.5) > 1e-9 {
		t.Fatalf("TotalPayout delta = %.2f, want 12.50", delta.TotalPayout)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
	if !diffSnapshots(curr, curr).isZero() {
		t.Fatal("identical snapshots should give a zero delta")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	d := dashboard.NewDispatcher(dashboard.NewStore(model.DefaultState()), nil)
	s := New(Config{Interval: 10 * time.Second, EventsBuffer: 2}, d, nil)

	s.publishEvent(Event{ID: 10})
	s.publishEvent(Event{ID: 11})
	s.publishEvent(Event{ID: 12})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 11 || s.events[1].ID != 12 {
		t.Fatalf("events ring contains IDs [%d, %d], want [11, 12]", s.events[0].ID, s.events[1].ID)
	}
}

func TestObservePublishesDeltaOnChange(t *testing.T) {
	s := newTestService(t, nil)

	form := url.Values{"mrr": {"13000"}, "mrrGoal": {"20000"}, "activeSubscribers": {"284"}}
	if _, err := s.dispatch.Submit(context.Background(), string(model.ModalKPIs), form); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2 (snapshot + delta)", len(s.events))
	}
	last := s.events[1]
	if last.Type != "state_delta" {
		t.Fatalf("event type = %q, want state_delta", last.Type)
	}
	if last.Delta.MRR != 460 {
		t.Fatalf("MRR delta = %.2f, want 460", last.Delta.MRR)
	}
}

func TestPollOnceReloadsExternalWrites(t *testing.T) {
	src := &fakeSource{}
	external := model.DefaultState()
	external.KPIs.MRR = 999
	src.set(external, time.Unix(100, 0))

	s := newTestService(t, src)
	ctx := context.Background()

	s.pollOnce(ctx)
	if got := s.dispatch.Store().State().KPIs.MRR; got != 999 {
		t.Fatalf("MRR after first poll = %.0f, want 999", got)
	}

	s.pollOnce(ctx)
	if st := s.snapshotStatus(); st.Reloads != 0 || st.PollCount != 2 {
		t.Fatalf("status = reloads %d polls %d, want 0 and 2", st.Reloads, st.PollCount)
	}

	changed := model.DefaultState()
	changed.KPIs.MRR = 1500
	src.set(changed, time.Unix(200, 0))
	s.pollOnce(ctx)

	if got := s.dispatch.Store().State().KPIs.MRR; got != 1500 {
		t.Fatalf("MRR after reload = %.0f, want 1500", got)
	}
	if st := s.snapshotStatus(); st.Reloads != 1 {
		t.Fatalf("reloads = %d, want 1", st.Reloads)
	}
}

func TestPollOnceSkipsOwnWrites(t *testing.T) {
	src := &fakeSource{}
	src.set(model.DefaultState(), time.Unix(100, 0))

	d := dashboard.NewDispatcher(dashboard.NewStore(model.DefaultState()), src)
	s := New(Config{Interval: 10 * time.Second, EventsBuffer: 50}, d, src)
	ctx := context.Background()
	s.pollOnce(ctx)

	if _, err := d.Submit(ctx, string(model.ModalKPIs), url.Values{"mrr": {"14000"}, "mrrGoal": {"20000"}, "activeSubscribers": {"300"}}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	s.pollOnce(ctx)
	if st := s.snapshotStatus(); st.Reloads != 0 {
		t.Fatalf("reloads after own save = %d, want 0", st.Reloads)
	}
	if got := d.Store().State().KPIs.MRR; got != 14000 {
		t.Fatalf("MRR = %.0f, want 14000", got)
	}

	external := model.DefaultState()
	external.KPIs.MRR = 15000
	src.set(external, time.Unix(500, 0))
	s.pollOnce(ctx)
	if st := s.snapshotStatus(); st.Reloads != 1 {
		t.Fatalf("reloads after external write = %d, want 1", st.Reloads)
	}
	if got := d.Store().State().KPIs.MRR; got != 15000 {
		t.Fatalf("MRR after external write = %.0f, want 15000", got)
	}
}

func TestHealthz(t *testing.T) {
	s := newTestService(t, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != "ok\n" {
		t.Fatalf("healthz = %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Correlation-ID") == "" {
		t.Fatal("missing correlation id header")
	}
}

func TestIndexRendersDashboard(t *testing.T) {
	s := newTestService(t, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("index status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Client Alpha", "Jane Smith", "<svg"} {
		if !strings.Contains(body, want) {
			t.Fatalf("index missing %q", want)
		}
	}
}

func TestChartEndpoint(t *testing.T) {
	s := newTestService(t, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chart.svg?range=3&hover=500", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("chart status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Fatalf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "tooltip") {
		t.Fatal("hover position should render a tooltip")
	}

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chart.svg?range=7", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad range status = %d, want 400", rec.Code)
	}
}

func postForm(s *Service, path string, form url.Values, jsonAPI bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if jsonAPI {
		req.Header.Set("Accept", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestFormSubmitRedirectsAndMutates(t *testing.T) {
	s := newTestService(t, nil)

	rec := postForm(s, "/v1/forms", url.Values{
		"formType":          {"kpis"},
		"mrr":               {"15 000"},
		"mrrGoal":           {"25000"},
		"activeSubscribers": {"300"},
	}, false)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Fatalf("Location = %q, want /", loc)
	}
	got := s.dispatch.Store().State().KPIs
	if got.MRR != 15000 || got.MRRGoal != 25000 || got.ActiveSubscribers != 300 {
		t.Fatalf("KPIs = %+v", got)
	}
}

func TestFormValidationErrorJSON(t *testing.T) {
	s := newTestService(t, nil)

	rec := postForm(s, "/v1/forms", url.Values{
		"formType":          {"kpis"},
		"mrr":               {"abc"},
		"mrrGoal":           {"25000"},
		"activeSubscribers": {"300"},
	}, true)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Fields) != 1 || body.Fields[0].Field != "mrr" {
		t.Fatalf("fields = %+v, want one error on mrr", body.Fields)
	}
	if s.dispatch.Store().State().KPIs.MRR != 12540 {
		t.Fatal("rejected form must not mutate state")
	}
}

func TestModalOpenDeleteFlow(t *testing.T) {
	s := newTestService(t, nil)

	rec := postForm(s, "/v1/modal", url.Values{"type": {"confirmDelete"}, "kind": {"client"}, "id": {"2"}}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("open status = %d body %s", rec.Code, rec.Body.String())
	}
	m := s.dispatch.Store().Modal()
	if !m.IsOpen || m.Type != model.ModalConfirmDelete || m.Data == nil || m.Data.Name != "Client Beta" {
		t.Fatalf("modal = %+v", m)
	}

	rec = postForm(s, "/v1/forms", url.Values{"formType": {"confirmDelete"}}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d body %s", rec.Code, rec.Body.String())
	}
	var res resultBody
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Command != "deleteClient" {
		t.Fatalf("command = %q, want deleteClient", res.Command)
	}

	state := s.dispatch.Store().State()
	if _, ok := state.ClientByID(2); ok {
		t.Fatal("client 2 still present")
	}
	jane, _ := state.AffiliateByID(2)
	if ids := jane.ReferredIDs; len(ids) != 1 || ids[0] != 3 {
		t.Fatalf("affiliate referrals = %v, want [3]", ids)
	}
	if s.dispatch.Store().Modal().IsOpen {
		t.Fatal("modal should close after delete")
	}
}

func TestModalErrors(t *testing.T) {
	s := newTestService(t, nil)

	rec := postForm(s, "/v1/forms", url.Values{"formType": {"confirmDelete"}}, true)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("delete without confirmation = %d, want 404", rec.Code)
	}

	rec = postForm(s, "/v1/modal", url.Values{"type": {"confirmDelete"}, "kind": {"client"}, "id": {"42"}}, true)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("confirm unknown client = %d, want 404", rec.Code)
	}

	rec = postForm(s, "/v1/modal", url.Values{"type": {"bogus"}}, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown modal type = %d, want 400", rec.Code)
	}

	if rec = postForm(s, "/v1/modal", url.Values{"type": {"kpis"}}, false); rec.Code != http.StatusSeeOther {
		t.Fatalf("open kpis = %d, want 303", rec.Code)
	}
	if rec = postForm(s, "/v1/modal/close", nil, false); rec.Code != http.StatusSeeOther {
		t.Fatalf("close = %d, want 303", rec.Code)
	}
	if s.dispatch.Store().Modal().IsOpen {
		t.Fatal("modal still open after close")
	}
}
