// Package model defines the dashboard's persisted state and its entities.
package model

import (
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// KPIs holds the headline figures shown on the dashboard cards.
type KPIs struct {
	MRR               float64 `json:"mrr"`
	MRRGoal           float64 `json:"mrrGoal"`
	ActiveSubscribers int     `json:"activeSubscribers"`
}

// MrrPoint is one month of recurring revenue. Month is "YYYY-MM".
type MrrPoint struct {
	Month string  `json:"month"`
	Value float64 `json:"value"`
}

// Client is an advertising account managed on behalf of a customer.
type Client struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	IntegrationDate string  `json:"integrationDate"`
	AdAccountID     string  `json:"adAccountId"`
	TotalSpent      float64 `json:"totalSpent"`
	Phone           string  `json:"phone,omitempty"`
}

// ActivityPoint counts clients gained and lost during a month.
type ActivityPoint struct {
	Month  string `json:"month"`
	Gained int    `json:"gained"`
	Lost   int    `json:"lost"`
}

// Affiliate refers clients and earns a monthly payout.
//
// ReferredIDs links to Client.ID. Referred carries the legacy name-based
// links found in older dumps; Normalize migrates it to ReferredIDs.
type Affiliate struct {
	ID                    int64    `json:"id"`
	Name                  string   `json:"name"`
	ReferredIDs           []int64  `json:"referredIds"`
	Referred              []string `json:"referred,omitempty"`
	IBAN                  string   `json:"iban"`
	MonthlyPayoutOverride *float64 `json:"monthlyPayoutOverride"`
}

// ModalType names the form a modal dialog shows.
type ModalType string

const (
	ModalKPIs           ModalType = "kpis"
	ModalMrrHistory     ModalType = "mrrHistory"
	ModalClientActivity ModalType = "clientActivity"
	ModalClient         ModalType = "client"
	ModalAffiliate      ModalType = "affiliate"
	ModalPayout         ModalType = "payout"
	ModalConfirmDelete  ModalType = "confirmDelete"
)

// ModalTypes lists every modal in display order.
var ModalTypes = []ModalType{
	ModalKPIs, ModalMrrHistory, ModalClientActivity,
	ModalClient, ModalAffiliate, ModalPayout, ModalConfirmDelete,
}

// Valid reports whether t is a known modal type.
func (t ModalType) Valid() bool {
	for _, m := range ModalTypes {
		if m == t {
			return true
		}
	}
	return false
}

// EntityKind identifies what a delete confirmation targets.
type EntityKind string

const (
	KindClient    EntityKind = "client"
	KindAffiliate EntityKind = "affiliate"
)

// ModalData is the payload attached to an open modal. Edit forms use ID to
// name the row being edited (zero means "new"); the delete confirmation also
// carries the target kind and a display name captured when it opened.
type ModalData struct {
	Kind EntityKind `json:"type,omitempty"`
	ID   int64      `json:"id,omitempty"`
	Name string     `json:"name,omitempty"`
}

// UnmarshalJSON tolerates the arrays and foreign objects older dumps stored
// as modal data by decoding only object payloads.
func (d *ModalData) UnmarshalJSON(b []byte) error {
	trimmed := strings.TrimSpace(string(b))
	if !strings.HasPrefix(trimmed, "{") {
		*d = ModalData{}
		return nil
	}
	type plain ModalData
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		*d = ModalData{}
		return nil
	}
	*d = ModalData(p)
	return nil
}

// Modal is the dialog state machine: closed, or open with a type and data.
type Modal struct {
	IsOpen bool       `json:"isOpen"`
	Type   ModalType  `json:"type"`
	Data   *ModalData `json:"data"`
}

// UIState is persisted with the business data.
type UIState struct {
	MrrTimeRange TimeRange `json:"mrrTimeRange"`
	Modal        Modal     `json:"modal"`
}

// State is the full dashboard document.
type State struct {
	KPIs           KPIs            `json:"kpis"`
	MrrHistory     []MrrPoint      `json:"mrrHistory"`
	Clients        []Client        `json:"clients"`
	ClientActivity []ActivityPoint `json:"clientActivity"`
	Affiliates     []Affiliate     `json:"affiliates"`
	UI             UIState         `json:"ui"`
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	out.MrrHistory = append([]MrrPoint(nil), s.MrrHistory...)
	out.Clients = append([]Client(nil), s.Clients...)
	out.ClientActivity = append([]ActivityPoint(nil), s.ClientActivity...)
	out.Affiliates = make([]Affiliate, len(s.Affiliates))
	for i, a := range s.Affiliates {
		out.Affiliates[i] = a.clone()
	}
	if s.UI.Modal.Data != nil {
		d := *s.UI.Modal.Data
		out.UI.Modal.Data = &d
	}
	return &out
}

func (a Affiliate) clone() Affiliate {
	a.ReferredIDs = append([]int64(nil), a.ReferredIDs...)
	a.Referred = append([]string(nil), a.Referred...)
	if a.MonthlyPayoutOverride != nil {
		v := *a.MonthlyPayoutOverride
		a.MonthlyPayoutOverride = &v
	}
	return a
}

// ClientByID returns the client with the given id.
func (s *State) ClientByID(id int64) (Client, bool) {
	if i := s.ClientIndex(id); i >= 0 {
		return s.Clients[i], true
	}
	return Client{}, false
}

// ClientIndex returns the slice index of the client with id, or -1.
func (s *State) ClientIndex(id int64) int {
	for i := range s.Clients {
		if s.Clients[i].ID == id {
			return i
		}
	}
	return -1
}

// AffiliateByID returns the affiliate with the given id.
func (s *State) AffiliateByID(id int64) (Affiliate, bool) {
	if i := s.AffiliateIndex(id); i >= 0 {
		return s.Affiliates[i], true
	}
	return Affiliate{}, false
}

// AffiliateIndex returns the slice index of the affiliate with id, or -1.
func (s *State) AffiliateIndex(id int64) int {
	for i := range s.Affiliates {
		if s.Affiliates[i].ID == id {
			return i
		}
	}
	return -1
}

// ReferredClients resolves an affiliate's referral ids to clients, skipping
// ids that no longer exist.
func (s *State) ReferredClients(a Affiliate) []Client {
	var out []Client
	for _, id := range a.ReferredIDs {
		if c, ok := s.ClientByID(id); ok {
			out = append(out, c)
		}
	}
	return out
}
