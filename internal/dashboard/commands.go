package dashboard

import (
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/bunkerdash/internal/model"
)

// Effect is one step of a command's side-effect list.
type Effect string

const (
	EffectMutate     Effect = "mutate"
	EffectPersist    Effect = "persist"
	EffectCloseModal Effect = "closeModal"
	EffectRender     Effect = "render"
)

var formEffects = []Effect{EffectMutate, EffectPersist, EffectCloseModal, EffectRender}

// Command is a typed state mutation.
type Command interface {
	// Name identifies the command in logs and events.
	Name() string
	// Effects lists the steps the dispatcher runs, in order.
	Effects() []Effect
	apply(m *mutation) error
}

type mutation struct {
	state *model.State
	now   func() time.Time
}

// newClientID returns the creation timestamp in ms, bumped until unused.
func (m *mutation) newClientID() int64 {
	id := m.now().UnixMilli()
	for m.state.ClientIndex(id) >= 0 {
		id++
	}
	return id
}

func (m *mutation) newAffiliateID() int64 {
	id := m.now().UnixMilli()
	for m.state.AffiliateIndex(id) >= 0 {
		id++
	}
	return id
}

// EditKPIs overwrites the headline figures.
type EditKPIs struct {
	MRR               float64
	MRRGoal           float64
	ActiveSubscribers int
}

func (EditKPIs) Name() string { return "editKpis" }
func (EditKPIs) Effects() []Effect { return formEffects }
func (c EditKPIs) apply(m *mutation) error {
	m.state.KPIs = model.KPIs{
		MRR:               c.MRR,
		MRRGoal:           c.MRRGoal,
		ActiveSubscribers: c.ActiveSubscribers,
	}
	return nil
}

// EditMrrHistory overwrites existing values by position and appends the
// new months. The history is re-sorted by month afterwards;
// duplicate months are kept.
type EditMrrHistory struct {
	Values map[int]float64
	New    []model.MrrPoint
}

func (EditMrrHistory) Name() string { return "editMrrHistory" }
func (EditMrrHistory) Effects() []Effect { return formEffects }
func (c EditMrrHistory) apply(m *mutation) error {
	for i, v := range c.Values {
		if i < 0 || i >= len(m.state.MrrHistory) {
			return fmt.Errorf("mrr history row %d: %w", i, ErrNotFound)
		}
		m.state.MrrHistory[i].Value = v
	}
	m.state.MrrHistory = append(m.state.MrrHistory, c.New...)
	sort.SliceStable(m.state.MrrHistory, func(i, j int) bool {
		return m.state.MrrHistory[i].Month < m.state.MrrHistory[j].Month
	})
	return nil
}

// ActivityCounts is a gained/lost pair for an existing activity row.
type ActivityCounts struct {
	Gained int
	Lost   int
}

// EditClientActivity follows the EditMrrHistory pattern for activity rows.
type EditClientActivity struct {
	Counts map[int]ActivityCounts
	New    []model.ActivityPoint
}

func (EditClientActivity) Name() string { return "editClientActivity" }
func (EditClientActivity) Effects() []Effect { return formEffects }
func (c EditClientActivity) apply(m *mutation) error {
	for i, v := range c.Counts {
		if i < 0 || i >= len(m.state.ClientActivity) {
			return fmt.Errorf("activity row %d: %w", i, ErrNotFound)
		}
		m.state.ClientActivity[i].Gained = v.Gained
		m.state.ClientActivity[i].Lost = v.Lost
	}
	m.state.ClientActivity = append(m.state.ClientActivity, c.New...)
	sort.SliceStable(m.state.ClientActivity, func(i, j int) bool {
		return m.state.ClientActivity[i].Month < m.state.ClientActivity[j].Month
	})
	return nil
}

// UpsertClient replaces the client with Client.ID, or creates one when the
// id is zero.
type UpsertClient struct {
	Client model.Client
}

func (UpsertClient) Name() string { return "upsertClient" }
func (UpsertClient) Effects() []Effect { return formEffects }
func (c UpsertClient) apply(m *mutation) error {
	if c.Client.ID == 0 {
		client := c.Client
		client.ID = m.newClientID()
		m.state.Clients = append(m.state.Clients, client)
		return nil
	}
	i := m.state.ClientIndex(c.Client.ID)
	if i < 0 {
		return fmt.Errorf("client %d: %w", c.Client.ID, ErrNotFound)
	}
	m.state.Clients[i] = c.Client
	return nil
}

// UpsertAffiliate replaces or creates an affiliate. The referral set is
// replaced wholesale; ids with no client are dropped. An existing payout
// override is kept.
type UpsertAffiliate struct {
	ID            int64
	AffiliateName string
	IBAN          string
	ReferredIDs   []int64
}

func (UpsertAffiliate) Name() string { return "upsertAffiliate" }
func (UpsertAffiliate) Effects() []Effect { return formEffects }
func (c UpsertAffiliate) apply(m *mutation) error {
	referred := lo.Filter(lo.Uniq(c.ReferredIDs), func(id int64, _ int) bool {
		return m.state.ClientIndex(id) >= 0
	})
	if referred == nil {
		referred = []int64{}
	}

	if c.ID == 0 {
		m.state.Affiliates = append(m.state.Affiliates, model.Affiliate{
			ID:          m.newAffiliateID(),
			Name:        c.AffiliateName,
			ReferredIDs: referred,
			IBAN:        c.IBAN,
		})
		return nil
	}
	i := m.state.AffiliateIndex(c.ID)
	if i < 0 {
		return fmt.Errorf("affiliate %d: %w", c.ID, ErrNotFound)
	}
	a := &m.state.Affiliates[i]
	a.Name = c.AffiliateName
	a.IBAN = c.IBAN
	a.ReferredIDs = referred
	return nil
}

// EditPayout updates an affiliate's IBAN and payout override. A nil
// override restores the computed payout. Unknown ids are ignored.
type EditPayout struct {
	ID       int64
	IBAN     string
	Override *float64
}

func (EditPayout) Name() string { return "editPayout" }
func (EditPayout) Effects() []Effect { return formEffects }
func (c EditPayout) apply(m *mutation) error {
	i := m.state.AffiliateIndex(c.ID)
	if i < 0 {
		logrus.WithField("affiliate_id", c.ID).Warn("payout edit for unknown affiliate ignored")
		return nil
	}
	a := &m.state.Affiliates[i]
	a.IBAN = c.IBAN
	if c.Override == nil {
		a.MonthlyPayoutOverride = nil
	} else {
		v := *c.Override
		a.MonthlyPayoutOverride = &v
	}
	return nil
}

// DeleteClient removes a client and strips it from every referral set.
type DeleteClient struct {
	ID int64
}

func (DeleteClient) Name() string { return "deleteClient" }
func (DeleteClient) Effects() []Effect { return formEffects }
func (c DeleteClient) apply(m *mutation) error {
	m.state.Clients = lo.Reject(m.state.Clients, func(cl model.Client, _ int) bool {
		return cl.ID == c.ID
	})
	for i := range m.state.Affiliates {
		a := &m.state.Affiliates[i]
		a.ReferredIDs = lo.Without(a.ReferredIDs, c.ID)
	}
	return nil
}

// DeleteAffiliate removes an affiliate. Clients are untouched.
type DeleteAffiliate struct {
	ID int64
}

func (DeleteAffiliate) Name() string { return "deleteAffiliate" }
func (DeleteAffiliate) Effects() []Effect { return formEffects }
func (c DeleteAffiliate) apply(m *mutation) error {
	m.state.Affiliates = lo.Reject(m.state.Affiliates, func(a model.Affiliate, _ int) bool {
		return a.ID == c.ID
	})
	return nil
}

// ChangeTimeRange selects the chart window. It does not touch the modal.
type ChangeTimeRange struct {
	Range model.TimeRange
}

func (ChangeTimeRange) Name() string { return "changeTimeRange" }
func (ChangeTimeRange) Effects() []Effect {
	return []Effect{EffectMutate, EffectPersist, EffectRender}
}
func (c ChangeTimeRange) apply(m *mutation) error {
	if !c.Range.Valid() {
		return &ValidationError{
			Form:   "timeRange",
			Fields: []FieldError{{Field: "range", Message: "doit valoir 3, 6 ou 12"}},
		}
	}
	m.state.UI.MrrTimeRange = c.Range
	return nil
}
