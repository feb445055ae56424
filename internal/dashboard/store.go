// Package dashboard owns the dashboard state and applies user commands to it.
//
// A Store holds the single model.State. Commands are typed mutations; the
// Dispatcher runs each one through the effect list (mutate, persist, close
// modal, render) in that order.
package dashboard

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/theirongolddev/bunkerdash/internal/model"
)

// ErrNotFound is returned when a command names an id with no matching row.
var ErrNotFound = errors.New("not found")

// ErrNoPendingDelete is returned by Delete when no confirmation is open.
var ErrNoPendingDelete = errors.New("no pending delete confirmation")

// Store exclusively owns a model.State.
type Store struct {
	mu    sync.RWMutex
	state *model.State
	now   func() time.Time
}

// NewStore wraps initial, or the default document when initial is nil.
func NewStore(initial *model.State) *Store {
	if initial == nil {
		initial = model.DefaultState()
	}
	return &Store{state: initial.Clone(), now: time.Now}
}

// SetClock replaces the time source used for new ids.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// State returns a deep copy of the current state.
func (s *Store) State() *model.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Replace swaps in a new document, keeping the current modal.
func (s *Store) Replace(state *model.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	modal := s.state.UI.Modal
	s.state = state.Clone()
	s.state.UI.Modal = modal
}

// Apply runs cmd against the state. On error nothing is mutated.
func (s *Store) Apply(cmd Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.Clone()
	m := &mutation{state: work, now: s.now}
	if err := cmd.apply(m); err != nil {
		return err
	}
	s.state = work
	return nil
}

// OpenModal opens the dialog t, replacing any open dialog.
func (s *Store) OpenModal(t model.ModalType, data *model.ModalData) error {
	if !t.Valid() {
		return fmt.Errorf("unknown modal type %q", t)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if data != nil {
		d := *data
		data = &d
	}
	s.state.UI.Modal = model.Modal{IsOpen: true, Type: t, Data: data}
	return nil
}

// OpenDeleteConfirm opens the delete confirmation for the row kind/id,
// capturing its display name. Unknown ids leave the modal untouched.
func (s *Store) OpenDeleteConfirm(kind model.EntityKind, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var name string
	switch kind {
	case model.KindClient:
		c, ok := s.state.ClientByID(id)
		if !ok {
			return fmt.Errorf("client %d: %w", id, ErrNotFound)
		}
		name = c.Name
	case model.KindAffiliate:
		a, ok := s.state.AffiliateByID(id)
		if !ok {
			return fmt.Errorf("affiliate %d: %w", id, ErrNotFound)
		}
		name = a.Name
	default:
		return fmt.Errorf("unknown entity kind %q", kind)
	}

	s.state.UI.Modal = model.Modal{
		IsOpen: true,
		Type:   model.ModalConfirmDelete,
		Data:   &model.ModalData{Kind: kind, ID: id, Name: name},
	}
	return nil
}

// CloseModal closes any open dialog.
func (s *Store) CloseModal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.UI.Modal = model.Modal{}
}

// Modal returns the current dialog state.
func (s *Store) Modal() model.Modal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone().UI.Modal
}
