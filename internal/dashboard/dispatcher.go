package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/bunkerdash/internal/model"
)

// Persister saves the full state. Implementations log their own failures;
// the in-memory state is never rolled back.
type Persister interface {
	Save(ctx context.Context, state *model.State)
}

// RenderFunc receives a copy of the state after every change.
type RenderFunc func(state *model.State)

// Result reports what a dispatched command did.
type Result struct {
	Command string
	Effects []Effect
}

// Dispatcher serializes commands and runs their effect lists.
type Dispatcher struct {
	mu      sync.Mutex
	store   *Store
	persist Persister
	render  []RenderFunc
}

// NewDispatcher wires a store to a persister. A nil persister skips saving.
func NewDispatcher(store *Store, persist Persister) *Dispatcher {
	return &Dispatcher{store: store, persist: persist}
}

// Store returns the underlying state owner.
func (d *Dispatcher) Store() *Store {
	return d.store
}

// OnRender registers a render hook.
func (d *Dispatcher) OnRender(fn RenderFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.render = append(d.render, fn)
}

// Dispatch applies cmd and runs its effects in order. When the mutation
// fails, no later effect runs and the error is returned.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) (Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dispatchLocked(ctx, cmd)
}

func (d *Dispatcher) dispatchLocked(ctx context.Context, cmd Command) (Result, error) {
	res := Result{Command: cmd.Name()}
	for _, eff := range cmd.Effects() {
		switch eff {
		case EffectMutate:
			if err := d.store.Apply(cmd); err != nil {
				logrus.WithError(err).WithField("command", cmd.Name()).Debug("command rejected")
				return res, err
			}
		case EffectPersist:
			if d.persist != nil {
				d.persist.Save(ctx, d.store.State())
			}
		case EffectCloseModal:
			d.store.CloseModal()
		case EffectRender:
			d.renderLocked()
		}
		res.Effects = append(res.Effects, eff)
	}
	logrus.WithField("command", cmd.Name()).Debug("command applied")
	return res, nil
}

// Submit parses a form and dispatches the resulting command.
func (d *Dispatcher) Submit(ctx context.Context, formType string, form url.Values) (Result, error) {
	cmd, err := ParseForm(formType, form)
	if err != nil {
		return Result{}, err
	}
	return d.Dispatch(ctx, cmd)
}

// Delete runs the deletion captured by the open confirmation dialog.
// The dialog is read and the command applied under one lock, so concurrent
// confirmations delete at most once.
func (d *Dispatcher) Delete(ctx context.Context) (Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	m := d.store.Modal()
	if !m.IsOpen || m.Type != model.ModalConfirmDelete || m.Data == nil {
		return Result{}, ErrNoPendingDelete
	}
	return d.dispatchLocked(ctx, deleteCommand(m.Data.Kind, m.Data.ID))
}

// OpenModal opens a dialog and re-renders.
func (d *Dispatcher) OpenModal(t model.ModalType, data *model.ModalData) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.store.OpenModal(t, data); err != nil {
		return err
	}
	d.renderLocked()
	return nil
}

// ConfirmDelete opens the delete confirmation for a row and re-renders.
func (d *Dispatcher) ConfirmDelete(kind model.EntityKind, id int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.store.OpenDeleteConfirm(kind, id); err != nil {
		return err
	}
	d.renderLocked()
	return nil
}

// CloseModal closes any dialog and re-renders.
func (d *Dispatcher) CloseModal() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.store.CloseModal()
	d.renderLocked()
}

// Replace swaps in a whole document (import, reset, external reload),
// optionally persisting it, and re-renders.
func (d *Dispatcher) Replace(ctx context.Context, state *model.State, persist bool) error {
	if state == nil {
		return fmt.Errorf("replace: nil state")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.store.Replace(state)
	if persist && d.persist != nil {
		d.persist.Save(ctx, d.store.State())
	}
	d.renderLocked()
	return nil
}

// Reload replaces the document with whatever load returns, holding the
// dispatch lock across both so no command lands between the read and the
// swap. Nothing is persisted.
func (d *Dispatcher) Reload(ctx context.Context, load func(context.Context) (*model.State, error)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	state, err := load(ctx)
	if err != nil {
		return err
	}
	if state == nil {
		return errors.New("reload: nothing stored")
	}
	d.store.Replace(state)
	d.renderLocked()
	return nil
}

func (d *Dispatcher) renderLocked() {
	if len(d.render) == 0 {
		return
	}
	snapshot := d.store.State()
	for _, fn := range d.render {
		fn(snapshot.Clone())
	}
}
