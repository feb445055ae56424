// Package store persists the dashboard state as a JSON blob in a local
// SQLite key/value table.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/bunkerdash/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// StateKey is the key the dashboard blob is stored under.
const StateKey = "bunkerAdDashboardState"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Store is the SQLite-backed persistence adapter.
type Store struct {
	db  *sql.DB
	now func() time.Time
	log logrus.FieldLogger

	mu        sync.Mutex
	lastSaved time.Time
}

// Open opens or creates the database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{
		db:  db,
		now: time.Now,
		log: logrus.WithField("component", "store"),
	}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save serializes state and upserts it. Failures are logged, not returned:
// the in-memory state stays authoritative.
func (s *Store) Save(ctx context.Context, state *model.State) {
	if err := s.Put(ctx, state); err != nil {
		s.log.WithError(err).Error("saving dashboard state")
	}
}

// Put is Save with the error surfaced.
func (s *Store) Put(ctx context.Context, state *model.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	at := s.now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		StateKey, string(data), at.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("writing state: %w", err)
	}

	s.mu.Lock()
	s.lastSaved = at
	s.mu.Unlock()
	return nil
}

// LastSaved returns the updated_at of this Store's most recent write, or the
// zero time before the first one. It equals UpdatedAt until another process
// writes.
func (s *Store) LastSaved() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaved
}

// Load returns the stored state, or nil when nothing is stored or the blob
// cannot be read. Callers fall back to model.DefaultState.
func (s *Store) Load(ctx context.Context) *model.State {
	state, err := s.Get(ctx)
	if err != nil {
		s.log.WithError(err).Warn("loading dashboard state")
		return nil
	}
	return state
}

// Get is Load with the error surfaced. A missing key yields (nil, nil).
func (s *Store) Get(ctx context.Context) (*model.State, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", StateKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading state: %w", err)
	}

	var state model.State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("decoding state: %w", err)
	}
	if unresolved := state.Normalize(); len(unresolved) > 0 {
		s.log.WithField("names", unresolved).Warn("dropping referrals to unknown clients")
	}
	return &state, nil
}

// LoadOrDefault returns the stored state or the default document.
func (s *Store) LoadOrDefault(ctx context.Context) *model.State {
	if state := s.Load(ctx); state != nil {
		return state
	}
	return model.DefaultState()
}

// UpdatedAt returns when the blob was last written. The zero time means
// nothing is stored.
func (s *Store) UpdatedAt(ctx context.Context) (time.Time, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT updated_at FROM kv WHERE key = ?", StateKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("reading updated_at: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing updated_at: %w", err)
	}
	return t, nil
}

// Reset deletes the stored blob.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", StateKey); err != nil {
		return fmt.Errorf("deleting state: %w", err)
	}
	return nil
}
