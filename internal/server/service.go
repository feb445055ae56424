// Package server runs the local web view of the dashboard: an HTML page, a
// JSON API over the same dispatcher as the terminal UI, and an event stream
// fed by a poller that picks up edits made by other processes.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/bunkerdash/internal/dashboard"
	"github.com/theirongolddev/bunkerdash/internal/metrics"
	"github.com/theirongolddev/bunkerdash/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config controls the service runtime behavior.
type Config struct {
	Addr         string
	Interval     time.Duration
	EventsBuffer int
	DBPath       string
}

// StateSource is the persisted side of the dashboard, polled for changes
// written by other processes. LastSaved reports the timestamp of this
// process's own latest write.
type StateSource interface {
	Get(ctx context.Context) (*model.State, error)
	UpdatedAt(ctx context.Context) (time.Time, error)
	LastSaved() time.Time
}

// Snapshot is a compact dashboard summary for status and event payloads.
type Snapshot struct {
	At                time.Time `json:"at"`
	MRR               float64   `json:"mrr"`
	MRRGoal           float64   `json:"mrr_goal"`
	GoalProgress      float64   `json:"goal_progress"`
	ActiveSubscribers int       `json:"active_subscribers"`
	Clients           int       `json:"clients"`
	Affiliates        int       `json:"affiliates"`
	TotalSpent        float64   `json:"total_spent"`
	TotalPayout       float64   `json:"total_payout"`
	TimeRange         string    `json:"time_range"`
}

// Delta captures snapshot changes between two observations.
type Delta struct {
	MRR               float64 `json:"mrr"`
	MRRGoal           float64 `json:"mrr_goal"`
	ActiveSubscribers int     `json:"active_subscribers"`
	Clients           int     `json:"clients"`
	Affiliates        int     `json:"affiliates"`
	TotalSpent        float64 `json:"total_spent"`
	TotalPayout       float64 `json:"total_payout"`
}

func (d Delta) isZero() bool {
	return d.MRR == 0 &&
		d.MRRGoal == 0 &&
		d.ActiveSubscribers == 0 &&
		d.Clients == 0 &&
		d.Affiliates == 0 &&
		d.TotalSpent == 0 &&
		d.TotalPayout == 0
}

// Event is emitted whenever the dashboard summary changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	Reloads         int64     `json:"reloads"`
	DBPath          string    `json:"db_path,omitempty"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the web runtime and HTTP API.
type Service struct {
	cfg      Config
	dispatch *dashboard.Dispatcher
	source   StateSource

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	reloads     int64
	lastError   string
	lastSeen    time.Time
	hasSnapshot bool
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a service serving d. source may be nil, which disables
// polling for external changes.
func New(cfg Config, d *dashboard.Dispatcher, source StateSource) *Service {
	if cfg.Interval < time.Second {
		cfg.Interval = 5 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8788"
	}

	s := &Service{
		cfg:       cfg,
		dispatch:  d,
		source:    source,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
	d.OnRender(s.observe)
	s.observe(d.Store().State())
	return s
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("address", s.cfg.Addr).Info("web view listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("web server: %w", err)
		}
	}
}

// pollOnce reloads the stored document when another process has written
// it since the last poll. Writes made through this process's dispatcher are
// already in memory and are skipped.
func (s *Service) pollOnce(ctx context.Context) {
	if s.source == nil {
		return
	}

	updated, err := s.source.UpdatedAt(ctx)
	if err != nil {
		s.recordPoll(err, false)
		logrus.WithError(err).Warn("poll failed")
		return
	}

	s.mu.Lock()
	changed := !updated.IsZero() && !updated.Equal(s.lastSeen)
	first := s.lastSeen.IsZero()
	own := changed && !first && updated.Equal(s.source.LastSaved())
	if own {
		s.lastSeen = updated
	}
	s.mu.Unlock()
	if !changed || own {
		s.recordPoll(nil, false)
		return
	}

	if err := s.dispatch.Reload(ctx, s.source.Get); err != nil {
		s.recordPoll(err, false)
		logrus.WithError(err).Warn("reload failed")
		return
	}

	s.mu.Lock()
	s.lastSeen = updated
	s.mu.Unlock()
	s.recordPoll(nil, !first)
}

func (s *Service) recordPoll(err error, reloaded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPollAt = time.Now()
	s.pollCount++
	if reloaded {
		s.reloads++
	}
	if err != nil {
		s.lastError = err.Error()
	} else {
		s.lastError = ""
	}
}

// observe is the dispatcher render hook: it recomputes the summary and
// publishes an event when it changed.
func (s *Service) observe(state *model.State) {
	now := time.Now()
	snap := snapshotFromState(state, now)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap

	if !prevExists {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      "snapshot",
			Timestamp: now,
			Snapshot:  snap,
		}
		publish = true
	} else {
		delta := diffSnapshots(prev, snap)
		if !delta.isZero() || prev.TimeRange != snap.TimeRange {
			s.nextEventID++
			ev = Event{
				ID:        s.nextEventID,
				Type:      "state_delta",
				Timestamp: now,
				Snapshot:  snap,
				Delta:     delta,
			}
			publish = true
		}
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ev)
	}
}

func snapshotFromState(state *model.State, at time.Time) Snapshot {
	sum := metrics.Summarize(state)
	return Snapshot{
		At:                at,
		MRR:               sum.MRR,
		MRRGoal:           sum.MRRGoal,
		GoalProgress:      sum.Progress,
		ActiveSubscribers: sum.ActiveSubscribers,
		Clients:           sum.Clients,
		Affiliates:        sum.Affiliates,
		TotalSpent:        sum.TotalSpent,
		TotalPayout:       sum.TotalPayout,
		TimeRange:         string(state.UI.MrrTimeRange),
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		MRR:               curr.MRR - prev.MRR,
		MRRGoal:           curr.MRRGoal - prev.MRRGoal,
		ActiveSubscribers: curr.ActiveSubscribers - prev.ActiveSubscribers,
		Clients:           curr.Clients - prev.Clients,
		Affiliates:        curr.Affiliates - prev.Affiliates,
		TotalSpent:        curr.TotalSpent - prev.TotalSpent,
		TotalPayout:       curr.TotalPayout - prev.TotalPayout,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		Reloads:         s.reloads,
		DBPath:          s.cfg.DBPath,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
