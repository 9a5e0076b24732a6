package runner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hperssn/microdesk/internal/domain"
	"github.com/hperssn/microdesk/internal/export"
	"github.com/hperssn/microdesk/internal/storage"
	"github.com/hperssn/microdesk/internal/workout"
)

var (
	ErrSessionExists   = errors.New("a session is already active")
	ErrSessionNotFound = errors.New("no active session")
	ErrInvalidDate     = errors.New("invalid date")
	ErrUnsavedSessions = errors.New("sessions not saved")
)

const (
	defaultSaveTimeout = 5 * time.Second
	subscriberBuffer   = 64
)

type Options struct {
	TickInterval time.Duration
	// Second is the wall-clock length of one workout second. Zero means
	// time.Second; tests and --fast runs shrink it.
	Second      time.Duration
	Location    *time.Location
	Now         func() time.Time
	SaveTimeout time.Duration
}

// Manager owns the single active session, its persistence and the event
// fan-out to subscribers.
type Manager struct {
	catalog *workout.Catalog
	repo    storage.Repository
	timer   *CountdownTimer
	opts    Options

	mu     sync.Mutex
	active *sessionRunner

	saveMu  sync.Mutex
	pending []*storage.SessionRecord

	subMu   sync.Mutex
	subs    map[int]chan Event
	nextSub int
	closed  bool
}

func NewManager(catalog *workout.Catalog, repo storage.Repository, opts Options) *Manager {
	if opts.Second <= 0 {
		opts.Second = time.Second
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = defaultSaveTimeout
	}
	return &Manager{
		catalog: catalog,
		repo:    repo,
		timer:   NewCountdownTimer(opts.TickInterval),
		opts:    opts,
		subs:    make(map[int]chan Event),
	}
}

func (m *Manager) Location() *time.Location { return m.opts.Location }

// Start begins workoutID. Only one session may be active at a time.
func (m *Manager) Start(ctx context.Context, workoutID string) (Snapshot, error) {
	w, err := m.catalog.Get(workoutID)
	if err != nil {
		return Snapshot{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		return Snapshot{}, ErrSessionExists
	}

	state := domain.NewSessionState(w, m.opts.Now)
	r := newSessionRunner(uuid.NewString(), state, m.timer, m.opts.Second, m.publish, m.complete)
	if err := r.Start(); err != nil {
		return Snapshot{}, err
	}
	m.active = r
	log.Printf("session %s started: %s", r.id, w.ID)
	return r.Snapshot(), nil
}

func (m *Manager) current() (*sessionRunner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return nil, ErrSessionNotFound
	}
	return m.active, nil
}

func (m *Manager) Pause() (Snapshot, error) {
	r, err := m.current()
	if err != nil {
		return Snapshot{}, err
	}
	if err := r.Pause(); err != nil {
		return Snapshot{}, err
	}
	return r.Snapshot(), nil
}

func (m *Manager) Resume() (Snapshot, error) {
	r, err := m.current()
	if err != nil {
		return Snapshot{}, err
	}
	if err := r.Resume(); err != nil {
		return Snapshot{}, err
	}
	return r.Snapshot(), nil
}

func (m *Manager) TogglePause() (Snapshot, error) {
	r, err := m.current()
	if err != nil {
		return Snapshot{}, err
	}
	if err := r.TogglePause(); err != nil {
		return Snapshot{}, err
	}
	return r.Snapshot(), nil
}

// Skip ends the current phase early. Skipping the last exercise completes
// the session and saves it.
func (m *Manager) Skip(ctx context.Context) (Snapshot, error) {
	r, err := m.current()
	if err != nil {
		return Snapshot{}, err
	}
	ended, err := r.Skip()
	if err != nil {
		return Snapshot{}, err
	}
	snap := r.Snapshot()
	if ended {
		if _, err := m.finish(ctx, r); err != nil && !errors.Is(err, ErrSessionNotFound) {
			return snap, err
		}
	}
	return snap, nil
}

// Stop ends the active session early and saves it. The record is returned
// even when saving fails; it is then kept for RetryPending.
func (m *Manager) Stop(ctx context.Context) (*storage.SessionRecord, error) {
	r, err := m.current()
	if err != nil {
		return nil, err
	}
	// A session that just completed on its own is saved as completed.
	if err := r.Stop(); err != nil && !r.Ended() {
		return nil, err
	}
	return m.finish(ctx, r)
}

// Snapshot reports the active session, if any.
func (m *Manager) Snapshot() (Snapshot, bool) {
	r, err := m.current()
	if err != nil {
		return Snapshot{}, false
	}
	return r.Snapshot(), true
}

// Subscribe returns a channel of session events and a function that ends
// the subscription. Slow subscribers miss events rather than block the
// session.
func (m *Manager) Subscribe() (<-chan Event, func()) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if m.closed {
		close(ch)
		return ch, func() {}
	}

	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch

	return ch, func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		if c, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(c)
		}
	}
}

func (m *Manager) publish(ev Event) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for _, ch := range m.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (m *Manager) complete(r *sessionRunner) {
	ctx, cancel := context.WithTimeout(context.Background(), m.opts.SaveTimeout)
	defer cancel()

	if _, err := m.finish(ctx, r); err != nil && !errors.Is(err, ErrSessionNotFound) {
		log.Printf("session %s: %v", r.id, err)
	}
}

// finish releases r as the active session and saves its record. Only the
// first caller for a given runner saves.
func (m *Manager) finish(ctx context.Context, r *sessionRunner) (*storage.SessionRecord, error) {
	m.mu.Lock()
	if m.active != r {
		m.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	m.active = nil
	m.mu.Unlock()

	rec := r.Record(m.opts.Location)
	log.Printf("session %s %s after %ds", rec.ID, rec.Status, rec.Seconds())
	return rec, m.save(ctx, rec)
}

func (m *Manager) save(ctx context.Context, rec *storage.SessionRecord) error {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	if len(m.pending) > 0 {
		if _, err := m.retryLocked(ctx); err != nil {
			log.Printf("retry pending sessions: %v", err)
		}
	}

	if err := m.repo.Add(ctx, rec); err != nil {
		m.pending = append(m.pending, rec)
		m.publish(Event{Type: EventSaveFailed, SessionID: rec.ID, Error: err.Error()})
		log.Printf("save session %s: %v", rec.ID, err)
		return fmt.Errorf("save session %s: %w", rec.ID, err)
	}
	m.publish(Event{Type: EventSessionSaved, SessionID: rec.ID})
	return nil
}

// RetryPending saves records whose earlier save failed. It returns how many
// were saved; records that fail again stay pending.
func (m *Manager) RetryPending(ctx context.Context) (int, error) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()
	return m.retryLocked(ctx)
}

func (m *Manager) retryLocked(ctx context.Context) (int, error) {
	var (
		saved int
		errs  []error
		kept  []*storage.SessionRecord
	)
	for _, rec := range m.pending {
		if err := m.repo.Add(ctx, rec); err != nil {
			kept = append(kept, rec)
			errs = append(errs, fmt.Errorf("session %s: %w", rec.ID, err))
			continue
		}
		saved++
		m.publish(Event{Type: EventSessionSaved, SessionID: rec.ID})
	}
	m.pending = kept
	return saved, errors.Join(errs...)
}

// Pending returns the records still waiting to be saved.
func (m *Manager) Pending() []storage.SessionRecord {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	out := make([]storage.SessionRecord, 0, len(m.pending))
	for _, rec := range m.pending {
		out = append(out, *rec)
	}
	return out
}

// SessionsByDate returns the saved sessions for date in start order.
func (m *Manager) SessionsByDate(ctx context.Context, date string) ([]storage.SessionRecord, error) {
	if _, err := time.Parse(storage.DateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	sessions, err := m.repo.GetByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.Before(sessions[j].StartedAt)
	})
	return sessions, nil
}

// Export renders the sessions saved for date as a TCX document.
func (m *Manager) Export(ctx context.Context, date string) ([]byte, error) {
	sessions, err := m.SessionsByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	return export.TCX(date, m.opts.Location, sessions)
}

// Today is the current date in the manager's location.
func (m *Manager) Today() string {
	return m.opts.Now().In(m.opts.Location).Format(storage.DateLayout)
}

// Shutdown stops and saves the active session, makes a last attempt at
// pending records and ends all subscriptions. Records that still could not
// be saved are reported by id in the returned error.
func (m *Manager) Shutdown(ctx context.Context) error {
	var errs []error
	if _, err := m.Stop(ctx); err != nil && !errors.Is(err, ErrSessionNotFound) {
		errs = append(errs, err)
	}

	m.saveMu.Lock()
	if len(m.pending) > 0 {
		if _, err := m.retryLocked(ctx); err != nil {
			log.Printf("retry pending sessions: %v", err)
		}
	}
	if len(m.pending) > 0 {
		ids := make([]string, 0, len(m.pending))
		for _, rec := range m.pending {
			ids = append(ids, rec.ID)
		}
		errs = append(errs, fmt.Errorf("%w: %s", ErrUnsavedSessions, strings.Join(ids, ", ")))
	}
	m.saveMu.Unlock()

	m.subMu.Lock()
	m.closed = true
	for id, ch := range m.subs {
		delete(m.subs, id)
		close(ch)
	}
	m.subMu.Unlock()

	return errors.Join(errs...)
}
