package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/botflow/internal/logging"
	"github.com/aretw0/botflow/internal/runtime"
	"github.com/aretw0/botflow/pkg/domain"
)

// ErrSessionExists is returned when registering an ID that is already taken.
var ErrSessionExists = errors.New("session already exists")

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager is the in-process registry of live sessions.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	mu    sync.Mutex            // Guards locks and sessions
	locks map[string]*lockEntry // Active per-session locks

	sessions map[string]*runtime.Session
	touched  map[string]time.Time // Last Add or WithLock per session
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock replaces time.Now for idle tracking.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates an empty Manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		locks:    make(map[string]*lockEntry),
		sessions: make(map[string]*runtime.Session),
		touched:  make(map[string]time.Time),
		now:      time.Now,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

func (m *Manager) lookup(sessionID string) (*runtime.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[sessionID]
	return sess, ok
}

// Add registers a new session.
func (m *Manager) Add(ctx context.Context, sess *runtime.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[sess.ID()]; exists {
		return fmt.Errorf("%w: %s", ErrSessionExists, sess.ID())
	}
	m.sessions[sess.ID()] = sess
	m.touched[sess.ID()] = m.now()
	m.logger.Debug("session registered", "session_id", sess.ID(), "flow_id", sess.RootGraph().ID)
	return nil
}

// Snapshot returns the serializable view of a session, taken under its lock.
func (m *Manager) Snapshot(ctx context.Context, sessionID string) (domain.SessionSnapshot, error) {
	var snap domain.SessionSnapshot
	err := m.WithLock(ctx, sessionID, func(_ context.Context, sess *runtime.Session) error {
		snap = sess.Snapshot()
		return nil
	})
	return snap, err
}

// Delete removes a session.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(context.Context, *runtime.Session) error {
		m.forget(sessionID)
		m.logger.Debug("session deleted", "session_id", sessionID)
		return nil
	})
}

// List returns the IDs of all live sessions in sorted order.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// Prune deletes sessions nobody has added or locked within olderThan,
// completed or abandoned alike, and returns how many went.
func (m *Manager) Prune(ctx context.Context, olderThan time.Duration) (int, error) {
	ids, err := m.List(ctx)
	if err != nil {
		return 0, err
	}
	cutoff := m.now().Add(-olderThan)
	pruned := 0
	for _, id := range ids {
		err := m.withLock(ctx, id, false, func(_ context.Context, sess *runtime.Session) error {
			m.mu.Lock()
			idle := m.touched[id].Before(cutoff)
			m.mu.Unlock()
			if !idle {
				return nil
			}
			m.forget(id)
			pruned++
			m.logger.Debug("session pruned", "session_id", id, "completed", sess.Completed())
			return nil
		})
		if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			return pruned, err
		}
	}
	if pruned > 0 {
		m.logger.Info("pruned idle sessions", "count", pruned)
	}
	return pruned, nil
}

// WithLock executes fn while holding the lock for the session.
// It returns ErrSessionNotFound when the session does not exist (or was deleted
// while the caller waited for the lock).
// Every call counts as activity for Prune.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context, *runtime.Session) error) error {
	return m.withLock(ctx, sessionID, true, fn)
}

func (m *Manager) withLock(ctx context.Context, sessionID string, touch bool, fn func(context.Context, *runtime.Session) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	sess, ok := m.lookup(sessionID)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}
	err := fn(ctx, sess)
	if touch {
		m.mu.Lock()
		if _, live := m.sessions[sessionID]; live {
			m.touched[sessionID] = m.now()
		}
		m.mu.Unlock()
	}
	return err
}

func (m *Manager) forget(sessionID string) {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	delete(m.touched, sessionID)
	m.mu.Unlock()
}
