package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/facet/internal/logging"
	"github.com/aretw0/facet/pkg/domain"
	"github.com/aretw0/facet/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// ReleaseFunc gives back a session acquired with Manager.Acquire.
// Calling it more than once is a no-op.
type ReleaseFunc func(ctx context.Context)

// lockEntry holds a one-slot semaphore and the reference count.
// The semaphore is a channel so that waiting on it can be cancelled.
type lockEntry struct {
	sem  chan struct{}
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.RecordStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the TTL of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.RecordStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST call release(sessionID) once it no longer holds or waits on entry.sem.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{sem: make(chan struct{}, 1)}
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

// Acquire takes exclusive ownership of a session until the returned ReleaseFunc is called.
// It blocks while another holder in this process or, with a locker, in another replica owns it,
// and gives up with ctx.Err() when ctx is done first.
func (m *Manager) Acquire(ctx context.Context, sessionID string) (ReleaseFunc, error) {
	entry := m.acquire(sessionID)
	select {
	case entry.sem <- struct{}{}:
	case <-ctx.Done():
		m.release(sessionID)
		return nil, ctx.Err()
	}

	var unlock ports.UnlockFunc
	if m.locker != nil {
		var err error
		unlock, err = m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			<-entry.sem
			m.release(sessionID)
			return nil, fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
	}

	var once sync.Once
	return func(ctx context.Context) {
		once.Do(func() {
			if unlock != nil {
				if err := unlock(ctx); err != nil {
					m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
						"session_id", sessionID,
						"err", err,
					)
				}
			}
			<-entry.sem
			m.release(sessionID)
		})
	}, nil
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	release, err := m.Acquire(ctx, sessionID)
	if err != nil {
		return err
	}
	defer release(ctx)

	return fn(ctx)
}

// Load retrieves an existing session from the store.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.Record, error) {
	var record *domain.Record
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		record, err = m.store.Load(ctx, sessionID)
		return err
	})
	return record, err
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying record store.
// Callers holding a session from Acquire must use it directly; the Manager's own
// Load and Delete would try to acquire the same session again.
func (m *Manager) Store() ports.RecordStore {
	return m.store
}

// Logger returns the Manager's logger.
func (m *Manager) Logger() *slog.Logger {
	return m.logger
}
