package session_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/facet/pkg/adapters/memory"
	"github.com/aretw0/facet/pkg/domain"
	"github.com/aretw0/facet/pkg/ports"
	"github.com/aretw0/facet/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	data map[string]*domain.Record
	mu   sync.Mutex
}

func (s *SlowStore) Save(ctx context.Context, sessionID string, record *domain.Record) error {
	time.Sleep(10 * time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string]*domain.Record)
	}
	s.data[sessionID] = record.Snapshot()
	return nil
}

func (s *SlowStore) Load(ctx context.Context, sessionID string) (*domain.Record, error) {
	time.Sleep(10 * time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if record, ok := s.data[sessionID]; ok {
		return record.Snapshot(), nil
	}
	return nil, domain.ErrSessionNotFound
}

func (s *SlowStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

func (s *SlowStore) List(ctx context.Context) ([]string, error) {
	return nil, nil
}

func TestManager_ReadModifyWriteIsSerialized(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store)
	ctx := context.Background()
	id := "race-test"

	require.NoError(t, store.Save(ctx, id, domain.NewRecord(id)))

	var wg sync.WaitGroup
	writers := 10

	// Each writer increments a counter under the session lock.
	// Without serialization, concurrent read-modify-write would lose updates.
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := manager.WithLock(ctx, id, func(ctx context.Context) error {
				record, err := manager.Store().Load(ctx, id)
				if err != nil {
					return err
				}
				n, _ := record.Values["n"].(int)
				record.Values["n"] = n + 1
				return manager.Store().Save(ctx, id, record)
			})
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	record, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, writers, record.Values["n"])
}

func TestManager_LoadMissing(t *testing.T) {
	manager := session.NewManager(&SlowStore{})

	_, err := manager.Load(context.Background(), "absent")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_AcquireBlocksSecondHolder(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	release, err := manager.Acquire(ctx, "held")
	require.NoError(t, err)

	var acquired atomic.Bool
	done := make(chan struct{})
	go func() {
		defer close(done)
		r2, err := manager.Acquire(ctx, "held")
		if err == nil {
			acquired.Store(true)
			r2(ctx)
		}
	}()

	time.Sleep(50 * time.Millisecond)
	assert.False(t, acquired.Load(), "second holder must wait for release")

	release(ctx)
	<-done
	assert.True(t, acquired.Load())
}

// recordingLocker counts lock/unlock calls and remembers the TTL.
type recordingLocker struct {
	locks, unlocks atomic.Int32
	ttl            time.Duration
}

func (l *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.locks.Add(1)
	l.ttl = ttl
	return func(ctx context.Context) error {
		l.unlocks.Add(1)
		return nil
	}, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	ctx := context.Background()

	t.Run("LockAndUnlock", func(t *testing.T) {
		locker := &recordingLocker{}
		manager := session.NewManager(memory.NewStore(),
			session.WithLocker(locker),
			session.WithLockTTL(5*time.Second),
		)

		require.NoError(t, manager.Delete(ctx, "s"))
		assert.Equal(t, int32(1), locker.locks.Load())
		assert.Equal(t, int32(1), locker.unlocks.Load())
		assert.Equal(t, 5*time.Second, locker.ttl)
	})
}
