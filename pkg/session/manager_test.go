package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/planflow/pkg/adapters/memory"
	"github.com/aretw0/planflow/pkg/domain"
	"github.com/aretw0/planflow/pkg/ports"
	"github.com/aretw0/planflow/pkg/session"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	*memory.Store
}

func (s *SlowStore) Save(ctx context.Context, sessionID string, snap *domain.Snapshot) error {
	time.Sleep(5 * time.Millisecond)
	return s.Store.Save(ctx, sessionID, snap)
}

func (s *SlowStore) Load(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	time.Sleep(5 * time.Millisecond)
	return s.Store.Load(ctx, sessionID)
}

func TestManager_UpdateIsSerialised(t *testing.T) {
	manager := session.NewManager(&SlowStore{memory.NewStore()})
	ctx := context.Background()
	id := "race-test"

	_, err := manager.LoadOrStart(ctx, id, "flow")
	require.NoError(t, err)

	var wg sync.WaitGroup
	writers := 10
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := manager.Update(ctx, id, func(_ context.Context, s *domain.Snapshot) (*domain.Snapshot, error) {
				seq := s.Breadcrumbs.Len() + 1
				s.Breadcrumbs.Set(string(rune('a'+seq)), domain.Breadcrumb{Seq: seq})
				return s, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	snap, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, writers, snap.Breadcrumbs.Len(), "no update may be lost")
}

func TestManager_UpdateFailureDoesNotSave(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()
	_, err := manager.LoadOrStart(ctx, "s1", "flow")
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = manager.Update(ctx, "s1", func(_ context.Context, s *domain.Snapshot) (*domain.Snapshot, error) {
		s.Breadcrumbs.Set("x", domain.Breadcrumb{})
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	snap, err := manager.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Zero(t, snap.Breadcrumbs.Len())

	_, err = manager.Update(ctx, "missing", func(_ context.Context, s *domain.Snapshot) (*domain.Snapshot, error) {
		return s, nil
	})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_LoadOrStart(t *testing.T) {
	manager := session.NewManager(&SlowStore{memory.NewStore()})
	ctx := context.Background()
	id := "atomic-init"

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap, err := manager.LoadOrStart(ctx, id, "householder")
			assert.NoError(t, err)
			assert.NotNil(t, snap)
		}()
	}
	wg.Wait()

	snap, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "householder", snap.Flow)
	assert.Equal(t, id, snap.SessionID)

	ids, err := manager.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{id}, ids)
}

type recordingLocker struct {
	mu   sync.Mutex
	keys []string
	ttls []time.Duration
}

func (l *recordingLocker) Lock(_ context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keys = append(l.keys, key)
	l.ttls = append(l.ttls, ttl)
	return func(context.Context) error { return nil }, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &recordingLocker{}
	manager := session.NewManager(memory.NewStore(),
		session.WithLocker(locker),
		session.WithLockTTL(5*time.Second),
	)

	require.NoError(t, manager.Save(context.Background(), "s1", domain.NewSnapshot("s1")))
	assert.Equal(t, []string{"s1"}, locker.keys)
	assert.Equal(t, []time.Duration{5 * time.Second}, locker.ttls)
}
