package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/planflow/pkg/domain"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore
// implementation adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		snap := domain.NewSnapshot(sessionID)
		snap.Flow = "householder"
		snap.Breadcrumbs.Set("q2", domain.Breadcrumb{Answers: []string{"a"}, Seq: 2})
		snap.Breadcrumbs.Set("q1", domain.Breadcrumb{Data: map[string]any{"count": 42}, Seq: 1})
		snap.CachedBreadcrumbs.Set("q3", domain.Breadcrumb{Auto: true, Seq: 3})
		snap.PendingEdit = []string{"q3"}

		err := store.Save(ctx, sessionID, snap)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, sessionID, loaded.SessionID)
		assert.Equal(t, "householder", loaded.Flow)
		assert.Equal(t, []string{"q2", "q1"}, loaded.Breadcrumbs.IDs(), "breadcrumb order must survive persistence")
		assert.True(t, loaded.CachedBreadcrumbs.Has("q3"))
		assert.Equal(t, []string{"q3"}, loaded.PendingEdit)

		q1, _ := loaded.Breadcrumbs.Get("q1")
		// JSON persistence turns ints into float64; existence is what matters.
		assert.NotNil(t, q1.Data["count"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewSnapshot(sessionID))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewSnapshot(id1))
		_ = store.Save(ctx, id2, domain.NewSnapshot(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
