package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/facet/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunRecordStoreContract runs a suite of tests to verify that a RecordStore implementation
// adheres to the defined interface contract.
func RunRecordStoreContract(t *testing.T, store RecordStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		record := domain.NewRecord(sessionID)
		record.Values["fSession::foo"] = "bar"
		record.Values["fSession::count"] = 42
		record.Values["other::flag"] = true

		err := store.Save(ctx, sessionID, record)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, sessionID, loaded.ID)
		assert.Equal(t, "bar", loaded.Values["fSession::foo"])
		assert.Equal(t, true, loaded.Values["other::flag"])
		// JSON persistence turns ints into float64, so only check existence.
		assert.NotNil(t, loaded.Values["fSession::count"])
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		first := domain.NewRecord(sessionID)
		first.Values["a"] = "1"
		require.NoError(t, store.Save(ctx, sessionID, first))

		second := domain.NewRecord(sessionID)
		second.Values["b"] = "2"
		require.NoError(t, store.Save(ctx, sessionID, second))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.NotContains(t, loaded.Values, "a")
		assert.Equal(t, "2", loaded.Values["b"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewRecord(sessionID))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		// Deleting again is a no-op.
		assert.NoError(t, store.Delete(ctx, sessionID))
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewRecord(id1))
		_ = store.Save(ctx, id2, domain.NewRecord(id2))

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
