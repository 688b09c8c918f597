package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/aretw0/facet/pkg/adapters/memory"
	"github.com/aretw0/facet/pkg/domain"
	"github.com/aretw0/facet/pkg/persistence/middleware"
	"github.com/aretw0/facet/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func encrypted(t *testing.T, next ports.RecordStore, config middleware.EncryptionConfig) ports.RecordStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(config)
	require.NoError(t, err)
	return mw(next)
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	ports.RunRecordStoreContract(t, encrypted(t, memory.NewStore(), middleware.EncryptionConfig{ActiveKey: generateKey(t)}))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	store := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})

	record := domain.NewRecord("s1")
	record.Values["fSession::secret"] = "my-secret-sauce"
	require.NoError(t, store.Save(ctx, "s1", record))

	raw, err := underlying.Load(ctx, "s1")
	require.NoError(t, err)
	assert.NotContains(t, raw.Values, "fSession::secret")
	assert.Contains(t, raw.Values, middleware.EnvelopeKey)
	assert.Equal(t, "s1", raw.ID, "metadata stays readable")
	assert.Equal(t, record.CreatedAt, raw.CreatedAt)

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "my-secret-sauce", loaded.Values["fSession::secret"])
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)

	oldStore := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: oldKey})
	record := domain.NewRecord("rotation")
	record.Values["data"] = "old"
	require.NoError(t, oldStore.Save(ctx, "rotation", record))

	newStore := encrypted(t, underlying, middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})
	loaded, err := newStore.Load(ctx, "rotation")
	require.NoError(t, err, "fallback key must decrypt")
	assert.Equal(t, "old", loaded.Values["data"])

	loaded.Values["data"] = "new"
	require.NoError(t, newStore.Save(ctx, "rotation", loaded))

	_, err = oldStore.Load(ctx, "rotation")
	assert.Error(t, err, "old key alone must not read records sealed with the new key")
}

func TestEncryptionMiddleware_RejectsPlaintext(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	plain := domain.NewRecord("plain")
	plain.Values["k"] = "v"
	require.NoError(t, underlying.Save(ctx, "plain", plain))

	store := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	_, err := store.Load(ctx, "plain")
	assert.ErrorContains(t, err, "missing encrypted data envelope")

	_, err = store.Load(ctx, "absent")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("short")},
	})
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)
}
