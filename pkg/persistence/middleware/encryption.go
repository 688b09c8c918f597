package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/facet/pkg/domain"
	"github.com/aretw0/facet/pkg/ports"
)

// EnvelopeKey is the single value key of an encrypted record.
const EnvelopeKey = "__encrypted__"

// ErrInvalidKey is returned for keys that are not 32 bytes long.
var ErrInvalidKey = errors.New("encryption key must be 32 bytes (AES-256)")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey encrypts new writes. Must be 32 bytes.
	ActiveKey []byte

	// FallbackKeys are tried in order when the active key cannot decrypt a record,
	// so keys can be rotated without invalidating live sessions.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.RecordStore
	config EncryptionConfig
}

// NewEncryptionMiddleware returns a Middleware that seals record values with AES-GCM.
// Record metadata (ID and timestamps) stays readable for listing tools.
// Decrypted values are JSON-restored whatever the underlying store is.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, ErrInvalidKey
	}
	for _, k := range config.FallbackKeys {
		if len(k) != 32 {
			return nil, ErrInvalidKey
		}
	}
	return func(next ports.RecordStore) ports.RecordStore {
		return &encryptionMiddleware{next: next, config: config}
	}, nil
}

func (m *encryptionMiddleware) Save(ctx context.Context, sessionID string, record *domain.Record) error {
	plain, err := json.Marshal(record.Values)
	if err != nil {
		return fmt.Errorf("failed to marshal session values: %w", err)
	}

	sealed, err := seal(plain, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt session values: %w", err)
	}

	envelope := &domain.Record{
		ID:        record.ID,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
		Values: map[string]any{
			EnvelopeKey: base64.StdEncoding.EncodeToString(sealed),
		},
	}
	return m.next.Save(ctx, sessionID, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, sessionID string) (*domain.Record, error) {
	envelope, err := m.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	encoded, ok := envelope.Values[EnvelopeKey].(string)
	if !ok {
		// Fail secure: a plaintext record is never handed out as if it were sealed.
		return nil, errors.New("session record is missing encrypted data envelope")
	}

	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plain, err := openWithRotation(sealed, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt session values: %w", err)
	}

	values := make(map[string]any)
	if err := json.Unmarshal(plain, &values); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted values: %w", err)
	}

	return &domain.Record{
		ID:        envelope.ID,
		CreatedAt: envelope.CreatedAt,
		UpdatedAt: envelope.UpdatedAt,
		Values:    values,
	}, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// seal returns nonce || ciphertext.
func seal(plaintext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func open(sealed, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(sealed) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

func openWithRotation(sealed, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	for _, key := range append([][]byte{activeKey}, fallbackKeys...) {
		if plain, err := open(sealed, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}
