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

	"github.com/Jembe/jembe-sub000/pkg/domain"
	"github.com/Jembe/jembe-sub000/pkg/ports"
)

// envelopeName marks the single snapshot carrying an encrypted entry.
const envelopeName = "__encrypted__"

// ErrKeySize is returned for keys that are not 32 bytes long.
var ErrKeySize = errors.New("encryption key must be 32 bytes (AES-256)")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey encrypts new entries. Must be 32 bytes.
	ActiveKey []byte

	// FallbackKeys are tried in order when the active key cannot decrypt,
	// so keys can be rotated without losing history.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.HistoryStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that stores each entry's
// component states sealed with AES-GCM. The URL stays readable.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, ErrKeySize
	}
	for _, k := range config.FallbackKeys {
		if len(k) != 32 {
			return nil, ErrKeySize
		}
	}
	return func(next ports.HistoryStore) ports.HistoryStore {
		return &encryptionMiddleware{next: next, config: config}
	}, nil
}

func (m *encryptionMiddleware) seal(entry domain.HistoryEntry) (domain.HistoryEntry, error) {
	plain, err := json.Marshal(entry.Components)
	if err != nil {
		return entry, fmt.Errorf("failed to marshal components: %w", err)
	}
	ciphertext, err := encrypt(plain, m.config.ActiveKey)
	if err != nil {
		return entry, fmt.Errorf("failed to encrypt entry: %w", err)
	}
	return domain.HistoryEntry{
		URL: entry.URL,
		Components: []domain.ComponentSnapshot{{
			ExecName: envelopeName,
			State:    map[string]any{"data": base64.StdEncoding.EncodeToString(ciphertext)},
		}},
	}, nil
}

func (m *encryptionMiddleware) open(envelope domain.HistoryEntry) (domain.HistoryEntry, error) {
	if len(envelope.Components) != 1 || envelope.Components[0].ExecName != envelopeName {
		return envelope, errors.New("history entry is missing its encrypted envelope")
	}
	encoded, ok := envelope.Components[0].State["data"].(string)
	if !ok {
		return envelope, errors.New("history entry is missing its encrypted envelope")
	}
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return envelope, fmt.Errorf("failed to decode ciphertext: %w", err)
	}
	plain, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return envelope, fmt.Errorf("failed to decrypt entry: %w", err)
	}

	entry := domain.HistoryEntry{URL: envelope.URL}
	if err := json.Unmarshal(plain, &entry.Components); err != nil {
		return envelope, fmt.Errorf("failed to unmarshal components: %w", err)
	}
	return entry, nil
}

func (m *encryptionMiddleware) Push(ctx context.Context, sessionID string, entry domain.HistoryEntry) error {
	sealed, err := m.seal(entry)
	if err != nil {
		return err
	}
	return m.next.Push(ctx, sessionID, sealed)
}

func (m *encryptionMiddleware) Replace(ctx context.Context, sessionID string, entry domain.HistoryEntry) error {
	sealed, err := m.seal(entry)
	if err != nil {
		return err
	}
	return m.next.Replace(ctx, sessionID, sealed)
}

func (m *encryptionMiddleware) Current(ctx context.Context, sessionID string) (domain.HistoryEntry, error) {
	envelope, err := m.next.Current(ctx, sessionID)
	if err != nil {
		return envelope, err
	}
	return m.open(envelope)
}

func (m *encryptionMiddleware) Back(ctx context.Context, sessionID string) (domain.HistoryEntry, error) {
	envelope, err := m.next.Back(ctx, sessionID)
	if err != nil {
		return envelope, err
	}
	return m.open(envelope)
}

func (m *encryptionMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func encrypt(plaintext, key []byte) ([]byte, error) {
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

func decryptWithRotation(ciphertext, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, sealed, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
