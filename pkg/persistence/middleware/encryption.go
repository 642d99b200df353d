// Package middleware provides ProjectStore decorators protecting lead
// data at rest. Leads carry personal data (email, name, free-form
// answers); the decorators here encrypt or mask it before it reaches the
// backing store, keeping every store implementation oblivious.
package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/quizkit/quizkit/pkg/domain"
	"github.com/quizkit/quizkit/pkg/ports"
)

// encPrefix marks an encrypted field value so plain records written
// before encryption was enabled still load.
const encPrefix = "enc:"

// EncryptionConfig holds the keys for lead field encryption.
type EncryptionConfig struct {
	// ActiveKey encrypts new leads. Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys are old keys tried when decryption with the active
	// key fails. This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	ports.ProjectStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts lead
// contact fields (email and name) with AES-GCM before storage and
// decrypts them on read. Graphs and project metadata pass through
// untouched.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.ProjectStore) ports.ProjectStore {
		return &encryptionMiddleware{
			ProjectStore: next,
			config:       config,
		}
	}
}

func (m *encryptionMiddleware) CreateLead(ctx context.Context, lead domain.Lead) (string, error) {
	email, err := m.seal(lead.Email)
	if err != nil {
		return "", fmt.Errorf("encrypt lead email: %w", err)
	}
	lead.Email = email

	if lead.Name != "" {
		name, err := m.seal(lead.Name)
		if err != nil {
			return "", fmt.Errorf("encrypt lead name: %w", err)
		}
		lead.Name = name
	}
	return m.ProjectStore.CreateLead(ctx, lead)
}

func (m *encryptionMiddleware) ListLeads(ctx context.Context, projectID string) ([]domain.Lead, error) {
	leads, err := m.ProjectStore.ListLeads(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for i := range leads {
		email, err := m.open(leads[i].Email)
		if err != nil {
			return nil, fmt.Errorf("decrypt lead %s email: %w", leads[i].ID, err)
		}
		leads[i].Email = email

		name, err := m.open(leads[i].Name)
		if err != nil {
			return nil, fmt.Errorf("decrypt lead %s name: %w", leads[i].ID, err)
		}
		leads[i].Name = name
	}
	return leads, nil
}

func (m *encryptionMiddleware) seal(value string) (string, error) {
	ciphertext, err := encrypt([]byte(value), m.config.ActiveKey)
	if err != nil {
		return "", err
	}
	return encPrefix + base64.StdEncoding.EncodeToString(ciphertext), nil
}

// open decrypts a sealed value. Values without the marker are returned
// as-is so leads written before encryption was enabled stay readable.
func (m *encryptionMiddleware) open(value string) (string, error) {
	if !strings.HasPrefix(value, encPrefix) {
		return value, nil
	}
	ciphertext, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, encPrefix))
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}
	plain, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	// Try active key first
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}

	// Try fallbacks in order
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}

	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	ciphertextBytes := ciphertext[gcm.NonceSize():]

	return gcm.Open(nil, nonce, ciphertextBytes, nil)
}
