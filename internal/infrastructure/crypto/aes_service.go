// Package crypto provides the AEAD primitive the audit trail uses to
// encrypt event detail strings at rest.
package crypto

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/lagrange-go/lagrange/internal/core/domain"
)

// AESCryptoService implements domain.CryptoService with AES-256-GCM.
type AESCryptoService struct {
	aead cipher.AEAD
}

var _ domain.CryptoService = (*AESCryptoService)(nil)

// NewAESCryptoService builds an AESCryptoService from a 32-byte key encoded
// as hex (64 hex characters).
func NewAESCryptoService(hexKey string) (*AESCryptoService, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("crypto: invalid key encoding: %w", err)
	}
	if len(key) != 32 {
		return nil, errors.New("crypto: key must be 32 bytes for AES-256")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: block cipher failure: %w", err)
	}
	defer func() {
		for i := range key {
			key[i] = 0
		}
	}()

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypto: GCM failure: %w", err)
	}

	return &AESCryptoService{aead: aesGCM}, nil
}

// Encrypt seals plaintext with associatedData bound in and returns the
// URL-safe base64 encoding of nonce||ciphertext||tag.
func (s *AESCryptoService) Encrypt(_ context.Context, plaintext []byte, associatedData []byte) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("crypto: nonce generation failure: %w", err)
	}

	ciphertext := s.aead.Seal(nonce, nonce, plaintext, associatedData)
	return base64.URLEncoding.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt. associatedData must match what was passed to
// Encrypt or the open fails.
func (s *AESCryptoService) Decrypt(_ context.Context, ciphertextBase64 string, associatedData []byte) ([]byte, error) {
	data, err := base64.URLEncoding.DecodeString(ciphertextBase64)
	if err != nil {
		return nil, fmt.Errorf("crypto: base64 decode failure: %w", err)
	}

	ns := s.aead.NonceSize()
	if len(data) < ns {
		return nil, errors.New("crypto: ciphertext too short")
	}

	nonce, actualCiphertext := data[:ns], data[ns:]
	plaintext, err := s.aead.Open(nil, nonce, actualCiphertext, associatedData)
	if err != nil {
		return nil, errors.New("crypto: integrity violation, possible tampering")
	}

	return plaintext, nil
}
