package domain

import "context"

// CryptoService is an AEAD seal/open contract, used by AuditRepository to
// encrypt event detail strings at rest, bound to the session ID as
// associated data.
type CryptoService interface {
	Encrypt(ctx context.Context, plaintext []byte, associatedData []byte) (string, error)
	Decrypt(ctx context.Context, ciphertextBase64 string, associatedData []byte) ([]byte, error)
}
