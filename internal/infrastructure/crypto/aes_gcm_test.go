package crypto_test

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/lagrange-go/lagrange/internal/infrastructure/crypto"
)

func generateTestKey(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("failed to generate test key: %v", err)
	}
	return hex.EncodeToString(key)
}

func TestAESGCM_EncryptDecrypt_RoundTrip(t *testing.T) {
	svc, err := crypto.NewAESCryptoService(generateTestKey(t))
	if err != nil {
		t.Fatalf("failed to create crypto service: %v", err)
	}

	ctx := context.Background()
	plaintext := []byte("joined session, disconnected with status 1001")
	aad := []byte("session-uuid-1234-5678")

	ciphertext, err := svc.Encrypt(ctx, plaintext, aad)
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}

	decrypted, err := svc.Decrypt(ctx, ciphertext, aad)
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}

	if string(decrypted) != string(plaintext) {
		t.Errorf("round-trip failed: got %q, want %q", decrypted, plaintext)
	}
}

func TestAESGCM_AAD_Tamper_Detection(t *testing.T) {
	svc, err := crypto.NewAESCryptoService(generateTestKey(t))
	if err != nil {
		t.Fatalf("failed to create crypto service: %v", err)
	}

	ctx := context.Background()
	plaintext := []byte("heartbeat failed three times")

	ciphertext, err := svc.Encrypt(ctx, plaintext, []byte("session-a"))
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}

	if _, err := svc.Decrypt(ctx, ciphertext, []byte("session-b")); err == nil {
		t.Fatal("decrypt succeeded with mismatched associated data")
	}

	decrypted, err := svc.Decrypt(ctx, ciphertext, []byte("session-a"))
	if err != nil {
		t.Fatalf("decrypt with correct aad failed: %v", err)
	}
	if string(decrypted) != string(plaintext) {
		t.Errorf("aad round-trip failed: got %q, want %q", decrypted, plaintext)
	}
}

func TestAESGCM_Nonce_Uniqueness(t *testing.T) {
	svc, err := crypto.NewAESCryptoService(generateTestKey(t))
	if err != nil {
		t.Fatalf("failed to create crypto service: %v", err)
	}

	ctx := context.Background()
	plaintext := []byte("identical-plaintext")
	aad := []byte("same-aad")

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ct, err := svc.Encrypt(ctx, plaintext, aad)
		if err != nil {
			t.Fatalf("encrypt #%d failed: %v", i, err)
		}
		if seen[ct] {
			t.Fatalf("nonce reuse detected at iteration %d", i)
		}
		seen[ct] = true
	}
}

func TestAESGCM_Rejects_Short_Key(t *testing.T) {
	shortKey := strings.Repeat("ab", 16) // 128 bits, need 256
	if _, err := crypto.NewAESCryptoService(shortKey); err == nil {
		t.Fatal("accepted a 128-bit key")
	}
}

func TestAESGCM_Rejects_Invalid_Hex(t *testing.T) {
	if _, err := crypto.NewAESCryptoService("not-a-valid-hex-string-at-all!!!"); err == nil {
		t.Fatal("accepted a non-hex key")
	}
}

func TestAESGCM_Rejects_Empty_Key(t *testing.T) {
	if _, err := crypto.NewAESCryptoService(""); err == nil {
		t.Fatal("accepted an empty key")
	}
}

func TestAESGCM_Ciphertext_Tamper_Detection(t *testing.T) {
	svc, err := crypto.NewAESCryptoService(generateTestKey(t))
	if err != nil {
		t.Fatalf("failed to create crypto service: %v", err)
	}

	ctx := context.Background()
	plaintext := []byte("sensitive-data")
	aad := []byte("bound-context")

	ciphertext, err := svc.Encrypt(ctx, plaintext, aad)
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}

	tampered := []byte(ciphertext)
	if len(tampered) > 10 {
		if tampered[10] == 'a' {
			tampered[10] = 'b'
		} else {
			tampered[10] = 'a'
		}
	}

	if _, err := svc.Decrypt(ctx, string(tampered), aad); err == nil {
		t.Fatal("decrypt succeeded on tampered ciphertext")
	}
}

func TestAESGCM_Empty_Plaintext(t *testing.T) {
	svc, err := crypto.NewAESCryptoService(generateTestKey(t))
	if err != nil {
		t.Fatalf("failed to create crypto service: %v", err)
	}

	ctx := context.Background()

	ciphertext, err := svc.Encrypt(ctx, []byte{}, []byte("aad"))
	if err != nil {
		t.Fatalf("encrypt empty plaintext failed: %v", err)
	}

	decrypted, err := svc.Decrypt(ctx, ciphertext, []byte("aad"))
	if err != nil {
		t.Fatalf("decrypt empty plaintext failed: %v", err)
	}
	if len(decrypted) != 0 {
		t.Errorf("expected empty plaintext, got %d bytes", len(decrypted))
	}
}
