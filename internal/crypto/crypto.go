package crypto

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/pbkdf2"
)

const (
	SaltSize          = 32     // Salt size in bytes
	KeySize           = 32     // ChaCha20-Poly1305 key size
	NonceSize         = 12     // ChaCha20-Poly1305 nonce size
	TagSize           = 16     // Poly1305 authentication tag size
	DefaultIterations = 600000 // PBKDF2-HMAC-SHA256 iterations
)

// DeriveKey derives a KeySize key from a password and salt with PBKDF2-HMAC-SHA256.
// The same (password, salt, iterations) triple always yields the same key.
// The caller must ClearBytes the returned key.
func DeriveKey(password, salt []byte, iterations int) ([]byte, error) {
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("%w: salt must be %d bytes, got %d", ErrKeyDerivation, SaltSize, len(salt))
	}
	if iterations < 1 {
		return nil, fmt.Errorf("%w: iteration count must be positive", ErrKeyDerivation)
	}
	return pbkdf2.Key(password, salt, iterations, KeySize, sha256.New), nil
}

// seal encrypts plaintext with ChaCha20-Poly1305 and no associated data
func seal(key, nonce, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryption, err)
	}
	if len(nonce) != aead.NonceSize() {
		return nil, fmt.Errorf("%w: nonce must be %d bytes, got %d", ErrEncryption, aead.NonceSize(), len(nonce))
	}
	return aead.Seal(nil, nonce, plaintext, nil), nil
}

// open verifies and decrypts ciphertext||tag
func open(key, nonce, ciphertext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, &DecryptionError{Err: err}
	}
	if len(nonce) != aead.NonceSize() {
		return nil, &DecryptionError{Err: fmt.Errorf("nonce must be %d bytes, got %d", aead.NonceSize(), len(nonce))}
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, &DecryptionError{Err: err}
	}
	return plaintext, nil
}

// ClearBytes securely clears a byte slice
func ClearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ConstantTimeCompare performs a constant-time comparison of two byte slices
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
