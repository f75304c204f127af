// Package cryptox holds the server's cryptographic primitives: the
// credential cipher, the login password hasher and key decoding helpers.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"github.com/dmitrijs2005/gophvault/internal/common"
)

// NonceSize is the AES-GCM nonce length in bytes.
const NonceSize = 12

// SecretCipher encrypts credential payloads with AES-256-GCM under the
// process-wide master key. The AEAD is built once in NewSecretCipher and
// only read afterwards, so a single SecretCipher may be shared by all
// request goroutines.
type SecretCipher struct {
	aead cipher.AEAD
}

// NewSecretCipher builds a cipher for a 32-byte master key. The key bytes
// are expanded into the AES key schedule and not retained.
func NewSecretCipher(key []byte) (*SecretCipher, error) {
	if len(key) != common.MasterKeySize {
		return nil, common.ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &SecretCipher{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random nonce. aad is authenticated
// but not encrypted; the same aad must be supplied to Decrypt.
func (c *SecretCipher) Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error) {
	nonce = make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext = c.aead.Seal(nil, nonce, plaintext, aad)
	return ciphertext, nonce, nil
}

// Decrypt opens ciphertext. Any failure, including a wrong key, a modified
// ciphertext, nonce or aad, yields common.ErrDecryptionFailed and no
// plaintext.
func (c *SecretCipher) Decrypt(ciphertext, nonce, aad []byte) ([]byte, error) {
	if len(nonce) != c.aead.NonceSize() || len(ciphertext) < c.aead.Overhead() {
		return nil, common.ErrDecryptionFailed
	}

	plaintext, err := c.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, common.ErrDecryptionFailed
	}
	return plaintext, nil
}
