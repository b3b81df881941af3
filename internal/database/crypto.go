package database

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// SecretCipher encrypts small secrets (token files, stored settings)
// with AES-256-GCM. Encrypted output is nonce||ciphertext; the nonce
// is not secret.
type SecretCipher struct {
	key []byte
}

// NewSecretCipher builds a cipher from a base64-encoded 32-byte key.
func NewSecretCipher(base64Key string) (*SecretCipher, error) {
	if base64Key == "" {
		return nil, errors.New("encryption key not set")
	}

	key, err := base64.StdEncoding.DecodeString(base64Key)
	if err != nil {
		return nil, fmt.Errorf("failed to decode encryption key from base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("invalid encryption key length: got %d bytes, expected 32 bytes for AES-256", len(key))
	}

	return &SecretCipher{key: key}, nil
}

// Encrypt encrypts a plaintext string, returning nonce||ciphertext.
func (c *SecretCipher) Encrypt(plaintext string) ([]byte, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, []byte(plaintext), nil)
	return append(nonce, ciphertext...), nil
}

// Decrypt reverses Encrypt, verifying the GCM authentication tag.
func (c *SecretCipher) Decrypt(encrypted []byte) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(encrypted) < nonceSize {
		return "", errors.New("encrypted data too short, missing nonce")
	}

	plaintext, err := gcm.Open(nil, encrypted[:nonceSize], encrypted[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("decryption failed: %w", err)
	}
	return string(plaintext), nil
}
