// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// Token-at-rest sealing parameters.
const (
	// sealSaltSize is the per-file random salt length.
	sealSaltSize = 32

	// sealKeySize is the derived AES-256 key length.
	sealKeySize = 32

	// sealIterations is the PBKDF2-SHA-256 iteration count.
	sealIterations = 100_000
)

// ErrSealCorrupt indicates a token file that cannot be opened, either
// truncated or written by a different installation.
var ErrSealCorrupt = errors.New("sealed token is corrupt")

// seal encrypts plaintext with AES-256-GCM under a key derived from secret.
// Output layout: salt || nonce || ciphertext.
func seal(plaintext []byte, secret string) ([]byte, error) {
	salt := make([]byte, sealSaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	gcm, err := newGCM(secret, salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, sealSaltSize+gcm.NonceSize()+len(plaintext)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, nil), nil
}

// open decrypts data produced by seal.
func open(data []byte, secret string) ([]byte, error) {
	if len(data) < sealSaltSize {
		return nil, ErrSealCorrupt
	}
	salt, rest := data[:sealSaltSize], data[sealSaltSize:]

	gcm, err := newGCM(secret, salt)
	if err != nil {
		return nil, err
	}
	if len(rest) < gcm.NonceSize() {
		return nil, ErrSealCorrupt
	}
	nonce, ciphertext := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSealCorrupt, err)
	}
	return plaintext, nil
}

// newGCM builds the AEAD for a secret and salt pair.
func newGCM(secret string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(secret), salt, sealIterations, sealKeySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}
