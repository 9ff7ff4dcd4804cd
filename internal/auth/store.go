// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/parcbudget/parcbudget-tui/internal/util"
)

// TokenStore persists the bearer token across restarts. Only the token is
// stored; the user profile is re-derived from the backend each hydration.
type TokenStore interface {
	// Load returns the persisted token, or "" when none is stored.
	Load() (string, error)
	// Save persists the token, replacing any previous one.
	Save(token string) error
	// Delete removes the persisted token. Deleting an absent token is not
	// an error.
	Delete() error
}

// FileTokenStore keeps the token sealed at rest in a file under the user
// config directory. Writes are atomic: a reader sees the old token or the
// new one, never a partial file.
type FileTokenStore struct {
	mu   sync.Mutex
	path string
}

// NewFileTokenStore creates a token store rooted at path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// DefaultTokenPath returns the default token location,
// ~/.parcbudget/token.
func DefaultTokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".parcbudget", "token"), nil
}

// Load implements TokenStore.
func (s *FileTokenStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}

	secret, err := s.loadSecret()
	if err != nil {
		return "", err
	}

	plaintext, err := open(data, secret)
	if err != nil {
		// A token we cannot open is as good as no token. Drop it so the
		// next save starts clean.
		os.Remove(s.path)
		return "", nil
	}
	return string(plaintext), nil
}

// Save implements TokenStore.
func (s *FileTokenStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	secret, err := s.ensureSecret()
	if err != nil {
		return err
	}
	sealed, err := seal([]byte(token), secret)
	if err != nil {
		return fmt.Errorf("failed to seal token: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(s.path, sealed, 0o600, 0o700); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Delete implements TokenStore.
func (s *FileTokenStore) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete token file: %w", err)
	}
	return nil
}

// secretPath is the per-install sealing secret location.
func (s *FileTokenStore) secretPath() string {
	return s.path + ".secret"
}

// loadSecret reads the sealing secret; missing secret means any stored
// token is unopenable.
func (s *FileTokenStore) loadSecret() (string, error) {
	data, err := os.ReadFile(s.secretPath())
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read secret file: %w", err)
	}
	return string(data), nil
}

// ensureSecret returns the sealing secret, generating one on first use.
func (s *FileTokenStore) ensureSecret() (string, error) {
	secret, err := s.loadSecret()
	if err != nil {
		return "", err
	}
	if secret != "" {
		return secret, nil
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	secret = hex.EncodeToString(raw)
	if err := util.AtomicWriteFileWithDir(s.secretPath(), []byte(secret), 0o600, 0o700); err != nil {
		return "", fmt.Errorf("failed to write secret file: %w", err)
	}
	return secret, nil
}

// MemoryTokenStore is an in-memory TokenStore used by tests.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
}

// Load implements TokenStore.
func (m *MemoryTokenStore) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

// Save implements TokenStore.
func (m *MemoryTokenStore) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

// Delete implements TokenStore.
func (m *MemoryTokenStore) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
