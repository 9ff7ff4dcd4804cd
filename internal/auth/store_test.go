// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileTokenStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	store := NewFileTokenStore(path)

	// Empty store loads as no token.
	tok, err := store.Load()
	if err != nil {
		t.Fatalf("Load on empty store failed: %v", err)
	}
	if tok != "" {
		t.Errorf("empty store returned token %q", tok)
	}

	if err := store.Save("bearer-xyz"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	tok, err = store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if tok != "bearer-xyz" {
		t.Errorf("Load = %q, want bearer-xyz", tok)
	}

	// A second store instance on the same path reads the same token, the
	// way a process restart would.
	again := NewFileTokenStore(path)
	tok, err = again.Load()
	if err != nil {
		t.Fatalf("Load after reopen failed: %v", err)
	}
	if tok != "bearer-xyz" {
		t.Errorf("Load after reopen = %q, want bearer-xyz", tok)
	}
}

func TestFileTokenStore_TokenNotStoredInClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	store := NewFileTokenStore(path)
	if err := store.Save("super-secret-token"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if strings.Contains(string(raw), "super-secret-token") {
		t.Error("token stored in cleartext")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("token file perm = %v, want 0600", info.Mode().Perm())
	}
}

func TestFileTokenStore_Delete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	store := NewFileTokenStore(path)

	// Deleting an absent token is fine.
	if err := store.Delete(); err != nil {
		t.Fatalf("Delete on empty store failed: %v", err)
	}

	if err := store.Save("abc"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Delete(); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	tok, err := store.Load()
	if err != nil {
		t.Fatalf("Load after delete failed: %v", err)
	}
	if tok != "" {
		t.Errorf("token survived delete: %q", tok)
	}
}

func TestFileTokenStore_CorruptFileTreatedAsNoToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	store := NewFileTokenStore(path)
	if err := store.Save("abc"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Truncate the sealed file.
	if err := os.WriteFile(path, []byte("junk"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	tok, err := store.Load()
	if err != nil {
		t.Fatalf("Load of corrupt file should not error, got %v", err)
	}
	if tok != "" {
		t.Errorf("corrupt file yielded token %q", tok)
	}
}

func TestSealRoundTrip(t *testing.T) {
	sealed, err := seal([]byte("payload"), "secret")
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	plain, err := open(sealed, "secret")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if string(plain) != "payload" {
		t.Errorf("round trip = %q, want payload", plain)
	}

	// Wrong secret must not open.
	if _, err := open(sealed, "other"); err == nil {
		t.Error("open with wrong secret should fail")
	}

	// Tampered ciphertext must not open.
	sealed[len(sealed)-1] ^= 0xff
	if _, err := open(sealed, "secret"); err == nil {
		t.Error("open of tampered data should fail")
	}
}
