// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/parcbudget/parcbudget-tui/internal/budget"
)

func TestClient_SetsBearerAndRequestID(t *testing.T) {
	var gotAuth, gotReqID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-Id")
		w.Write([]byte(`{"id":1,"username":"amina","email":"a@x.ma","role":"admin","is_staff":true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.SetToken("tok-123")

	user, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("Me failed: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want Bearer tok-123", gotAuth)
	}
	if gotReqID == "" {
		t.Error("X-Request-Id header missing")
	}
	if user.Username != "amina" || user.Role != budget.RoleAdmin {
		t.Errorf("unexpected user: %+v", user)
	}
}

func TestClient_NoAuthHeaderWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.ListProjects(context.Background()); err != nil {
		t.Fatalf("ListProjects failed: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Authorization should be absent, got %q", gotAuth)
	}
}

func TestClient_Login_InvalidCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Nom d'utilisateur ou mot de passe incorrect"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Login(context.Background(), "bob", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	// The backend's detail text must survive verbatim for form display.
	if !strings.Contains(err.Error(), "Nom d'utilisateur ou mot de passe incorrect") {
		t.Errorf("detail text lost: %v", err)
	}
}

func TestClient_Me_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"token expired"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.SetToken("stale")
	_, err := c.Me(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestClient_RegisterValidationErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"validation failed","fields":{"email":"already taken"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Register(context.Background(), RegisterFields{Username: "x", Email: "a@x.ma"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Fields["email"] != "already taken" {
		t.Errorf("field errors not propagated: %+v", apiErr.Fields)
	}
}

func TestClient_RetriesTransientErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.ListProjects(context.Background()); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"no such project"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.GetProject(context.Background(), 99)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (4xx must not retry)", attempts)
	}
}

func TestClient_TokenFingerprint(t *testing.T) {
	c := NewClient("http://localhost")
	if fp := c.TokenFingerprint(); fp != "none" {
		t.Errorf("fingerprint without token = %q, want none", fp)
	}
	c.SetToken("secret-token")
	fp := c.TokenFingerprint()
	if fp == "none" || strings.Contains(fp, "secret") {
		t.Errorf("fingerprint must be a hash, got %q", fp)
	}
	if len(fp) != 8 {
		t.Errorf("fingerprint length = %d, want 8 hex chars", len(fp))
	}
}
