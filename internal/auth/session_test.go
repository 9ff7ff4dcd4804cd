// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcbudget/parcbudget-tui/internal/api"
	"github.com/parcbudget/parcbudget-tui/internal/budget"
)

// newBackend builds an httptest backend with a canned user for token "abc".
func newBackend(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var meCalls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		meCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer abc" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail":"token expired"}`))
			return
		}
		w.Write([]byte(`{"id":1,"username":"amina","email":"a@x.ma","role":"user","is_staff":false}`))
	})
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":"abc","user":{"id":1,"username":"amina","email":"a@x.ma","role":"user","is_staff":false}}`))
	})
	mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &meCalls
}

func TestSession_HydrateWithValidToken(t *testing.T) {
	srv, meCalls := newBackend(t)
	store := &MemoryTokenStore{}
	require.NoError(t, store.Save("abc"))

	s := NewSession(api.NewClient(srv.URL), store)
	assert.Equal(t, Hydrating, s.State())

	require.NoError(t, s.Hydrate(context.Background()))

	assert.Equal(t, ReadyAuthenticated, s.State())
	require.NotNil(t, s.User())
	assert.Equal(t, "amina", s.User().Username)
	assert.Equal(t, "abc", s.Token())
	assert.Equal(t, int64(1), meCalls.Load())
}

func TestSession_HydrateIsIdempotent(t *testing.T) {
	srv, meCalls := newBackend(t)
	store := &MemoryTokenStore{}
	require.NoError(t, store.Save("abc"))

	s := NewSession(api.NewClient(srv.URL), store)
	require.NoError(t, s.Hydrate(context.Background()))
	assert.ErrorIs(t, s.Hydrate(context.Background()), ErrAlreadyHydrated)
	assert.Equal(t, int64(1), meCalls.Load(), "second Hydrate must not revalidate")
}

func TestSession_HydrateWithoutToken(t *testing.T) {
	srv, meCalls := newBackend(t)
	s := NewSession(api.NewClient(srv.URL), &MemoryTokenStore{})

	require.NoError(t, s.Hydrate(context.Background()))

	assert.Equal(t, ReadyUnauthenticated, s.State())
	assert.Nil(t, s.User())
	assert.Empty(t, s.Token())
	assert.Equal(t, int64(0), meCalls.Load(), "no token means no who-am-I call")
}

func TestSession_HydrateWithStaleToken(t *testing.T) {
	srv, _ := newBackend(t)
	store := &MemoryTokenStore{}
	require.NoError(t, store.Save("stale"))

	s := NewSession(api.NewClient(srv.URL).WithMaxRetries(1), store)
	require.NoError(t, s.Hydrate(context.Background()), "rejected token is not a fatal error")

	assert.Equal(t, ReadyUnauthenticated, s.State())
	assert.Nil(t, s.User())

	// The rejected token must be purged from the store.
	tok, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestSession_HydrateWithUnreachableBackend(t *testing.T) {
	store := &MemoryTokenStore{}
	require.NoError(t, store.Save("abc"))

	// Nothing listens here: hydration must fail safe to logged out, not
	// leave the UI stuck on Hydrating.
	s := NewSession(api.NewClient("http://127.0.0.1:1").WithMaxRetries(1), store)
	require.NoError(t, s.Hydrate(context.Background()))
	assert.Equal(t, ReadyUnauthenticated, s.State())
}

func TestSession_LoginEstablishesSession(t *testing.T) {
	srv, _ := newBackend(t)
	store := &MemoryTokenStore{}
	s := NewSession(api.NewClient(srv.URL), store)
	require.NoError(t, s.Hydrate(context.Background()))

	require.NoError(t, s.Login(context.Background(), "amina", "s3cret"))

	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "abc", s.Token())
	require.NotNil(t, s.User())
	assert.Equal(t, budget.RoleUser, s.User().Role)

	// The token store holds the persisted credential.
	tok, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)
}

func TestSession_FailedLoginLeavesStateUntouched(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"invalid credentials"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := NewSession(api.NewClient(srv.URL), &MemoryTokenStore{})
	require.NoError(t, s.Hydrate(context.Background()))

	err := s.Login(context.Background(), "bob", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrInvalidCredentials)

	assert.Equal(t, ReadyUnauthenticated, s.State())
	assert.Nil(t, s.User())
	assert.Empty(t, s.Token())
}

func TestSession_LogoutClearsEverything(t *testing.T) {
	srv, _ := newBackend(t)
	store := &MemoryTokenStore{}
	s := NewSession(api.NewClient(srv.URL), store)
	require.NoError(t, s.Hydrate(context.Background()))
	require.NoError(t, s.Login(context.Background(), "amina", "s3cret"))

	s.Logout()

	assert.Equal(t, ReadyUnauthenticated, s.State())
	assert.Nil(t, s.User())
	assert.Empty(t, s.Token())
	tok, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestSession_LogoutSurvivesNotifyFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":"abc","user":{"id":1,"username":"amina","email":"a@x.ma","role":"user","is_staff":false}}`))
	})
	mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := &MemoryTokenStore{}
	s := NewSession(api.NewClient(srv.URL).WithMaxRetries(1), store)
	require.NoError(t, s.Hydrate(context.Background()))
	require.NoError(t, s.Login(context.Background(), "amina", "s3cret"))

	// Local logout completes immediately even though the backend errors.
	s.Logout()
	assert.Equal(t, ReadyUnauthenticated, s.State())
	assert.Nil(t, s.User())

	// Give the background notification a moment; it must not resurrect
	// any state.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, ReadyUnauthenticated, s.State())
}

func TestSession_TokenUserAtomicity(t *testing.T) {
	srv, _ := newBackend(t)
	s := NewSession(api.NewClient(srv.URL), &MemoryTokenStore{})
	require.NoError(t, s.Hydrate(context.Background()))

	check := func(stage string) {
		t.Helper()
		hasToken := s.Token() != ""
		hasUser := s.User() != nil
		assert.Equal(t, hasToken, hasUser, "token/user desynced at %s", stage)
	}

	check("after hydrate")
	require.NoError(t, s.Login(context.Background(), "amina", "s3cret"))
	check("after login")
	s.Invalidate()
	check("after invalidate")
	require.NoError(t, s.Login(context.Background(), "amina", "s3cret"))
	check("after re-login")
	s.Logout()
	check("after logout")
}
