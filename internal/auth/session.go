// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/parcbudget/parcbudget-tui/internal/api"
	"github.com/parcbudget/parcbudget-tui/internal/budget"
)

// logoutNotifyTimeout bounds the fire-and-forget backend notification on
// logout. Local logout never waits on it.
const logoutNotifyTimeout = 5 * time.Second

// LoadingState is the hydration state of the session. Consumers must not
// make authorization decisions while Hydrating.
type LoadingState int

const (
	// Hydrating means the initial token check is still in progress.
	Hydrating LoadingState = iota

	// ReadyAuthenticated means hydration finished with a valid session.
	ReadyAuthenticated

	// ReadyUnauthenticated means hydration finished logged out.
	ReadyUnauthenticated
)

// String returns a string representation of the LoadingState.
func (s LoadingState) String() string {
	switch s {
	case Hydrating:
		return "HYDRATING"
	case ReadyAuthenticated:
		return "READY_AUTHENTICATED"
	case ReadyUnauthenticated:
		return "READY_UNAUTHENTICATED"
	default:
		return "UNKNOWN"
	}
}

// ErrAlreadyHydrated is returned when Hydrate is called twice.
var ErrAlreadyHydrated = errors.New("session already hydrated")

// Session is the process-wide authenticated session. It owns the bearer
// token and the user profile, keeps them in lockstep, and mirrors the token
// into the persistent store and the API client.
type Session struct {
	mu sync.RWMutex

	client *api.Client
	store  TokenStore

	state    LoadingState
	hydrated bool
	token    string
	user     *budget.User
}

// NewSession creates a session bound to the backend client and token store.
// The session starts in Hydrating; call Hydrate once at startup.
func NewSession(client *api.Client, store TokenStore) *Session {
	return &Session{
		client: client,
		store:  store,
		state:  Hydrating,
	}
}

// =============================================================================
// STATE ACCESSORS
// =============================================================================

// State returns the current loading state.
func (s *Session) State() LoadingState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// User returns a copy of the current user profile, or nil when logged out
// or still hydrating.
func (s *Session) User() *budget.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Token returns the current bearer token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// IsAuthenticated reports whether a user is logged in. Always false while
// hydrating.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == ReadyAuthenticated && s.user != nil
}

// =============================================================================
// LIFECYCLE OPERATIONS
// =============================================================================

// Hydrate restores the session from the persistent token store, exactly
// once, at startup. A stored token is validated against the backend; a
// missing, invalid or unreachable-backend outcome all resolve to
// ReadyUnauthenticated. Hydrate never leaves the session in Hydrating.
func (s *Session) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	if s.hydrated {
		s.mu.Unlock()
		return ErrAlreadyHydrated
	}
	s.hydrated = true
	s.mu.Unlock()

	token, err := s.store.Load()
	if err != nil {
		// Unreadable store fails safe to logged out.
		logAuthEvent("HYDRATE_STORE_FAILED", "error="+err.Error())
		s.becomeUnauthenticated(false)
		return nil
	}
	if token == "" {
		s.becomeUnauthenticated(false)
		return nil
	}

	// Validate the token by asking the backend who it belongs to.
	s.client.SetToken(token)
	user, err := s.client.Me(ctx)
	if err != nil {
		// Expired token and unreachable backend are both "not logged in",
		// never a fatal error: a stuck loading state would block the UI.
		// The stored token is purged only on a definitive rejection; an
		// outage keeps it so the next start can try again.
		rejected := errors.Is(err, api.ErrUnauthorized) || errors.Is(err, api.ErrForbidden)
		logAuthEvent("HYDRATE_REJECTED", "fingerprint="+s.client.TokenFingerprint())
		s.becomeUnauthenticated(rejected)
		return nil
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.state = ReadyAuthenticated
	s.mu.Unlock()

	logAuthEvent("HYDRATED", "user="+user.Username)
	return nil
}

// Login authenticates with the backend and establishes the session. On
// failure the existing session state is left untouched and the backend's
// error is returned verbatim for the form to display. The caller is
// responsible for not submitting concurrent logins (the form disables its
// submit control while one is pending).
func (s *Session) Login(ctx context.Context, username, password string) error {
	res, err := s.client.Login(ctx, username, password)
	if err != nil {
		logAuthEvent("LOGIN_FAILED", "user="+username)
		return err
	}
	return s.establish(res)
}

// Register creates an account and, per the backend contract, establishes
// the session from the returned token. Validation failures are returned
// with their field-level details intact.
func (s *Session) Register(ctx context.Context, fields api.RegisterFields) error {
	res, err := s.client.Register(ctx, fields)
	if err != nil {
		logAuthEvent("REGISTER_FAILED", "user="+fields.Username)
		return err
	}
	return s.establish(res)
}

// establish persists the token then installs token and user together.
func (s *Session) establish(res *api.LoginResult) error {
	// The store is the source of truth: if it cannot be written the
	// session is not established.
	if err := s.store.Save(res.Token); err != nil {
		return err
	}
	s.client.SetToken(res.Token)

	s.mu.Lock()
	s.token = res.Token
	user := res.User
	s.user = &user
	s.state = ReadyAuthenticated
	s.mu.Unlock()

	logAuthEvent("LOGIN", "user="+res.User.Username+" fingerprint="+s.client.TokenFingerprint())
	return nil
}

// Logout clears the session locally and notifies the backend best-effort.
// The notification runs in the background; its failure is logged and
// swallowed, never surfaced.
func (s *Session) Logout() {
	s.mu.RLock()
	hadToken := s.token != ""
	s.mu.RUnlock()

	if hadToken {
		// The notify request must carry the credential being revoked, so
		// capture it before the shared client's token is cleared.
		notify := api.NewClient(s.client.BaseURL())
		notify.SetToken(s.client.Token())
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), logoutNotifyTimeout)
			defer cancel()
			if err := notify.Logout(ctx); err != nil {
				log.Printf("logout notification failed (ignored): %v", err)
			}
		}()
	}

	s.becomeUnauthenticated(true)
	logAuthEvent("LOGOUT", "")
}

// Invalidate handles a token-invalid signal (401/403 from any authenticated
// call): a silent transition to logged out, not an application error.
func (s *Session) Invalidate() {
	s.becomeUnauthenticated(true)
	logAuthEvent("TOKEN_INVALIDATED", "")
}

// becomeUnauthenticated clears token and user together, optionally removing
// the persisted token.
func (s *Session) becomeUnauthenticated(clearStore bool) {
	if clearStore {
		if err := s.store.Delete(); err != nil {
			log.Printf("failed to clear persisted token (ignored): %v", err)
		}
	}
	s.client.ClearToken()

	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.state = ReadyUnauthenticated
	s.mu.Unlock()
}

// logAuthEvent writes a timestamped session event line for the audit trail.
func logAuthEvent(eventType, details string) {
	timestamp := time.Now().UTC().Format("2006-01-02 15:04:05 UTC")
	if details == "" {
		log.Printf("%s | %s", timestamp, eventType)
		return
	}
	log.Printf("%s | %s | %s", timestamp, eventType, details)
}
