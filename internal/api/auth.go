// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/parcbudget/parcbudget-tui/internal/budget"
)

// LoginResult is the backend's response to a successful login or
// registration: the bearer token plus the profile it belongs to.
type LoginResult struct {
	Token string      `json:"token"`
	User  budget.User `json:"user"`
}

// RegisterFields are the inputs for account registration.
type RegisterFields struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginRequest is the login request body.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges a username/password pair for a bearer token. A rejected
// pair returns ErrInvalidCredentials wrapping the backend's detail text.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var res LoginResult
	err := c.do(ctx, http.MethodPost, "/api/auth/login", loginRequest{
		Username: username,
		Password: password,
	}, &res)
	if err != nil {
		// The login endpoint answers 401 for bad credentials, not for a
		// bad token; surface that as a credential error.
		if errors.Is(err, ErrUnauthorized) {
			if detail := errorDetail(err); detail != "" {
				return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, detail)
			}
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return &res, nil
}

// Logout notifies the backend that the current token should be revoked.
// Callers treat this as best-effort.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// Register creates a new account. Field-level validation errors come back
// as an *APIError with Fields populated.
func (c *Client) Register(ctx context.Context, fields RegisterFields) (*LoginResult, error) {
	var res LoginResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", fields, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Me returns the profile the current token belongs to, or ErrUnauthorized
// if the token is missing, expired or revoked.
func (c *Client) Me(ctx context.Context) (*budget.User, error) {
	var user budget.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// errorDetail extracts the backend detail text from a wrapped sentinel
// error, e.g. "unauthorized: Nom d'utilisateur ou mot de passe incorrect".
func errorDetail(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{ErrUnauthorized, ErrForbidden, ErrNotFound, ErrRateLimited} {
		prefix := sentinel.Error() + ": "
		if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
			return msg[len(prefix):]
		}
	}
	return ""
}
