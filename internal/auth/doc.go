// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth owns the authenticated session: the bearer token, the user
// profile it belongs to, and the lifecycle between them.
//
// The on-disk token store is the single source of truth across restarts.
// The in-memory token and user are a cache of it, re-derived at hydration
// by asking the backend who the token belongs to. Token and user are set
// and cleared together: once hydration completes there is never a token
// without a user, nor a user without a token.
package auth
