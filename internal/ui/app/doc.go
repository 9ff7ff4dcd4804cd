// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app contains the root Bubble Tea model for the parcbudget TUI.
//
// The root model is the route guard: it picks the visible screen from the
// session state (restoring -> spinner, unauthenticated -> login form,
// authenticated -> dashboard), publishes every input event as an activity
// signal, and surfaces the idle-logout warning overlay on top of whatever
// screen is active.
package app
