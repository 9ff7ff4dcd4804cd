// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package idle enforces the fixed idle-logout policy for an authenticated
// session: after 25 minutes without user activity a warning with a 5 minute
// countdown is raised, and if the countdown reaches zero the session is
// terminated.
//
// The monitor runs a two-stage timer: a single-shot callback that opens the
// warning window, then a per-second callback that drives the countdown. At
// most one pair of scheduled callbacks is live at any instant; every
// transition cancels the timers of the phase being left before scheduling
// new ones, so rapid activity can never stack duplicate countdowns.
//
// Activity reaches the monitor through a Broadcaster that the UI publishes
// input events into. Subscribing and unsubscribing are paired per
// Start/Stop cycle, so repeated mount cycles leak nothing.
package idle
