// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package idle

import "time"

// Timer is a handle to one scheduled callback.
type Timer interface {
	// Stop cancels the callback. It reports whether the callback was
	// still pending.
	Stop() bool
}

// Scheduler schedules single-shot callbacks. The monitor depends on this
// interface rather than the wall clock so tests can drive a fake clock
// deterministically.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// realScheduler schedules on the runtime timer wheel.
type realScheduler struct{}

type realTimer struct{ t *time.Timer }

func (rt realTimer) Stop() bool { return rt.t.Stop() }

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return realTimer{t: time.AfterFunc(d, f)}
}
