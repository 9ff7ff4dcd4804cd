// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package idle

import (
	"log"
	"sync"
	"time"
)

// Idle-logout policy constants. These are fixed policy, not configuration.
const (
	// SessionBudget is the total idle time before forced logout.
	SessionBudget = 30 * time.Minute

	// WarningLead is how long before forced logout the warning opens.
	WarningLead = 5 * time.Minute

	// tickInterval drives the countdown display.
	tickInterval = 1 * time.Second
)

// Phase is the monitor's position in the idle-logout state machine.
type Phase int

const (
	// PhaseStopped means the monitor is not running.
	PhaseStopped Phase = iota

	// PhaseArmed means the session is live and the warning timer is set.
	PhaseArmed

	// PhaseWarning means the countdown toward forced logout is running.
	PhaseWarning

	// PhaseExpired means the idle budget ran out and logout was invoked.
	PhaseExpired
)

// String returns a string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseStopped:
		return "STOPPED"
	case PhaseArmed:
		return "ARMED"
	case PhaseWarning:
		return "WARNING"
	case PhaseExpired:
		return "EXPIRED"
	default:
		return "UNKNOWN"
	}
}

// Callbacks are the monitor's outputs. All run on the scheduler goroutine
// (or the activity publisher's goroutine for resets) with no monitor lock
// held, so they may call back into the monitor.
type Callbacks struct {
	// OnWarning fires when the warning window opens.
	OnWarning func(remaining time.Duration)

	// OnTick fires on each countdown second while warning.
	OnTick func(remaining time.Duration)

	// OnClear fires when activity cancels an open warning.
	OnClear func()

	// OnExpire fires exactly once when the countdown reaches zero or the
	// user picks "logout now". It terminates the session.
	OnExpire func()
}

// Monitor is the idle-logout controller for one authenticated session.
// Create it at login, Start it, and Stop it on any logout path.
type Monitor struct {
	mu sync.Mutex

	sched  Scheduler
	source *Broadcaster
	cb     Callbacks

	phase       Phase
	warnTimer   Timer // single-shot, opens the warning window
	tickTimer   Timer // per-second, drives the countdown
	remaining   int   // countdown seconds, meaningful only in PhaseWarning
	unsubscribe func()

	// gen identifies the current arming. Timer.Stop cannot stop a callback
	// that is already in flight (blocked on mu while Reset holds it), and
	// such a callback would observe PhaseArmed again after the rearm, so
	// phase alone cannot tell it apart from a fresh firing. Each callback
	// carries the gen it was scheduled under and is dropped on a mismatch.
	gen uint64
}

// NewMonitor creates a monitor wired to the given activity source.
func NewMonitor(source *Broadcaster, cb Callbacks) *Monitor {
	return &Monitor{
		sched:  realScheduler{},
		source: source,
		cb:     cb,
		phase:  PhaseStopped,
	}
}

// WithScheduler overrides the timer scheduler. Tests install a fake clock
// here; production code never calls it.
func (m *Monitor) WithScheduler(s Scheduler) *Monitor {
	m.sched = s
	return m
}

// Phase returns the current phase.
func (m *Monitor) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Remaining returns the countdown time left, zero outside PhaseWarning.
func (m *Monitor) Remaining() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseWarning {
		return 0
	}
	return time.Duration(m.remaining) * time.Second
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Start subscribes to the activity source and arms the warning timer.
// Starting an already-started monitor is a no-op.
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.phase != PhaseStopped {
		m.mu.Unlock()
		return
	}
	m.armLocked()
	m.mu.Unlock()

	// One subscription per Start, released by exactly one Stop.
	m.unsubscribe = m.source.Subscribe(func(Signal) { m.Reset() })
	logIdleEvent("IDLE_ARMED", "budget=%v warning_lead=%v", SessionBudget, WarningLead)
}

// Stop cancels all scheduled callbacks and releases the activity
// subscription. Safe to call on any phase and more than once; after Stop
// no callback will fire.
func (m *Monitor) Stop() {
	m.mu.Lock()
	m.cancelTimersLocked()
	m.phase = PhaseStopped
	m.mu.Unlock()

	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	logIdleEvent("IDLE_STOPPED", "")
}

// Reset handles an activity signal: cancel whatever is scheduled and rearm
// from scratch. Activity during the warning window silently clears it, the
// same as the explicit "stay logged in" action. After expiry, activity is
// ignored; the session is already being torn down.
func (m *Monitor) Reset() {
	m.mu.Lock()
	if m.phase != PhaseArmed && m.phase != PhaseWarning {
		m.mu.Unlock()
		return
	}
	wasWarning := m.phase == PhaseWarning
	m.armLocked()
	onClear := m.cb.OnClear
	m.mu.Unlock()

	if wasWarning && onClear != nil {
		onClear()
	}
}

// StayLoggedIn is the warning dialog's "stay logged in" action. It is an
// activity signal by another name.
func (m *Monitor) StayLoggedIn() {
	m.Reset()
}

// LogoutNow is the warning dialog's immediate logout action.
func (m *Monitor) LogoutNow() {
	m.expire("user")
}

// =============================================================================
// PHASE TRANSITIONS
// =============================================================================

// armLocked is the single transition into PhaseArmed: cancel any live
// timers first, then schedule the warning. Cancel-before-reschedule is
// what keeps the "at most one live timer pair" invariant; scheduling first
// would open a window with two pending warnings.
func (m *Monitor) armLocked() {
	m.cancelTimersLocked()
	m.gen++
	gen := m.gen
	m.remaining = 0
	m.phase = PhaseArmed
	m.warnTimer = m.sched.AfterFunc(SessionBudget-WarningLead, func() { m.warn(gen) })
}

// cancelTimersLocked stops and clears both timer handles.
func (m *Monitor) cancelTimersLocked() {
	if m.warnTimer != nil {
		m.warnTimer.Stop()
		m.warnTimer = nil
	}
	if m.tickTimer != nil {
		m.tickTimer.Stop()
		m.tickTimer = nil
	}
}

// warn is the single-shot warning callback: Armed -> Warning.
func (m *Monitor) warn(gen uint64) {
	m.mu.Lock()
	if m.phase != PhaseArmed || gen != m.gen {
		// A reset or stop won the race; this firing is stale.
		m.mu.Unlock()
		return
	}
	m.phase = PhaseWarning
	m.warnTimer = nil
	m.remaining = int(WarningLead / time.Second)
	m.tickTimer = m.sched.AfterFunc(tickInterval, func() { m.tick(gen) })
	remaining := time.Duration(m.remaining) * time.Second
	onWarning := m.cb.OnWarning
	m.mu.Unlock()

	logIdleEvent("IDLE_WARNING", "remaining=%v", remaining)
	if onWarning != nil {
		onWarning(remaining)
	}
}

// tick is the per-second countdown callback.
func (m *Monitor) tick(gen uint64) {
	m.mu.Lock()
	if m.phase != PhaseWarning || gen != m.gen {
		m.mu.Unlock()
		return
	}
	m.remaining--
	if m.remaining <= 0 {
		// Clamp at zero and expire; the display never shows negatives.
		m.remaining = 0
		m.mu.Unlock()
		m.expire("idle")
		return
	}
	m.tickTimer = m.sched.AfterFunc(tickInterval, func() { m.tick(gen) })
	remaining := time.Duration(m.remaining) * time.Second
	onTick := m.cb.OnTick
	m.mu.Unlock()

	if onTick != nil {
		onTick(remaining)
	}
}

// expire terminates the session: Warning -> Expired, exactly once.
func (m *Monitor) expire(reason string) {
	m.mu.Lock()
	if m.phase == PhaseExpired || m.phase == PhaseStopped {
		m.mu.Unlock()
		return
	}
	m.cancelTimersLocked()
	m.phase = PhaseExpired
	onExpire := m.cb.OnExpire
	m.mu.Unlock()

	logIdleEvent("IDLE_EXPIRED", "reason=%s", reason)
	if onExpire != nil {
		onExpire()
	}
}

// logIdleEvent writes a timestamped idle-policy event line.
func logIdleEvent(eventType, format string, args ...any) {
	timestamp := time.Now().UTC().Format("2006-01-02 15:04:05 UTC")
	if format == "" {
		log.Printf("%s | %s", timestamp, eventType)
		return
	}
	log.Printf("%s | %s | "+format, append([]any{timestamp, eventType}, args...)...)
}
