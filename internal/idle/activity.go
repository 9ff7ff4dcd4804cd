// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package idle

import "sync"

// Signal identifies the kind of user activity observed. The payload is
// irrelevant: a signal is only a liveness ping.
type Signal int

const (
	// SignalKey is a key press.
	SignalKey Signal = iota

	// SignalPointer is a pointer button press.
	SignalPointer

	// SignalScroll is a scroll/wheel movement.
	SignalScroll
)

// String returns a string representation of the signal.
func (s Signal) String() string {
	switch s {
	case SignalKey:
		return "key"
	case SignalPointer:
		return "pointer"
	case SignalScroll:
		return "scroll"
	default:
		return "unknown"
	}
}

// Broadcaster fans user-activity signals out to subscribers. The UI layer
// publishes every input event into the process-wide broadcaster; the idle
// monitor subscribes for the lifetime of an authenticated session.
type Broadcaster struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]func(Signal)
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{handlers: make(map[int]func(Signal))}
}

// Subscribe registers a handler and returns its unsubscribe function.
// Calling the returned function more than once is harmless.
func (b *Broadcaster) Subscribe(handler func(Signal)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = handler
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.handlers, id)
			b.mu.Unlock()
		})
	}
}

// Publish delivers the signal to every current subscriber. Handlers run
// synchronously on the caller's goroutine, matching the single event loop
// the UI drives.
func (b *Broadcaster) Publish(sig Signal) {
	b.mu.Lock()
	handlers := make([]func(Signal), 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(sig)
	}
}

// SubscriberCount returns the number of live subscriptions.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers)
}
