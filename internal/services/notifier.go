package services

import (
	"ripple-chat/internal/domain"
)

// Notifier delivers change events to live connections. Implementations
// must be fire-and-forget: no error return, no blocking, no retries. A
// user without a live connection is silently skipped and recovers by
// re-fetching.
type Notifier interface {
	Notify(userIDs []int64, event domain.Event)
	Broadcast(event domain.Event, exclude ...int64)
}

// NopNotifier drops every event. Used when no hub is wired and in
// tests that do not assert on fan-out.
type NopNotifier struct{}

func (NopNotifier) Notify(userIDs []int64, event domain.Event) {}

func (NopNotifier) Broadcast(event domain.Event, exclude ...int64) {}
