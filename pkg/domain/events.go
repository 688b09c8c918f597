package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventOpen    EventType = "open"
	EventClose   EventType = "close"
	EventDestroy EventType = "destroy"
	EventMisuse  EventType = "misuse"
)

// SessionEvent is emitted by the facade on lifecycle transitions and misuse.
type SessionEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
	Operation string    `json:"operation,omitempty"` // Set only for misuse
	// Err is the backend failure of a close or destroy. The session is
	// closed either way.
	Err error `json:"-"`
}

// NewSessionEvent stamps an event of the given type.
func NewSessionEvent(t EventType, sessionID string) *SessionEvent {
	return &SessionEvent{
		Timestamp: time.Now(),
		Type:      t,
		SessionID: sessionID,
	}
}

// LifecycleHooks defines callbacks for facade observability.
type LifecycleHooks struct {
	OnOpen    func(context.Context, *SessionEvent)
	OnClose   func(context.Context, *SessionEvent)
	OnDestroy func(context.Context, *SessionEvent)
	OnMisuse  func(context.Context, *SessionEvent)
}

// Merge returns hooks that invoke h first and then other, for every callback.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnOpen:    chain(h.OnOpen, other.OnOpen),
		OnClose:   chain(h.OnClose, other.OnClose),
		OnDestroy: chain(h.OnDestroy, other.OnDestroy),
		OnMisuse:  chain(h.OnMisuse, other.OnMisuse),
	}
}

func chain(a, b func(context.Context, *SessionEvent)) func(context.Context, *SessionEvent) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *SessionEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
