package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRecord             EventType = "record"
	EventRetreat            EventType = "retreat"
	EventAutoAnswer         EventType = "auto_answer"
	EventInvalidate         EventType = "invalidate"
	EventCorruptedReference EventType = "corrupted_reference"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// RecordEvent is emitted when a breadcrumb is added or removed.
type RecordEvent struct {
	EventBase
	NodeID   string   `json:"node_id"`
	NodeType NodeType `json:"node_type"`
	Auto     bool     `json:"auto,omitempty"`
	Restored bool     `json:"restored,omitempty"`
}

// InvalidateEvent is emitted when passport dependent breadcrumbs are dropped.
type InvalidateEvent struct {
	EventBase
	SourceID string   `json:"source_id"`
	Removed  []string `json:"removed"`
}

// ReferenceEvent is emitted when an edge or answer points to a missing node.
type ReferenceEvent struct {
	EventBase
	NodeID string `json:"node_id"`
	Ref    string `json:"ref"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnRecord             func(context.Context, *RecordEvent)
	OnRetreat            func(context.Context, *RecordEvent)
	OnAutoAnswer         func(context.Context, *RecordEvent)
	OnInvalidate         func(context.Context, *InvalidateEvent)
	OnCorruptedReference func(context.Context, *ReferenceEvent)
}
