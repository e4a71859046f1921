package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeEnter EventType = "node_enter"
	EventNodeLeave EventType = "node_leave"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// NodeEvent represents entry into or exit from a page-tree node.
// Result and Duration are only set on EventNodeLeave.
type NodeEvent struct {
	EventBase
	Identifier string        `json:"identifier"`
	Template   string        `json:"template"`
	Result     *NodeResult   `json:"result,omitempty"`
	Duration   time.Duration `json:"duration,omitempty"`
}

// LifecycleHooks defines callbacks for synchronizer observability.
type LifecycleHooks struct {
	OnNodeEnter func(context.Context, *NodeEvent)
	OnNodeLeave func(context.Context, *NodeEvent)
}
