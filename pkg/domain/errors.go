package domain

import (
	"errors"
	"fmt"
)

// ErrNodeNotFound is returned when an operation names an id absent from the graph.
var ErrNodeNotFound = errors.New("node not found")

// ErrRootNotFound is returned when the graph has no root node.
var ErrRootNotFound = errors.New("root node not found")

// ErrFlowNotFound is returned when a loader has no flow with the requested name.
var ErrFlowNotFound = errors.New("flow not found")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrOverrideTargetNotFound is returned when no node sets the passport key being overridden.
var ErrOverrideTargetNotFound = errors.New("override target not found")

// ErrBackNavigationLocked is returned when going back after a payment.
var ErrBackNavigationLocked = errors.New("back navigation locked after payment")

// NodeNotFoundError carries the id that failed to resolve.
type NodeNotFoundError struct {
	ID string
}

func (e *NodeNotFoundError) Error() string {
	return fmt.Sprintf("node %q not found", e.ID)
}

// Unwrap allows errors.Is(err, ErrNodeNotFound).
func (e *NodeNotFoundError) Unwrap() error {
	return ErrNodeNotFound
}
