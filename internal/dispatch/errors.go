package dispatch

import (
	"errors"
	"fmt"

	"github.com/vk/tracegraph/internal/event"
	"github.com/vk/tracegraph/internal/graph"
)

// ErrorKind classifies why an event was rejected.
type ErrorKind string

const (
	UnknownAction    ErrorKind = "unknown_action"
	MalformedPayload ErrorKind = "malformed_payload"
	NotFound         ErrorKind = "not_found"
	// Internal covers handler failures outside the protocol's error set.
	Internal ErrorKind = "internal"
)

// Error reports a rejected event. The model is unchanged when it is returned.
type Error struct {
	Kind   ErrorKind
	Action event.Action
	Err    error
}

func (e *Error) Error() string {
	if e.Action == "" {
		return fmt.Sprintf("event rejected (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("event '%s' rejected (%s): %v", e.Action, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// classify maps an error to its kind via the sentinel it wraps.
func classify(err error) ErrorKind {
	switch {
	case errors.Is(err, event.ErrUnknownAction):
		return UnknownAction
	case errors.Is(err, event.ErrMalformedPayload):
		return MalformedPayload
	case errors.Is(err, graph.ErrNotFound):
		return NotFound
	default:
		return Internal
	}
}
