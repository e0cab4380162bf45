// Package event defines the closed set of trace events a backend algorithm
// reports, and the codec that turns raw payloads into typed values.
//
// Every payload is a JSON object with an "action" discriminant. The set of
// actions is closed: Decode rejects anything not listed in Actions with
// ErrUnknownAction. Each variant is versioned by its field set, so every
// field a variant declares must be present; a missing field or a value that
// fails validation is ErrMalformedPayload. Fields a variant does not declare
// are ignored.
package event

import "errors"

var (
	// ErrUnknownAction is returned for payloads whose action is not a known event kind.
	ErrUnknownAction = errors.New("unknown action")
	// ErrMalformedPayload is returned for payloads of a known kind with missing or invalid fields.
	ErrMalformedPayload = errors.New("malformed payload")
)

// Action is the discriminant of an event.
type Action string

// CSP event family.
const (
	ActionHighlightArcs             Action = "highlightArcs"
	ActionSetDomains                Action = "setDomains"
	ActionHighlightNodes            Action = "highlightNodes"
	ActionChooseDomainSplit         Action = "chooseDomainSplit"
	ActionChooseDomainSplitBeforeAC Action = "chooseDomainSplitBeforeAC"
	ActionSetSolution               Action = "setSolution"
	ActionSetSplit                  Action = "setSplit"
	ActionSetOrder                  Action = "setOrder"
	ActionShowPositions             Action = "showPositions"
)

// Search event family.
const (
	ActionHighlightPath Action = "highlightPath"
	ActionOutput        Action = "output"
)

// Event is implemented by every trace event variant.
type Event interface {
	Action() Action
}

// kinds maps every action to a constructor for its variant. It is the single
// source of truth for the closed union.
var kinds = map[Action]func() Event{
	ActionHighlightArcs:             func() Event { return new(HighlightArcs) },
	ActionSetDomains:                func() Event { return new(SetDomains) },
	ActionHighlightNodes:            func() Event { return new(HighlightNodes) },
	ActionChooseDomainSplit:         func() Event { return new(ChooseDomainSplit) },
	ActionChooseDomainSplitBeforeAC: func() Event { return new(ChooseDomainSplitBeforeAC) },
	ActionSetSolution:               func() Event { return new(SetSolution) },
	ActionSetSplit:                  func() Event { return new(SetSplit) },
	ActionSetOrder:                  func() Event { return new(SetOrder) },
	ActionShowPositions:             func() Event { return new(ShowPositions) },
	ActionHighlightPath:             func() Event { return new(HighlightPath) },
	ActionOutput:                    func() Event { return new(Output) },
}

// Actions returns every known action in a stable order: the CSP family
// followed by the search family.
func Actions() []Action {
	return []Action{
		ActionHighlightArcs,
		ActionSetDomains,
		ActionHighlightNodes,
		ActionChooseDomainSplit,
		ActionChooseDomainSplitBeforeAC,
		ActionSetSolution,
		ActionSetSplit,
		ActionSetOrder,
		ActionShowPositions,
		ActionHighlightPath,
		ActionOutput,
	}
}

// Known reports whether a is part of the closed union.
func Known(a Action) bool {
	_, ok := kinds[a]
	return ok
}
