// Package registry provides the central "glue" between the event protocol
// and the Go code that applies each event.
//
// The Registry maps every event action (e.g., "highlightPath") to the
// handler that mutates the session model for it. Handlers are contributed by
// modules (see modules/csp and modules/search), each of which registers the
// handlers for one event family.
//
// During application startup the registry is populated and then validated
// against event.Actions(), so that every event kind in the protocol has
// exactly one handler and no handler exists for an undeclared kind. A new
// event kind without a handler is a startup failure, never a silent no-op
// at runtime.
package registry
