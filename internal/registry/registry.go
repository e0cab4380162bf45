package registry

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/vk/tracegraph/internal/event"
	"github.com/vk/tracegraph/internal/model"
)

// Handler applies one decoded event to the session model. A handler must
// resolve every id the event references before its first mutation, so that a
// failing event leaves the model untouched.
type Handler func(ctx context.Context, m *model.Model, ev event.Event) error

// Module is the interface that all handler modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the handler for every event action of a single application instance.
type Registry struct {
	handlers map[event.Action]Handler
}

// New creates a registry and registers the given modules into it.
func New(modules ...Module) *Registry {
	r := &Registry{
		handlers: make(map[event.Action]Handler),
	}
	for _, mod := range modules {
		mod.Register(r)
	}
	return r
}

// RegisterHandler registers the handler for an event action.
func (r *Registry) RegisterHandler(action event.Action, h Handler) {
	if _, exists := r.handlers[action]; exists {
		panic(fmt.Sprintf("handler for action '%s' already registered", action))
	}
	slog.Debug("Registering event handler.", "action", action)
	r.handlers[action] = h
}

// On registers a handler typed to a single event variant.
func On[E event.Event](r *Registry, action event.Action, fn func(ctx context.Context, m *model.Model, ev E) error) {
	r.RegisterHandler(action, func(ctx context.Context, m *model.Model, ev event.Event) error {
		typed, ok := ev.(E)
		if !ok {
			return fmt.Errorf("%w: handler for '%s' received %T", event.ErrMalformedPayload, action, ev)
		}
		return fn(ctx, m, typed)
	})
}

// Handler returns the handler registered for action.
func (r *Registry) Handler(action event.Action) (Handler, bool) {
	h, ok := r.handlers[action]
	return h, ok
}

// Actions returns the registered actions in sorted order.
func (r *Registry) Actions() []event.Action {
	actions := make([]event.Action, 0, len(r.handlers))
	for a := range r.handlers {
		actions = append(actions, a)
	}
	slices.Sort(actions)
	return actions
}
