// Package dispatch maps incoming trace events to model mutations.
//
// A Dispatcher decodes a raw payload, looks up the handler registered for its
// action and runs it against the session model. An event is applied entirely
// or not at all: on success the model's pending changes are committed to its
// subscribers, on failure they are discarded and an *Error is returned.
// Failures are local to the event; the caller logs them and continues.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/tracegraph/internal/ctxlog"
	"github.com/vk/tracegraph/internal/event"
	"github.com/vk/tracegraph/internal/model"
	"github.com/vk/tracegraph/internal/registry"
)

// Dispatcher applies events to one model. It is not safe for concurrent
// use; a session feeds it from a single goroutine.
type Dispatcher struct {
	registry *registry.Registry
	model    *model.Model
}

// New creates a dispatcher. The registry is expected to have passed
// ValidateRegistry.
func New(reg *registry.Registry, m *model.Model) *Dispatcher {
	return &Dispatcher{registry: reg, model: m}
}

// Model returns the model the dispatcher mutates.
func (d *Dispatcher) Model() *model.Model {
	return d.model
}

// Dispatch decodes and applies one raw payload.
func (d *Dispatcher) Dispatch(ctx context.Context, raw []byte) error {
	ev, err := event.Decode(raw)
	if err != nil {
		return d.reject(ctx, "", err)
	}
	return d.Apply(ctx, ev)
}

// Apply validates and applies an already decoded event.
func (d *Dispatcher) Apply(ctx context.Context, ev event.Event) error {
	if ev == nil {
		return d.reject(ctx, "", fmt.Errorf("%w: nil event", event.ErrMalformedPayload))
	}
	action := ev.Action()
	if err := event.Validate(ev); err != nil {
		return d.reject(ctx, action, err)
	}

	handler, ok := d.registry.Handler(action)
	if !ok {
		return d.reject(ctx, action, fmt.Errorf("%w: no handler for %q", event.ErrUnknownAction, action))
	}

	logger := ctxlog.FromContext(ctx).With("action", action)
	ctx = ctxlog.WithLogger(ctx, logger)

	start := time.Now()
	err := handler(ctx, d.model, ev)
	eventDuration.WithLabelValues(string(action)).Observe(time.Since(start).Seconds())
	if err != nil {
		return d.reject(ctx, action, err)
	}

	batch := d.model.Commit()
	eventsTotal.WithLabelValues(string(action), resultApplied).Inc()
	logger.Debug("Event applied.", "graph_changes", len(batch.Graph), "tree_changes", len(batch.Tree))
	return nil
}

func (d *Dispatcher) reject(ctx context.Context, action event.Action, err error) error {
	d.model.Discard()

	derr := &Error{Kind: classify(err), Action: action, Err: err}
	eventsTotal.WithLabelValues(actionLabel(derr.Kind, string(action)), string(derr.Kind)).Inc()
	ctxlog.FromContext(ctx).Warn("Event rejected.", "action", action, "kind", derr.Kind, "error", err)
	return derr
}
