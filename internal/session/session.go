// Package session wires one visualization session together: the problem
// graph loaded from its description and laid out, the model, the dispatcher
// with its validated registry, and the view binding. Run feeds events from a
// transport.Source through the dispatcher until the source is exhausted.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/vk/tracegraph/internal/config"
	"github.com/vk/tracegraph/internal/ctxlog"
	"github.com/vk/tracegraph/internal/dispatch"
	"github.com/vk/tracegraph/internal/graph"
	"github.com/vk/tracegraph/internal/layout"
	"github.com/vk/tracegraph/internal/model"
	"github.com/vk/tracegraph/internal/registry"
	"github.com/vk/tracegraph/internal/transport"
	"github.com/vk/tracegraph/internal/view"
	"golang.org/x/sync/errgroup"
)

// payloadBuffer is how many raw payloads may wait between the source and
// the dispatcher.
const payloadBuffer = 64

// Reporter is told about every rejected event.
type Reporter interface {
	Rejected(err error)
}

// Stats counts the events a run processed.
type Stats struct {
	Applied  int
	Rejected int
}

// Session represents a single visualization run and manages its lifecycle.
type Session struct {
	ID         string
	Model      *model.Model
	Dispatcher *dispatch.Dispatcher
	Binding    *view.Binding
	Layout     string

	logger    *slog.Logger
	reporters []Reporter
	closeOnce sync.Once
}

// New builds a session from cfg. Every failure here is fatal to the
// session: invalid configuration, an unreadable description, a layout error
// or a registry that does not cover the event protocol.
func New(ctx context.Context, cfg *config.Model, reg *registry.Registry) (*Session, error) {
	id := uuid.NewString()
	logger := ctxlog.FromContext(ctx).With("session", id)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Creating session.", "kind", cfg.Session.Kind, "graph", cfg.Session.Graph)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := reg.ValidateRegistry(ctx); err != nil {
		return nil, err
	}
	kind, err := model.ParseKind(cfg.Session.Kind)
	if err != nil {
		return nil, err
	}

	desc, err := graph.LoadFile(cfg.Session.Graph)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph description: %w", err)
	}
	g, err := graph.FromDescription(desc)
	if err != nil {
		return nil, fmt.Errorf("invalid graph description %s: %w", cfg.Session.Graph, err)
	}

	adapter, err := layout.ByName(cfg.Session.Layout)
	if err != nil {
		return nil, err
	}
	opts := layout.Options{
		Width:      cfg.Session.Width,
		Height:     cfg.Session.Height,
		Iterations: cfg.Session.Iterations,
		Seed:       cfg.Session.Seed,
	}
	if err := adapter.Layout(ctx, g, opts); err != nil {
		return nil, fmt.Errorf("layout failed: %w", err)
	}
	logger.Debug("Graph laid out.", "layout", cfg.Session.Layout, "nodes", len(g.Nodes()), "edges", len(g.Edges()))

	m, err := model.New(g, model.Options{
		Kind: kind,
		Palette: model.Palette{
			HighlightStroke: cfg.Styles.HighlightStroke,
			DefaultStroke:   cfg.Styles.DefaultStroke,
			ActiveStroke:    cfg.Styles.ActiveStroke,
		},
		TreeLayout:    layout.Tree{},
		LayoutOptions: opts,
	})
	if err != nil {
		return nil, err
	}
	if err := m.RelayoutTree(ctx); err != nil {
		return nil, fmt.Errorf("split tree layout failed: %w", err)
	}
	// Setup changes are part of the initial snapshot, not an update.
	m.Discard()

	s := &Session{
		ID:         id,
		Model:      m,
		Dispatcher: dispatch.New(reg, m),
		Layout:     cfg.Session.Layout,
		logger:     logger,
	}
	s.Binding = view.NewBinding(m, logger)
	logger.Info("Session ready.", "kind", kind, "nodes", len(g.Nodes()), "edges", len(g.Edges()))
	return s, nil
}

// Logger returns the session's logger.
func (s *Session) Logger() *slog.Logger {
	return s.logger
}

// OnRejected registers r for rejected events.
func (s *Session) OnRejected(r Reporter) {
	s.reporters = append(s.reporters, r)
}

// Subscribe registers sub for committed batches, after the view binding.
func (s *Session) Subscribe(sub model.Subscriber) {
	s.Model.Subscribe(sub)
}

// Run streams events from src and applies them one at a time. Rejected
// events are reported and skipped. Run returns when the source is exhausted,
// fails, or ctx is canceled; cancellation is not an error.
func (s *Session) Run(ctx context.Context, src transport.Source) (Stats, error) {
	ctx = ctxlog.WithLogger(ctx, s.logger)
	s.logger.Info("Consuming events.", "source", src.Describe())

	var stats Stats
	payloads := make(chan []byte, payloadBuffer)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(payloads)
		if err := src.Stream(gctx, payloads); err != nil {
			return fmt.Errorf("event source %s: %w", src.Describe(), err)
		}
		return nil
	})

	// The model is only ever touched from this goroutine.
	g.Go(func() error {
		for raw := range payloads {
			if err := s.Dispatcher.Dispatch(gctx, raw); err != nil {
				stats.Rejected++
				for _, r := range s.reporters {
					r.Rejected(err)
				}
				continue
			}
			stats.Applied++
		}
		return nil
	})

	err := g.Wait()
	if err != nil && errors.Is(err, context.Canceled) && ctx.Err() != nil {
		err = nil
	}
	s.logger.Info("Event stream finished.", "applied", stats.Applied, "rejected", stats.Rejected)
	return stats, err
}

// Close ends every view subscription.
func (s *Session) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		ctxlog.FromContext(ctx).Debug("Closing session.", "session", s.ID)
		s.Binding.Close()
	})
	return nil
}
