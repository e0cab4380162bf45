// Package csp applies the trace events of a constraint-satisfaction solver:
// arc and node highlights, domain narrowing, the split tree and explicit
// node positions.
package csp

import (
	"context"
	"fmt"

	"github.com/vk/tracegraph/internal/ctxlog"
	"github.com/vk/tracegraph/internal/event"
	"github.com/vk/tracegraph/internal/layout"
	"github.com/vk/tracegraph/internal/model"
	"github.com/vk/tracegraph/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the CSP event handlers.
func (m *Module) Register(r *registry.Registry) {
	registry.On(r, event.ActionHighlightArcs, OnHighlightArcs)
	registry.On(r, event.ActionSetDomains, OnSetDomains)
	registry.On(r, event.ActionHighlightNodes, OnHighlightNodes)
	registry.On(r, event.ActionChooseDomainSplit, OnChooseDomainSplit)
	registry.On(r, event.ActionChooseDomainSplitBeforeAC, OnChooseDomainSplitBeforeAC)
	registry.On(r, event.ActionSetSolution, OnSetSolution)
	registry.On(r, event.ActionSetSplit, OnSetSplit)
	registry.On(r, event.ActionSetOrder, OnSetOrder)
	registry.On(r, event.ActionShowPositions, OnShowPositions)
}

// OnHighlightArcs sets stroke and stroke weight on the named arcs, or on
// every arc when no ids are given. Earlier highlights on other arcs stay.
func OnHighlightArcs(ctx context.Context, m *model.Model, ev *event.HighlightArcs) error {
	ids := m.Graph.EdgeIDs()
	if ev.ArcIDs != nil {
		ids = *ev.ArcIDs
	}
	if _, err := m.Graph.ResolveEdges(ids); err != nil {
		return err
	}

	for _, id := range ids {
		if err := m.Graph.SetEdgeStyle(id, model.StyleStroke, ev.Colour); err != nil {
			return err
		}
		if err := m.Graph.SetEdgeStyle(id, model.StyleStrokeWeight, string(ev.Style)); err != nil {
			return err
		}
	}
	ctxlog.FromContext(ctx).Debug("Arcs highlighted.", "count", len(ids), "colour", ev.Colour, "style", ev.Style)
	return nil
}

// OnSetDomains replaces each named node's domain with the domain at the
// same index.
func OnSetDomains(ctx context.Context, m *model.Model, ev *event.SetDomains) error {
	if _, err := m.Graph.ResolveNodes(ev.NodeIDs); err != nil {
		return err
	}
	for i, id := range ev.NodeIDs {
		if err := m.Graph.SetNodeDomain(id, ev.Domains[i]); err != nil {
			return err
		}
	}
	ctxlog.FromContext(ctx).Debug("Domains set.", "count", len(ev.NodeIDs))
	return nil
}

// OnHighlightNodes sets the stroke of the named nodes.
func OnHighlightNodes(ctx context.Context, m *model.Model, ev *event.HighlightNodes) error {
	if _, err := m.Graph.ResolveNodes(ev.NodeIDs); err != nil {
		return err
	}
	for _, id := range ev.NodeIDs {
		if err := m.Graph.SetNodeStyle(id, model.StyleStroke, ev.Colour); err != nil {
			return err
		}
	}
	ctxlog.FromContext(ctx).Debug("Nodes highlighted.", "count", len(ev.NodeIDs), "colour", ev.Colour)
	return nil
}

// OnChooseDomainSplit only announces the split; the tree changes arrive
// with setOrder and setSplit.
func OnChooseDomainSplit(ctx context.Context, m *model.Model, ev *event.ChooseDomainSplit) error {
	if _, err := m.Graph.FindNode(ev.Var); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Info("Choosing domain split.", "var", ev.Var, "domain", ev.Domain)
	return nil
}

// OnChooseDomainSplitBeforeAC marks the phase boundary before arc consistency.
func OnChooseDomainSplitBeforeAC(ctx context.Context, _ *model.Model, _ *event.ChooseDomainSplitBeforeAC) error {
	ctxlog.FromContext(ctx).Info("Choosing domain split before arc consistency.")
	return nil
}

// OnSetSolution writes the solution to the output channel.
func OnSetSolution(_ context.Context, m *model.Model, ev *event.SetSolution) error {
	m.SetOutput(ev.Solution)
	return nil
}

// OnShowPositions writes explicit coordinates for the named nodes.
func OnShowPositions(ctx context.Context, m *model.Model, ev *event.ShowPositions) error {
	positions, err := layout.ParsePositions(ev.Positions)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", event.ErrMalformedPayload, ev.Action(), err)
	}
	if err := layout.Apply(m.Graph, positions); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Positions applied.", "count", len(positions))
	return nil
}
