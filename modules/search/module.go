// Package search applies the trace events of a graph search: the current
// path and the status output.
package search

import (
	"context"
	"slices"

	"github.com/vk/tracegraph/internal/ctxlog"
	"github.com/vk/tracegraph/internal/event"
	"github.com/vk/tracegraph/internal/model"
	"github.com/vk/tracegraph/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the search event handlers.
func (m *Module) Register(r *registry.Registry) {
	registry.On(r, event.ActionHighlightPath, OnHighlightPath)
	registry.On(r, event.ActionOutput, OnOutput)
}

// OnHighlightPath replaces the highlighted path: edges on the path get the
// highlight stroke and every other edge the default stroke, so nothing of a
// previous path survives.
func OnHighlightPath(ctx context.Context, m *model.Model, ev *event.HighlightPath) error {
	if _, err := m.Graph.ResolveEdges(ev.Path); err != nil {
		return err
	}

	for _, id := range m.Graph.EdgeIDs() {
		stroke := m.Palette.DefaultStroke
		if slices.Contains(ev.Path, id) {
			stroke = m.Palette.HighlightStroke
		}
		if err := m.Graph.SetEdgeStyle(id, model.StyleStroke, stroke); err != nil {
			return err
		}
	}
	ctxlog.FromContext(ctx).Debug("Path highlighted.", "edges", len(ev.Path))
	return nil
}

// OnOutput writes a status message to the output channel.
func OnOutput(_ context.Context, m *model.Model, ev *event.Output) error {
	m.SetOutput(ev.Text)
	return nil
}
