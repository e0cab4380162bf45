package csp

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/vk/tracegraph/internal/ctxlog"
	"github.com/vk/tracegraph/internal/event"
	"github.com/vk/tracegraph/internal/graph"
	"github.com/vk/tracegraph/internal/model"
)

// OnSetOrder grows the split tree by the two halves of a split of Var, in
// exploration order, below the current tree node.
func OnSetOrder(ctx context.Context, m *model.Model, ev *event.SetOrder) error {
	logger := ctxlog.FromContext(ctx)
	if _, err := m.Graph.FindNode(ev.Var); err != nil {
		return err
	}
	if m.Tree == nil {
		logger.Debug("Session has no split tree, ignoring split order.", "var", ev.Var)
		return nil
	}

	parent := m.TreeCursor()
	for _, domain := range [][]string{ev.Domain, ev.Other} {
		if _, err := appendBranch(m.Tree, parent, ev.Var, domain); err != nil {
			return err
		}
	}
	relayoutTree(ctx, m)
	logger.Debug("Split tree grown.", "parent", parent, "var", ev.Var)
	return nil
}

// OnSetSplit narrows Var's domain and moves the split tree cursor to the
// branch that holds it. The branch is looked up below the cursor first and
// then below each of its ancestors, which is where a backtracking solver
// continues. A split no setOrder announced gets a branch of its own.
//
// The tree steps run first: once they succeed, narrowing the domain of a
// resolved node cannot fail.
func OnSetSplit(ctx context.Context, m *model.Model, ev *event.SetSplit) error {
	logger := ctxlog.FromContext(ctx)
	if _, err := m.Graph.FindNode(ev.Var); err != nil {
		return err
	}

	var target string
	grown := false
	if m.Tree != nil {
		target = findBranch(m.Tree, m.TreeCursor(), ev.Var, ev.Domain)
		if target == "" {
			id, err := appendBranch(m.Tree, m.TreeCursor(), ev.Var, ev.Domain)
			if err != nil {
				return err
			}
			target, grown = id, true
		}
		if err := m.MoveTreeCursor(target); err != nil {
			return err
		}
	}

	if err := m.Graph.SetNodeDomain(ev.Var, ev.Domain); err != nil {
		return err
	}
	if grown {
		relayoutTree(ctx, m)
	}
	if target != "" {
		logger.Debug("Split applied.", "var", ev.Var, "branch", target)
	}
	return nil
}

func branchLabel(variable string, domain []string) string {
	return fmt.Sprintf("%s ∈ {%s}", variable, strings.Join(domain, ", "))
}

// appendBranch adds a pending child below parent. Edge ids follow the
// source->target naming of the problem graph.
func appendBranch(tree *graph.Graph, parent, variable string, domain []string) (string, error) {
	id := tree.NextID("split")
	err := tree.AddNode(graph.NodeSpec{
		ID:     id,
		Label:  branchLabel(variable, domain),
		Domain: domain,
		Styles: map[string]string{model.StyleVar: variable, model.StyleState: model.StatePending},
	})
	if err != nil {
		return "", fmt.Errorf("failed to add split branch: %w", err)
	}
	if err := tree.AddEdge(parent+"->"+id, parent, id, nil); err != nil {
		return "", fmt.Errorf("failed to link split branch: %w", err)
	}
	return id, nil
}

// findBranch returns the first child of from, or of its nearest ancestor,
// that splits variable into exactly domain.
func findBranch(tree *graph.Graph, from, variable string, domain []string) string {
	for at := from; at != ""; {
		for _, child := range tree.Children(at) {
			if v, _ := child.Style(model.StyleVar); v == variable && slices.Equal(child.Domain(), domain) {
				return child.ID()
			}
		}
		parent, ok := tree.Parent(at)
		if !ok {
			break
		}
		at = parent.ID()
	}
	return ""
}

// relayoutTree repositions the tree after it grew. The event has already
// been applied, so a layout failure is reported and not returned.
func relayoutTree(ctx context.Context, m *model.Model) {
	if err := m.RelayoutTree(ctx); err != nil {
		ctxlog.FromContext(ctx).Warn("Split tree layout failed.", "error", err)
	}
}
