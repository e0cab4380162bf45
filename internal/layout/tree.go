package layout

import (
	"context"

	"github.com/vk/tracegraph/internal/graph"
)

// Tree places a forest top-down: depth maps to y, leaves take evenly spaced
// x slots in depth-first order and every parent is centred over its children.
type Tree struct{}

// Layout implements Adapter.
func (Tree) Layout(ctx context.Context, g *graph.Graph, opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return nil
	}

	slots := make(map[string]float64, len(nodes))
	depths := make(map[string]int, len(nodes))
	visited := make(map[string]bool, len(nodes))
	var leaves, maxDepth int

	var place func(id string, depth int) float64
	place = func(id string, depth int) float64 {
		visited[id] = true
		depths[id] = depth
		maxDepth = max(maxDepth, depth)

		var sum float64
		var count int
		for _, child := range g.Children(id) {
			if visited[child.ID()] {
				continue
			}
			sum += place(child.ID(), depth+1)
			count++
		}
		if count == 0 {
			slots[id] = float64(leaves)
			leaves++
		} else {
			slots[id] = sum / float64(count)
		}
		return slots[id]
	}

	for _, n := range nodes {
		if _, hasParent := g.Parent(n.ID()); hasParent || visited[n.ID()] {
			continue
		}
		place(n.ID(), 0)
	}
	// Nodes only reachable through a cycle have no root; start from them.
	for _, n := range nodes {
		if !visited[n.ID()] {
			place(n.ID(), 0)
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	xStep := opts.Width / float64(leaves+1)
	yStep := opts.Height / float64(maxDepth+2)
	for _, n := range nodes {
		p := graph.Point{
			X: (slots[n.ID()] + 1) * xStep,
			Y: float64(depths[n.ID()]+1) * yStep,
		}
		if err := g.SetNodePosition(n.ID(), p); err != nil {
			return err
		}
	}
	return nil
}
