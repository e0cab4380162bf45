package view

import (
	"github.com/vk/tracegraph/internal/graph"
)

func indexNodes(nodes []graph.NodeDescription) map[string]int {
	idx := make(map[string]int, len(nodes))
	for i, n := range nodes {
		idx[n.ID] = i
	}
	return idx
}

func indexEdges(edges []graph.EdgeDescription) map[string]int {
	idx := make(map[string]int, len(edges))
	for i, e := range edges {
		idx[e.ID] = i
	}
	return idx
}

// describeNodes dumps the current state of each id. Ids come from the
// graph's own change journal, so lookups do not fail.
func describeNodes(g *graph.Graph, ids []string) []graph.NodeDescription {
	out := make([]graph.NodeDescription, 0, len(ids))
	for _, id := range ids {
		if nd, err := g.DescribeNode(id); err == nil {
			out = append(out, nd)
		}
	}
	return out
}

func describeEdges(g *graph.Graph, ids []string) []graph.EdgeDescription {
	out := make([]graph.EdgeDescription, 0, len(ids))
	for _, id := range ids {
		if ed, err := g.DescribeEdge(id); err == nil {
			out = append(out, ed)
		}
	}
	return out
}

// mergeNodes replaces changed entries in place and appends new ones. The
// slice is copied before the first write so earlier readers keep theirs.
func mergeNodes(dst []graph.NodeDescription, idx map[string]int, changed []graph.NodeDescription) []graph.NodeDescription {
	if len(changed) == 0 {
		return dst
	}
	out := make([]graph.NodeDescription, len(dst), len(dst)+len(changed))
	copy(out, dst)
	for _, nd := range changed {
		if i, ok := idx[nd.ID]; ok {
			out[i] = nd
			continue
		}
		idx[nd.ID] = len(out)
		out = append(out, nd)
	}
	return out
}

func mergeEdges(dst []graph.EdgeDescription, idx map[string]int, changed []graph.EdgeDescription) []graph.EdgeDescription {
	if len(changed) == 0 {
		return dst
	}
	out := make([]graph.EdgeDescription, len(dst), len(dst)+len(changed))
	copy(out, dst)
	for _, ed := range changed {
		if i, ok := idx[ed.ID]; ok {
			out[i] = ed
			continue
		}
		idx[ed.ID] = len(out)
		out = append(out, ed)
	}
	return out
}
