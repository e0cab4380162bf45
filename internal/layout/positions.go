package layout

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/vk/tracegraph/internal/graph"
)

// ParsePositions decodes explicit coordinates: a JSON object mapping node id
// to either {"x": X, "y": Y} or [X, Y].
func ParsePositions(s string) (map[string]graph.Point, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, fmt.Errorf("positions must be a JSON object: %w", err)
	}

	out := make(map[string]graph.Point, len(raw))
	for id, v := range raw {
		var pair []float64
		if err := json.Unmarshal(v, &pair); err == nil {
			if len(pair) != 2 {
				return nil, fmt.Errorf("position of '%s' must have 2 coordinates, got %d", id, len(pair))
			}
			out[id] = graph.Point{X: pair[0], Y: pair[1]}
			continue
		}

		var obj struct {
			X *float64 `json:"x"`
			Y *float64 `json:"y"`
		}
		if err := json.Unmarshal(v, &obj); err != nil || obj.X == nil || obj.Y == nil {
			return nil, fmt.Errorf("position of '%s' must be [x, y] or {\"x\": x, \"y\": y}", id)
		}
		out[id] = graph.Point{X: *obj.X, Y: *obj.Y}
	}
	return out, nil
}

// Apply writes explicit positions, bypassing any adapter. Every id is
// resolved first; an unknown id leaves the graph untouched.
func Apply(g *graph.Graph, positions map[string]graph.Point) error {
	ids := make([]string, 0, len(positions))
	for id := range positions {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	if _, err := g.ResolveNodes(ids); err != nil {
		return err
	}
	for _, id := range ids {
		if err := g.SetNodePosition(id, positions[id]); err != nil {
			return err
		}
	}
	return nil
}
