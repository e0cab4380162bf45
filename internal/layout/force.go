package layout

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/vk/tracegraph/internal/graph"
)

// Force is a Fruchterman-Reingold force-directed layout. Nodes repel each
// other, edges pull their endpoints together, and the step size cools
// linearly to zero. Runs are reproducible for a given Options.Seed.
type Force struct{}

const (
	minDistance = 0.01
	padding     = 20.0
)

type vec struct{ x, y float64 }

// Layout implements Adapter.
func (Force) Layout(ctx context.Context, g *graph.Graph, opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return nil
	}

	pad := math.Min(padding, math.Min(opts.Width, opts.Height)/4)
	if len(nodes) == 1 {
		return g.SetNodePosition(nodes[0].ID(), graph.Point{X: opts.Width / 2, Y: opts.Height / 2})
	}

	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		index[n.ID()] = i
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	pos := make([]vec, len(nodes))
	for i := range pos {
		pos[i] = vec{
			x: pad + rng.Float64()*(opts.Width-2*pad),
			y: pad + rng.Float64()*(opts.Height-2*pad),
		}
	}

	k := math.Sqrt(opts.Width * opts.Height / float64(len(nodes)))
	temperature := opts.Width / 10
	cooling := temperature / float64(max(opts.Iterations, 1))
	disp := make([]vec, len(nodes))
	edges := g.Edges()

	for iter := 0; iter < opts.Iterations; iter++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		clear(disp)

		for i := 0; i < len(pos); i++ {
			for j := i + 1; j < len(pos); j++ {
				dx, dy := pos[i].x-pos[j].x, pos[i].y-pos[j].y
				dist := math.Max(math.Hypot(dx, dy), minDistance)
				force := k * k / dist
				disp[i].x += dx / dist * force
				disp[i].y += dy / dist * force
				disp[j].x -= dx / dist * force
				disp[j].y -= dy / dist * force
			}
		}

		for _, e := range edges {
			u, v := index[e.Source()], index[e.Target()]
			if u == v {
				continue
			}
			dx, dy := pos[u].x-pos[v].x, pos[u].y-pos[v].y
			dist := math.Max(math.Hypot(dx, dy), minDistance)
			force := dist * dist / k
			disp[u].x -= dx / dist * force
			disp[u].y -= dy / dist * force
			disp[v].x += dx / dist * force
			disp[v].y += dy / dist * force
		}

		for i := range pos {
			length := math.Hypot(disp[i].x, disp[i].y)
			if length > 0 {
				step := math.Min(length, temperature)
				pos[i].x += disp[i].x / length * step
				pos[i].y += disp[i].y / length * step
			}
			pos[i].x = clamp(pos[i].x, pad, opts.Width-pad)
			pos[i].y = clamp(pos[i].y, pad, opts.Height-pad)
		}
		temperature = math.Max(temperature-cooling, 0)
	}

	for i, n := range nodes {
		if err := g.SetNodePosition(n.ID(), graph.Point{X: pos[i].x, Y: pos[i].y}); err != nil {
			return err
		}
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
