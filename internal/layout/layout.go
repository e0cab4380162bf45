// Package layout assigns node coordinates. It is the seam to the layout
// engine: the rest of the system only depends on the Adapter interface and
// never computes geometry itself.
package layout

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/tracegraph/internal/graph"
)

// ErrInvalidOptions is returned when the canvas size cannot hold a layout.
var ErrInvalidOptions = errors.New("invalid layout options")

// Default canvas size.
const (
	DefaultWidth      = 800
	DefaultHeight     = 500
	DefaultIterations = 300
)

// Options describes the canvas a layout targets.
type Options struct {
	Width      float64
	Height     float64
	Iterations int
	Seed       uint64
}

// DefaultOptions returns an 800x500 canvas.
func DefaultOptions() Options {
	return Options{
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		Iterations: DefaultIterations,
	}
}

// Validate rejects canvases with a non-positive side.
func (o Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("%w: width and height must be positive, got %vx%v", ErrInvalidOptions, o.Width, o.Height)
	}
	if o.Iterations < 0 {
		return fmt.Errorf("%w: iterations cannot be negative", ErrInvalidOptions)
	}
	return nil
}

// Adapter assigns a position to every node of g.
type Adapter interface {
	Layout(ctx context.Context, g *graph.Graph, opts Options) error
}

// AdapterFunc adapts a function to the Adapter interface.
type AdapterFunc func(ctx context.Context, g *graph.Graph, opts Options) error

// Layout calls f(ctx, g, opts).
func (f AdapterFunc) Layout(ctx context.Context, g *graph.Graph, opts Options) error {
	return f(ctx, g, opts)
}

// ByName returns the adapter configured under name.
func ByName(name string) (Adapter, error) {
	switch name {
	case "force", "":
		return Force{}, nil
	case "fixed":
		return Fixed{}, nil
	case "tree":
		return Tree{}, nil
	default:
		return nil, fmt.Errorf("unknown layout %q: must be 'force', 'fixed' or 'tree'", name)
	}
}

// Fixed keeps the positions nodes were constructed with. It fails if any
// node has none.
type Fixed struct{}

// Layout implements Adapter.
func (Fixed) Layout(_ context.Context, g *graph.Graph, opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	for _, n := range g.Nodes() {
		if _, ok := n.Position(); !ok {
			return fmt.Errorf("fixed layout: node '%s' has no position", n.ID())
		}
	}
	return nil
}
