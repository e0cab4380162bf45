// Package model holds the state of one visualization session: the problem
// graph the trace refers to, the CSP split tree, and the output channel.
//
// The model is also the explicit boundary between mutation and rendering.
// Graph mutations are collected into a pending Batch; Commit hands the batch
// to subscribers once an event has been applied completely, Discard drops it.
// Subscribers therefore never observe half of an event.
package model

import (
	"context"
	"fmt"
	"slices"

	"github.com/vk/tracegraph/internal/graph"
	"github.com/vk/tracegraph/internal/layout"
)

// Kind selects which event family a session is expected to receive.
type Kind string

const (
	KindCSP    Kind = "csp"
	KindSearch Kind = "search"
)

// ParseKind validates a configured session kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindCSP, KindSearch:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown session kind %q: must be 'csp' or 'search'", s)
	}
}

// Style attribute keys written by event handlers.
const (
	StyleStroke       = "stroke"
	StyleStrokeWeight = "strokeWeight"
	StyleState        = "state"
	StyleVar          = "var"
)

// Split tree node states.
const (
	StateActive   = "active"
	StateExplored = "explored"
	StatePending  = "pending"
)

// TreeRootID is the id of the split tree's root node.
const TreeRootID = "root"

// Palette holds the colours handlers write into styles.
type Palette struct {
	HighlightStroke string
	DefaultStroke   string
	ActiveStroke    string
}

// DefaultPalette returns pink path highlights on black edges.
func DefaultPalette() Palette {
	return Palette{
		HighlightStroke: "pink",
		DefaultStroke:   "black",
		ActiveStroke:    "blue",
	}
}

// Batch is the set of changes produced by one applied event.
type Batch struct {
	Graph  []graph.Change
	Tree   []graph.Change
	Output *string
}

// Empty reports whether the batch carries no change at all.
func (b Batch) Empty() bool {
	return len(b.Graph) == 0 && len(b.Tree) == 0 && b.Output == nil
}

// Subscriber is notified after each committed batch.
type Subscriber interface {
	Committed(m *Model, b Batch)
}

// Options configures a Model.
type Options struct {
	Kind    Kind
	Palette Palette
	// TreeLayout positions the split tree after it grows. Nil leaves tree
	// nodes without positions.
	TreeLayout    layout.Adapter
	LayoutOptions layout.Options
}

// Model is the state of one session. It is not safe for concurrent use.
type Model struct {
	Kind    Kind
	Palette Palette
	Graph   *graph.Graph
	// Tree is the CSP split tree. It is nil for search sessions.
	Tree *graph.Graph

	treeLayout    layout.Adapter
	layoutOptions layout.Options

	cursor      string
	output      string
	pending     Batch
	subscribers []Subscriber
}

// New wraps g in a session model. g is sealed: after this point the problem
// graph is only restyled and narrowed.
func New(g *graph.Graph, opts Options) (*Model, error) {
	if opts.Kind == "" {
		opts.Kind = KindSearch
	}
	if opts.Palette == (Palette{}) {
		opts.Palette = DefaultPalette()
	}

	m := &Model{
		Kind:          opts.Kind,
		Palette:       opts.Palette,
		Graph:         g,
		treeLayout:    opts.TreeLayout,
		layoutOptions: opts.LayoutOptions,
	}
	g.Seal()
	g.Observe(graph.ObserverFunc(func(_ *graph.Graph, c graph.Change) {
		m.pending.Graph = append(m.pending.Graph, c)
	}))

	if opts.Kind == KindCSP {
		tree := graph.New()
		err := tree.AddNode(graph.NodeSpec{
			ID:     TreeRootID,
			Label:  TreeRootID,
			Styles: map[string]string{StyleState: StateActive, StyleStroke: opts.Palette.ActiveStroke},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create split tree: %w", err)
		}
		m.attachTree(tree, TreeRootID)
	}
	return m, nil
}

// Restore rebuilds a model from a Snapshot. Replaying the same events on the
// restored model yields the same state as continuing the original session.
func Restore(s Snapshot, opts Options) (*Model, error) {
	g, err := graph.FromDescription(s.Graph)
	if err != nil {
		return nil, fmt.Errorf("failed to restore graph: %w", err)
	}
	opts.Kind = s.Kind
	m, err := New(g, opts)
	if err != nil {
		return nil, err
	}
	if s.Tree != nil && m.Tree != nil {
		tree, err := graph.FromDescription(*s.Tree)
		if err != nil {
			return nil, fmt.Errorf("failed to restore split tree: %w", err)
		}
		if _, err := tree.FindNode(s.Cursor); err != nil {
			return nil, fmt.Errorf("failed to restore split tree cursor: %w", err)
		}
		m.attachTree(tree, s.Cursor)
	}
	m.output = s.Output
	return m, nil
}

func (m *Model) attachTree(tree *graph.Graph, cursor string) {
	tree.Observe(graph.ObserverFunc(func(_ *graph.Graph, c graph.Change) {
		m.pending.Tree = append(m.pending.Tree, c)
	}))
	m.Tree = tree
	m.cursor = cursor
}

// Subscribe registers s for committed batches.
func (m *Model) Subscribe(s Subscriber) {
	m.subscribers = append(m.subscribers, s)
}

// Output returns the latest status text.
func (m *Model) Output() string {
	return m.output
}

// SetOutput replaces the status text.
func (m *Model) SetOutput(text string) {
	m.output = text
	m.pending.Output = &text
}

// TreeCursor returns the split tree node currently being explored.
func (m *Model) TreeCursor() string {
	return m.cursor
}

// MoveTreeCursor marks the current tree node explored and id active.
func (m *Model) MoveTreeCursor(id string) error {
	if m.Tree == nil {
		return fmt.Errorf("session kind %q has no split tree", m.Kind)
	}
	if _, err := m.Tree.FindNode(id); err != nil {
		return err
	}
	if m.cursor != "" && m.cursor != id {
		if err := m.Tree.SetNodeStyle(m.cursor, StyleState, StateExplored); err != nil {
			return err
		}
		if err := m.Tree.SetNodeStyle(m.cursor, StyleStroke, m.Palette.DefaultStroke); err != nil {
			return err
		}
	}
	if err := m.Tree.SetNodeStyle(id, StyleState, StateActive); err != nil {
		return err
	}
	if err := m.Tree.SetNodeStyle(id, StyleStroke, m.Palette.ActiveStroke); err != nil {
		return err
	}
	m.cursor = id
	return nil
}

// RelayoutTree re-runs the tree layout after the split tree grew.
func (m *Model) RelayoutTree(ctx context.Context) error {
	if m.Tree == nil || m.treeLayout == nil {
		return nil
	}
	return m.treeLayout.Layout(ctx, m.Tree, m.layoutOptions)
}

// Commit publishes the pending batch to subscribers and starts a new one.
func (m *Model) Commit() Batch {
	b := m.pending
	m.pending = Batch{}
	if b.Empty() {
		return b
	}
	for _, s := range m.subscribers {
		s.Committed(m, b)
	}
	return b
}

// Discard drops the pending batch without notifying anyone.
func (m *Model) Discard() {
	m.pending = Batch{}
}

// HasPending reports whether uncommitted changes exist.
func (m *Model) HasPending() bool {
	return !m.pending.Empty()
}

// Snapshot is a complete serializable dump of the model.
type Snapshot struct {
	Kind   Kind               `json:"kind"`
	Graph  graph.Description  `json:"graph"`
	Tree   *graph.Description `json:"tree,omitempty"`
	Cursor string             `json:"cursor,omitempty"`
	Output string             `json:"output"`
}

// Snapshot dumps the model's current state.
func (m *Model) Snapshot() Snapshot {
	s := Snapshot{
		Kind:   m.Kind,
		Graph:  m.Graph.Describe(),
		Cursor: m.cursor,
		Output: m.output,
	}
	if m.Tree != nil {
		d := m.Tree.Describe()
		s.Tree = &d
	}
	return s
}

// ChangedIDs returns the distinct ids in changes, in first-seen order.
func ChangedIDs(changes []graph.Change, nodes bool) []string {
	var ids []string
	for _, c := range changes {
		if c.Kind.IsNode() != nodes {
			continue
		}
		if !slices.Contains(ids, c.ID) {
			ids = append(ids, c.ID)
		}
	}
	return ids
}
