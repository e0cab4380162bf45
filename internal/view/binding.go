// Package view keeps the read-only visual state of a session in step with
// its model.
//
// A Binding subscribes to the model's commit boundary. Every committed batch
// is turned into one Update carrying only the elements the event touched;
// the binding applies it to its own Snapshot and fans it out to subscribers.
// Data flows one way: nothing in this package mutates the model.
package view

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/vk/tracegraph/internal/graph"
	"github.com/vk/tracegraph/internal/model"
)

// Snapshot is the complete visual state at one version.
type Snapshot struct {
	Version uint64             `json:"version"`
	Kind    model.Kind         `json:"kind"`
	Graph   graph.Description  `json:"graph"`
	Tree    *graph.Description `json:"tree,omitempty"`
	Cursor  string             `json:"cursor,omitempty"`
	Output  string             `json:"output"`
}

// Update carries the elements changed by one committed event.
type Update struct {
	Version   uint64                  `json:"version"`
	Nodes     []graph.NodeDescription `json:"nodes,omitempty"`
	Edges     []graph.EdgeDescription `json:"edges,omitempty"`
	TreeNodes []graph.NodeDescription `json:"treeNodes,omitempty"`
	TreeEdges []graph.EdgeDescription `json:"treeEdges,omitempty"`
	Cursor    string                  `json:"cursor,omitempty"`
	Output    *string                 `json:"output,omitempty"`
}

// Binding mirrors a model for concurrent readers.
type Binding struct {
	logger *slog.Logger

	mu      sync.RWMutex
	snap    Snapshot
	index   elementIndex
	subs    map[int]chan Update
	nextSub int
}

type elementIndex struct {
	nodes, edges         map[string]int
	treeNodes, treeEdges map[string]int
}

// NewBinding takes the model's current state as version 0 and subscribes to
// its commits.
func NewBinding(m *model.Model, logger *slog.Logger) *Binding {
	if logger == nil {
		logger = slog.Default()
	}
	s := m.Snapshot()
	b := &Binding{
		logger: logger,
		snap: Snapshot{
			Kind:   s.Kind,
			Graph:  s.Graph,
			Tree:   s.Tree,
			Cursor: s.Cursor,
			Output: s.Output,
		},
		subs: make(map[int]chan Update),
	}
	b.index.nodes = indexNodes(b.snap.Graph.Nodes)
	b.index.edges = indexEdges(b.snap.Graph.Edges)
	if b.snap.Tree != nil {
		b.index.treeNodes = indexNodes(b.snap.Tree.Nodes)
		b.index.treeEdges = indexEdges(b.snap.Tree.Edges)
	}
	m.Subscribe(b)
	return b
}

// Committed implements model.Subscriber. It runs on the session's event
// goroutine.
func (b *Binding) Committed(m *model.Model, batch model.Batch) {
	u := Update{
		Nodes:  describeNodes(m.Graph, model.ChangedIDs(batch.Graph, true)),
		Edges:  describeEdges(m.Graph, model.ChangedIDs(batch.Graph, false)),
		Output: batch.Output,
	}
	if m.Tree != nil && len(batch.Tree) > 0 {
		u.TreeNodes = describeNodes(m.Tree, model.ChangedIDs(batch.Tree, true))
		u.TreeEdges = describeEdges(m.Tree, model.ChangedIDs(batch.Tree, false))
		u.Cursor = m.TreeCursor()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.snap.Version++
	u.Version = b.snap.Version
	b.apply(u)

	for id, ch := range b.subs {
		select {
		case ch <- u:
		default:
			// A subscriber that cannot keep up is cut off; it can reconnect
			// and start again from a snapshot.
			b.logger.Warn("View subscriber too slow, dropping it.", "subscriber", id, "version", u.Version)
			close(ch)
			delete(b.subs, id)
		}
	}
}

// apply merges u into the snapshot. Elements are replaced, never mutated,
// because earlier snapshot copies share them.
func (b *Binding) apply(u Update) {
	b.snap.Graph.Nodes = mergeNodes(b.snap.Graph.Nodes, b.index.nodes, u.Nodes)
	b.snap.Graph.Edges = mergeEdges(b.snap.Graph.Edges, b.index.edges, u.Edges)
	if b.snap.Tree != nil && (len(u.TreeNodes) > 0 || len(u.TreeEdges) > 0) {
		tree := *b.snap.Tree
		tree.Nodes = mergeNodes(tree.Nodes, b.index.treeNodes, u.TreeNodes)
		tree.Edges = mergeEdges(tree.Edges, b.index.treeEdges, u.TreeEdges)
		b.snap.Tree = &tree
	}
	if u.Cursor != "" {
		b.snap.Cursor = u.Cursor
	}
	if u.Output != nil {
		b.snap.Output = *u.Output
	}
}

// Snapshot returns a copy of the current visual state.
func (b *Binding) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.copySnapshot()
}

func (b *Binding) copySnapshot() Snapshot {
	s := b.snap
	s.Graph.Nodes = slices.Clone(s.Graph.Nodes)
	s.Graph.Edges = slices.Clone(s.Graph.Edges)
	if s.Tree != nil {
		tree := graph.Description{
			Nodes: slices.Clone(s.Tree.Nodes),
			Edges: slices.Clone(s.Tree.Edges),
		}
		s.Tree = &tree
	}
	return s
}

// Subscribe returns the current snapshot and a channel of every later
// update. The channel is closed by cancel, or when the subscriber falls more
// than buf updates behind.
func (b *Binding) Subscribe(buf int) (Snapshot, <-chan Update, func()) {
	if buf < 1 {
		buf = 1
	}
	ch := make(chan Update, buf)

	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextSub
	b.nextSub++
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subs[id]; ok {
			close(c)
			delete(b.subs, id)
		}
	}
	return b.copySnapshot(), ch, cancel
}

// Subscribers returns the number of live subscriptions.
func (b *Binding) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close ends every subscription.
func (b *Binding) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
}
