package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestGraph builds a small graph: a -> b -> c, plus a -> c.
func createTestGraph(t *testing.T) *Graph {
	t.Helper()
	g := New()
	require.NoError(t, g.AddNode(NodeSpec{ID: "a", Domain: []string{"1", "2"}}))
	require.NoError(t, g.AddNode(NodeSpec{ID: "b", Label: "Bee"}))
	require.NoError(t, g.AddNode(NodeSpec{ID: "c"}))
	require.NoError(t, g.AddEdge("e1", "a", "b", nil))
	require.NoError(t, g.AddEdge("e2", "b", "c", map[string]string{"stroke": "black"}))
	require.NoError(t, g.AddEdge("e3", "a", "c", nil))
	return g
}

func TestAddNode_DuplicateID(t *testing.T) {
	t.Parallel()
	g := createTestGraph(t)

	err := g.AddNode(NodeSpec{ID: "a"})
	require.ErrorIs(t, err, ErrDuplicateID)

	// Node and edge ids share a namespace.
	err = g.AddNode(NodeSpec{ID: "e1"})
	require.ErrorIs(t, err, ErrDuplicateID)
}

func TestAddEdge_UnknownEndpoint(t *testing.T) {
	t.Parallel()
	g := createTestGraph(t)

	err := g.AddEdge("e9", "a", "ghost", nil)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, g.Edges(), 3)
}

func TestSeal_RejectsGrowth(t *testing.T) {
	t.Parallel()
	g := createTestGraph(t)
	g.Seal()

	require.ErrorIs(t, g.AddNode(NodeSpec{ID: "d"}), ErrSealed)
	require.ErrorIs(t, g.AddEdge("e4", "a", "b", nil), ErrSealed)

	// Mutators still work after sealing.
	require.NoError(t, g.SetNodeStyle("a", "stroke", "red"))
}

func TestFindNode_NotFound(t *testing.T) {
	t.Parallel()
	g := createTestGraph(t)

	n, err := g.FindNode("ghost")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, n)

	e, err := g.FindEdge("ghost")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, e)
}

func TestMutators_NotFound(t *testing.T) {
	t.Parallel()
	g := createTestGraph(t)

	tests := map[string]func() error{
		"node style":    func() error { return g.SetNodeStyle("ghost", "stroke", "red") },
		"edge style":    func() error { return g.SetEdgeStyle("ghost", "stroke", "red") },
		"node domain":   func() error { return g.SetNodeDomain("ghost", []string{"x"}) },
		"node position": func() error { return g.SetNodePosition("ghost", Point{X: 1}) },
	}
	for name, fn := range tests {
		err := fn()
		assert.Truef(t, errors.Is(err, ErrNotFound), "%s: expected ErrNotFound, got %v", name, err)
	}
}

func TestSetNodeDomain_ReplacesAndCopies(t *testing.T) {
	t.Parallel()
	g := createTestGraph(t)

	domain := []string{"x", "y"}
	require.NoError(t, g.SetNodeDomain("a", domain))
	domain[0] = "mutated"

	n, err := g.FindNode("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, n.Domain())

	require.NoError(t, g.SetNodeDomain("a", nil))
	assert.Equal(t, []string{}, n.Domain())
}

func TestStyles_AreCopied(t *testing.T) {
	t.Parallel()
	g := createTestGraph(t)

	e, err := g.FindEdge("e2")
	require.NoError(t, err)
	styles := e.Styles()
	styles["stroke"] = "mutated"

	v, ok := e.Style("stroke")
	require.True(t, ok)
	assert.Equal(t, "black", v)
}

func TestObserver_ReportsChanges(t *testing.T) {
	t.Parallel()
	g := createTestGraph(t)

	var changes []Change
	g.Observe(ObserverFunc(func(_ *Graph, c Change) {
		changes = append(changes, c)
	}))

	require.NoError(t, g.SetNodeStyle("a", "stroke", "red"))
	require.NoError(t, g.SetEdgeStyle("e1", "stroke", "pink"))
	require.NoError(t, g.SetEdgeStyle("e2", "stroke", "black")) // unchanged
	require.NoError(t, g.SetNodeDomain("a", []string{"1"}))
	require.NoError(t, g.SetNodePosition("b", Point{X: 3, Y: 4}))
	require.Error(t, g.SetNodeStyle("ghost", "stroke", "red"))

	assert.Equal(t, []Change{
		{Kind: NodeStyled, ID: "a"},
		{Kind: EdgeStyled, ID: "e1"},
		{Kind: NodeDomainSet, ID: "a"},
		{Kind: NodeMoved, ID: "b"},
	}, changes)
}

func TestNextID_IsDisjoint(t *testing.T) {
	t.Parallel()
	g := New()
	require.NoError(t, g.AddNode(NodeSpec{ID: "split-1"}))
	require.NoError(t, g.AddNode(NodeSpec{ID: "split-2"}))

	id := g.NextID("split")
	assert.Equal(t, "split-3", id)
	require.NoError(t, g.AddNode(NodeSpec{ID: id}))
	assert.Equal(t, "split-4", g.NextID("split"))
}

func TestResolveNodes_FailsOnFirstMiss(t *testing.T) {
	t.Parallel()
	g := createTestGraph(t)

	nodes, err := g.ResolveNodes([]string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	_, err = g.ResolveNodes([]string{"a", "ghost", "b"})
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "ghost")

	_, err = g.ResolveEdges([]string{"e1", "nope"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestChildrenAndParent(t *testing.T) {
	t.Parallel()
	g := createTestGraph(t)

	children := g.Children("a")
	require.Len(t, children, 2)
	assert.Equal(t, "b", children[0].ID())
	assert.Equal(t, "c", children[1].ID())

	parent, ok := g.Parent("b")
	require.True(t, ok)
	assert.Equal(t, "a", parent.ID())

	_, ok = g.Parent("a")
	assert.False(t, ok)
}

func TestChildrenAndParent_FollowEdgeOrderAcrossInterleavedInserts(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	g := New()
	for _, id := range []string{"r", "x", "y", "z"} {
		require.NoError(t, g.AddNode(NodeSpec{ID: id}))
	}
	require.NoError(t, g.AddEdge("r-z", "r", "z", nil))
	require.NoError(t, g.AddEdge("x-y", "x", "y", nil))
	require.NoError(t, g.AddEdge("r-x", "r", "x", nil))
	require.NoError(t, g.AddEdge("z-y", "z", "y", nil))

	// --- Act ---
	children := g.Children("r")
	parent, ok := g.Parent("y")

	// --- Assert ---
	require.Len(t, children, 2)
	assert.Equal(t, "z", children[0].ID())
	assert.Equal(t, "x", children[1].ID())
	require.True(t, ok)
	assert.Equal(t, "x", parent.ID(), "first entering edge wins")
	assert.Empty(t, g.Children("y"))
}

func TestNode_LabelFallsBackToID(t *testing.T) {
	t.Parallel()
	g := createTestGraph(t)

	a, _ := g.FindNode("a")
	b, _ := g.FindNode("b")
	assert.Equal(t, "a", a.Label())
	assert.Equal(t, "Bee", b.Label())

	_, ok := a.Position()
	assert.False(t, ok)
}
