package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/tracegraph/internal/event"
	"github.com/vk/tracegraph/internal/graph"
	"github.com/vk/tracegraph/internal/layout"
	"github.com/vk/tracegraph/internal/model"
	"github.com/vk/tracegraph/internal/registry"
	"github.com/vk/tracegraph/modules/csp"
	"github.com/vk/tracegraph/modules/search"
)

// searchGraph is S -> A -> G with a shortcut S -> G.
func searchGraph() graph.Description {
	return graph.Description{
		Nodes: []graph.NodeDescription{{ID: "S"}, {ID: "A"}, {ID: "G"}},
		Edges: []graph.EdgeDescription{
			{ID: "e1", Source: "S", Target: "A"},
			{ID: "e2", Source: "A", Target: "G"},
			{ID: "e3", Source: "S", Target: "G"},
		},
	}
}

// cspGraph has variables X and Y linked through constraint c1.
func cspGraph() graph.Description {
	return graph.Description{
		Nodes: []graph.NodeDescription{
			{ID: "X", Domain: []string{"1", "2", "3"}},
			{ID: "Y", Domain: []string{"1", "2", "3"}},
			{ID: "c1", Label: "X < Y"},
		},
		Edges: []graph.EdgeDescription{
			{ID: "a1", Source: "X", Target: "c1"},
			{ID: "a2", Source: "Y", Target: "c1"},
		},
	}
}

type recorder struct {
	batches []model.Batch
}

func (r *recorder) Committed(_ *model.Model, b model.Batch) {
	r.batches = append(r.batches, b)
}

func modelOptions(kind model.Kind) model.Options {
	return model.Options{
		Kind:          kind,
		TreeLayout:    layout.Tree{},
		LayoutOptions: layout.DefaultOptions(),
	}
}

func newDispatcher(t *testing.T, kind model.Kind, d graph.Description) (*Dispatcher, *recorder) {
	t.Helper()
	g, err := graph.FromDescription(d)
	require.NoError(t, err)
	m, err := model.New(g, modelOptions(kind))
	require.NoError(t, err)
	m.Commit() // drop the construction batch

	reg := registry.New(&csp.Module{}, &search.Module{})
	require.NoError(t, reg.ValidateRegistry(context.Background()))

	rec := &recorder{}
	m.Subscribe(rec)
	return New(reg, m), rec
}

func send(t *testing.T, d *Dispatcher, payload string) error {
	t.Helper()
	return d.Dispatch(context.Background(), []byte(payload))
}

func edgeStroke(t *testing.T, g *graph.Graph, id string) string {
	t.Helper()
	e, err := g.FindEdge(id)
	require.NoError(t, err)
	v, _ := e.Style(model.StyleStroke)
	return v
}

func nodeStroke(t *testing.T, g *graph.Graph, id string) string {
	t.Helper()
	n, err := g.FindNode(id)
	require.NoError(t, err)
	v, _ := n.Style(model.StyleStroke)
	return v
}

func TestHighlightPath_ReplacesPreviousPath(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	d, _ := newDispatcher(t, model.KindSearch, searchGraph())
	g := d.Model().Graph

	// --- Act ---
	require.NoError(t, send(t, d, `{"action":"highlightPath","path":["e1"]}`))
	require.NoError(t, send(t, d, `{"action":"highlightPath","path":["e2"]}`))

	// --- Assert ---
	assert.Equal(t, "black", edgeStroke(t, g, "e1"), "e1 must revert once it leaves the path")
	assert.Equal(t, "pink", edgeStroke(t, g, "e2"))
	assert.Equal(t, "black", edgeStroke(t, g, "e3"))
}

func TestSetDomains_AlignedReplace(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	d, _ := newDispatcher(t, model.KindCSP, cspGraph())
	g := d.Model().Graph

	// --- Act ---
	err := send(t, d, `{"action":"setDomains","nodeIds":["X","Y"],"domains":[["1"],["2","3"]]}`)

	// --- Assert ---
	require.NoError(t, err)
	x, _ := g.FindNode("X")
	y, _ := g.FindNode("Y")
	assert.Equal(t, []string{"1"}, x.Domain())
	assert.Equal(t, []string{"2", "3"}, y.Domain())
}

func TestSetDomains_MismatchedLengthsIsMalformed(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	d, rec := newDispatcher(t, model.KindCSP, cspGraph())
	before := d.Model().Snapshot()

	// --- Act ---
	err := send(t, d, `{"action":"setDomains","nodeIds":["X","Y"],"domains":[["1"]]}`)

	// --- Assert ---
	var derr *Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, MalformedPayload, derr.Kind)
	assert.Equal(t, event.ActionSetDomains, derr.Action)
	assert.ErrorIs(t, err, event.ErrMalformedPayload)
	assert.Equal(t, before, d.Model().Snapshot())
	assert.Empty(t, rec.batches)
}

func TestHighlightArcs_NullMeansEveryArc(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	all, _ := newDispatcher(t, model.KindCSP, cspGraph())
	explicit, _ := newDispatcher(t, model.KindCSP, cspGraph())

	// --- Act ---
	require.NoError(t, send(t, all, `{"action":"highlightArcs","arcIds":null,"style":"bold","colour":"green"}`))
	require.NoError(t, send(t, explicit, `{"action":"highlightArcs","arcIds":["a1","a2"],"style":"bold","colour":"green"}`))

	// --- Assert ---
	assert.Equal(t, explicit.Model().Snapshot(), all.Model().Snapshot())
	e, _ := all.Model().Graph.FindEdge("a2")
	weight, _ := e.Style(model.StyleStrokeWeight)
	assert.Equal(t, "bold", weight)
	assert.Equal(t, "green", edgeStroke(t, all.Model().Graph, "a2"))
}

func TestHighlightNodes_Additive(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	d, _ := newDispatcher(t, model.KindCSP, cspGraph())
	g := d.Model().Graph

	// --- Act ---
	require.NoError(t, send(t, d, `{"action":"highlightNodes","nodeIds":["X"],"colour":"red"}`))
	require.NoError(t, send(t, d, `{"action":"highlightNodes","nodeIds":["Y"],"colour":"blue"}`))

	// --- Assert ---
	assert.Equal(t, "red", nodeStroke(t, g, "X"))
	assert.Equal(t, "blue", nodeStroke(t, g, "Y"))
}

func TestDispatch_UnknownActionLeavesModelUnchanged(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	d, rec := newDispatcher(t, model.KindSearch, searchGraph())
	before := d.Model().Snapshot()

	// --- Act ---
	err := send(t, d, `{"action":"bogus"}`)

	// --- Assert ---
	var derr *Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, UnknownAction, derr.Kind)
	assert.ErrorIs(t, err, event.ErrUnknownAction)
	assert.Equal(t, before, d.Model().Snapshot())
	assert.Empty(t, rec.batches)
}

func TestHighlightNodes_UnknownIDChangesNothing(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	d, rec := newDispatcher(t, model.KindCSP, cspGraph())
	before := d.Model().Snapshot()

	// --- Act ---
	err := send(t, d, `{"action":"highlightNodes","nodeIds":["X","ghost"],"colour":"red"}`)

	// --- Assert ---
	var derr *Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, NotFound, derr.Kind)
	assert.ErrorIs(t, err, graph.ErrNotFound)
	assert.Equal(t, before, d.Model().Snapshot(), "X must not be highlighted either")
	assert.Empty(t, rec.batches)
	assert.False(t, d.Model().HasPending())
}

func TestDispatch_MalformedPayloads(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		payload string
	}{
		{name: "not json", payload: `nope`},
		{name: "array", payload: `[1,2]`},
		{name: "missing action", payload: `{"path":["e1"]}`},
		{name: "missing field", payload: `{"action":"highlightPath"}`},
		{name: "wrong type", payload: `{"action":"output","text":5}`},
		{name: "bad arc style", payload: `{"action":"highlightArcs","arcIds":null,"style":"dashed","colour":"red"}`},
		{name: "bad positions", payload: `{"action":"showPositions","positions":"[1,2]"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			d, _ := newDispatcher(t, model.KindSearch, searchGraph())

			// --- Act ---
			err := send(t, d, tc.payload)

			// --- Assert ---
			var derr *Error
			require.ErrorAs(t, err, &derr)
			assert.Equal(t, MalformedPayload, derr.Kind)
		})
	}
}

func TestDispatch_CommitsOnlyAffectedElements(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	d, rec := newDispatcher(t, model.KindSearch, searchGraph())
	require.NoError(t, send(t, d, `{"action":"highlightPath","path":["e1"]}`))
	rec.batches = nil

	// --- Act ---
	require.NoError(t, send(t, d, `{"action":"highlightPath","path":["e2"]}`))
	require.NoError(t, send(t, d, `{"action":"output","text":"expanding A"}`))

	// --- Assert ---
	require.Len(t, rec.batches, 2)
	assert.ElementsMatch(t, []string{"e1", "e2"}, model.ChangedIDs(rec.batches[0].Graph, false))
	require.NotNil(t, rec.batches[1].Output)
	assert.Equal(t, "expanding A", *rec.batches[1].Output)
	assert.Empty(t, rec.batches[1].Graph)
}

func TestShowPositions(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	d, _ := newDispatcher(t, model.KindCSP, cspGraph())

	// --- Act ---
	okErr := send(t, d, `{"action":"showPositions","positions":"{\"X\":[10,20],\"Y\":{\"x\":30,\"y\":40}}"}`)
	ghostErr := send(t, d, `{"action":"showPositions","positions":"{\"X\":[1,1],\"ghost\":[2,2]}"}`)

	// --- Assert ---
	require.NoError(t, okErr)
	assert.ErrorIs(t, ghostErr, graph.ErrNotFound)
	x, _ := d.Model().Graph.FindNode("X")
	p, ok := x.Position()
	require.True(t, ok)
	assert.Equal(t, graph.Point{X: 10, Y: 20}, p, "the failed event must not move X")
}

func TestSplitTree_OrderThenSplit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	d, _ := newDispatcher(t, model.KindCSP, cspGraph())
	m := d.Model()

	// --- Act ---
	require.NoError(t, send(t, d, `{"action":"chooseDomainSplit","domain":["1","2","3"],"var":"X"}`))
	require.NoError(t, send(t, d, `{"action":"setOrder","var":"X","domain":["1"],"other":["2","3"]}`))
	require.NoError(t, send(t, d, `{"action":"setSplit","var":"X","domain":["1"]}`))

	// --- Assert ---
	children := m.Tree.Children(model.TreeRootID)
	require.Len(t, children, 2)
	assert.Equal(t, "X ∈ {1}", children[0].Label())
	assert.Equal(t, "X ∈ {2, 3}", children[1].Label())
	assert.Equal(t, children[0].ID(), m.TreeCursor())

	x, _ := m.Graph.FindNode("X")
	assert.Equal(t, []string{"1"}, x.Domain())

	root, _ := m.Tree.FindNode(model.TreeRootID)
	state, _ := root.Style(model.StyleState)
	assert.Equal(t, model.StateExplored, state)
	_, placed := children[1].Position()
	assert.True(t, placed, "tree layout must run after growth")
}

func TestSplitTree_BacktrackFindsSiblingBranch(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	d, _ := newDispatcher(t, model.KindCSP, cspGraph())
	m := d.Model()
	require.NoError(t, send(t, d, `{"action":"setOrder","var":"X","domain":["1"],"other":["2","3"]}`))
	require.NoError(t, send(t, d, `{"action":"setSplit","var":"X","domain":["1"]}`))
	require.NoError(t, send(t, d, `{"action":"setOrder","var":"Y","domain":["2"],"other":["3"]}`))
	require.NoError(t, send(t, d, `{"action":"setSplit","var":"Y","domain":["2"]}`))

	// --- Act ---
	require.NoError(t, send(t, d, `{"action":"setSplit","var":"X","domain":["2","3"]}`))

	// --- Assert ---
	second := m.Tree.Children(model.TreeRootID)[1]
	assert.Equal(t, second.ID(), m.TreeCursor())
	assert.Len(t, m.Tree.Nodes(), 5, "backtracking must not grow the tree")
}

func TestSplitTree_UnannouncedSplitGrowsBranch(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	d, _ := newDispatcher(t, model.KindCSP, cspGraph())
	m := d.Model()

	// --- Act ---
	require.NoError(t, send(t, d, `{"action":"setSplit","var":"Y","domain":["3"]}`))

	// --- Assert ---
	children := m.Tree.Children(model.TreeRootID)
	require.Len(t, children, 1)
	assert.Equal(t, children[0].ID(), m.TreeCursor())
}

func TestSetOrder_UnknownVarIsNotFound(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	d, _ := newDispatcher(t, model.KindCSP, cspGraph())

	// --- Act ---
	err := send(t, d, `{"action":"setOrder","var":"Z","domain":["1"],"other":["2"]}`)

	// --- Assert ---
	require.ErrorIs(t, err, graph.ErrNotFound)
	assert.Len(t, d.Model().Tree.Nodes(), 1)
}

func TestOutputChannel_LastWriteWins(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	d, _ := newDispatcher(t, model.KindCSP, cspGraph())

	// --- Act ---
	require.NoError(t, send(t, d, `{"action":"output","text":"first"}`))
	require.NoError(t, send(t, d, `{"action":"setSolution","solution":"X=1, Y=2"}`))

	// --- Assert ---
	assert.Equal(t, "X=1, Y=2", d.Model().Output())
}

func TestRoundTrip_RestoreThenReplayMatchesContinuousSession(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	trace := []string{
		`{"action":"highlightArcs","arcIds":null,"style":"normal","colour":"gray"}`,
		`{"action":"setOrder","var":"X","domain":["1"],"other":["2","3"]}`,
		`{"action":"setSplit","var":"X","domain":["1"]}`,
		`{"action":"setDomains","nodeIds":["Y"],"domains":[["2","3"]]}`,
		// split point
		`{"action":"setOrder","var":"Y","domain":["2"],"other":["3"]}`,
		`{"action":"setSplit","var":"Y","domain":["2"]}`,
		`{"action":"highlightNodes","nodeIds":["c1"],"colour":"red"}`,
		`{"action":"setSplit","var":"X","domain":["2","3"]}`,
		`{"action":"setSolution","solution":"X=1, Y=2"}`,
	}
	const split = 4

	continuous, _ := newDispatcher(t, model.KindCSP, cspGraph())
	for _, p := range trace {
		require.NoError(t, send(t, continuous, p))
	}

	first, _ := newDispatcher(t, model.KindCSP, cspGraph())
	for _, p := range trace[:split] {
		require.NoError(t, send(t, first, p))
	}

	// --- Act ---
	raw, err := json.Marshal(first.Model().Snapshot())
	require.NoError(t, err)
	var snap model.Snapshot
	require.NoError(t, json.Unmarshal(raw, &snap))

	restored, err := model.Restore(snap, modelOptions(model.KindCSP))
	require.NoError(t, err)
	restored.Commit()
	resumed := New(registry.New(&csp.Module{}, &search.Module{}), restored)
	for _, p := range trace[split:] {
		require.NoError(t, send(t, resumed, p))
	}

	// --- Assert ---
	assert.Equal(t, continuous.Model().Snapshot(), resumed.Model().Snapshot())
}

func TestError_Message(t *testing.T) {
	t.Parallel()

	err := &Error{Kind: NotFound, Action: event.ActionHighlightNodes, Err: errors.New("node 'ghost' not found")}
	assert.Equal(t, "event 'highlightNodes' rejected (not_found): node 'ghost' not found", err.Error())

	err = &Error{Kind: MalformedPayload, Err: errors.New("payload is null")}
	assert.Equal(t, "event rejected (malformed_payload): payload is null", err.Error())
}
