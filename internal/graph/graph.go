package graph

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// Point is a 2D coordinate assigned by a layout.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Node is a single vertex. For constraint problems it is a variable and
// carries the ordered list of values still possible for it.
type Node struct {
	id        string
	label     string
	position  *Point
	styles    map[string]string
	domain    []string
	start     bool
	goal      bool
	heuristic *float64
}

// ID returns the node's immutable id.
func (n *Node) ID() string { return n.id }

// Label returns the display label, falling back to the id.
func (n *Node) Label() string {
	if n.label == "" {
		return n.id
	}
	return n.label
}

// Position returns the node's coordinate and whether layout has assigned one.
func (n *Node) Position() (Point, bool) {
	if n.position == nil {
		return Point{}, false
	}
	return *n.position, true
}

// Style returns a single style attribute.
func (n *Node) Style(key string) (string, bool) {
	v, ok := n.styles[key]
	return v, ok
}

// Styles returns a copy of all style attributes.
func (n *Node) Styles() map[string]string {
	return maps.Clone(n.styles)
}

// Domain returns a copy of the node's domain. It is nil for nodes that
// never had one.
func (n *Node) Domain() []string {
	return slices.Clone(n.domain)
}

// IsStart reports whether the node is the start of a search problem.
func (n *Node) IsStart() bool { return n.start }

// IsGoal reports whether the node is a goal of a search problem.
func (n *Node) IsGoal() bool { return n.goal }

// Heuristic returns the node's heuristic estimate, if one was given.
func (n *Node) Heuristic() (float64, bool) {
	if n.heuristic == nil {
		return 0, false
	}
	return *n.heuristic, true
}

// Edge connects two nodes. For constraint problems it is an arc.
type Edge struct {
	id     string
	source string
	target string
	cost   *float64
	styles map[string]string
}

// ID returns the edge's immutable id.
func (e *Edge) ID() string { return e.id }

// Source returns the id of the node the edge starts from.
func (e *Edge) Source() string { return e.source }

// Target returns the id of the node the edge points to.
func (e *Edge) Target() string { return e.target }

// Cost returns the arc cost of a search graph edge, if one was given.
func (e *Edge) Cost() (float64, bool) {
	if e.cost == nil {
		return 0, false
	}
	return *e.cost, true
}

// Style returns a single style attribute.
func (e *Edge) Style(key string) (string, bool) {
	v, ok := e.styles[key]
	return v, ok
}

// Styles returns a copy of all style attributes.
func (e *Edge) Styles() map[string]string {
	return maps.Clone(e.styles)
}

// NodeSpec holds the construction-time attributes of a node.
type NodeSpec struct {
	ID        string
	Label     string
	Domain    []string
	Styles    map[string]string
	Position  *Point
	Start     bool
	Goal      bool
	Heuristic *float64
}

// Graph holds nodes and edges in insertion order with id indexes.
type Graph struct {
	nodes     []*Node
	nodeIndex map[string]*Node
	edges     []*Edge
	edgeIndex map[string]*Edge
	outgoing  map[string][]*Edge
	incoming  map[string][]*Edge
	sealed    bool
	observer  Observer
	idSeq     int
}

// New creates an empty, unsealed graph.
func New() *Graph {
	return &Graph{
		nodeIndex: make(map[string]*Node),
		edgeIndex: make(map[string]*Edge),
		outgoing:  make(map[string][]*Edge),
		incoming:  make(map[string][]*Edge),
	}
}

// Observe sets the observer notified after every successful mutation.
// Passing nil disables notification.
func (g *Graph) Observe(o Observer) {
	g.observer = o
}

func (g *Graph) notify(kind ChangeKind, id string) {
	if g.observer != nil {
		g.observer.GraphChanged(g, Change{Kind: kind, ID: id})
	}
}

// Seal ends construction. Further AddNode/AddEdge calls fail with ErrSealed.
func (g *Graph) Seal() {
	g.sealed = true
}

// Sealed reports whether construction has ended.
func (g *Graph) Sealed() bool {
	return g.sealed
}

// AddNode appends a node.
func (g *Graph) AddNode(spec NodeSpec) error {
	if g.sealed {
		return fmt.Errorf("cannot add node '%s': %w", spec.ID, ErrSealed)
	}
	if spec.ID == "" {
		return fmt.Errorf("node id cannot be empty")
	}
	if g.hasID(spec.ID) {
		return fmt.Errorf("node '%s': %w", spec.ID, ErrDuplicateID)
	}

	n := &Node{
		id:     spec.ID,
		label:  spec.Label,
		styles: make(map[string]string, len(spec.Styles)),
		domain: slices.Clone(spec.Domain),
		start:  spec.Start,
		goal:   spec.Goal,
	}
	maps.Copy(n.styles, spec.Styles)
	if spec.Position != nil {
		p := *spec.Position
		n.position = &p
	}
	if spec.Heuristic != nil {
		h := *spec.Heuristic
		n.heuristic = &h
	}

	g.nodes = append(g.nodes, n)
	g.nodeIndex[n.id] = n
	g.notify(NodeAdded, n.id)
	return nil
}

// AddEdge appends an edge between two existing nodes.
func (g *Graph) AddEdge(id, source, target string, styles map[string]string) error {
	if g.sealed {
		return fmt.Errorf("cannot add edge '%s': %w", id, ErrSealed)
	}
	if id == "" {
		return fmt.Errorf("edge id cannot be empty")
	}
	if g.hasID(id) {
		return fmt.Errorf("edge '%s': %w", id, ErrDuplicateID)
	}
	if _, ok := g.nodeIndex[source]; !ok {
		return fmt.Errorf("edge '%s' source: %w", id, nodeNotFound(source))
	}
	if _, ok := g.nodeIndex[target]; !ok {
		return fmt.Errorf("edge '%s' target: %w", id, nodeNotFound(target))
	}

	e := &Edge{
		id:     id,
		source: source,
		target: target,
		styles: make(map[string]string, len(styles)),
	}
	maps.Copy(e.styles, styles)

	g.edges = append(g.edges, e)
	g.edgeIndex[id] = e
	g.outgoing[source] = append(g.outgoing[source], e)
	g.incoming[target] = append(g.incoming[target], e)
	g.notify(EdgeAdded, id)
	return nil
}

// setEdgeCost attaches an arc cost during construction.
func (g *Graph) setEdgeCost(id string, cost float64) error {
	if g.sealed {
		return fmt.Errorf("cannot set cost of edge '%s': %w", id, ErrSealed)
	}
	e, err := g.FindEdge(id)
	if err != nil {
		return err
	}
	e.cost = &cost
	return nil
}

// hasID reports whether id is taken by any node or edge. Node and edge ids
// share one namespace so generated ids stay unambiguous.
func (g *Graph) hasID(id string) bool {
	if _, ok := g.nodeIndex[id]; ok {
		return true
	}
	_, ok := g.edgeIndex[id]
	return ok
}

// NextID returns a fresh id of the form prefix-N that no node or edge uses.
func (g *Graph) NextID(prefix string) string {
	for {
		g.idSeq++
		id := prefix + "-" + strconv.Itoa(g.idSeq)
		if !g.hasID(id) {
			return id
		}
	}
}

// FindNode looks up a node by id.
func (g *Graph) FindNode(id string) (*Node, error) {
	n, ok := g.nodeIndex[id]
	if !ok {
		return nil, nodeNotFound(id)
	}
	return n, nil
}

// FindEdge looks up an edge by id.
func (g *Graph) FindEdge(id string) (*Edge, error) {
	e, ok := g.edgeIndex[id]
	if !ok {
		return nil, edgeNotFound(id)
	}
	return e, nil
}

// ResolveNodes looks up every id and fails on the first unknown one, so
// callers can validate a whole event before mutating anything.
func (g *Graph) ResolveNodes(ids []string) ([]*Node, error) {
	out := make([]*Node, 0, len(ids))
	for _, id := range ids {
		n, err := g.FindNode(id)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// ResolveEdges is the edge counterpart of ResolveNodes.
func (g *Graph) ResolveEdges(ids []string) ([]*Edge, error) {
	out := make([]*Edge, 0, len(ids))
	for _, id := range ids {
		e, err := g.FindEdge(id)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Nodes returns the nodes in insertion order. The slice is a copy; the
// nodes are shared and must only be mutated through the Graph.
func (g *Graph) Nodes() []*Node {
	return slices.Clone(g.nodes)
}

// Edges returns the edges in insertion order.
func (g *Graph) Edges() []*Edge {
	return slices.Clone(g.edges)
}

// EdgeIDs returns every edge id in insertion order.
func (g *Graph) EdgeIDs() []string {
	ids := make([]string, len(g.edges))
	for i, e := range g.edges {
		ids[i] = e.id
	}
	return ids
}

// Children returns the targets of all edges leaving id, in edge order.
func (g *Graph) Children(id string) []*Node {
	edges := g.outgoing[id]
	if len(edges) == 0 {
		return nil
	}
	out := make([]*Node, len(edges))
	for i, e := range edges {
		out[i] = g.nodeIndex[e.target]
	}
	return out
}

// Parent returns the source of the first edge entering id.
func (g *Graph) Parent(id string) (*Node, bool) {
	edges := g.incoming[id]
	if len(edges) == 0 {
		return nil, false
	}
	return g.nodeIndex[edges[0].source], true
}

// SetNodeStyle writes a single node style attribute. Writing the value an
// attribute already has is not reported as a change.
func (g *Graph) SetNodeStyle(id, key, value string) error {
	n, err := g.FindNode(id)
	if err != nil {
		return err
	}
	if old, ok := n.styles[key]; ok && old == value {
		return nil
	}
	n.styles[key] = value
	g.notify(NodeStyled, id)
	return nil
}

// SetEdgeStyle writes a single edge style attribute.
func (g *Graph) SetEdgeStyle(id, key, value string) error {
	e, err := g.FindEdge(id)
	if err != nil {
		return err
	}
	if old, ok := e.styles[key]; ok && old == value {
		return nil
	}
	e.styles[key] = value
	g.notify(EdgeStyled, id)
	return nil
}

// SetNodeDomain replaces a node's domain wholesale.
func (g *Graph) SetNodeDomain(id string, domain []string) error {
	n, err := g.FindNode(id)
	if err != nil {
		return err
	}
	n.domain = slices.Clone(domain)
	if n.domain == nil {
		n.domain = []string{}
	}
	g.notify(NodeDomainSet, id)
	return nil
}

// SetNodePosition assigns a node's coordinate. Only layout code calls this.
func (g *Graph) SetNodePosition(id string, p Point) error {
	n, err := g.FindNode(id)
	if err != nil {
		return err
	}
	n.position = &p
	g.notify(NodeMoved, id)
	return nil
}
