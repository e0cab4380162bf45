package graph

// ChangeKind identifies what part of the graph a Change touched.
type ChangeKind int

const (
	// NodeAdded is reported when a node is appended to the graph.
	NodeAdded ChangeKind = iota
	// EdgeAdded is reported when an edge is appended to the graph.
	EdgeAdded
	// NodeStyled is reported when a node style attribute is written.
	NodeStyled
	// EdgeStyled is reported when an edge style attribute is written.
	EdgeStyled
	// NodeDomainSet is reported when a node's domain is replaced.
	NodeDomainSet
	// NodeMoved is reported when a node receives a position.
	NodeMoved
)

func (k ChangeKind) String() string {
	switch k {
	case NodeAdded:
		return "node_added"
	case EdgeAdded:
		return "edge_added"
	case NodeStyled:
		return "node_styled"
	case EdgeStyled:
		return "edge_styled"
	case NodeDomainSet:
		return "node_domain_set"
	case NodeMoved:
		return "node_moved"
	default:
		return "unknown"
	}
}

// IsNode reports whether the change refers to a node id.
func (k ChangeKind) IsNode() bool {
	return k != EdgeAdded && k != EdgeStyled
}

// Change describes a single successful mutation.
type Change struct {
	Kind ChangeKind
	ID   string
}

// Observer receives a Change after every successful mutation.
type Observer interface {
	GraphChanged(g *Graph, c Change)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(g *Graph, c Change)

// GraphChanged calls f(g, c).
func (f ObserverFunc) GraphChanged(g *Graph, c Change) {
	f(g, c)
}
