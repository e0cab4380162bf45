package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Description is the serialized form of a graph: the initial session
// payload, and a complete dump of the current state.
type Description struct {
	Nodes []NodeDescription `json:"nodes" yaml:"nodes"`
	Edges []EdgeDescription `json:"edges" yaml:"edges"`
}

// NodeDescription is the serialized form of a Node. Start, Goal and
// Heuristic describe explicit search problems; constraint graphs leave them
// unset.
type NodeDescription struct {
	ID        string            `json:"id" yaml:"id"`
	Label     string            `json:"label,omitempty" yaml:"label,omitempty"`
	Domain    []string          `json:"domain" yaml:"domain"`
	Styles    map[string]string `json:"styles,omitempty" yaml:"styles,omitempty"`
	Position  *Point            `json:"position,omitempty" yaml:"position,omitempty"`
	Start     bool              `json:"start,omitempty" yaml:"start,omitempty"`
	Goal      bool              `json:"goal,omitempty" yaml:"goal,omitempty"`
	Heuristic *float64          `json:"heuristic,omitempty" yaml:"heuristic,omitempty"`
}

// EdgeDescription is the serialized form of an Edge. An empty ID is filled
// in as "source->target" when the graph is built.
type EdgeDescription struct {
	ID     string            `json:"id,omitempty" yaml:"id,omitempty"`
	Source string            `json:"source" yaml:"source"`
	Target string            `json:"target" yaml:"target"`
	Cost   *float64          `json:"cost,omitempty" yaml:"cost,omitempty"`
	Styles map[string]string `json:"styles,omitempty" yaml:"styles,omitempty"`
}

// Format selects the encoding of a Description.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode reads a Description in the given format.
func Decode(r io.Reader, format Format) (Description, error) {
	var d Description
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&d); err != nil {
			return Description{}, fmt.Errorf("failed to decode yaml graph description: %w", err)
		}
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&d); err != nil {
			return Description{}, fmt.Errorf("failed to decode json graph description: %w", err)
		}
	default:
		return Description{}, fmt.Errorf("unsupported graph description format %q", format)
	}
	return d, nil
}

// Encode writes a Description in the given format.
func Encode(w io.Writer, d Description, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(d)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	default:
		return fmt.Errorf("unsupported graph description format %q", format)
	}
}

// LoadFile reads a Description from a .json, .yaml or .yml file.
func LoadFile(path string) (Description, error) {
	f, err := os.Open(path)
	if err != nil {
		return Description{}, fmt.Errorf("failed to open graph description: %w", err)
	}
	defer f.Close()
	return Decode(f, FormatFromPath(path))
}

// FromDescription builds an unsealed graph from d. At most one node may be
// the start node.
func FromDescription(d Description) (*Graph, error) {
	g := New()
	start := ""
	for _, nd := range d.Nodes {
		if nd.Start {
			if start != "" {
				return nil, fmt.Errorf("nodes '%s' and '%s' are both marked as start", start, nd.ID)
			}
			start = nd.ID
		}
		err := g.AddNode(NodeSpec{
			ID:        nd.ID,
			Label:     nd.Label,
			Domain:    nd.Domain,
			Styles:    nd.Styles,
			Position:  nd.Position,
			Start:     nd.Start,
			Goal:      nd.Goal,
			Heuristic: nd.Heuristic,
		})
		if err != nil {
			return nil, err
		}
	}
	for _, ed := range d.Edges {
		id := ed.ID
		if id == "" {
			id = g.arcID(ed.Source, ed.Target)
		}
		if err := g.AddEdge(id, ed.Source, ed.Target, ed.Styles); err != nil {
			return nil, err
		}
		if ed.Cost != nil {
			if err := g.setEdgeCost(id, *ed.Cost); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

// arcID names an unnamed edge after its endpoints.
func (g *Graph) arcID(source, target string) string {
	base := source + "->" + target
	if !g.hasID(base) {
		return base
	}
	for i := 2; ; i++ {
		id := fmt.Sprintf("%s#%d", base, i)
		if !g.hasID(id) {
			return id
		}
	}
}

// Describe dumps the complete current state.
func (g *Graph) Describe() Description {
	d := Description{
		Nodes: make([]NodeDescription, 0, len(g.nodes)),
		Edges: make([]EdgeDescription, 0, len(g.edges)),
	}
	for _, n := range g.nodes {
		d.Nodes = append(d.Nodes, describeNode(n))
	}
	for _, e := range g.edges {
		d.Edges = append(d.Edges, describeEdge(e))
	}
	return d
}

// DescribeNode dumps one node.
func (g *Graph) DescribeNode(id string) (NodeDescription, error) {
	n, err := g.FindNode(id)
	if err != nil {
		return NodeDescription{}, err
	}
	return describeNode(n), nil
}

// DescribeEdge dumps one edge.
func (g *Graph) DescribeEdge(id string) (EdgeDescription, error) {
	e, err := g.FindEdge(id)
	if err != nil {
		return EdgeDescription{}, err
	}
	return describeEdge(e), nil
}

func describeNode(n *Node) NodeDescription {
	nd := NodeDescription{
		ID:     n.id,
		Label:  n.label,
		Domain: slices.Clone(n.domain),
		Start:  n.start,
		Goal:   n.goal,
	}
	if len(n.styles) > 0 {
		nd.Styles = maps.Clone(n.styles)
	}
	if n.position != nil {
		p := *n.position
		nd.Position = &p
	}
	if n.heuristic != nil {
		h := *n.heuristic
		nd.Heuristic = &h
	}
	return nd
}

func describeEdge(e *Edge) EdgeDescription {
	ed := EdgeDescription{
		ID:     e.id,
		Source: e.source,
		Target: e.target,
	}
	if len(e.styles) > 0 {
		ed.Styles = maps.Clone(e.styles)
	}
	if e.cost != nil {
		c := *e.cost
		ed.Cost = &c
	}
	return ed
}
