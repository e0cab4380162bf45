package graph

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromDescription_GeneratesArcIDs(t *testing.T) {
	t.Parallel()

	d := Description{
		Nodes: []NodeDescription{{ID: "a"}, {ID: "b"}},
		Edges: []EdgeDescription{
			{Source: "a", Target: "b"},
			{Source: "a", Target: "b"},
			{ID: "named", Source: "b", Target: "a"},
		},
	}

	g, err := FromDescription(d)
	require.NoError(t, err)
	assert.Equal(t, []string{"a->b", "a->b#2", "named"}, g.EdgeIDs())
}

func TestFromDescription_RejectsDanglingEdge(t *testing.T) {
	t.Parallel()

	d := Description{
		Nodes: []NodeDescription{{ID: "a"}},
		Edges: []EdgeDescription{{ID: "e", Source: "a", Target: "b"}},
	}

	_, err := FromDescription(d)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDescribe_RoundTripsThroughJSON(t *testing.T) {
	t.Parallel()

	g := New()
	require.NoError(t, g.AddNode(NodeSpec{ID: "x", Label: "X", Domain: []string{}}))
	require.NoError(t, g.AddNode(NodeSpec{ID: "y", Domain: []string{"1", "2"}, Position: &Point{X: 1, Y: 2}}))
	require.NoError(t, g.AddNode(NodeSpec{ID: "z"}))
	require.NoError(t, g.AddEdge("xy", "x", "y", map[string]string{"stroke": "pink"}))
	require.NoError(t, g.SetNodeStyle("z", "stroke", "red"))

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, g.Describe(), FormatJSON))

	decoded, err := Decode(&buf, FormatJSON)
	require.NoError(t, err)
	rebuilt, err := FromDescription(decoded)
	require.NoError(t, err)

	assert.Equal(t, g.Describe(), rebuilt.Describe())
}

func TestLoadFile_YAML(t *testing.T) {
	t.Parallel()

	content := `
nodes:
  - id: A
    domain: ["1", "2", "3"]
  - id: B
    domain: ["1", "2"]
    position: {x: 10, y: 20}
edges:
  - source: A
    target: B
`
	path := filepath.Join(t.TempDir(), "csp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	d, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, d.Nodes, 2)
	assert.Equal(t, []string{"1", "2", "3"}, d.Nodes[0].Domain)
	require.NotNil(t, d.Nodes[1].Position)
	assert.Equal(t, Point{X: 10, Y: 20}, *d.Nodes[1].Position)
	assert.Equal(t, "A", d.Edges[0].Source)
}

func TestDecode_InvalidJSON(t *testing.T) {
	t.Parallel()

	_, err := Decode(strings.NewReader("{nodes: "), FormatJSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode json")
}

func TestFormatFromPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, FormatYAML, FormatFromPath("g.yml"))
	assert.Equal(t, FormatYAML, FormatFromPath("g.YAML"))
	assert.Equal(t, FormatJSON, FormatFromPath("g.json"))
	assert.Equal(t, FormatJSON, FormatFromPath("g"))
}

const searchGraphYAML = `
nodes:
  - id: mail
    start: true
    heuristic: 26
  - id: ts
    heuristic: 23
  - id: o103
    goal: true
    heuristic: 0
edges:
  - source: mail
    target: ts
    cost: 6
  - source: ts
    target: o103
    cost: 8.5
  - source: mail
    target: o103
`

func TestSearchAttributes_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			d, err := Decode(strings.NewReader(searchGraphYAML), FormatYAML)
			require.NoError(t, err)
			g, err := FromDescription(d)
			require.NoError(t, err)

			// --- Act ---
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, g.Describe(), format))
			decoded, err := Decode(&buf, format)
			require.NoError(t, err)
			rebuilt, err := FromDescription(decoded)
			require.NoError(t, err)

			// --- Assert ---
			assert.Equal(t, g.Describe(), rebuilt.Describe())

			start, err := rebuilt.FindNode("mail")
			require.NoError(t, err)
			assert.True(t, start.IsStart())
			assert.False(t, start.IsGoal())
			h, ok := start.Heuristic()
			assert.True(t, ok)
			assert.Equal(t, 26.0, h)

			goal, err := rebuilt.FindNode("o103")
			require.NoError(t, err)
			assert.True(t, goal.IsGoal())
			h, ok = goal.Heuristic()
			assert.True(t, ok)
			assert.Zero(t, h)

			costed, err := rebuilt.FindEdge("ts->o103")
			require.NoError(t, err)
			c, ok := costed.Cost()
			assert.True(t, ok)
			assert.Equal(t, 8.5, c)

			uncosted, err := rebuilt.FindEdge("mail->o103")
			require.NoError(t, err)
			_, ok = uncosted.Cost()
			assert.False(t, ok)
		})
	}
}

func TestDescribeEdge_CarriesCost(t *testing.T) {
	t.Parallel()

	d, err := Decode(strings.NewReader(searchGraphYAML), FormatYAML)
	require.NoError(t, err)
	g, err := FromDescription(d)
	require.NoError(t, err)

	ed, err := g.DescribeEdge("mail->ts")
	require.NoError(t, err)
	require.NotNil(t, ed.Cost)
	assert.Equal(t, 6.0, *ed.Cost)

	nd, err := g.DescribeNode("ts")
	require.NoError(t, err)
	require.NotNil(t, nd.Heuristic)
	assert.Equal(t, 23.0, *nd.Heuristic)
	assert.False(t, nd.Start)
}

func TestFromDescription_RejectsSecondStart(t *testing.T) {
	t.Parallel()

	d := Description{
		Nodes: []NodeDescription{{ID: "a", Start: true}, {ID: "b", Start: true}},
	}

	_, err := FromDescription(d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both marked as start")
}
