package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/tracegraph/internal/graph"
	"github.com/vk/tracegraph/internal/testutil"
)

func TestCSPTrace_ShowPositionsMovesNodes(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	trace := testutil.JSONL(
		`{"action":"showPositions","positions":"{\"WA\": [10, 20], \"V\": [300, 400]}"}`,
		`{"action":"showPositions","positions":"not json"}`,
	)
	files := map[string]string{
		testutil.ConfigFile: testutil.SessionHCL("csp", "australia.json", "trace.jsonl"),
		"australia.json":    testutil.AustraliaGraph,
		"trace.jsonl":       trace,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, testutil.Options{})

	// --- Assert ---
	require.NoError(t, result.Err)
	testutil.AssertFinished(t, result, 1, 1)
	testutil.AssertRejected(t, result, "showPositions", "malformed_payload")

	g := result.App.Session().Model.Graph
	for id, want := range map[string]graph.Point{"WA": {X: 10, Y: 20}, "V": {X: 300, Y: 400}} {
		n, err := g.FindNode(id)
		require.NoError(t, err)
		p, ok := n.Position()
		require.True(t, ok)
		assert.Equal(t, want, p, "node %s", id)
	}
}
