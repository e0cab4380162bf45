package testutil

import (
	"fmt"
	"strings"
)

// AustraliaGraph is the map-colouring CSP over mainland Australia.
const AustraliaGraph = `{
  "nodes": [
    {"id": "WA",  "domain": ["r", "g", "b"]},
    {"id": "NT",  "domain": ["r", "g", "b"]},
    {"id": "SA",  "domain": ["r", "g", "b"]},
    {"id": "QLD", "domain": ["r", "g", "b"]},
    {"id": "NSW", "domain": ["r", "g", "b"]},
    {"id": "V",   "domain": ["r", "g", "b"]}
  ],
  "edges": [
    {"source": "WA", "target": "NT"},
    {"source": "WA", "target": "SA"},
    {"source": "NT", "target": "SA"},
    {"source": "NT", "target": "QLD"},
    {"source": "SA", "target": "QLD"},
    {"source": "SA", "target": "NSW"},
    {"source": "SA", "target": "V"},
    {"source": "QLD", "target": "NSW"},
    {"source": "NSW", "target": "V"}
  ]
}`

// RoadsGraph is a small weighted search problem, written as YAML.
const RoadsGraph = `nodes:
  - id: S
  - id: A
  - id: B
  - id: G
edges:
  - {source: S, target: A}
  - {source: S, target: B}
  - {source: A, target: B}
  - {source: A, target: G}
  - {source: B, target: G}
`

// SessionHCL renders a session block for kind over graph with a file source
// reading events.
func SessionHCL(kind, graph, events string) string {
	return fmt.Sprintf(`
session {
  kind       = %q
  graph      = %q
  iterations = 25
}

source "file" {
  path = %q
}
`, kind, graph, events)
}

// JSONL joins payloads one per line.
func JSONL(payloads ...string) string {
	return strings.Join(payloads, "\n") + "\n"
}
