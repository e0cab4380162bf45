// Package graph provides the in-memory graph/domain model that trace events
// mutate: nodes and edges with mutable style attributes, per-variable domains
// for constraint problems, and layout-owned positions.
//
// # Lifecycle
//
//  1. **Construction:** a Graph is built once from a serialized Description
//     (or with AddNode/AddEdge directly) at session start.
//  2. **Sealing:** Seal marks construction as complete. After that AddNode and
//     AddEdge are rejected; the problem graph only gets restyled and narrowed.
//  3. **Mutation:** the dispatcher's handlers call SetNodeStyle, SetEdgeStyle
//     and SetNodeDomain. The layout package calls SetNodePosition.
//  4. **Disposal:** the Graph is discarded when the session ends.
//
// A Graph that is never sealed may keep growing. The CSP split tree uses this:
// new nodes are appended with ids from NextID, which are guaranteed disjoint
// from every id already present.
//
// # Change Notification
//
// Every successful mutation reports a Change to the Observer set with
// Observe. The Graph does not buffer or batch; grouping changes per event is
// the job of the session model (see internal/model).
//
// # Errors
//
// Lookups and mutators return an error wrapping ErrNotFound when an id is
// unknown. Construction errors wrap ErrDuplicateID or ErrSealed.
//
// # Thread-Safety
//
// A Graph is not safe for concurrent use. Sessions mutate it from a single
// goroutine; readers on other goroutines go through the view binding's
// snapshot instead.
package graph
