// Package graph defines the timestamped event graph used both as the searched
// graph and as the motif pattern.
//
// An EventGraph is an ordered list of directed edges sorted by timestamp,
// plus the vertex list derived from the edge endpoints. It is built once with
// Build (or Load/Decode from the text format) and is read-only afterwards, so
// one graph may be shared by any number of concurrent readers.
//
// # Invariants
//
//   - Edges are in non-decreasing timestamp order. Ties keep input order.
//   - The vertex set is exactly the set of edge endpoints, in first-appearance
//     order over the sorted edges. There are no isolated vertices.
//   - Edge names are unique within a graph.
//
// # Persistence
//
// The text format is one edge per line:
//
//	name,timestamp,tail,head,kind
//
// There is no header and no escaping. Fields must not contain commas or line
// breaks; producers (see package ingest) sanitise names before building.
package graph
