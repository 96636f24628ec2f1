// Package store provides SQLite-backed storage for motif search runs.
//
// A run is one search of a motif over a graph. Its embeddings are recorded
// as matches, each with its edges and vertex bindings:
//   - runs: motif, graph, delta, status, match count
//   - matches: one row per embedding, ordered by ordinal
//   - match_edges: the matched edges, in motif-edge order
//   - match_bindings: motif vertex -> graph vertex
//
// # Ordering and identity
//
// Runs are ordered by a logical seq and matches by ordinal, never by wall
// time. A match is identified within its run by the fingerprint of its
// ordered edge names (see Fingerprint), so recording the same embedding twice
// is a no-op.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
