// Package engine implements temporal motif matching over event graphs.
//
// Match and Walk enumerate every embedding of a motif into a graph such that
// motif vertices map injectively onto graph vertices, every motif edge maps
// onto a graph edge with the same orientation, the graph edges appear in
// motif-edge order, and the timestamps of the matched edges span at most
// delta.
//
// ALGORITHM:
//
// The search is a depth-first, greedy-earliest-time backtracking loop over
// two cursors: eG, the next graph edge to examine, and eM, the number of
// motif edges already confirmed.
//
//  1. findNextCandidate returns the first graph edge at or after eG, no later
//     than the window bound, whose endpoints agree with the current bindings.
//  2. On the last motif edge the candidate completes an embedding, which is
//     emitted without being pushed, so the cursor keeps going and finds
//     other completions of the same prefix.
//  3. Otherwise the candidate's endpoints are bound, the edge is pushed on
//     the match stack and eM advances. The first push sets the window bound
//     to timestamp(first edge) + delta.
//  4. When the cursor runs off the graph or past the window bound, the top
//     of the stack is popped, bindings no longer referenced by any matched
//     edge are released, and scanning resumes just past the popped edge.
//
// Bindings are reference counted per graph vertex: a vertex stays bound to
// its motif vertex while at least one matched edge touches it.
//
// CONCURRENCY:
//
// All search state (mapping arrays, reference counts, stack) is allocated
// per call. Graphs are read-only, so concurrent searches over the same graph
// with different motifs need no locking. A single search is strictly
// sequential and checks its context at the top of every iteration.
//
// MOTIF ORDER:
//
// The motif's own edge order drives the search. Callers supply edges in a
// traversable order: each edge after the first should share a vertex with
// an earlier one. ValidateMotif checks this and WithStrictMotif enforces it.
// Without it, an edge with no bound endpoint is matched against any graph
// edge inside the window, after the cursor.
package engine
