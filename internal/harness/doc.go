// Package harness runs motif search scenarios end to end.
//
// A scenario is a YAML file holding a graph in the persisted text format, a
// motif as an edge list, a time window and the expected matches:
//
//	name: window-excludes-late-edge
//	description: the third edge falls outside the window
//	delta: 10
//	graph: |
//	  e1,0,X,Y,
//	  e2,1,Y,Z,
//	  e3,20,Y,Z,
//	motif:
//	  - {tail: A, head: B}
//	  - {tail: B, head: C}
//	expect:
//	  count: 1
//	  matches:
//	    - [e1, e2]
//
// Run compiles the motif, searches the graph, records every embedding in a
// fresh in-memory store and reads the matches back before checking them, so
// a passing scenario exercises the engine and the store together. Run ids
// are fixed, which keeps snapshots deterministic.
package harness
