// Package compiler turns motif definitions into searchable motif graphs.
//
// Motifs are written in CUE, one or more per directory:
//
//	motif: exfil: {
//	    description: "logon, usb connect, file copy"
//	    delta:       36000000
//	    edges: [
//	        {tail: "user", head: "pc",   kind: "Logon"},
//	        {tail: "user", head: "pc",   kind: "Connect"},
//	        {tail: "pc",   head: "file", kind: "File Copy"},
//	    ]
//	}
//
// The same shape is accepted as YAML (see ParseYAML). Edge names default to
// "e<index>" and timestamps ("at") to the list index, so the declaration order
// is the search order unless explicit timestamps say otherwise.
//
// A compiled motif must be connected in its edge order: every edge after the
// first shares a vertex with an earlier one.
package compiler
