package testutil

import (
	"fmt"
	"sync/atomic"
)

// FixedRunIDGenerator returns the same run id every time.
//
// This enables deterministic store contents and golden comparison: the same
// scenario recorded with the same generator produces identical rows.
//
// Thread-safety: FixedRunIDGenerator is stateless and safe for concurrent use.
type FixedRunIDGenerator struct {
	id string
}

// NewFixedRunIDGenerator creates a generator returning id.
// If id is empty, Generate() returns "test-run-default".
func NewFixedRunIDGenerator(id string) *FixedRunIDGenerator {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunIDGenerator{id: id}
}

// Generate returns the fixed run id.
//
// Implements store.RunIDGenerator.
func (g *FixedRunIDGenerator) Generate() string {
	return g.id
}

// SeqRunIDGenerator returns prefix-1, prefix-2, ... in call order, for
// tests that record several runs.
//
// Thread-safety: safe for concurrent use.
type SeqRunIDGenerator struct {
	prefix string
	n      atomic.Int64
}

// NewSeqRunIDGenerator creates a generator numbering ids after prefix.
func NewSeqRunIDGenerator(prefix string) *SeqRunIDGenerator {
	return &SeqRunIDGenerator{prefix: prefix}
}

// Generate returns the next id.
//
// Implements store.RunIDGenerator.
func (g *SeqRunIDGenerator) Generate() string {
	return fmt.Sprintf("%s-%d", g.prefix, g.n.Add(1))
}
