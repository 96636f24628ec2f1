package harness

import "github.com/roach88/tmotif/internal/engine"

// MatchResult is one match as read back from the store.
type MatchResult struct {
	Ordinal  int               `json:"ordinal"`
	Edges    []string          `json:"edges"`
	Graph    string            `json:"graph"` // persisted text format
	Bindings map[string]string `json:"bindings"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expectations match.
	Pass bool `json:"pass"`

	// RunID is the id under which the search was recorded.
	RunID string `json:"run_id"`

	// Matches are the recorded matches in ordinal order.
	Matches []MatchResult `json:"matches"`

	// SearchError is the search failure, if any.
	SearchError string `json:"search_error,omitempty"`

	// Stats are the engine counters of the search.
	Stats engine.Stats `json:"stats"`

	// Errors contains expectation failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Matches: []MatchResult{},
		Errors:  []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// MatchEdges returns the edge names of each match.
func (r *Result) MatchEdges() [][]string {
	out := make([][]string, len(r.Matches))
	for i, m := range r.Matches {
		out[i] = m.Edges
	}
	return out
}
