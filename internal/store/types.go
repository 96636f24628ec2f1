package store

import "github.com/roach88/tmotif/internal/graph"

// RunStatus is the lifecycle state of a run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// RunSpec describes a search about to be recorded.
type RunSpec struct {
	Motif string // motif name
	Graph string // graph source, usually a file path
	Delta int64
}

// Run is a recorded search.
type Run struct {
	ID         string
	Seq        int64
	Motif      string
	Graph      string
	Delta      int64
	Status     RunStatus
	MatchCount int
	Error      string
}

// Match is one recorded embedding.
type Match struct {
	ID          string
	RunID       string
	Ordinal     int
	Fingerprint string
	FirstTS     int64
	LastTS      int64

	// Graph holds the matched edges in motif-edge order.
	Graph *graph.EventGraph

	// Bindings maps motif vertex names to graph vertex names.
	Bindings map[string]string
}
