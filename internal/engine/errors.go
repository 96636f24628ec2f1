package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNilGraph is returned when the graph or motif is nil.
	ErrNilGraph = errors.New("engine: graph is nil")

	// ErrNegativeDelta is returned when the time window is negative.
	ErrNegativeDelta = errors.New("engine: delta must be non-negative")

	// ErrStop may be returned by a Walk callback to end the search early.
	// Walk then returns nil.
	ErrStop = errors.New("engine: stop")
)

// InvalidMotifError reports a motif the engine cannot search for.
//
// Edge is the offending motif edge index, or -1 when the motif as a whole
// is invalid (e.g. it has no edges).
type InvalidMotifError struct {
	Edge   int
	Reason string
}

// Error implements the error interface.
func (e *InvalidMotifError) Error() string {
	if e.Edge >= 0 {
		return fmt.Sprintf("invalid motif: edge %d: %s", e.Edge, e.Reason)
	}
	return fmt.Sprintf("invalid motif: %s", e.Reason)
}

// IsInvalidMotifError returns true if the error is an InvalidMotifError.
// Uses errors.As to handle wrapped errors.
func IsInvalidMotifError(err error) bool {
	var me *InvalidMotifError
	return errors.As(err, &me)
}
