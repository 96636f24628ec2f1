package engine

import (
	"errors"
	"fmt"
)

// stepBudget counts main-loop iterations of one search and enforces an
// upper bound.
//
// Wide windows over dense graphs make the search combinatorial. The budget
// turns a runaway search into an error instead of an unbounded wait; a limit
// of 0 disables it.
type stepBudget struct {
	limit   int
	current int
}

func newStepBudget(limit int) *stepBudget {
	return &stepBudget{limit: limit}
}

// Check increments the step counter and validates it against the limit.
func (b *stepBudget) Check() error {
	b.current++
	if b.limit > 0 && b.current > b.limit {
		return &StepsExceededError{Steps: b.current, Limit: b.limit}
	}
	return nil
}

// StepsExceededError is returned when a search exceeds its step budget.
// Embeddings already delivered to a Walk callback remain valid.
type StepsExceededError struct {
	Steps int // steps taken, including the rejected one
	Limit int // configured maximum
}

// Error implements the error interface.
func (e *StepsExceededError) Error() string {
	return fmt.Sprintf("search exceeded max steps: %d steps > %d limit", e.Steps, e.Limit)
}

// IsStepsExceededError returns true if the error is a StepsExceededError.
// Uses errors.As to handle wrapped errors.
func IsStepsExceededError(err error) bool {
	var se *StepsExceededError
	return errors.As(err, &se)
}
