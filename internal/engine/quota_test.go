package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepBudget_WithinLimit(t *testing.T) {
	b := newStepBudget(10)

	for i := 0; i < 10; i++ {
		assert.NoError(t, b.Check(), "step %d should be allowed", i+1)
	}
	assert.Equal(t, 10, b.current)
}

func TestStepBudget_ExceedsLimit(t *testing.T) {
	b := newStepBudget(3)

	for i := 0; i < 3; i++ {
		require.NoError(t, b.Check())
	}

	err := b.Check()
	require.Error(t, err)
	assert.True(t, IsStepsExceededError(err))

	se := err.(*StepsExceededError)
	assert.Equal(t, 4, se.Steps)
	assert.Equal(t, 3, se.Limit)
	assert.Equal(t, "search exceeded max steps: 4 steps > 3 limit", se.Error())
}

func TestStepBudget_Unlimited(t *testing.T) {
	for _, limit := range []int{0, -1} {
		b := newStepBudget(limit)
		for i := 0; i < 10000; i++ {
			require.NoError(t, b.Check())
		}
	}
}

func TestIsStepsExceededError(t *testing.T) {
	err := &StepsExceededError{Steps: 5, Limit: 4}

	assert.True(t, IsStepsExceededError(err))
	assert.True(t, IsStepsExceededError(fmt.Errorf("match: %w", err)))
	assert.False(t, IsStepsExceededError(fmt.Errorf("other")))
	assert.False(t, IsStepsExceededError(nil))
}
