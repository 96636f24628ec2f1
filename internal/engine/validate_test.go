package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tmotif/internal/graph"
	"github.com/roach88/tmotif/internal/testutil"
)

func TestValidateMotif(t *testing.T) {
	tests := []struct {
		name     string
		pairs    []string
		wantEdge int // -2 means valid
	}{
		{"single edge", []string{"A->B"}, -2},
		{"chain", []string{"A->B", "B->C", "C->D"}, -2},
		{"shared head", []string{"A->B", "C->B"}, -2},
		{"self-loop then edge", []string{"A->A", "A->B"}, -2},
		{"detached second edge", []string{"A->B", "C->D"}, 1},
		{"detached later edge", []string{"A->B", "B->C", "X->Y", "C->X"}, 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateMotif(testutil.Motif(t, tc.pairs...))
			if tc.wantEdge == -2 {
				assert.NoError(t, err)
				return
			}
			var me *InvalidMotifError
			require.ErrorAs(t, err, &me)
			assert.Equal(t, tc.wantEdge, me.Edge)
		})
	}
}

func TestValidateMotif_Empty(t *testing.T) {
	assert.ErrorIs(t, ValidateMotif(nil), ErrNilGraph)

	err := ValidateMotif(graph.MustBuild(nil))
	var me *InvalidMotifError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, -1, me.Edge)
	assert.Equal(t, "invalid motif: motif has no edges", me.Error())
}
