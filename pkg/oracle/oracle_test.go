package oracle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/betwixt/pkg/errors"
	"github.com/matzehuels/betwixt/pkg/model"
)

func TestIsSatisfied(t *testing.T) {
	set, _ := model.Dedup([]model.Constraint{{A: 0, B: 1, C: 2}})
	assert.False(t, IsSatisfied(model.MustOrdering([]model.Item{0, 2, 1}), set))
	assert.True(t, IsSatisfied(model.Identity(3), set))
}

func TestSearchFindsSatisfyingOrdering(t *testing.T) {
	set, _ := model.Dedup([]model.Constraint{{A: 0, B: 2, C: 1}, {A: 1, B: 3, C: 2}})

	rep, err := Search(context.Background(), 4, set)
	require.NoError(t, err)
	require.True(t, rep.Found)
	assert.Equal(t, 1, rep.Solutions)
	assert.True(t, IsSatisfied(rep.First, set))
	assert.LessOrEqual(t, rep.Visited, 24)
}

func TestCountSolutions(t *testing.T) {
	// A single constraint over three items rules out the two orderings that
	// put C in the middle.
	set, _ := model.Dedup([]model.Constraint{{A: 0, B: 1, C: 2}})

	rep, err := Count(context.Background(), 3, set)
	require.NoError(t, err)
	assert.Equal(t, 6, rep.Visited)
	assert.Equal(t, 4, rep.Solutions)
}

func TestCountUnsatisfiable(t *testing.T) {
	// Every item is forbidden from the middle: impossible for three items.
	set, _ := model.Dedup([]model.Constraint{
		{A: 0, B: 1, C: 2},
		{A: 0, B: 2, C: 1},
		{A: 1, B: 2, C: 0},
	})

	rep, err := Count(context.Background(), 3, set)
	require.NoError(t, err)
	assert.False(t, rep.Found)
	assert.Zero(t, rep.Solutions)
}

func TestSearchRejectsLargeUniverse(t *testing.T) {
	_, err := Search(context.Background(), MaxItems+1, model.NewSet(0))
	assert.True(t, errors.Is(err, errors.ErrCodeUnsupported))
}

func TestSearchHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Unsatisfiable over 8 items forces a long enumeration.
	set, _ := model.Dedup([]model.Constraint{
		{A: 0, B: 1, C: 2},
		{A: 0, B: 2, C: 1},
		{A: 1, B: 2, C: 0},
	})
	_, err := Search(ctx, 8, set)
	assert.ErrorIs(t, err, context.Canceled)
}
