package bench

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/betwixt/pkg/errors"
	"github.com/matzehuels/betwixt/pkg/generate"
	"github.com/matzehuels/betwixt/pkg/solver"
	"github.com/matzehuels/betwixt/pkg/store"
)

func testRunner(t *testing.T) *Runner {
	t.Helper()
	cfg := solver.DefaultConfig()
	cfg.Steps = 20000
	cfg.Updates = 0
	r := NewRunner(cfg, generate.Random, log.New(io.Discard))
	r.Workers = 2
	return r
}

func TestRun(t *testing.T) {
	r := testRunner(t)
	st, err := store.OpenSQLite(":memory:")
	require.NoError(t, err)
	defer st.Close()
	r.Store = st

	rep, err := r.Run(context.Background(), Options{N: 8, K: 12, Runs: 4, Seed: 1})
	require.NoError(t, err)
	require.Len(t, rep.Records, 4)
	assert.NotEmpty(t, rep.BatchID)

	for i, rec := range rep.Records {
		assert.Equal(t, uint64(1+i), rec.Seed)
		assert.Equal(t, store.KindBench, rec.Kind)
		assert.True(t, rec.Solved, "run %d", i)
		assert.Equal(t, -1, rec.Solutions)
	}
	require.Len(t, rep.Summary, 1)
	assert.Equal(t, 4, rep.Summary[0].Runs)
	assert.Equal(t, 1.0, rep.Summary[0].SuccessRate())

	saved, err := st.List(context.Background(), store.Filter{BatchID: rep.BatchID})
	require.NoError(t, err)
	assert.Len(t, saved, 4)
}

func TestRunRejectsBadOptions(t *testing.T) {
	r := testRunner(t)
	_, err := r.Run(context.Background(), Options{N: 8, K: 12, Runs: 0})
	assert.Error(t, err)

	_, err = r.Run(context.Background(), Options{N: 2, K: 1, Runs: 1, Seed: 1})
	assert.Error(t, err)
}

func TestSweepExhaustive(t *testing.T) {
	r := testRunner(t)
	rep, err := r.Sweep(context.Background(), SweepOptions{
		N: 6, KMin: 3, KMax: 8, Reps: 2, Seed: 5, Exhaustive: true,
	})
	require.NoError(t, err)
	require.Len(t, rep.Points, 6)
	assert.Len(t, rep.Records, 12)

	for _, p := range rep.Points {
		assert.Equal(t, 1.0, p.SuccessRate, "k=%d", p.K)
		assert.GreaterOrEqual(t, p.MeanSolutions, 1.0, "k=%d", p.K)
	}
	for _, rec := range rep.Records {
		assert.Equal(t, store.KindSweep, rec.Kind)
	}
	assert.GreaterOrEqual(t, rep.BestK, 3)
	assert.LessOrEqual(t, rep.BestK, 8)
	assert.InDelta(t, float64(rep.BestK)/6, rep.Ratio, 1e-9)
}

func TestSweepStopsAtCapacity(t *testing.T) {
	r := testRunner(t)
	rep, err := r.Sweep(context.Background(), SweepOptions{
		N: 4, KMin: 7, KMax: 10, Reps: 1, Seed: 3, Exhaustive: true,
	})
	require.NoError(t, err)
	require.Len(t, rep.Points, 2)
	assert.Equal(t, 7, rep.Points[0].K)
	assert.Equal(t, 8, rep.Points[1].K)
}

func TestSweepWithSolver(t *testing.T) {
	r := testRunner(t)
	rep, err := r.Sweep(context.Background(), SweepOptions{N: 8, KMin: 10, KMax: 14, KStep: 2, Reps: 2, Seed: 9})
	require.NoError(t, err)
	require.Len(t, rep.Points, 3)
	for _, p := range rep.Points {
		assert.Equal(t, -1.0, p.MeanSolutions)
	}
}

func TestSweepValidates(t *testing.T) {
	r := testRunner(t)
	_, err := r.Sweep(context.Background(), SweepOptions{N: 20, KMin: 1, KMax: 2, Reps: 1, Exhaustive: true})
	assert.Equal(t, errors.ErrCodeUnsupported, errors.GetCode(err))

	_, err = r.Sweep(context.Background(), SweepOptions{N: 6, KMin: 5, KMax: 2, Reps: 1})
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
}

func TestBestK(t *testing.T) {
	assert.Equal(t, 0, bestK(nil))

	points := []SweepPoint{
		{K: 10, MeanTime: 10, MeanSolutions: -1},
		{K: 20, MeanTime: 40, MeanSolutions: -1},
		{K: 30, MeanTime: 30, MeanSolutions: -1},
	}
	assert.Equal(t, 20, bestK(points))

	points[0].MeanSolutions, points[1].MeanSolutions, points[2].MeanSolutions = 50, 10, 2
	assert.Equal(t, 25, bestK(points))
}
