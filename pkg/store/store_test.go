package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func record(id, batch string, n, k int, solved bool, d time.Duration, at time.Time) Record {
	return Record{
		ID: id, BatchID: batch, Kind: KindBench, Strategy: "random",
		N: n, K: k, Seed: 1 << 63, Solved: solved, Attempts: 2, Steps: 1000, Solutions: -1,
		Duration: d, CreatedAt: at,
	}
}

func TestSQLiteSaveList(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	t0 := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, s.Save(ctx,
		record("a", "b1", 20, 49, true, time.Second, t0),
		record("b", "b1", 20, 49, false, 2*time.Second, t0.Add(time.Minute)),
		record("c", "b2", 35, 85, true, time.Second, t0.Add(2*time.Minute)),
	))

	all, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, uint64(1<<63), all[0].Seed)
	assert.Equal(t, time.Second, all[0].Duration)
	assert.True(t, all[0].CreatedAt.Equal(t0))
	assert.True(t, all[0].Solved)
	assert.False(t, all[1].Solved)

	batch, err := s.List(ctx, Filter{BatchID: "b1"})
	require.NoError(t, err)
	assert.Len(t, batch, 2)

	byN, err := s.List(ctx, Filter{N: 35})
	require.NoError(t, err)
	require.Len(t, byN, 1)
	assert.Equal(t, "c", byN[0].ID)

	limited, err := s.List(ctx, Filter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLiteSaveReplaces(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	now := time.Now()

	require.NoError(t, s.Save(ctx, record("a", "b", 20, 49, false, time.Second, now)))
	require.NoError(t, s.Save(ctx, record("a", "b", 20, 49, true, time.Second, now)))

	all, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].Solved)
}

func TestSummarize(t *testing.T) {
	now := time.Now()
	recs := []Record{
		record("1", "b", 20, 49, true, time.Second, now),
		record("2", "b", 20, 49, true, 3*time.Second, now),
		record("3", "b", 20, 49, false, 10*time.Second, now),
		record("4", "b", 10, 25, true, time.Second, now),
	}

	sums := Summarize(recs)
	require.Len(t, sums, 2)

	assert.Equal(t, 10, sums[0].N)
	assert.Equal(t, 20, sums[1].N)

	s := sums[1]
	assert.Equal(t, 3, s.Runs)
	assert.Equal(t, 2, s.Solved)
	assert.Equal(t, 2*time.Second, s.MeanDuration)
	assert.InDelta(t, 2.0/3.0, s.SuccessRate(), 1e-9)
	assert.InDelta(t, 2.0, s.MeanAttempts, 1e-9)

	assert.Equal(t, -1.0, s.MeanSolutions)

	counted := record("5", "b", 10, 25, true, time.Second, now)
	counted.Solutions = 6
	sums = Summarize(append(recs, counted))
	assert.Equal(t, 6.0, sums[0].MeanSolutions)

	assert.Empty(t, Summarize(nil))
	assert.Zero(t, Summary{}.SuccessRate())
}
