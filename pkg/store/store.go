// Package store records benchmark and sweep results.
//
// [SQLiteStore] keeps results in a local database file; [MongoStore]
// writes them to a shared MongoDB deployment. Both implement [Store].
package store

import (
	"cmp"
	"context"
	"slices"
	"time"
)

// Record kinds.
const (
	KindBench = "bench"
	KindSweep = "sweep"
)

// Record is one solve measured by a benchmark or sweep.
type Record struct {
	ID        string        `bson:"_id" json:"id"`
	BatchID   string        `bson:"batch_id" json:"batch_id"`
	Kind      string        `bson:"kind" json:"kind"`
	Strategy  string        `bson:"strategy" json:"strategy"`
	N         int           `bson:"n" json:"n"`
	K         int           `bson:"k" json:"k"`
	Seed      uint64        `bson:"-" json:"seed"`
	Solved    bool          `bson:"solved" json:"solved"`
	Energy    int           `bson:"energy" json:"energy"`
	Attempts  int           `bson:"attempts" json:"attempts"`
	Steps     int           `bson:"steps" json:"steps"`
	// Solutions is the exact number of satisfying orderings when the
	// instance was counted exhaustively, or -1.
	Solutions int           `bson:"solutions" json:"solutions"`
	Duration  time.Duration `bson:"duration" json:"duration"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at"`
}

// Filter selects records. Zero fields match everything.
type Filter struct {
	BatchID string
	Kind    string
	N       int
	Limit   int
}

// Store persists records.
type Store interface {
	Save(ctx context.Context, recs ...Record) error
	List(ctx context.Context, f Filter) ([]Record, error)
	Close() error
}

// Summary aggregates the records of one (strategy, n, k) group.
type Summary struct {
	Strategy      string
	N, K          int
	Runs          int
	Solved        int
	MeanDuration  time.Duration
	MeanAttempts  float64
	// MeanSolutions averages Solutions over counted runs; -1 if none were.
	MeanSolutions float64
}

// SuccessRate returns the fraction of solved runs.
func (s Summary) SuccessRate() float64 {
	if s.Runs == 0 {
		return 0
	}
	return float64(s.Solved) / float64(s.Runs)
}

// Summarize groups records by strategy, n and k, sorted by those keys.
// Mean duration counts solved runs only, matching time-to-solution.
func Summarize(recs []Record) []Summary {
	type key struct {
		strategy string
		n, k     int
	}
	groups := make(map[key]*Summary)
	solvedTime := make(map[key]time.Duration)
	attempts := make(map[key]int)
	solutions := make(map[key]int)
	counted := make(map[key]int)
	for _, r := range recs {
		k := key{r.Strategy, r.N, r.K}
		s, ok := groups[k]
		if !ok {
			s = &Summary{Strategy: r.Strategy, N: r.N, K: r.K}
			groups[k] = s
		}
		s.Runs++
		attempts[k] += r.Attempts
		if r.Solutions >= 0 {
			solutions[k] += r.Solutions
			counted[k]++
		}
		if r.Solved {
			s.Solved++
			solvedTime[k] += r.Duration
		}
	}

	out := make([]Summary, 0, len(groups))
	for k, s := range groups {
		if s.Solved > 0 {
			s.MeanDuration = solvedTime[k] / time.Duration(s.Solved)
		}
		s.MeanAttempts = float64(attempts[k]) / float64(s.Runs)
		s.MeanSolutions = -1
		if c := counted[k]; c > 0 {
			s.MeanSolutions = float64(solutions[k]) / float64(c)
		}
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b Summary) int {
		return cmp.Or(
			cmp.Compare(a.Strategy, b.Strategy),
			cmp.Compare(a.N, b.N),
			cmp.Compare(a.K, b.K),
		)
	})
	return out
}
