// Package oracle checks orderings against constraint sets and searches
// small instances exhaustively.
//
// The exhaustive routines enumerate all n! orderings and are only usable
// for n below roughly 10. They exist to validate the generator and the
// annealing solver on instances where the answer can be known for sure.
package oracle

import (
	"context"
	"time"

	"github.com/matzehuels/betwixt/pkg/errors"
	"github.com/matzehuels/betwixt/pkg/model"
	"github.com/matzehuels/betwixt/pkg/perm"
)

// MaxItems is the largest universe the exhaustive search accepts.
const MaxItems = 11

// checkEvery is how many permutations are visited between context checks.
const checkEvery = 4096

// IsSatisfied reports whether o violates none of the constraints in s.
func IsSatisfied(o model.Ordering, s *model.Set) bool {
	return s.SatisfiedBy(o)
}

// Report summarizes an exhaustive search.
type Report struct {
	// First is the first satisfying ordering in enumeration order, if any.
	First model.Ordering
	// Found reports whether any satisfying ordering exists.
	Found bool
	// Solutions counts satisfying orderings. It is only complete when the
	// search was run with [Count]; [Search] stops at the first solution.
	Solutions int
	// Visited counts the orderings examined.
	Visited int
	// TimeToFirst is the wall-clock time until the first solution was seen.
	TimeToFirst time.Duration
	// Elapsed is the total wall-clock time of the search.
	Elapsed time.Duration
}

// Search enumerates orderings of n items until one satisfies s.
func Search(ctx context.Context, n int, s *model.Set) (Report, error) {
	return run(ctx, n, s, true)
}

// Count enumerates all orderings of n items and counts those satisfying s.
func Count(ctx context.Context, n int, s *model.Set) (Report, error) {
	return run(ctx, n, s, false)
}

func run(ctx context.Context, n int, s *model.Set, stopAtFirst bool) (Report, error) {
	if n > MaxItems {
		return Report{}, errors.New(errors.ErrCodeUnsupported, "exhaustive search limited to %d items, got %d", MaxItems, n)
	}
	if err := s.Check(n); err != nil {
		return Report{}, err
	}

	start := time.Now()
	var rep Report
	var ctxErr error
	cs := s.All()

	perm.Each(n, func(p []int) bool {
		rep.Visited++
		if rep.Visited%checkEvery == 0 {
			if ctxErr = ctx.Err(); ctxErr != nil {
				return false
			}
		}
		// p is position -> item; violations need item -> position.
		pos := inverse(p)
		for _, c := range cs {
			if model.Between(pos[c.A], pos[c.B], pos[c.C]) {
				return true
			}
		}
		rep.Solutions++
		if !rep.Found {
			rep.Found = true
			rep.TimeToFirst = time.Since(start)
			rep.First = toOrdering(p)
		}
		return !stopAtFirst
	})

	rep.Elapsed = time.Since(start)
	return rep, ctxErr
}

func inverse(p []int) []int {
	inv := make([]int, len(p))
	for i, v := range p {
		inv[v] = i
	}
	return inv
}

func toOrdering(p []int) model.Ordering {
	seq := make([]model.Item, len(p))
	for i, v := range p {
		seq[i] = model.Item(v)
	}
	return model.MustOrdering(seq)
}
