package solver

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/betwixt/pkg/errors"
	"github.com/matzehuels/betwixt/pkg/model"
)

// SolveParallel runs workers independent solves of inst and returns the
// best result once all of them have finished. Worker w gets its own state
// and the seed base+w, where base is the configured seed or a clock-derived
// one. The first worker to find a satisfying ordering cancels the others.
//
// Callbacks on s are invoked from several goroutines and must be safe for
// concurrent use.
func (s *Solver) SolveParallel(ctx context.Context, inst *model.Instance, workers int) (*Result, error) {
	if workers < 1 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "workers must be at least 1, got %d", workers)
	}
	if workers == 1 {
		return s.Solve(ctx, inst, nil)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	base := s.Config.Seed
	if base == 0 {
		base = uint64(time.Now().UnixNano())
	}

	results := make([]*Result, workers)
	errs := make([]error, workers)
	g, gctx := errgroup.WithContext(ctx)
	for w := range workers {
		worker := *s
		worker.Config.Seed = base + uint64(w)
		g.Go(func() error {
			res, err := worker.Solve(gctx, inst, nil)
			results[w], errs[w] = res, err
			if res.Solved() {
				cancel()
			}
			if err != nil && res == nil {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	best := -1
	for w, res := range results {
		if best < 0 || res.Energy < results[best].Energy {
			best = w
		}
	}
	if results[best].Solved() {
		return results[best], nil
	}
	return results[best], errs[best]
}
