package solver

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/betwixt/pkg/anneal"
	"github.com/matzehuels/betwixt/pkg/errors"
	"github.com/matzehuels/betwixt/pkg/model"
	"github.com/matzehuels/betwixt/pkg/observability"
)

// Attempt summarises one annealing run inside a solve.
type Attempt struct {
	RunID       string
	Number      int
	StartEnergy int
	BestEnergy  int
	Steps       int
	Status      anneal.Status
	Reason      anneal.StopReason
	Duration    time.Duration
	// Best is the best ordering of this attempt; it seeds the next one.
	Best model.Ordering
}

// Result is the outcome of a solve. It is returned alongside
// ATTEMPTS_EXHAUSTED and cancellation errors with the best ordering found.
type Result struct {
	RunID    string
	Seed     uint64
	Ordering model.Ordering
	Energy   int
	Attempts int
	Steps    int

	// Input is the number of constraints before deduplication, Unique
	// the number after.
	Input  int
	Unique int

	Duration time.Duration
}

// Solved reports whether the result satisfies every constraint.
func (r *Result) Solved() bool { return r != nil && r.Energy == 0 }

// Duplicates returns the number of constraints dropped by deduplication.
func (r *Result) Duplicates() int { return r.Input - r.Unique }

// Solver runs simulated annealing with warm restarts until an ordering
// satisfies every constraint or the attempt budget is spent.
//
// A Solver is safe for concurrent use if its callbacks are; each Solve
// owns its own search state and random source.
type Solver struct {
	Config Config
	Logger *log.Logger

	// OnAttempt, if set, is called after every annealing run.
	OnAttempt func(Attempt)

	// OnProgress, if set, receives the annealer's periodic reports.
	OnProgress func(attempt int, p anneal.Progress)
}

// New returns a solver with the given configuration and the default logger.
func New(cfg Config) *Solver {
	return &Solver{Config: cfg, Logger: log.Default()}
}

// Solve searches for an ordering of inst that violates no constraint.
// The search starts from start when it is non-nil, otherwise from the
// identity or, with Config.RandomStart, a random permutation. Each further
// attempt starts from the previous attempt's best.
//
// The error is nil only when a satisfying ordering was found. When the
// attempt budget is spent the error is an [*errors.ExhaustedError]; when
// ctx ends first it wraps ctx.Err(). In both cases the returned Result
// holds the best ordering seen.
func (s *Solver) Solve(ctx context.Context, inst *model.Instance, start *model.Ordering) (*Result, error) {
	if err := s.Config.Validate(); err != nil {
		return nil, err
	}
	cfg, err := s.Config.normalized()
	if err != nil {
		return nil, err
	}
	if err := inst.Validate(); err != nil {
		return nil, err
	}

	n := inst.N()
	current := model.Identity(n)
	if start != nil {
		if start.Len() != n {
			return nil, errors.New(errors.ErrCodeInvalidOrdering, "start ordering has %d items, instance has %d", start.Len(), n)
		}
		if err := start.Validate(); err != nil {
			return nil, err
		}
		current = start.Clone()
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	logger := s.logger()
	set, dropped := inst.Set()
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
	if start == nil && cfg.RandomStart {
		current = model.Random(n, rng)
	}

	res := &Result{
		RunID:    uuid.NewString(),
		Seed:     seed,
		Ordering: current,
		Energy:   set.Energy(current),
		Input:    len(inst.Constraints),
		Unique:   set.Len(),
	}
	startTime := time.Now()
	logger.Debug("Constraints deduplicated", "before", res.Input, "after", res.Unique, "dropped", dropped)

	err = s.restart(ctx, cfg, set, rng, res)
	res.Duration = time.Since(startTime)
	observability.Solver().OnSolved(ctx, res.RunID, res.Attempts, res.Duration, err)
	return res, err
}

func (s *Solver) restart(ctx context.Context, cfg Config, set *model.Set, rng *rand.Rand, res *Result) error {
	logger := s.logger()

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if res.Energy == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("solve interrupted after %d attempts: %w", res.Attempts, err)
		}

		st := newState(set, res.Ordering, cfg.Moves, cfg.Window)
		if attempt == 1 && logger.GetLevel() <= log.DebugLevel {
			for _, c := range set.Violated(res.Ordering) {
				logger.Debug("Initially violated", "constraint", c)
			}
		}
		logger.Debug("Attempt started", "attempt", attempt, "energy", st.Energy())
		observability.Solver().OnAttemptStart(ctx, res.RunID, attempt, st.Energy())

		opts := anneal.Options{Schedule: cfg.Schedule}
		if s.OnProgress != nil {
			opts.Progress = func(p anneal.Progress) { s.OnProgress(attempt, p) }
		}
		if cfg.Verify {
			opts.Check = st.verify
		}

		startEnergy := st.Energy()
		out, err := anneal.Run(ctx, st, rng, opts)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "attempt %d", attempt)
		}

		res.Attempts = attempt
		res.Steps += out.Steps
		if out.BestEnergy <= res.Energy {
			res.Ordering, res.Energy = out.Best, out.BestEnergy
		}

		logger.Info("Attempt finished", "attempt", attempt, "best", out.BestEnergy, "steps", out.Steps, "status", out.Status)
		observability.Solver().OnAttemptComplete(ctx, res.RunID, attempt, out.BestEnergy, out.Steps, out.Elapsed)
		if s.OnAttempt != nil {
			s.OnAttempt(Attempt{
				RunID:       res.RunID,
				Number:      attempt,
				StartEnergy: startEnergy,
				BestEnergy:  out.BestEnergy,
				Steps:       out.Steps,
				Status:      out.Status,
				Reason:      out.Reason,
				Duration:    out.Elapsed,
				Best:        res.Ordering,
			})
		}

		if out.Status == anneal.Found {
			return nil
		}
		if out.Reason == anneal.StopCanceled {
			return fmt.Errorf("solve interrupted after %d attempts: %w", res.Attempts, context.Cause(ctx))
		}
	}

	if res.Energy == 0 {
		return nil
	}
	return &errors.ExhaustedError{Attempts: res.Attempts, BestEnergy: res.Energy}
}

func (s *Solver) logger() *log.Logger {
	if s.Logger == nil {
		return log.Default()
	}
	return s.Logger
}
