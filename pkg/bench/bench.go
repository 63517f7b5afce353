// Package bench measures how the solver performs on generated instances.
//
// [Runner.Run] generates a batch of instances of one size and solves each,
// in parallel. [Runner.Sweep] varies the constraint count to find where
// instances become hardest, the experiment behind the default constraint
// ratio. Results are returned and, when a store is configured, recorded.
package bench

import (
	"context"
	"errors"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	bterrors "github.com/matzehuels/betwixt/pkg/errors"
	"github.com/matzehuels/betwixt/pkg/generate"
	"github.com/matzehuels/betwixt/pkg/model"
	"github.com/matzehuels/betwixt/pkg/solver"
	"github.com/matzehuels/betwixt/pkg/store"
)

// Runner executes benchmarks.
type Runner struct {
	Solver   solver.Config
	Strategy generate.Strategy
	// Workers bounds concurrent solves; zero means GOMAXPROCS.
	Workers int
	// Store, if set, receives every record.
	Store  store.Store
	Logger *log.Logger
}

// NewRunner returns a runner with the given solver configuration.
func NewRunner(cfg solver.Config, strategy generate.Strategy, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Solver: cfg, Strategy: strategy, Logger: logger}
}

// Options selects the instances of a benchmark.
type Options struct {
	N    int
	K    int
	Runs int
	// Seed is the seed of the first run; run i uses Seed+i.
	Seed uint64
}

// Report is the outcome of a benchmark or sweep.
type Report struct {
	BatchID  string
	Records  []store.Record
	Summary  []store.Summary
	Duration time.Duration
}

// Run generates opts.Runs instances and solves each. A run that exhausts
// its attempts or is cut short by ctx is recorded as unsolved; any other
// failure aborts the benchmark.
func (r *Runner) Run(ctx context.Context, opts Options) (*Report, error) {
	if err := bterrors.ValidateCount("run", opts.Runs, 1); err != nil {
		return nil, err
	}
	if opts.Seed == 0 {
		opts.Seed = uint64(time.Now().UnixNano())
	}

	start := time.Now()
	batch := uuid.NewString()
	recs := make([]store.Record, opts.Runs)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())
	for i := range opts.Runs {
		seed := opts.Seed + uint64(i)
		g.Go(func() error {
			rec, err := r.one(gctx, batch, opts.N, opts.K, seed)
			if err != nil {
				return err
			}
			recs[i] = rec
			r.logger().Debug("Run finished", "run", i+1, "solved", rec.Solved, "energy", rec.Energy, "duration", rec.Duration)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return r.finish(ctx, batch, recs, start)
}

func (r *Runner) one(ctx context.Context, batch string, n, k int, seed uint64) (store.Record, error) {
	inst, err := r.instance(n, k, seed)
	if err != nil {
		return store.Record{}, err
	}

	cfg := r.Solver
	cfg.Seed = seed
	cfg.RandomStart = true
	s := &solver.Solver{Config: cfg, Logger: r.quiet()}
	res, err := s.Solve(ctx, inst, nil)
	if err != nil && res == nil {
		return store.Record{}, err
	}
	if err != nil && !bterrors.IsExhausted(err) && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return store.Record{}, err
	}

	return store.Record{
		ID:        res.RunID,
		BatchID:   batch,
		Kind:      store.KindBench,
		Strategy:  r.Strategy.String(),
		N:         n,
		K:         k,
		Seed:      seed,
		Solved:    res.Solved(),
		Energy:    res.Energy,
		Attempts:  res.Attempts,
		Steps:     res.Steps,
		Solutions: -1,
		Duration:  res.Duration,
		CreatedAt: time.Now(),
	}, nil
}

func (r *Runner) instance(n, k int, seed uint64) (*model.Instance, error) {
	g, err := generate.New(n, r.Strategy, rand.New(rand.NewPCG(seed, seed^0xdeadbeef)))
	if err != nil {
		return nil, err
	}
	return g.Instance(k)
}

func (r *Runner) finish(ctx context.Context, batch string, recs []store.Record, start time.Time) (*Report, error) {
	rep := &Report{
		BatchID:  batch,
		Records:  recs,
		Summary:  store.Summarize(recs),
		Duration: time.Since(start),
	}
	if r.Store != nil {
		if err := r.Store.Save(ctx, recs...); err != nil {
			return rep, err
		}
		r.logger().Debug("Results stored", "batch", batch, "records", len(recs))
	}
	return rep, nil
}

func (r *Runner) workers() int {
	if r.Workers > 0 {
		return r.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (r *Runner) logger() *log.Logger {
	if r.Logger == nil {
		return log.Default()
	}
	return r.Logger
}

// quiet returns a logger for individual solves that only passes warnings,
// so that parallel runs do not interleave attempt logs.
func (r *Runner) quiet() *log.Logger {
	l := r.logger().With()
	l.SetLevel(max(r.logger().GetLevel(), log.WarnLevel))
	return l
}
