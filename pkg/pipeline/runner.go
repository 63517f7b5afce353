package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/betwixt/pkg/cache"
	"github.com/matzehuels/betwixt/pkg/checkpoint"
	"github.com/matzehuels/betwixt/pkg/errors"
	"github.com/matzehuels/betwixt/pkg/generate"
	pkgio "github.com/matzehuels/betwixt/pkg/io"
	"github.com/matzehuels/betwixt/pkg/model"
	"github.com/matzehuels/betwixt/pkg/observability"
	"github.com/matzehuels/betwixt/pkg/solver"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute generates an instance and solves it.
// The returned Result is non-nil whenever the generate stage succeeded,
// so callers can report the best ordering of a failed solve.
func (r *Runner) Execute(ctx context.Context, gen GenerateOptions, sol SolveOptions) (*Result, error) {
	result := &Result{}

	genStart := time.Now()
	inst, genHit, err := r.GenerateWithCacheInfo(ctx, gen)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	result.Instance = inst
	result.Stats.GenerateTime = time.Since(genStart)
	result.CacheInfo.InstanceHit = genHit

	r.Logger.Info("Generated instance",
		"strategy", gen.Strategy,
		"n", inst.N(),
		"k", len(inst.Constraints),
		"duration", result.Stats.GenerateTime)

	solveStart := time.Now()
	res, solHit, err := r.SolveWithCacheInfo(ctx, inst, sol)
	result.Solve = res
	result.Stats.SolveTime = time.Since(solveStart)
	result.CacheInfo.SolutionHit = solHit
	if err != nil {
		return result, fmt.Errorf("solve: %w", err)
	}
	return result, nil
}

// GenerateWithCacheInfo draws an instance and reports whether it came
// from the cache.
func (r *Runner) GenerateWithCacheInfo(ctx context.Context, opts GenerateOptions) (*model.Instance, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnGenerateStart(ctx, opts.Strategy, opts.N, opts.K)
	start := time.Now()

	inst, hit, err := r.generate(ctx, opts)
	hooks.OnGenerateComplete(ctx, opts.Strategy, opts.N, opts.K, time.Since(start), err)
	return inst, hit, err
}

// Generate is a convenience wrapper that discards the cache hit info.
func (r *Runner) Generate(ctx context.Context, opts GenerateOptions) (*model.Instance, error) {
	inst, _, err := r.GenerateWithCacheInfo(ctx, opts)
	return inst, err
}

func (r *Runner) generate(ctx context.Context, opts GenerateOptions) (*model.Instance, bool, error) {
	// Clock-seeded instances are never reproduced, so they are not cached.
	cacheable := opts.Seed != 0
	key := r.Keyer.InstanceKey(opts.KeyOpts())

	if cacheable && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			inst, err := pkgio.ReadJSON(bytes.NewReader(data))
			if err == nil {
				observability.Cache().OnCacheHit(ctx, key)
				return inst, true, nil
			}
			// Unreadable entry, regenerate
		}
		observability.Cache().OnCacheMiss(ctx, key)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	g, err := generate.New(opts.N, opts.strategy, rand.New(rand.NewPCG(seed, seed^0xdeadbeef)))
	if err != nil {
		return nil, false, err
	}
	g.MaxRetries = opts.MaxRetries
	inst, err := g.Instance(opts.K)
	if err != nil {
		return nil, false, err
	}
	opts.Logger.Debug("Drew constraints", "strategy", opts.Strategy, "k", opts.K, "seed", seed)

	if cacheable {
		var buf bytes.Buffer
		if err := pkgio.WriteJSON(inst, &buf); err == nil {
			if err := r.Cache.Set(ctx, key, buf.Bytes(), cache.TTLInstance); err == nil {
				observability.Cache().OnCacheSet(ctx, key, buf.Len())
			}
		}
	}
	return inst, false, nil
}

// SolveWithCacheInfo solves inst and reports whether the ordering came
// from the cache. On failure the returned result still carries the best
// ordering found, as with [solver.Solver.Solve].
func (r *Runner) SolveWithCacheInfo(ctx context.Context, inst *model.Instance, opts SolveOptions) (*solver.Result, bool, error) {
	if err := opts.Validate(); err != nil {
		return nil, false, err
	}
	if err := inst.Validate(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	n, k := inst.N(), len(inst.Constraints)
	hooks.OnSolveStart(ctx, n, k)
	start := time.Now()

	res, hit, err := r.solve(ctx, inst, opts)
	hooks.OnSolveComplete(ctx, n, k, time.Since(start), err)
	return res, hit, err
}

// Solve is a convenience wrapper that discards the cache hit info.
func (r *Runner) Solve(ctx context.Context, inst *model.Instance, opts SolveOptions) (*solver.Result, error) {
	res, _, err := r.SolveWithCacheInfo(ctx, inst, opts)
	return res, err
}

func (r *Runner) solve(ctx context.Context, inst *model.Instance, opts SolveOptions) (*solver.Result, bool, error) {
	logger := r.logger(opts.Logger)
	set, _ := inst.Set()
	n := inst.N()
	fp := set.Fingerprint(n)
	key := r.Keyer.SolutionKey(fp, n)

	if !opts.Refresh {
		if res, ok := r.cachedSolution(ctx, key, inst, set, fp); ok {
			observability.Cache().OnCacheHit(ctx, key)
			logger.Info("Solution found in cache", "fingerprint", fmt.Sprintf("%016x", fp))
			return res, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, key)
	}

	s := &solver.Solver{
		Config:     opts.Config,
		Logger:     logger,
		OnAttempt:  opts.OnAttempt,
		OnProgress: opts.OnProgress,
	}

	startOrd := opts.Start
	if opts.Checkpoint != "" {
		if startOrd == nil {
			ord, err := resume(opts.Checkpoint, fp, n)
			if err != nil {
				return nil, false, err
			}
			if ord != nil {
				logger.Info("Resuming from checkpoint", "path", opts.Checkpoint, "energy", set.Energy(*ord))
				startOrd = ord
			}
		}
		s.OnAttempt = r.checkpointer(opts.Checkpoint, fp, set, logger, opts.OnAttempt)
	}

	var (
		res *solver.Result
		err error
	)
	if opts.Workers > 1 {
		res, err = s.SolveParallel(ctx, inst, opts.Workers)
	} else {
		res, err = s.Solve(ctx, inst, startOrd)
	}
	if err != nil {
		return res, false, err
	}

	cp := checkpoint.New(fp, res.RunID, res.Attempts, res.Energy, res.Ordering)
	if data, err := checkpoint.Marshal(cp); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLSolution); err != nil {
			logger.Warn("Failed to cache solution", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, key, len(data))
		}
	}
	return res, false, nil
}

// cachedSolution loads a cached ordering and rechecks it against the
// constraints, dropping entries that no longer satisfy them.
func (r *Runner) cachedSolution(ctx context.Context, key string, inst *model.Instance, set *model.Set, fp uint64) (*solver.Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		return nil, false
	}
	cp, err := checkpoint.Unmarshal(data)
	if err == nil {
		err = cp.Matches(fp, inst.N())
	}
	var ord model.Ordering
	if err == nil {
		ord, err = cp.Ordering()
	}
	if err != nil || !set.SatisfiedBy(ord) {
		_ = r.Cache.Delete(ctx, key)
		return nil, false
	}
	return &solver.Result{
		RunID:    cp.RunID,
		Ordering: ord,
		Attempts: cp.Attempt,
		Input:    len(inst.Constraints),
		Unique:   set.Len(),
	}, true
}

// checkpointer wraps next so that the best ordering is saved after every
// attempt. Save failures are logged and do not stop the search.
func (r *Runner) checkpointer(path string, fp uint64, set *model.Set, logger *log.Logger, next func(solver.Attempt)) func(solver.Attempt) {
	return func(a solver.Attempt) {
		cp := checkpoint.New(fp, a.RunID, a.Number, set.Energy(a.Best), a.Best)
		if err := checkpoint.Save(path, cp); err != nil {
			logger.Warn("Failed to save checkpoint", "path", path, "error", err)
		} else {
			logger.Debug("Checkpoint saved", "path", path, "attempt", a.Number, "energy", cp.Energy)
		}
		if next != nil {
			next(a)
		}
	}
}

// resume loads the checkpoint at path. A missing file is not an error.
func resume(path string, fp uint64, n int) (*model.Ordering, error) {
	cp, err := checkpoint.Load(path)
	if errors.Is(err, errors.ErrCodeNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := cp.Matches(fp, n); err != nil {
		return nil, err
	}
	ord, err := cp.Ordering()
	if err != nil {
		return nil, err
	}
	return &ord, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) logger(override *log.Logger) *log.Logger {
	if override != nil {
		return override
	}
	return r.Logger
}
