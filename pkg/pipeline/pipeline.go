// Package pipeline runs the generate → solve workflow shared by the CLI
// commands, with caching of generated instances and solved orderings.
//
// # Stages
//
//  1. Generate: draw a constraint set with a [generate.Strategy]. Instances
//     drawn with a fixed seed are cached under their generator parameters.
//  2. Solve: run the annealing solver. Satisfying orderings are cached under
//     the instance fingerprint, so a repeated solve of the same constraint
//     set returns at once.
//
// Either stage can run alone:
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, hit, err := runner.SolveWithCacheInfo(ctx, inst, pipeline.SolveOptions{
//	    Config: solver.DefaultConfig(),
//	})
//
// or both together with [Runner.Execute].
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/betwixt/pkg/anneal"
	"github.com/matzehuels/betwixt/pkg/cache"
	"github.com/matzehuels/betwixt/pkg/errors"
	"github.com/matzehuels/betwixt/pkg/generate"
	"github.com/matzehuels/betwixt/pkg/model"
	"github.com/matzehuels/betwixt/pkg/solver"
)

// GenerateOptions configures the generate stage.
type GenerateOptions struct {
	Strategy string `json:"strategy,omitempty"`
	N        int    `json:"n"`

	// K is the number of constraints. When zero it is derived from Ratio.
	K     int     `json:"k,omitempty"`
	Ratio float64 `json:"ratio,omitempty"`

	// Seed fixes the random source. Zero draws a seed from the clock and
	// disables instance caching, since the result is not reproducible.
	Seed       uint64 `json:"seed,omitempty"`
	MaxRetries int    `json:"max_retries,omitempty"`
	Refresh    bool   `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	strategy generate.Strategy
}

// ValidateAndSetDefaults resolves the strategy and constraint count.
// It is idempotent.
func (o *GenerateOptions) ValidateAndSetDefaults() error {
	s, err := generate.ParseStrategy(o.Strategy)
	if err != nil {
		return err
	}
	o.strategy = s
	o.Strategy = s.String()
	if err := errors.ValidateCount("item", o.N, generate.MinItems); err != nil {
		return err
	}
	if o.Ratio == 0 {
		o.Ratio = generate.DefaultRatio
	}
	if o.Ratio < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "ratio must be positive, got %g", o.Ratio)
	}
	if o.K == 0 {
		o.K = generate.ConstraintsFor(o.N, o.Ratio)
	}
	if o.K < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "constraint count must be non-negative, got %d", o.K)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// KeyOpts returns the cache key options for the generated instance.
func (o *GenerateOptions) KeyOpts() cache.InstanceKeyOpts {
	return cache.InstanceKeyOpts{Strategy: o.Strategy, N: o.N, K: o.K, Seed: o.Seed}
}

// SolveOptions configures the solve stage.
type SolveOptions struct {
	Config solver.Config

	// Start, if set, is the first attempt's starting ordering.
	Start *model.Ordering

	// Checkpoint is a file that receives the best ordering after every
	// attempt. An existing checkpoint for the same instance is resumed
	// unless Start is set.
	Checkpoint string

	// Workers runs that many independent solves and keeps the first to
	// succeed. Values below 2 run a single solve.
	Workers int

	// Refresh skips the cache lookup but still stores a new solution.
	Refresh bool

	Logger     *log.Logger
	OnAttempt  func(solver.Attempt)
	OnProgress func(attempt int, p anneal.Progress)
}

// Validate checks the solver configuration.
func (o *SolveOptions) Validate() error {
	if o.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "workers must be non-negative, got %d", o.Workers)
	}
	if o.Workers > 1 && o.Checkpoint != "" {
		return errors.New(errors.ErrCodeInvalidConfig, "checkpoints cannot be combined with parallel workers")
	}
	if o.Workers > 1 && o.Start != nil {
		return errors.New(errors.ErrCodeInvalidConfig, "a start ordering cannot be combined with parallel workers")
	}
	return o.Config.Validate()
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Instance *model.Instance
	Solve    *solver.Result

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline timings.
type Stats struct {
	GenerateTime time.Duration
	SolveTime    time.Duration
}

// CacheInfo tracks cache hits for each stage.
type CacheInfo struct {
	InstanceHit bool
	SolutionHit bool
}
