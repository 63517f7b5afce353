package bench

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	bterrors "github.com/matzehuels/betwixt/pkg/errors"
	"github.com/matzehuels/betwixt/pkg/oracle"
	"github.com/matzehuels/betwixt/pkg/store"
)

// SweepOptions selects the constraint counts of a sweep.
type SweepOptions struct {
	N     int
	KMin  int
	KMax  int
	KStep int
	// Reps is the number of instances generated per constraint count.
	Reps int
	Seed uint64
	// Exhaustive counts every satisfying ordering with the oracle instead
	// of running the solver. Only allowed for n <= oracle.MaxItems.
	Exhaustive bool
}

// SweepPoint aggregates the runs at one constraint count.
type SweepPoint struct {
	K int
	// MeanTime is the mean time to the first solution over solved runs.
	MeanTime    time.Duration
	SuccessRate float64
	// MeanSolutions is -1 unless the sweep was exhaustive.
	MeanSolutions float64
}

// SweepReport is the outcome of a sweep.
type SweepReport struct {
	Report
	Points []SweepPoint
	// BestK is the constraint count judged hardest and Ratio is BestK/N.
	BestK int
	Ratio float64
}

// Sweep runs Reps instances at every constraint count from KMin to KMax.
// It stops early at the first count the generator cannot produce.
//
// The hardest count combines two signals: the count with the fewest
// solutions on average (exhaustive sweeps only) and the count with the
// largest mean time to first solution per constraint. BestK is their
// midpoint, or the latter alone when solutions were not counted.
func (r *Runner) Sweep(ctx context.Context, opts SweepOptions) (*SweepReport, error) {
	if err := bterrors.ValidateCount("rep", opts.Reps, 1); err != nil {
		return nil, err
	}
	if opts.KStep <= 0 {
		opts.KStep = 1
	}
	if opts.KMin < 1 || opts.KMax < opts.KMin {
		return nil, bterrors.New(bterrors.ErrCodeInvalidInput, "invalid constraint range [%d, %d]", opts.KMin, opts.KMax)
	}
	if opts.Exhaustive && opts.N > oracle.MaxItems {
		return nil, bterrors.New(bterrors.ErrCodeUnsupported, "exhaustive sweep limited to %d items, got %d", oracle.MaxItems, opts.N)
	}
	if opts.Seed == 0 {
		opts.Seed = uint64(time.Now().UnixNano())
	}

	start := time.Now()
	batch := uuid.NewString()
	var all []store.Record
	var points []SweepPoint

	for k := opts.KMin; k <= opts.KMax; k += opts.KStep {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		recs, err := r.sweepPoint(ctx, batch, opts, k)
		if bterrors.Is(err, bterrors.ErrCodeConstraintsExhausted) {
			r.logger().Info("Generator exhausted, stopping sweep", "k", k)
			break
		}
		if err != nil {
			return nil, err
		}
		all = append(all, recs...)

		sum := store.Summarize(recs)[0]
		p := SweepPoint{
			K:             k,
			MeanTime:      sum.MeanDuration,
			SuccessRate:   sum.SuccessRate(),
			MeanSolutions: sum.MeanSolutions,
		}
		points = append(points, p)
		r.logger().Info("Sweep point", "k", k, "time", p.MeanTime, "success", p.SuccessRate, "solutions", p.MeanSolutions)
	}

	rep, err := r.finish(ctx, batch, all, start)
	if rep == nil {
		return nil, err
	}
	out := &SweepReport{Report: *rep, Points: points}
	out.BestK = bestK(points)
	if opts.N > 0 {
		out.Ratio = float64(out.BestK) / float64(opts.N)
	}
	return out, err
}

func (r *Runner) sweepPoint(ctx context.Context, batch string, opts SweepOptions, k int) ([]store.Record, error) {
	recs := make([]store.Record, opts.Reps)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())
	for i := range opts.Reps {
		seed := opts.Seed + uint64(k)*uint64(opts.Reps) + uint64(i)
		g.Go(func() error {
			var (
				rec store.Record
				err error
			)
			if opts.Exhaustive {
				rec, err = r.count(gctx, batch, opts.N, k, seed)
			} else {
				rec, err = r.one(gctx, batch, opts.N, k, seed)
			}
			if err != nil {
				return err
			}
			rec.Kind = store.KindSweep
			recs[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *Runner) count(ctx context.Context, batch string, n, k int, seed uint64) (store.Record, error) {
	inst, err := r.instance(n, k, seed)
	if err != nil {
		return store.Record{}, err
	}
	set, _ := inst.Set()
	rep, err := oracle.Count(ctx, n, set)
	if err != nil {
		return store.Record{}, err
	}
	return store.Record{
		ID:        uuid.NewString(),
		BatchID:   batch,
		Strategy:  r.Strategy.String(),
		N:         n,
		K:         k,
		Seed:      seed,
		Solved:    rep.Found,
		Solutions: rep.Solutions,
		Duration:  rep.TimeToFirst,
		CreatedAt: time.Now(),
	}, nil
}

func bestK(points []SweepPoint) int {
	if len(points) == 0 {
		return 0
	}
	byTime, byCount := -1, -1
	bestScaled := -1.0
	for i, p := range points {
		scaled := p.MeanTime.Seconds() / float64(p.K)
		if scaled > bestScaled {
			bestScaled, byTime = scaled, i
		}
		if p.MeanSolutions >= 0 && (byCount < 0 || p.MeanSolutions < points[byCount].MeanSolutions) {
			byCount = i
		}
	}
	if byCount < 0 {
		return points[byTime].K
	}
	return (points[byTime].K + points[byCount].K) / 2
}
