// Package anneal implements a generic simulated annealing driver.
//
// The driver knows nothing about the problem being solved. A [Problem]
// owns its state, applies moves in place and reports the energy change
// incrementally; the driver decides acceptance with the Metropolis rule
// under a geometric cooling [Schedule] and keeps the best state seen.
//
// A run ends in one of two ways: the energy reaches zero ([Found]) or the
// step budget runs out ([Exhausted]). Both are normal outcomes returned in
// a [Result]. Cancelling the context ends the run early as Exhausted with
// [StopCanceled], carrying the best state found so far.
package anneal

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// Problem is the mutable state of one annealing run.
//
// Propose applies one move in place and returns the resulting energy delta.
// Reject reverts the most recent proposal; it is called at most once per
// Propose. Energy returns the tracked energy of the current state and
// Snapshot an independent copy of it.
type Problem[S any] interface {
	Energy() int
	Propose(rng *rand.Rand) int
	Reject()
	Snapshot() S
}

// Status is the terminal state of a run.
type Status int

const (
	Searching Status = iota
	Found
	Exhausted
)

func (s Status) String() string {
	switch s {
	case Searching:
		return "searching"
	case Found:
		return "found"
	case Exhausted:
		return "exhausted"
	}
	return "unknown"
}

// StopReason records why an Exhausted run ended.
type StopReason int

const (
	StopNone StopReason = iota
	StopBudget
	StopCanceled
)

func (r StopReason) String() string {
	switch r {
	case StopBudget:
		return "budget"
	case StopCanceled:
		return "canceled"
	}
	return "none"
}

// Progress is a diagnostic snapshot passed to [Options.Progress].
type Progress struct {
	Step        int
	Steps       int
	Temperature float64
	Energy      int
	BestEnergy  int
	// AcceptRate is the fraction of proposals accepted since the last report.
	AcceptRate float64
	// ImproveRate is the fraction of proposals that lowered the energy
	// since the last report.
	ImproveRate float64
	Elapsed     time.Duration
}

// Options configures a run.
type Options struct {
	Schedule Schedule

	// Progress, if set, is called Schedule.Updates times over the run.
	// It must not touch the problem state.
	Progress func(Progress)

	// Check, if set, is called after every step. A non-nil error aborts
	// the run; it is meant for energy consistency checks in tests and
	// debug builds.
	Check func() error
}

// Result is the outcome of a run.
type Result[S any] struct {
	Status     Status
	Reason     StopReason
	Best       S
	BestEnergy int
	Steps      int
	Accepted   int
	Improved   int
	Elapsed    time.Duration
}

// ctxEvery is the number of steps between context checks.
const ctxEvery = 1024

// Run anneals p under opts until it reaches zero energy, the step budget
// is spent, or ctx is done. The only errors are an invalid schedule or a
// failed Check.
func Run[S any](ctx context.Context, p Problem[S], rng *rand.Rand, opts Options) (Result[S], error) {
	sched := opts.Schedule
	if err := sched.Validate(); err != nil {
		return Result[S]{}, err
	}

	start := time.Now()
	res := Result[S]{
		Status:     Searching,
		Best:       p.Snapshot(),
		BestEnergy: p.Energy(),
	}
	if res.BestEnergy == 0 {
		res.Status = Found
		res.Elapsed = time.Since(start)
		return res, nil
	}

	every := sched.interval()
	var windowAccepted, windowImproved, windowSteps int

	for step := 0; step < sched.Steps; step++ {
		if step%ctxEvery == 0 && ctx.Err() != nil {
			res.Status, res.Reason = Exhausted, StopCanceled
			break
		}

		t := sched.Temperature(step)
		delta := p.Propose(rng)
		if delta <= 0 || rng.Float64() < math.Exp(-float64(delta)/t) {
			res.Accepted++
			windowAccepted++
			if delta < 0 {
				res.Improved++
				windowImproved++
			}
		} else {
			p.Reject()
		}
		res.Steps++
		windowSteps++

		if opts.Check != nil {
			if err := opts.Check(); err != nil {
				return res, err
			}
		}

		e := p.Energy()
		if e < res.BestEnergy {
			res.BestEnergy = e
			res.Best = p.Snapshot()
		}
		if e == 0 {
			res.Status = Found
			break
		}

		if every > 0 && opts.Progress != nil && (step+1)%every == 0 {
			opts.Progress(Progress{
				Step:        step + 1,
				Steps:       sched.Steps,
				Temperature: t,
				Energy:      e,
				BestEnergy:  res.BestEnergy,
				AcceptRate:  float64(windowAccepted) / float64(windowSteps),
				ImproveRate: float64(windowImproved) / float64(windowSteps),
				Elapsed:     time.Since(start),
			})
			windowAccepted, windowImproved, windowSteps = 0, 0, 0
		}
	}

	if res.Status == Searching {
		res.Status, res.Reason = Exhausted, StopBudget
	}
	res.Elapsed = time.Since(start)
	return res, nil
}
