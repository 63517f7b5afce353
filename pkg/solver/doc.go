// Package solver searches for orderings that satisfy a set of
// non-betweenness constraints.
//
// # Search State
//
// The annealer in package anneal drives a search state that owns one
// ordering and the set of constraints it currently violates. Moves are
// sequences of position swaps; a proposal re-evaluates only the
// constraints that mention a moved item, and a rejected proposal replays
// its swaps in reverse. The tracked energy always equals a full
// recomputation, which [Config.Verify] checks after every step.
//
// # Moves
//
//   - [MoveWindow] shuffles Config.Window consecutive positions.
//   - [MoveRepair] picks a violated constraint uniformly, swaps its C
//     with A or B, then swaps A and B with probability one half.
//   - [MoveSwap] exchanges two random positions.
//   - [MoveAdjacent] exchanges two neighbouring positions.
//
// # Restarts
//
// [Solver.Solve] deduplicates the constraints, then runs annealing
// attempts until one reaches zero energy or Config.MaxAttempts runs have
// finished. Each attempt starts from the best ordering of the previous one.
// Exhausting the budget returns an ATTEMPTS_EXHAUSTED error together with
// the best result seen:
//
//	s := solver.New(solver.DefaultConfig())
//	res, err := s.Solve(ctx, inst, nil)
//	if errors.IsExhausted(err) {
//	    // res.Ordering has res.Energy violations
//	}
//
// [Solver.SolveParallel] runs independent solves concurrently and keeps
// the best.
package solver
