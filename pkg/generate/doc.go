// Package generate manufactures non-betweenness instances that are
// satisfiable by construction and believed to be hard for local search.
//
// # Guarantee
//
// Every constraint a [Generator] emits has both flanks A and B on the same
// side of the target C in the canonical order 0, 1, ..., n-1, so the
// canonical order satisfies the whole set. The order is hidden from the
// solver only in the sense that instance files list constraints, not the
// order that produced them. [Verify] checks the guarantee for any set.
//
// # Strategies
//
//   - [Random]: targets are drawn from fairness buckets (least-used first,
//     uniform within a bucket) and flanks uniformly from the larger side of
//     the target. Spreading targets evenly and using the larger side both
//     raise hardness.
//   - [SingleSideNeighbor]: target i cycles through the universe and takes
//     its two canonical neighbours on one random side. This yields dense,
//     overlapping short-range constraints.
//   - [Balanced]: fairness-bucket targets like Random, but the flank side
//     alternates so that left-side and right-side constraints stay equally
//     frequent across the instance.
//   - [InwardMerge]: targets sweep inward from both ends of the universe
//     (0, n-1, 1, n-2, ...) and flanks come from the half of the larger side
//     nearest the target, producing nested medium-range constraints.
//
// # Budgets
//
// A strategy can only produce so many distinct constraints for a given n
// ([Generator.Capacity]). Asking for more fails with
// CONSTRAINTS_EXHAUSTED before any drawing starts. Individual draws that
// collide (A == B, or a duplicate of an earlier constraint) are retried up
// to [Generator.MaxRetries] times, after which generation fails with
// GENERATION_FAILED.
package generate
