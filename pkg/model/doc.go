// Package model defines the data model for non-betweenness ordering problems.
//
// # Overview
//
// A problem instance fixes a universe of n items, identified canonically by
// the integers 0..n-1, and a list of constraints over them. Each
// [Constraint] names three distinct items (A, B, C) and forbids C from lying
// strictly between A and B in the final linear order. A and B are
// interchangeable; [Constraint.Canonical] orders them so that A < B, which is
// the form used for deduplication.
//
// # Orderings
//
// An [Ordering] is a permutation of all items kept in two views at once: the
// sequence (position -> item) and its inverse (item -> position). Every
// mutating method updates both views, so callers can look up positions in
// O(1) while still iterating or slicing the sequence. [Ordering.Validate]
// checks that the views agree and form a bijection.
//
// # Constraint Sets
//
// A [Set] is a deduplicated collection of canonical constraints that keeps
// first-insertion order. Sets are built once and treated as immutable while
// a solve is running, so they may be shared between concurrent searches.
//
//	set, dropped := model.Dedup([]model.Constraint{{A: 2, B: 0, C: 1}, {A: 0, B: 2, C: 1}})
//	// set.Len() == 1, dropped == 1
//
//	set.Energy(model.Identity(3))                  // 1: item 1 sits between 0 and 2
//	set.Energy(model.MustOrdering([]model.Item{1, 0, 2})) // 0
//
// # Instances
//
// An [Instance] couples the universe size with the external identifiers of
// its items and the constraints as they were read or generated, before
// deduplication. The canonical order of an instance is [Identity].
package model
