// Package perm enumerates permutations for exhaustive checking of small
// instances.
//
// Enumeration cost grows as n!, so everything here is intended for n below
// roughly 10. [Each] streams permutations without retaining them and is the
// building block for [Generate].
package perm

import "slices"

// Seq returns a slice containing the sequence [0, 1, 2, ..., n-1].
//
// For n <= 0, Seq returns an empty slice.
func Seq(n int) []int {
	result := make([]int, max(n, 0))
	for i := range result {
		result[i] = i
	}
	return result
}

// Factorial returns n! (n factorial), the product 1 × 2 × ... × n.
// For n <= 1, Factorial returns 1.
//
// Note that factorials grow extremely fast: 21! overflows int64.
func Factorial(n int) int {
	result := 1
	for i := 2; i <= n; i++ {
		result *= i
	}
	return result
}

// Each calls visit with every permutation of [0, 1, ..., n-1] using Heap's
// algorithm, stopping early if visit returns false. It reports whether the
// enumeration ran to completion.
//
// The slice passed to visit is reused between calls; clone it to keep it.
// Each visits exactly one (empty) permutation for n = 0.
func Each(n int, visit func(p []int) bool) bool {
	p := Seq(n)
	if !visit(p) {
		return false
	}
	state := make([]int, n)
	for i := 0; i < n; {
		if state[i] < i {
			if i&1 == 0 {
				p[0], p[i] = p[i], p[0]
			} else {
				p[state[i]], p[i] = p[i], p[state[i]]
			}
			if !visit(p) {
				return false
			}
			state[i]++
			i = 0
		} else {
			state[i] = 0
			i++
		}
	}
	return true
}

// Generate returns permutations of [0, 1, ..., n-1] in [Each] order.
//
// If limit > 0, Generate returns at most limit permutations.
// If limit <= 0, Generate returns all n! permutations.
//
// Each returned slice is a separate allocation, safe to modify.
func Generate(n, limit int) [][]int {
	capacity := limit
	if capacity <= 0 || n <= 10 {
		capacity = Factorial(min(n, 10))
	}
	result := make([][]int, 0, capacity)
	Each(n, func(p []int) bool {
		result = append(result, slices.Clone(p))
		return limit <= 0 || len(result) < limit
	})
	return result
}
