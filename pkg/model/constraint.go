package model

import (
	"fmt"
	"slices"

	"github.com/dgryski/go-farm"

	"github.com/matzehuels/betwixt/pkg/errors"
)

// Item identifies one element of the universe. Items are the integers
// 0..n-1; the canonical order sorts them by value.
type Item int

// Constraint forbids C from lying strictly between A and B.
type Constraint struct {
	A, B, C Item
}

// Canonical returns c with A and B swapped if needed so that A < B.
// Two constraints are duplicates exactly when their canonical forms match.
func (c Constraint) Canonical() Constraint {
	if c.B < c.A {
		c.A, c.B = c.B, c.A
	}
	return c
}

// Items returns the three items of c in A, B, C order.
func (c Constraint) Items() [3]Item {
	return [3]Item{c.A, c.B, c.C}
}

// Check reports whether c is well formed for a universe of n items: all
// three items in range and pairwise distinct.
func (c Constraint) Check(n int) error {
	for _, it := range c.Items() {
		if it < 0 || int(it) >= n {
			return errors.New(errors.ErrCodeInvalidConstraint, "constraint %v: item %d out of range [0, %d)", c, it, n)
		}
	}
	if c.A == c.B || c.A == c.C || c.B == c.C {
		return errors.New(errors.ErrCodeInvalidConstraint, "constraint %v: items must be pairwise distinct", c)
	}
	return nil
}

// ViolatedBy reports whether o places C strictly between A and B.
func (c Constraint) ViolatedBy(o Ordering) bool {
	return Between(o.pos[c.A], o.pos[c.B], o.pos[c.C])
}

// String formats c as "(A, B, C)".
func (c Constraint) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.A, c.B, c.C)
}

// Between reports whether pc lies strictly between pa and pb, in either
// direction. It is the violation test on raw positions.
func Between(pa, pb, pc int) bool {
	return (pa < pc && pc < pb) || (pb < pc && pc < pa)
}

// Set is a deduplicated collection of canonical constraints. It keeps the
// order in which constraints were first added.
//
// The zero value is an empty set ready to use.
type Set struct {
	list []Constraint
	seen map[Constraint]struct{}
}

// NewSet returns an empty set with room for capacity constraints.
func NewSet(capacity int) *Set {
	return &Set{
		list: make([]Constraint, 0, capacity),
		seen: make(map[Constraint]struct{}, capacity),
	}
}

// Dedup canonicalizes cs and collapses duplicates. It returns the resulting
// set and the number of constraints dropped.
func Dedup(cs []Constraint) (*Set, int) {
	s := NewSet(len(cs))
	dropped := 0
	for _, c := range cs {
		if !s.Add(c) {
			dropped++
		}
	}
	return s, dropped
}

// Add inserts the canonical form of c. It returns false if an equal
// constraint is already present.
func (s *Set) Add(c Constraint) bool {
	if s.seen == nil {
		s.seen = make(map[Constraint]struct{})
	}
	c = c.Canonical()
	if _, ok := s.seen[c]; ok {
		return false
	}
	s.seen[c] = struct{}{}
	s.list = append(s.list, c)
	return true
}

// Contains reports whether the canonical form of c is in s.
func (s *Set) Contains(c Constraint) bool {
	_, ok := s.seen[c.Canonical()]
	return ok
}

// Len returns the number of distinct constraints.
func (s *Set) Len() int { return len(s.list) }

// At returns the i-th constraint in insertion order.
func (s *Set) At(i int) Constraint { return s.list[i] }

// All returns the constraints in insertion order. The slice is shared with
// the set and must not be modified.
func (s *Set) All() []Constraint { return s.list }

// Check validates every constraint against a universe of n items.
func (s *Set) Check(n int) error {
	for _, c := range s.list {
		if err := c.Check(n); err != nil {
			return err
		}
	}
	return nil
}

// Energy counts the constraints violated by o by full recomputation.
func (s *Set) Energy(o Ordering) int {
	e := 0
	for _, c := range s.list {
		if c.ViolatedBy(o) {
			e++
		}
	}
	return e
}

// Violated returns the constraints violated by o in insertion order.
func (s *Set) Violated(o Ordering) []Constraint {
	var out []Constraint
	for _, c := range s.list {
		if c.ViolatedBy(o) {
			out = append(out, c)
		}
	}
	return out
}

// SatisfiedBy reports whether o violates none of the constraints.
func (s *Set) SatisfiedBy(o Ordering) bool {
	for _, c := range s.list {
		if c.ViolatedBy(o) {
			return false
		}
	}
	return true
}

// Fingerprint returns a stable 64-bit identity for the set over a universe
// of n items. It does not depend on insertion order, so two instances that
// differ only in constraint order or A/B orientation share a fingerprint.
func (s *Set) Fingerprint(n int) uint64 {
	sorted := slices.Clone(s.list)
	slices.SortFunc(sorted, compareConstraints)

	buf := make([]byte, 0, 4+12*len(sorted))
	buf = appendUint32(buf, uint32(n))
	for _, c := range sorted {
		buf = appendUint32(buf, uint32(c.A))
		buf = appendUint32(buf, uint32(c.B))
		buf = appendUint32(buf, uint32(c.C))
	}
	return farm.Fingerprint64(buf)
}

func compareConstraints(x, y Constraint) int {
	if x.A != y.A {
		return int(x.A - y.A)
	}
	if x.B != y.B {
		return int(x.B - y.B)
	}
	return int(x.C - y.C)
}

func appendUint32(b []byte, v uint32) []byte {
	return append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}
