package model

import (
	"math/rand/v2"
	"slices"

	"github.com/matzehuels/betwixt/pkg/errors"
)

// Ordering is a permutation of the items 0..n-1 held as a sequence
// (position -> item) together with its inverse (item -> position).
//
// Orderings share their backing arrays when copied by value; use
// [Ordering.Clone] to take an independent snapshot. The zero value is the
// empty ordering.
type Ordering struct {
	seq []Item
	pos []int
}

// Identity returns the canonical ordering 0, 1, ..., n-1.
func Identity(n int) Ordering {
	o := Ordering{seq: make([]Item, n), pos: make([]int, n)}
	for i := range n {
		o.seq[i] = Item(i)
		o.pos[i] = i
	}
	return o
}

// Random returns a uniformly random ordering of n items drawn from rng.
func Random(n int, rng *rand.Rand) Ordering {
	o := Identity(n)
	for i := n - 1; i > 0; i-- {
		o.Swap(i, rng.IntN(i+1))
	}
	return o
}

// NewOrdering builds an ordering from a position -> item sequence. The
// sequence must be a permutation of 0..len(seq)-1.
func NewOrdering(seq []Item) (Ordering, error) {
	n := len(seq)
	o := Ordering{seq: slices.Clone(seq), pos: make([]int, n)}
	for i := range o.pos {
		o.pos[i] = -1
	}
	for p, it := range o.seq {
		if it < 0 || int(it) >= n {
			return Ordering{}, errors.New(errors.ErrCodeInvalidOrdering, "item %d at position %d out of range [0, %d)", it, p, n)
		}
		if o.pos[it] >= 0 {
			return Ordering{}, errors.New(errors.ErrCodeInvalidOrdering, "item %d appears at positions %d and %d", it, o.pos[it], p)
		}
		o.pos[it] = p
	}
	return o, nil
}

// MustOrdering is like [NewOrdering] but panics on invalid input. It is
// intended for tests and literals.
func MustOrdering(seq []Item) Ordering {
	o, err := NewOrdering(seq)
	if err != nil {
		panic(err)
	}
	return o
}

// Len returns the number of items.
func (o Ordering) Len() int { return len(o.seq) }

// At returns the item at position p.
func (o Ordering) At(p int) Item { return o.seq[p] }

// Position returns the position of item it.
func (o Ordering) Position(it Item) int { return o.pos[it] }

// Items returns a copy of the position -> item sequence.
func (o Ordering) Items() []Item { return slices.Clone(o.seq) }

// Positions returns a copy of the item -> position index.
func (o Ordering) Positions() []int { return slices.Clone(o.pos) }

// Clone returns an independent copy of o.
func (o Ordering) Clone() Ordering {
	return Ordering{seq: slices.Clone(o.seq), pos: slices.Clone(o.pos)}
}

// Equal reports whether o and other place every item at the same position.
func (o Ordering) Equal(other Ordering) bool {
	return slices.Equal(o.seq, other.seq)
}

// Swap exchanges the items at positions i and j, keeping both views in step.
func (o Ordering) Swap(i, j int) {
	a, b := o.seq[i], o.seq[j]
	o.seq[i], o.seq[j] = b, a
	o.pos[a], o.pos[b] = j, i
}

// SwapItems exchanges the positions of items a and b.
func (o Ordering) SwapItems(a, b Item) {
	o.Swap(o.pos[a], o.pos[b])
}

// Validate checks that both views describe the same bijection.
func (o Ordering) Validate() error {
	if len(o.seq) != len(o.pos) {
		return errors.New(errors.ErrCodeInvalidOrdering, "sequence has %d items but index has %d", len(o.seq), len(o.pos))
	}
	for p, it := range o.seq {
		if it < 0 || int(it) >= len(o.pos) {
			return errors.New(errors.ErrCodeInvalidOrdering, "item %d at position %d out of range", it, p)
		}
		if o.pos[it] != p {
			return errors.New(errors.ErrCodeInvalidOrdering, "item %d is at position %d but indexed at %d", it, p, o.pos[it])
		}
	}
	return nil
}
