package model

import (
	"strconv"

	"github.com/matzehuels/betwixt/pkg/errors"
)

// Instance is a problem as read from input or produced by a generator:
// the universe size, the external identifier of each item, and the
// constraints in their original order (duplicates included).
type Instance struct {
	// Names maps each item to its external identifier. len(Names) is the
	// universe size n.
	Names []string

	// Constraints are kept as given; use [Dedup] before searching.
	Constraints []Constraint

	index map[string]Item
}

// NewInstance returns an instance over n items named "0".."n-1".
func NewInstance(n int, cs []Constraint) *Instance {
	names := make([]string, n)
	for i := range names {
		names[i] = strconv.Itoa(i)
	}
	return &Instance{Names: names, Constraints: cs}
}

// NewNamedInstance returns an instance whose items carry the given
// identifiers. Names must be unique.
func NewNamedInstance(names []string, cs []Constraint) (*Instance, error) {
	in := &Instance{Names: names, Constraints: cs}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return in, nil
}

// N returns the number of items.
func (in *Instance) N() int { return len(in.Names) }

// Name returns the external identifier of it.
func (in *Instance) Name(it Item) string { return in.Names[it] }

// Lookup returns the item with the given external identifier. The first
// call builds an index, so concurrent first calls must be synchronized.
func (in *Instance) Lookup(name string) (Item, bool) {
	if in.index == nil {
		in.index = make(map[string]Item, len(in.Names))
		for i, nm := range in.Names {
			in.index[nm] = Item(i)
		}
	}
	it, ok := in.index[name]
	return it, ok
}

// Set returns the deduplicated constraint set and the number of duplicates
// that were collapsed.
func (in *Instance) Set() (*Set, int) {
	return Dedup(in.Constraints)
}

// Validate checks names for uniqueness and every constraint for range and
// distinctness.
func (in *Instance) Validate() error {
	seen := make(map[string]int, len(in.Names))
	for i, nm := range in.Names {
		if err := errors.ValidateName(nm); err != nil {
			return err
		}
		if j, ok := seen[nm]; ok {
			return errors.New(errors.ErrCodeInvalidInput, "identifier %q used for items %d and %d", nm, j, i)
		}
		seen[nm] = i
	}
	for i, c := range in.Constraints {
		if err := c.Check(in.N()); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "constraint %d", i+1)
		}
	}
	return nil
}

// NamesOf maps an ordering to the external identifiers in position order.
func (in *Instance) NamesOf(o Ordering) []string {
	out := make([]string, o.Len())
	for p := range out {
		out[p] = in.Names[o.At(p)]
	}
	return out
}

// Violated returns the distinct constraints of the instance that o
// violates, in first-seen order.
func (in *Instance) Violated(o Ordering) []Constraint {
	set, _ := in.Set()
	return set.Violated(o)
}
