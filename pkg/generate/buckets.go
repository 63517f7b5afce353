package generate

import (
	"math/rand/v2"

	"github.com/matzehuels/betwixt/pkg/model"
)

// buckets groups items by how often they have been used as a target.
// levels[u] holds the items used exactly u times; only the lowest
// non-empty level is ever drawn from, so pick and promote are O(1).
type buckets struct {
	levels [][]model.Item
	level  int
}

func newBuckets(n int) *buckets {
	first := make([]model.Item, n)
	for i := range first {
		first[i] = model.Item(i)
	}
	return &buckets{levels: [][]model.Item{first}}
}

// empty reports whether every item has been retired.
func (b *buckets) empty() bool {
	return len(b.levels[b.level]) == 0
}

// pick removes and returns a uniformly random item from the lowest level.
func (b *buckets) pick(rng *rand.Rand) model.Item {
	cur := b.levels[b.level]
	i := rng.IntN(len(cur))
	it := cur[i]
	cur[i] = cur[len(cur)-1]
	b.levels[b.level] = cur[:len(cur)-1]
	return it
}

// promote files it one level above the current one. Items that are not
// promoted after a pick are retired for good.
func (b *buckets) promote(it model.Item) {
	next := b.level + 1
	if next == len(b.levels) {
		b.levels = append(b.levels, nil)
	}
	b.levels[next] = append(b.levels[next], it)
}

// settle moves to the next level once the current one is drained.
func (b *buckets) settle() {
	if len(b.levels[b.level]) == 0 && b.level+1 < len(b.levels) {
		b.levels[b.level] = nil
		b.level++
	}
}
