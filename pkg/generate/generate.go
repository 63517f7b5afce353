package generate

import (
	"math/rand/v2"

	"github.com/matzehuels/betwixt/pkg/errors"
	"github.com/matzehuels/betwixt/pkg/model"
)

const (
	// MinItems is the smallest universe every strategy can serve: with
	// n >= 4 each target has a side holding at least two items.
	MinItems = 4

	// DefaultMaxRetries bounds the redraws of a single constraint.
	DefaultMaxRetries = 10000

	// DefaultRatio is the constraint-to-item ratio believed to give the
	// hardest instances for the annealing solver.
	DefaultRatio = 2.4

	// sparseFraction switches drawPair to enumeration once at most
	// 1/sparseFraction of a side's pairs remain free.
	sparseFraction = 8
)

// ConstraintsFor returns the constraint count used for n items at the
// given ratio, rounded down and plus one.
func ConstraintsFor(n int, ratio float64) int {
	return int(ratio*float64(n)) + 1
}

// span is an inclusive range of canonical indices.
type span struct{ lo, hi int }

func (s span) size() int { return max(0, s.hi-s.lo+1) }

// Generator draws constraint sets over a fixed universe of n items.
// A Generator is not safe for concurrent use; it owns its random source.
type Generator struct {
	n        int
	strategy Strategy
	rng      *rand.Rand

	// MaxRetries bounds the redraws of a single constraint after an A == B
	// or duplicate collision. Zero means DefaultMaxRetries.
	MaxRetries int

	// free holds the unused flank pairs of near-saturated sides during a
	// single Generate call.
	free map[freeKey][]model.Constraint
}

type freeKey struct {
	target int
	side   span
}

// New returns a generator for n items. The random source is threaded
// through every draw, so a fixed seed reproduces the same sets.
func New(n int, strategy Strategy, rng *rand.Rand) (*Generator, error) {
	if err := errors.ValidateCount("item", n, MinItems); err != nil {
		return nil, err
	}
	if _, ok := strategyNames[strategy]; !ok {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown strategy %d", strategy)
	}
	if rng == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "random source is nil")
	}
	return &Generator{n: n, strategy: strategy, rng: rng}, nil
}

// N returns the universe size.
func (g *Generator) N() int { return g.n }

// Strategy returns the configured strategy.
func (g *Generator) Strategy() Strategy { return g.strategy }

// Capacity returns the number of distinct constraints the strategy can
// produce for this universe.
func (g *Generator) Capacity() int {
	total := 0
	switch g.strategy {
	case SingleSideNeighbor:
		return 2*g.n - 4
	case Balanced:
		for t := range g.n {
			total += pairs(g.left(t).size()) + pairs(g.right(t).size())
		}
	case InwardMerge:
		for t := range g.n {
			total += pairs(g.nearHalf(t).size())
		}
	default:
		for t := range g.n {
			total += pairs(g.larger(t).size())
		}
	}
	return total
}

// Generate returns exactly k distinct constraints, all satisfied by the
// canonical order, in the order they were drawn.
func (g *Generator) Generate(k int) (*model.Set, error) {
	if k < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "constraint count must be non-negative, got %d", k)
	}
	if c := g.Capacity(); k > c {
		return nil, errors.New(errors.ErrCodeConstraintsExhausted,
			"%s can produce at most %d distinct constraints for %d items, %d requested", g.strategy, c, g.n, k)
	}

	set := model.NewSet(k)
	g.free = make(map[freeKey][]model.Constraint)
	defer func() { g.free = nil }()
	var err error
	switch g.strategy {
	case SingleSideNeighbor:
		err = g.singleSideNeighbor(set, k)
	case Balanced:
		err = g.balanced(set, k)
	case InwardMerge:
		err = g.inwardMerge(set, k)
	default:
		err = g.random(set, k)
	}
	if err != nil {
		return nil, err
	}
	return set, nil
}

// Instance generates k constraints and wraps them in an instance whose
// items are named "0".."n-1".
func (g *Generator) Instance(k int) (*model.Instance, error) {
	set, err := g.Generate(k)
	if err != nil {
		return nil, err
	}
	return model.NewInstance(g.n, set.All()), nil
}

func (g *Generator) random(set *model.Set, k int) error {
	b := newBuckets(g.n)
	used := make([]int, g.n)
	for set.Len() < k {
		if b.empty() {
			return errors.New(errors.ErrCodeConstraintsExhausted, "every target is saturated after %d constraints", set.Len())
		}
		t := int(b.pick(g.rng))
		src := g.larger(t)
		if err := g.drawPair(set, src, t, used[t]); err != nil {
			return err
		}
		used[t]++
		if used[t] < pairs(src.size()) {
			b.promote(model.Item(t))
		}
		b.settle()
	}
	return nil
}

func (g *Generator) balanced(set *model.Set, k int) error {
	b := newBuckets(g.n)
	usedLeft := make([]int, g.n)
	usedRight := make([]int, g.n)
	var leftTotal, rightTotal int

	for set.Len() < k {
		if b.empty() {
			return errors.New(errors.ErrCodeConstraintsExhausted, "every target is saturated after %d constraints", set.Len())
		}
		t := int(b.pick(g.rng))
		l, r := g.left(t), g.right(t)
		leftOpen := usedLeft[t] < pairs(l.size())
		rightOpen := usedRight[t] < pairs(r.size())

		useLeft := leftOpen
		if leftOpen && rightOpen {
			switch {
			case leftTotal < rightTotal:
				useLeft = true
			case rightTotal < leftTotal:
				useLeft = false
			default:
				useLeft = g.rng.IntN(2) == 0
			}
		}

		if useLeft {
			if err := g.drawPair(set, l, t, usedLeft[t]); err != nil {
				return err
			}
			usedLeft[t]++
			leftTotal++
		} else {
			if err := g.drawPair(set, r, t, usedRight[t]); err != nil {
				return err
			}
			usedRight[t]++
			rightTotal++
		}

		if usedLeft[t] < pairs(l.size()) || usedRight[t] < pairs(r.size()) {
			b.promote(model.Item(t))
		}
		b.settle()
	}
	return nil
}

func (g *Generator) singleSideNeighbor(set *model.Set, k int) error {
	for d := 0; set.Len() < k; d++ {
		i := d % g.n
		var sides []model.Constraint
		if i >= 2 {
			sides = append(sides, model.Constraint{A: model.Item(i - 2), B: model.Item(i - 1), C: model.Item(i)})
		}
		if i+2 < g.n {
			sides = append(sides, model.Constraint{A: model.Item(i + 1), B: model.Item(i + 2), C: model.Item(i)})
		}
		if len(sides) == 2 && g.rng.IntN(2) == 1 {
			sides[0], sides[1] = sides[1], sides[0]
		}
		for _, c := range sides {
			if set.Add(c) {
				break
			}
		}
		if d > k*g.n+g.n {
			return errors.New(errors.ErrCodeGenerationFailed, "no free neighbour pair after %d draws", d)
		}
	}
	return nil
}

func (g *Generator) inwardMerge(set *model.Set, k int) error {
	used := make([]int, g.n)
	order := inwardOrder(g.n)
	idle := 0
	for d := 0; set.Len() < k; d++ {
		t := int(order[d%g.n])
		src := g.nearHalf(t)
		if used[t] >= pairs(src.size()) {
			idle++
			if idle > g.n {
				return errors.New(errors.ErrCodeConstraintsExhausted, "every target is saturated after %d constraints", set.Len())
			}
			continue
		}
		idle = 0
		if err := g.drawPair(set, src, t, used[t]); err != nil {
			return err
		}
		used[t]++
	}
	return nil
}

// drawPair adds a constraint with target t and flanks drawn uniformly,
// without replacement, from src. used counts the constraints already drawn
// for t from src. Collisions are redrawn while free pairs are plentiful;
// near saturation the free pairs are enumerated instead.
func (g *Generator) drawPair(set *model.Set, src span, t, used int) error {
	m := src.size()
	total := pairs(m)
	free := total - used
	if free <= 0 {
		return errors.New(errors.ErrCodeGenerationFailed, "target %d has no free flank pair", t)
	}
	if free*sparseFraction <= total {
		return g.pickFree(set, src, t)
	}

	limit := g.MaxRetries
	if limit <= 0 {
		limit = DefaultMaxRetries
	}
	for range limit {
		a := src.lo + g.rng.IntN(m)
		b := src.lo + g.rng.IntN(m)
		if a == b {
			continue
		}
		if set.Add(model.Constraint{A: model.Item(a), B: model.Item(b), C: model.Item(t)}) {
			return nil
		}
	}
	return g.pickFree(set, src, t)
}

// pickFree adds a uniformly chosen constraint among the flank pairs of src
// not yet used with target t. The free pairs are enumerated once per side
// and consumed from then on.
func (g *Generator) pickFree(set *model.Set, src span, t int) error {
	key := freeKey{t, src}
	free, ok := g.free[key]
	if !ok {
		for a := src.lo; a <= src.hi; a++ {
			for b := a + 1; b <= src.hi; b++ {
				c := model.Constraint{A: model.Item(a), B: model.Item(b), C: model.Item(t)}
				if !set.Contains(c) {
					free = append(free, c)
				}
			}
		}
	}
	for len(free) > 0 {
		i := g.rng.IntN(len(free))
		c := free[i]
		free[i] = free[len(free)-1]
		free = free[:len(free)-1]
		if set.Add(c) {
			g.free[key] = free
			return nil
		}
	}
	g.free[key] = free
	return errors.New(errors.ErrCodeGenerationFailed, "no distinct flank pair for target %d", t)
}

func (g *Generator) left(t int) span  { return span{0, t - 1} }
func (g *Generator) right(t int) span { return span{t + 1, g.n - 1} }

// larger returns the side of t with more items. Targets in the first half
// (2t < n) use the right side, the rest the left.
func (g *Generator) larger(t int) span {
	if 2*t < g.n {
		return g.right(t)
	}
	return g.left(t)
}

// nearHalf returns the half of the larger side closest to t, at least two
// items wide.
func (g *Generator) nearHalf(t int) span {
	side := g.larger(t)
	w := max(2, (side.size()+1)/2)
	if side.lo > t {
		return span{side.lo, side.lo + w - 1}
	}
	return span{side.hi - w + 1, side.hi}
}

// inwardOrder returns 0, n-1, 1, n-2, ... covering every item once.
func inwardOrder(n int) []model.Item {
	out := make([]model.Item, 0, n)
	for lo, hi := 0, n-1; lo <= hi; lo, hi = lo+1, hi-1 {
		out = append(out, model.Item(lo))
		if hi != lo {
			out = append(out, model.Item(hi))
		}
	}
	return out
}

func pairs(m int) int {
	if m < 2 {
		return 0
	}
	return m * (m - 1) / 2
}

// Verify checks that every constraint in s is well formed for n items and
// satisfied by the canonical order.
func Verify(s *model.Set, n int) error {
	if err := s.Check(n); err != nil {
		return err
	}
	if v := s.Violated(model.Identity(n)); len(v) > 0 {
		return errors.New(errors.ErrCodeInvalidConstraint, "canonical order violates %d constraints, first %v", len(v), v[0])
	}
	return nil
}
