package solver

import (
	"fmt"
	"math/rand/v2"

	"github.com/matzehuels/betwixt/pkg/model"
)

// state is the mutable search state of one annealing run. It tracks the
// violated constraints incrementally: a proposal marks every constraint
// touching a moved item, applies its swaps, and re-evaluates only the
// marked constraints.
//
// A state is owned by a single goroutine. The constraint set is shared
// read-only.
type state struct {
	set    *model.Set
	ord    model.Ordering
	moves  []Move
	window int

	// byItem lists the indices of the constraints mentioning each item.
	byItem [][]int

	// violated holds the indices of the violated constraints in arbitrary
	// order; slot[c] is the index of c in violated, or -1.
	violated []int
	slot     []int

	// stamp dedups constraint indices within one proposal.
	stamp []uint32
	epoch uint32

	touched []int
	swaps   [][2]int
}

func newState(set *model.Set, start model.Ordering, moves []Move, window int) *state {
	n := start.Len()
	s := &state{
		set:    set,
		ord:    start.Clone(),
		moves:  moves,
		window: min(window, n),
		byItem: make([][]int, n),
		slot:   make([]int, set.Len()),
		stamp:  make([]uint32, set.Len()),
	}
	for i, c := range set.All() {
		for _, it := range c.Items() {
			s.byItem[it] = append(s.byItem[it], i)
		}
		s.slot[i] = -1
		if c.ViolatedBy(s.ord) {
			s.mark(i)
		}
	}
	return s
}

func (s *state) Energy() int { return len(s.violated) }

func (s *state) Snapshot() model.Ordering { return s.ord.Clone() }

// Propose applies one move drawn uniformly from the configured moves and
// returns the energy delta.
func (s *state) Propose(rng *rand.Rand) int {
	s.touched = s.touched[:0]
	s.swaps = s.swaps[:0]
	s.epoch++
	if s.epoch == 0 {
		clear(s.stamp)
		s.epoch = 1
	}

	if s.ord.Len() < 2 {
		return 0
	}

	switch m := s.moves[rng.IntN(len(s.moves))]; m {
	case MoveWindow:
		s.shuffleWindow(rng)
	case MoveRepair:
		s.repair(rng)
	case MoveSwap:
		s.swapRandom(rng)
	case MoveAdjacent:
		s.swapAdjacent(rng)
	default:
		panic(fmt.Sprintf("solver: unknown move %q", m))
	}
	return s.reevaluate()
}

// Reject undoes the last proposal by replaying its swaps in reverse.
func (s *state) Reject() {
	for i := len(s.swaps) - 1; i >= 0; i-- {
		s.ord.Swap(s.swaps[i][0], s.swaps[i][1])
	}
	s.swaps = s.swaps[:0]
	s.reevaluate()
}

func (s *state) shuffleWindow(rng *rand.Rand) {
	l := s.window
	if l < 2 {
		l = 2
	}
	start := rng.IntN(s.ord.Len() - l + 1)
	for p := start; p < start+l; p++ {
		s.touch(s.ord.At(p))
	}
	for i := l - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		s.swap(start+i, start+j)
	}
}

func (s *state) repair(rng *rand.Rand) {
	if len(s.violated) == 0 {
		s.swapRandom(rng)
		return
	}
	c := s.set.At(s.violated[rng.IntN(len(s.violated))])
	s.touch(c.A)
	s.touch(c.B)
	s.touch(c.C)

	flank := c.A
	if rng.IntN(2) == 1 {
		flank = c.B
	}
	s.swap(s.ord.Position(c.C), s.ord.Position(flank))
	if rng.IntN(2) == 1 {
		s.swap(s.ord.Position(c.A), s.ord.Position(c.B))
	}
}

func (s *state) swapRandom(rng *rand.Rand) {
	n := s.ord.Len()
	i := rng.IntN(n)
	j := rng.IntN(n - 1)
	if j >= i {
		j++
	}
	s.touch(s.ord.At(i))
	s.touch(s.ord.At(j))
	s.swap(i, j)
}

func (s *state) swapAdjacent(rng *rand.Rand) {
	i := rng.IntN(s.ord.Len() - 1)
	s.touch(s.ord.At(i))
	s.touch(s.ord.At(i + 1))
	s.swap(i, i+1)
}

// touch marks every constraint mentioning it for re-evaluation.
func (s *state) touch(it model.Item) {
	for _, c := range s.byItem[it] {
		if s.stamp[c] != s.epoch {
			s.stamp[c] = s.epoch
			s.touched = append(s.touched, c)
		}
	}
}

func (s *state) swap(i, j int) {
	if i == j {
		return
	}
	s.ord.Swap(i, j)
	s.swaps = append(s.swaps, [2]int{i, j})
}

// reevaluate refreshes the touched constraints against the current
// ordering and returns the change in energy.
func (s *state) reevaluate() int {
	delta := 0
	for _, c := range s.touched {
		was := s.slot[c] >= 0
		now := s.set.At(c).ViolatedBy(s.ord)
		switch {
		case now && !was:
			s.mark(c)
			delta++
		case was && !now:
			s.unmark(c)
			delta--
		}
	}
	return delta
}

func (s *state) mark(c int) {
	s.slot[c] = len(s.violated)
	s.violated = append(s.violated, c)
}

func (s *state) unmark(c int) {
	i := s.slot[c]
	last := len(s.violated) - 1
	moved := s.violated[last]
	s.violated[i] = moved
	s.slot[moved] = i
	s.violated = s.violated[:last]
	s.slot[c] = -1
}

// verify recomputes the energy from scratch and compares it with the
// tracked state.
func (s *state) verify() error {
	if err := s.ord.Validate(); err != nil {
		return err
	}
	full := 0
	for i, c := range s.set.All() {
		v := c.ViolatedBy(s.ord)
		if v {
			full++
		}
		if v != (s.slot[i] >= 0) {
			return fmt.Errorf("constraint %d %v: tracked violated=%t, actual %t", i, c, s.slot[i] >= 0, v)
		}
	}
	if full != len(s.violated) {
		return fmt.Errorf("tracked energy %d, recomputed %d", len(s.violated), full)
	}
	return nil
}
