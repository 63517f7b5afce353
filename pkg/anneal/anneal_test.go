package anneal

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bits is a toy problem whose energy is the number of set bits, plus a
// floor that can make zero unreachable.
type bits struct {
	v     []bool
	ones  int
	floor int
	last  int
}

func newBits(n, floor int) *bits {
	b := &bits{v: make([]bool, n), floor: floor}
	for i := range b.v {
		b.v[i] = true
	}
	b.ones = n
	return b
}

func (b *bits) Energy() int { return b.ones + b.floor }

func (b *bits) Propose(rng *rand.Rand) int {
	b.last = rng.IntN(len(b.v))
	return b.flip(b.last)
}

func (b *bits) Reject() { b.flip(b.last) }

func (b *bits) Snapshot() []bool { return append([]bool(nil), b.v...) }

func (b *bits) flip(i int) int {
	b.v[i] = !b.v[i]
	if b.v[i] {
		b.ones++
		return 1
	}
	b.ones--
	return -1
}

func (b *bits) check() error {
	n := 0
	for _, x := range b.v {
		if x {
			n++
		}
	}
	if n != b.ones {
		return errors.New("tracked count drifted")
	}
	return nil
}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

func TestScheduleTemperature(t *testing.T) {
	s := Schedule{Tmax: 1, Tmin: 0.01, Steps: 100}

	assert.InDelta(t, 1.0, s.Temperature(0), 1e-12)
	assert.InDelta(t, 0.1, s.Temperature(50), 1e-12)
	assert.InDelta(t, 0.01, s.Temperature(100), 1e-12)

	prev := s.Temperature(0)
	for step := 1; step <= 100; step++ {
		cur := s.Temperature(step)
		assert.Less(t, cur, prev)
		prev = cur
	}
}

func TestScheduleValidate(t *testing.T) {
	require.NoError(t, DefaultSchedule().Validate())

	bad := []Schedule{
		{Tmax: 0, Tmin: 0.1, Steps: 10},
		{Tmax: 1, Tmin: 0, Steps: 10},
		{Tmax: 0.1, Tmin: 1, Steps: 10},
		{Tmax: 1, Tmin: 0.1, Steps: 0},
		{Tmax: 1, Tmin: 0.1, Steps: 10, Updates: -1},
	}
	for _, s := range bad {
		assert.Error(t, s.Validate(), "%+v", s)
	}
}

func TestRunFindsZero(t *testing.T) {
	p := newBits(16, 0)
	res, err := Run(context.Background(), p, seeded(1), Options{
		Schedule: Schedule{Tmax: 0.5, Tmin: 0.01, Steps: 20000},
		Check:    p.check,
	})
	require.NoError(t, err)

	assert.Equal(t, Found, res.Status)
	assert.Equal(t, StopNone, res.Reason)
	assert.Equal(t, 0, res.BestEnergy)
	assert.Equal(t, 0, p.Energy())
	assert.NotContains(t, res.Best, true)
	assert.Less(t, res.Steps, 20000)
}

func TestRunAlreadySolved(t *testing.T) {
	p := newBits(4, 0)
	for i := range p.v {
		p.v[i] = false
	}
	p.ones = 0

	res, err := Run(context.Background(), p, seeded(1), Options{Schedule: DefaultSchedule()})
	require.NoError(t, err)
	assert.Equal(t, Found, res.Status)
	assert.Equal(t, 0, res.Steps)
}

func TestRunExhausted(t *testing.T) {
	p := newBits(8, 1)
	var reports []Progress
	res, err := Run(context.Background(), p, seeded(2), Options{
		Schedule: Schedule{Tmax: 0.5, Tmin: 0.01, Steps: 1000, Updates: 10},
		Progress: func(pr Progress) { reports = append(reports, pr) },
	})
	require.NoError(t, err)

	assert.Equal(t, Exhausted, res.Status)
	assert.Equal(t, StopBudget, res.Reason)
	assert.Equal(t, 1000, res.Steps)
	assert.Equal(t, 1, res.BestEnergy)
	require.Len(t, reports, 10)
	assert.Equal(t, 1000, reports[9].Step)
	for _, r := range reports {
		assert.GreaterOrEqual(t, r.Energy, r.BestEnergy)
		assert.GreaterOrEqual(t, r.AcceptRate, 0.0)
		assert.LessOrEqual(t, r.AcceptRate, 1.0)
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newBits(8, 0)
	res, err := Run(ctx, p, seeded(3), Options{Schedule: DefaultSchedule()})
	require.NoError(t, err)

	assert.Equal(t, Exhausted, res.Status)
	assert.Equal(t, StopCanceled, res.Reason)
	assert.Equal(t, 0, res.Steps)
	assert.Equal(t, 8, res.BestEnergy)
	assert.Len(t, res.Best, 8)
}

func TestRunCheckFailure(t *testing.T) {
	p := newBits(8, 0)
	boom := errors.New("boom")
	_, err := Run(context.Background(), p, seeded(4), Options{
		Schedule: DefaultSchedule(),
		Check:    func() error { return boom },
	})
	assert.ErrorIs(t, err, boom)
}

func TestRunInvalidSchedule(t *testing.T) {
	_, err := Run(context.Background(), newBits(4, 0), seeded(5), Options{})
	assert.Error(t, err)
}

func TestRunDeterministic(t *testing.T) {
	run := func() Result[[]bool] {
		p := newBits(32, 1)
		res, err := Run(context.Background(), p, seeded(7), Options{
			Schedule: Schedule{Tmax: 2, Tmin: 0.1, Steps: 500},
		})
		require.NoError(t, err)
		return res
	}
	a, b := run(), run()
	assert.Equal(t, a.Best, b.Best)
	assert.Equal(t, a.Accepted, b.Accepted)
	assert.Equal(t, a.BestEnergy, b.BestEnergy)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "found", Found.String())
	assert.Equal(t, "exhausted", Exhausted.String())
	assert.Equal(t, "canceled", StopCanceled.String())
}
