package solver

import (
	"context"
	"io"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/betwixt/pkg/anneal"
	"github.com/matzehuels/betwixt/pkg/errors"
	"github.com/matzehuels/betwixt/pkg/generate"
	"github.com/matzehuels/betwixt/pkg/model"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

func quiet() *log.Logger {
	return log.New(io.Discard)
}

func testSolver(cfg Config) *Solver {
	return &Solver{Config: cfg, Logger: quiet()}
}

func fastConfig(seed uint64) Config {
	cfg := DefaultConfig()
	cfg.Steps = 20000
	cfg.Updates = 0
	cfg.Seed = seed
	return cfg
}

func generated(t *testing.T, n, k int, seed uint64) *model.Instance {
	t.Helper()
	g, err := generate.New(n, generate.Random, seeded(seed))
	require.NoError(t, err)
	inst, err := g.Instance(k)
	require.NoError(t, err)
	return inst
}

func TestStateEnergyStaysConsistent(t *testing.T) {
	inst := generated(t, 20, 48, 1)
	set, _ := inst.Set()
	rng := seeded(2)
	st := newState(set, model.Random(20, rng), Moves(), 4)
	require.NoError(t, st.verify())

	for i := range 5000 {
		before := st.Energy()
		delta := st.Propose(rng)
		require.Equal(t, before+delta, st.Energy(), "step %d", i)
		if rng.IntN(2) == 0 {
			st.Reject()
			require.Equal(t, before, st.Energy(), "step %d", i)
		}
		require.NoError(t, st.verify(), "step %d", i)
	}
}

func TestStateRejectRestoresOrdering(t *testing.T) {
	inst := generated(t, 12, 30, 3)
	set, _ := inst.Set()
	rng := seeded(4)
	st := newState(set, model.Random(12, rng), Moves(), 5)

	for range 500 {
		before := st.Snapshot()
		st.Propose(rng)
		st.Reject()
		require.True(t, before.Equal(st.ord))
	}
}

func TestStateDoesNotAliasStart(t *testing.T) {
	start := model.Identity(5)
	set, _ := model.Dedup([]model.Constraint{{A: 0, B: 4, C: 2}})
	st := newState(set, start, []Move{MoveSwap}, 3)
	st.Propose(seeded(1))
	assert.True(t, start.Equal(model.Identity(5)))
}

func TestRepairTargetsViolatedConstraint(t *testing.T) {
	set, _ := model.Dedup([]model.Constraint{{A: 0, B: 2, C: 1}})
	st := newState(set, model.Identity(5), []Move{MoveRepair}, 3)
	require.Equal(t, 1, st.Energy())

	rng := seeded(5)
	for range 100 {
		st.Propose(rng)
		for _, it := range []int{3, 4} {
			assert.Equal(t, it, st.ord.Position(model.Item(it)))
		}
		st.Reject()
	}
}

func TestSolveScenarios(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		cs    []model.Constraint
		start []model.Item
	}{
		{
			name:  "single constraint from violated start",
			n:     3,
			cs:    []model.Constraint{{A: 0, B: 1, C: 2}},
			start: []model.Item{0, 2, 1},
		},
		{
			name:  "two constraints from identity",
			n:     4,
			cs:    []model.Constraint{{A: 0, B: 2, C: 1}, {A: 1, B: 3, C: 2}},
			start: []model.Item{0, 1, 2, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst := model.NewInstance(tt.n, tt.cs)
			start := model.MustOrdering(tt.start)
			res, err := testSolver(fastConfig(7)).Solve(context.Background(), inst, &start)
			require.NoError(t, err)
			assert.True(t, res.Solved())
			assert.GreaterOrEqual(t, res.Attempts, 1)

			set, _ := inst.Set()
			assert.True(t, set.SatisfiedBy(res.Ordering))
		})
	}
}

func TestSolveAlreadySatisfied(t *testing.T) {
	inst := model.NewInstance(3, []model.Constraint{{A: 0, B: 1, C: 2}})
	start := model.Identity(3)
	res, err := testSolver(fastConfig(1)).Solve(context.Background(), inst, &start)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Attempts)
	assert.Equal(t, 0, res.Energy)
}

func TestSolveReportsDedup(t *testing.T) {
	inst := model.NewInstance(4, []model.Constraint{
		{A: 0, B: 2, C: 1},
		{A: 2, B: 0, C: 1},
		{A: 1, B: 3, C: 2},
	})
	res, err := testSolver(fastConfig(3)).Solve(context.Background(), inst, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Input)
	assert.Equal(t, 2, res.Unique)
	assert.Equal(t, 1, res.Duplicates())
	assert.NotEmpty(t, res.RunID)
}

func TestSolveExhausted(t *testing.T) {
	// Some item of three is always in the middle.
	inst := model.NewInstance(3, []model.Constraint{
		{A: 0, B: 1, C: 2},
		{A: 0, B: 2, C: 1},
		{A: 1, B: 2, C: 0},
	})
	cfg := fastConfig(9)
	cfg.Steps = 200
	cfg.MaxAttempts = 3

	var attempts []Attempt
	s := testSolver(cfg)
	s.OnAttempt = func(a Attempt) { attempts = append(attempts, a) }

	res, err := s.Solve(context.Background(), inst, nil)
	require.Error(t, err)
	assert.True(t, errors.IsExhausted(err))
	assert.Equal(t, errors.ErrCodeAttemptsExhausted, errors.GetCode(err))

	require.NotNil(t, res)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, 1, res.Energy)
	assert.Equal(t, 600, res.Steps)
	require.Len(t, attempts, 3)
	for i, a := range attempts {
		assert.Equal(t, i+1, a.Number)
		assert.Equal(t, anneal.Exhausted, a.Status)
		assert.Equal(t, anneal.StopBudget, a.Reason)
		assert.Equal(t, 1, a.BestEnergy)
	}
}

func TestSolveCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inst := generated(t, 20, 48, 11)
	res, err := testSolver(fastConfig(11)).Solve(ctx, inst, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Equal(t, 20, res.Ordering.Len())
}

func TestSolveValidates(t *testing.T) {
	inst := model.NewInstance(3, []model.Constraint{{A: 0, B: 1, C: 2}})

	bad := fastConfig(1)
	bad.Window = 1
	_, err := testSolver(bad).Solve(context.Background(), inst, nil)
	assert.Equal(t, errors.ErrCodeInvalidConfig, errors.GetCode(err))

	start := model.Identity(4)
	_, err = testSolver(fastConfig(1)).Solve(context.Background(), inst, &start)
	assert.Equal(t, errors.ErrCodeInvalidOrdering, errors.GetCode(err))

	broken := model.NewInstance(3, []model.Constraint{{A: 0, B: 0, C: 2}})
	_, err = testSolver(fastConfig(1)).Solve(context.Background(), broken, nil)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
}

func TestSolveIsDeterministic(t *testing.T) {
	inst := generated(t, 20, 48, 13)
	a, err := testSolver(fastConfig(42)).Solve(context.Background(), inst, nil)
	require.NoError(t, err)
	b, err := testSolver(fastConfig(42)).Solve(context.Background(), inst, nil)
	require.NoError(t, err)

	assert.True(t, a.Ordering.Equal(b.Ordering))
	assert.Equal(t, a.Attempts, b.Attempts)
	assert.Equal(t, a.Steps, b.Steps)
}

func TestSolveWithVerify(t *testing.T) {
	inst := generated(t, 12, 29, 17)
	cfg := fastConfig(17)
	cfg.Moves = Moves()
	cfg.Verify = true
	res, err := testSolver(cfg).Solve(context.Background(), inst, nil)
	require.NoError(t, err)
	assert.True(t, res.Solved())
}

func TestSolveRandomInstancesMostlySucceed(t *testing.T) {
	if testing.Short() {
		t.Skip("slow")
	}
	const runs = 20
	solved := 0
	for i := range runs {
		inst := generated(t, 20, 48, uint64(100+i))
		cfg := DefaultConfig()
		cfg.Updates = 0
		cfg.Seed = uint64(1000 + i)
		res, err := testSolver(cfg).Solve(context.Background(), inst, nil)
		if err == nil && res.Solved() {
			solved++
		}
	}
	assert.GreaterOrEqual(t, float64(solved)/runs, 0.95)
}

func TestSolveParallel(t *testing.T) {
	inst := generated(t, 16, 38, 21)
	cfg := fastConfig(21)

	var mu sync.Mutex
	seen := 0
	s := testSolver(cfg)
	s.OnAttempt = func(Attempt) {
		mu.Lock()
		seen++
		mu.Unlock()
	}

	res, err := s.SolveParallel(context.Background(), inst, 4)
	require.NoError(t, err)
	assert.True(t, res.Solved())
	assert.Positive(t, seen)

	_, err = s.SolveParallel(context.Background(), inst, 0)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no moves", func(c *Config) { c.Moves = nil }},
		{"unknown move", func(c *Config) { c.Moves = []Move{"teleport"} }},
		{"no attempts", func(c *Config) { c.MaxAttempts = 0 }},
		{"negative timeout", func(c *Config) { c.Timeout = -1 }},
		{"bad schedule", func(c *Config) { c.Tmin = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSolveNormalizesMoveNames(t *testing.T) {
	inst := model.NewInstance(3, []model.Constraint{{A: 0, B: 1, C: 2}})
	start := model.MustOrdering([]model.Item{0, 2, 1})

	cfg := fastConfig(11)
	cfg.Steps = 2000
	cfg.MaxAttempts = 3
	cfg.Moves = []Move{"Window", " SWAP"}
	res, err := testSolver(cfg).Solve(context.Background(), inst, &start)
	require.NoError(t, err)
	assert.Zero(t, res.Energy)
	assert.Equal(t, []Move{"Window", " SWAP"}, cfg.Moves, "caller config is left untouched")
}

func TestProposePanicsOnUnknownMove(t *testing.T) {
	set, _ := model.Dedup([]model.Constraint{{A: 0, B: 1, C: 2}})
	st := newState(set, model.Identity(3), []Move{"teleport"}, 3)
	assert.Panics(t, func() { st.Propose(seeded(1)) })
}

func TestMoveUnmarshalText(t *testing.T) {
	var m Move
	require.NoError(t, m.UnmarshalText([]byte("Repair")))
	assert.Equal(t, MoveRepair, m)
	assert.Error(t, m.UnmarshalText([]byte("jump")))
}

func TestParseMoves(t *testing.T) {
	moves, err := ParseMoves([]string{"Window", " repair", "SWAP", "adjacent"})
	require.NoError(t, err)
	assert.Equal(t, Moves(), moves)

	_, err = ParseMoves([]string{"window", "jump"})
	assert.Error(t, err)
}
