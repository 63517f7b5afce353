package config

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/betwixt/pkg/errors"
	"github.com/matzehuels/betwixt/pkg/model"
	"github.com/matzehuels/betwixt/pkg/solver"
)

func write(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.34, cfg.Solver.Tmax)
	assert.Equal(t, 0.008, cfg.Solver.Tmin)
	assert.Equal(t, 180000, cfg.Solver.Steps)
	assert.Equal(t, 1500, cfg.Solver.Updates)
	assert.Equal(t, 3, cfg.Solver.Window)
	assert.Equal(t, []solver.Move{solver.MoveWindow}, cfg.Solver.Moves)
	assert.Equal(t, 2.4, cfg.Generator.Ratio)
	assert.Equal(t, "newline", cfg.Output.Format)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := write(t, `
[solver]
steps = 5000
moves = ["window", "repair"]
timeout = "90s"
seed = 7

[generator]
strategy = "single_side_neighbor"

[output]
format = "space"

[cache]
backend = "none"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Solver.Steps)
	assert.Equal(t, 0.34, cfg.Solver.Tmax, "unset keys keep defaults")
	assert.Equal(t, []solver.Move{solver.MoveWindow, solver.MoveRepair}, cfg.Solver.Moves)
	assert.Equal(t, 90*time.Second, cfg.Solver.Timeout)
	assert.Equal(t, uint64(7), cfg.Solver.Seed)
	assert.Equal(t, "single_side_neighbor", cfg.Generator.Strategy)
	assert.Equal(t, "space", cfg.Output.Format)
	assert.Equal(t, BackendNone, cfg.Cache.Backend)
}

func TestLoadNormalizesMoveNames(t *testing.T) {
	cfg, err := Load(write(t, `
[solver]
moves = ["Window", "SWAP"]
steps = 2000
max_attempts = 3
seed = 5
`))
	require.NoError(t, err)
	assert.Equal(t, []solver.Move{solver.MoveWindow, solver.MoveSwap}, cfg.Solver.Moves)

	inst := model.NewInstance(3, []model.Constraint{{A: 0, B: 1, C: 2}})
	start := model.MustOrdering([]model.Item{0, 2, 1})
	s := solver.New(cfg.Solver)
	s.Logger = log.New(io.Discard)
	res, err := s.Solve(context.Background(), inst, &start)
	require.NoError(t, err)
	assert.Zero(t, res.Energy)
	assert.False(t, res.Ordering.Equal(start))
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", "[solver\nsteps = 1"},
		{"unknown key", "[solver]\nstepz = 10"},
		{"bad move", "[solver]\nmoves = [\"teleport\"]"},
		{"bad strategy", "[generator]\nstrategy = \"clever\""},
		{"bad format", "[output]\nformat = \"csv\""},
		{"redis without url", "[cache]\nbackend = \"redis\""},
		{"mongo without uri", "[store]\nbackend = \"mongo\""},
		{"unknown store", "[store]\nbackend = \"postgres\""},
		{"zero ratio", "[generator]\nratio = 0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(write(t, tt.body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig), "got %v", err)
		})
	}
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Find("", dir)
	require.NoError(t, err)
	assert.Equal(t, Default().Solver.Steps, cfg.Solver.Steps)

	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("[solver]\nsteps = 10\n"), 0o644))
	cfg, err = Find("", dir)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Solver.Steps)

	_, err = Find(filepath.Join(dir, "missing.toml"), dir)
	assert.Error(t, err)
}
