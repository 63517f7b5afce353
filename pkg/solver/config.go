package solver

import (
	"time"

	"github.com/matzehuels/betwixt/pkg/anneal"
	"github.com/matzehuels/betwixt/pkg/errors"
)

const (
	DefaultWindow      = 3
	DefaultMaxAttempts = 50
)

// Config controls a solve.
type Config struct {
	anneal.Schedule

	// Window is the length of the window shuffled by [MoveWindow].
	Window int `toml:"window" json:"window"`

	// Moves lists the enabled moves; each step picks one uniformly.
	Moves []Move `toml:"moves" json:"moves"`

	// MaxAttempts bounds the number of annealing runs per solve.
	MaxAttempts int `toml:"max_attempts" json:"max_attempts"`

	// Seed fixes the random source. Zero draws a seed from the clock.
	Seed uint64 `toml:"seed" json:"seed"`

	// Timeout is a wall-clock limit for the whole solve. Zero means none.
	Timeout time.Duration `toml:"timeout" json:"timeout"`

	// RandomStart begins a solve without an explicit start ordering from
	// a random permutation instead of the identity.
	RandomStart bool `toml:"random_start" json:"random_start"`

	// Verify recomputes the energy from scratch after every step and
	// fails the solve on any mismatch. Slow; meant for debugging.
	Verify bool `toml:"verify" json:"verify"`
}

// DefaultConfig returns the default solver configuration.
func DefaultConfig() Config {
	return Config{
		Schedule:    anneal.DefaultSchedule(),
		Window:      DefaultWindow,
		Moves:       []Move{MoveWindow},
		MaxAttempts: DefaultMaxAttempts,
		RandomStart: true,
	}
}

// normalized returns c with every move name in canonical form.
func (c Config) normalized() (Config, error) {
	moves := make([]Move, len(c.Moves))
	for i, m := range c.Moves {
		parsed, err := ParseMove(string(m))
		if err != nil {
			return c, err
		}
		moves[i] = parsed
	}
	c.Moves = moves
	return c, nil
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if err := c.Schedule.Validate(); err != nil {
		return err
	}
	if c.Window < 2 {
		return errors.New(errors.ErrCodeInvalidConfig, "window must be at least 2, got %d", c.Window)
	}
	if len(c.Moves) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "at least one move is required")
	}
	for _, m := range c.Moves {
		if _, err := ParseMove(string(m)); err != nil {
			return err
		}
	}
	if c.MaxAttempts < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "max attempts must be at least 1, got %d", c.MaxAttempts)
	}
	if c.Timeout < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "timeout must not be negative")
	}
	return nil
}
