package solver

import (
	"strings"

	"github.com/matzehuels/betwixt/pkg/errors"
)

// Move names a neighbourhood operator.
type Move string

const (
	// MoveWindow shuffles a contiguous window of Config.Window positions.
	MoveWindow Move = "window"
	// MoveRepair picks a violated constraint, swaps C with A or B, then
	// swaps A and B with probability one half.
	MoveRepair Move = "repair"
	// MoveSwap exchanges two distinct random positions.
	MoveSwap Move = "swap"
	// MoveAdjacent exchanges two neighbouring positions.
	MoveAdjacent Move = "adjacent"
)

// Moves returns every supported move.
func Moves() []Move {
	return []Move{MoveWindow, MoveRepair, MoveSwap, MoveAdjacent}
}

// ParseMove parses a move name, case-insensitively.
func ParseMove(s string) (Move, error) {
	m := Move(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case MoveWindow, MoveRepair, MoveSwap, MoveAdjacent:
		return m, nil
	}
	return "", errors.New(errors.ErrCodeInvalidConfig, "unknown move %q (want window, repair, swap or adjacent)", s)
}

// UnmarshalText parses a move name from a config file or JSON document.
func (m *Move) UnmarshalText(text []byte) error {
	parsed, err := ParseMove(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMoves parses a list of move names.
func ParseMoves(names []string) ([]Move, error) {
	moves := make([]Move, 0, len(names))
	for _, name := range names {
		m, err := ParseMove(name)
		if err != nil {
			return nil, err
		}
		moves = append(moves, m)
	}
	return moves, nil
}
