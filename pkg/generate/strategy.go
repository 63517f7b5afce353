package generate

import (
	"strings"

	"github.com/matzehuels/betwixt/pkg/errors"
)

// Strategy selects how constraints are drawn.
type Strategy int

const (
	Random Strategy = iota
	SingleSideNeighbor
	Balanced
	InwardMerge
)

var strategyNames = map[Strategy]string{
	Random:             "random",
	SingleSideNeighbor: "single-side-neighbor",
	Balanced:           "balanced",
	InwardMerge:        "inward-merge",
}

// Strategies lists every strategy name accepted by [ParseStrategy].
func Strategies() []string {
	return []string{"random", "single-side-neighbor", "balanced", "inward-merge"}
}

// String returns the flag spelling of s.
func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseStrategy resolves a strategy name. Underscores and case are
// ignored, so "SINGLE_SIDE_NEIGHBOR" and "ssn" are accepted.
func ParseStrategy(name string) (Strategy, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	switch norm {
	case "ssn":
		return SingleSideNeighbor, nil
	case "", "rand":
		return Random, nil
	}
	for s, n := range strategyNames {
		if n == norm {
			return s, nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidConfig, "unknown strategy %q (valid: %s)", name, strings.Join(Strategies(), ", "))
}
