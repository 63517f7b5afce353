package anneal

import (
	"math"

	"github.com/matzehuels/betwixt/pkg/errors"
)

// Default schedule parameters, tuned for instances of 20-50 items at a
// constraint ratio near 2.4.
const (
	DefaultTmax    = 0.34
	DefaultTmin    = 0.008
	DefaultSteps   = 180000
	DefaultUpdates = 1500
)

// Schedule fixes the cooling curve and budget of one run.
type Schedule struct {
	// Tmax is the starting temperature.
	Tmax float64 `toml:"tmax" json:"tmax"`
	// Tmin is the temperature reached at the last step.
	Tmin float64 `toml:"tmin" json:"tmin"`
	// Steps is the step budget of one run.
	Steps int `toml:"steps" json:"steps"`
	// Updates is the number of progress reports spread evenly over the
	// run. Zero disables reporting.
	Updates int `toml:"updates" json:"updates"`
}

// DefaultSchedule returns the default cooling schedule.
func DefaultSchedule() Schedule {
	return Schedule{
		Tmax:    DefaultTmax,
		Tmin:    DefaultTmin,
		Steps:   DefaultSteps,
		Updates: DefaultUpdates,
	}
}

// Validate checks the schedule for values the geometric curve cannot use.
func (s Schedule) Validate() error {
	if s.Tmax <= 0 || s.Tmin <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "temperatures must be positive (tmax=%g, tmin=%g)", s.Tmax, s.Tmin)
	}
	if s.Tmin > s.Tmax {
		return errors.New(errors.ErrCodeInvalidConfig, "tmin %g exceeds tmax %g", s.Tmin, s.Tmax)
	}
	if s.Steps <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "steps must be positive, got %d", s.Steps)
	}
	if s.Updates < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "updates must be non-negative, got %d", s.Updates)
	}
	return nil
}

// Temperature returns Tmax * (Tmin/Tmax)^(step/Steps).
func (s Schedule) Temperature(step int) float64 {
	return s.Tmax * math.Pow(s.Tmin/s.Tmax, float64(step)/float64(s.Steps))
}

// interval returns the number of steps between progress reports.
func (s Schedule) interval() int {
	if s.Updates <= 0 {
		return 0
	}
	return max(1, s.Steps/s.Updates)
}
