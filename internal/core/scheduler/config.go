package scheduler

import (
	"fmt"

	"github.com/snapdeck/snapdeck-review-engine/internal/core/domain"
)

// AlgorithmVersion tags review log entries so historical ratings can be
// traced back to the rules that produced them.
const AlgorithmVersion = "sm2-mod/1"

// MinutesPerDay converts sub-day intervals; IntervalDays is the only
// interval unit the engine stores.
const MinutesPerDay = 24 * 60

// RatingDays is a fixed per-rating interval lookup, in days.
type RatingDays struct {
	Again float64 `toml:"again"`
	Hard  float64 `toml:"hard"`
	Good  float64 `toml:"good"`
	Easy  float64 `toml:"easy"`
}

// For returns the interval for the given rating.
func (t RatingDays) For(r domain.Rating) float64 {
	switch r {
	case domain.RatingAgain:
		return t.Again
	case domain.RatingHard:
		return t.Hard
	case domain.RatingGood:
		return t.Good
	case domain.RatingEasy:
		return t.Easy
	default:
		panic(fmt.Sprintf("scheduler: %s", r))
	}
}

// Config holds the scheduling tunables. Values are immutable once the
// config is handed to a service; copy and modify instead of mutating.
type Config struct {
	InitialEase float64 `toml:"initial_ease"`
	MinimumEase float64 `toml:"minimum_ease"`

	// Ease adjustments applied only to review-phase items.
	EaseBonus RatingDays `toml:"ease_bonus"`

	HardMultiplier float64 `toml:"hard_multiplier"`
	EasyMultiplier float64 `toml:"easy_multiplier"`

	// NewIntervals is the fixed lookup for first exposures: ease cannot be
	// estimated before the item has been seen, so intervals are not
	// ease-derived here.
	NewIntervals RatingDays `toml:"new_intervals"`

	// GraduationIntervals is the fixed lookup for items leaving the
	// learning or relearning phase. Again never graduates, so that field
	// is unused.
	GraduationIntervals RatingDays `toml:"graduation_intervals"`

	// LapseIntervalDays is the short interval applied whenever an item is
	// rated again outside the new phase. Defaults to ten minutes.
	LapseIntervalDays float64 `toml:"lapse_interval_days"`

	MaxIntervalDays float64 `toml:"max_interval_days"`
}

// DefaultConfig returns the tunables the product ships with.
func DefaultConfig() Config {
	lapse := 10.0 / MinutesPerDay

	return Config{
		InitialEase: 2.5,
		MinimumEase: 1.3,
		EaseBonus: RatingDays{
			Again: -0.20,
			Hard:  -0.15,
			Good:  0,
			Easy:  0.15,
		},
		HardMultiplier: 1.2,
		EasyMultiplier: 1.3,
		NewIntervals: RatingDays{
			Again: lapse,
			Hard:  1,
			Good:  3,
			Easy:  7,
		},
		GraduationIntervals: RatingDays{
			Hard: 1,
			Good: 2,
			Easy: 4,
		},
		LapseIntervalDays: lapse,
		MaxIntervalDays:   365,
	}
}

// Validate checks the config for values that would corrupt scheduling.
func (c Config) Validate() error {
	if c.MinimumEase <= 0 {
		return fmt.Errorf("scheduler: minimum ease %v must be positive", c.MinimumEase)
	}
	if c.InitialEase < c.MinimumEase {
		return fmt.Errorf("scheduler: initial ease %v below minimum %v", c.InitialEase, c.MinimumEase)
	}
	if c.HardMultiplier <= 0 || c.EasyMultiplier <= 0 {
		return fmt.Errorf("scheduler: interval multipliers must be positive")
	}
	if c.LapseIntervalDays <= 0 {
		return fmt.Errorf("scheduler: lapse interval %v must be positive", c.LapseIntervalDays)
	}
	if c.MaxIntervalDays <= 0 {
		return fmt.Errorf("scheduler: maximum interval %v must be positive", c.MaxIntervalDays)
	}
	for _, r := range domain.Ratings {
		if c.NewIntervals.For(r) <= 0 {
			return fmt.Errorf("scheduler: new interval for %s must be positive", r)
		}
	}
	for _, r := range []domain.Rating{domain.RatingHard, domain.RatingGood, domain.RatingEasy} {
		if c.GraduationIntervals.For(r) <= 0 {
			return fmt.Errorf("scheduler: graduation interval for %s must be positive", r)
		}
	}
	return nil
}
