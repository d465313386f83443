// Package scheduler implements the spaced-repetition scheduling rules:
// a pure state-transition function over per-item review state, plus the
// interval formatter and rating preview built on top of it.
package scheduler

import (
	"fmt"
	"math"
	"time"

	"github.com/snapdeck/snapdeck-review-engine/internal/core/domain"
)

// Next computes the review state that follows prev after the given rating.
// prev may be nil, which is treated as a first exposure (status new,
// interval zero, ease cfg.InitialEase). The input state is never mutated.
//
// Next is deterministic: the same prev, rating, config and clock reading
// always produce the same result. An invalid rating is a caller bug and
// panics.
func Next(prev *domain.ReviewState, rating domain.Rating, cfg Config, now time.Time) domain.ReviewState {
	if !rating.IsValid() {
		panic(fmt.Sprintf("scheduler: invalid rating %d", int(rating)))
	}

	next := domain.ReviewState{
		Status:     domain.StatusNew,
		EaseFactor: cfg.InitialEase,
	}
	if prev != nil {
		next = *prev
	}

	switch next.Status {
	case domain.StatusNew:
		rateNew(&next, rating, cfg)
	case domain.StatusLearning, domain.StatusRelearning:
		rateLearning(&next, rating, cfg)
	default:
		// Review; a suspended item that gets rated anyway re-enters the
		// review cycle under review rules.
		rateReview(&next, rating, cfg)
	}

	if next.IntervalDays > cfg.MaxIntervalDays {
		next.IntervalDays = cfg.MaxIntervalDays
	}

	next.DueAt = now.Add(daysToDuration(next.IntervalDays))
	next.ReviewCount++
	if rating == domain.RatingAgain {
		next.Streak = 0
	} else {
		next.Streak++
	}
	next.UpdatedAt = now

	return next
}

// rateNew handles first exposures. Intervals come from the fixed
// per-rating lookup; ease is only touched on a failed first recall.
func rateNew(s *domain.ReviewState, rating domain.Rating, cfg Config) {
	s.IntervalDays = cfg.NewIntervals.For(rating)

	if rating == domain.RatingAgain {
		s.Status = domain.StatusLearning
		s.EaseFactor = floorEase(s.EaseFactor+cfg.EaseBonus.Again, cfg)
		return
	}
	s.Status = domain.StatusReview
}

// rateLearning handles the learning and relearning phases. Ease is frozen
// here; graduation intervals come from the fixed lookup.
func rateLearning(s *domain.ReviewState, rating domain.Rating, cfg Config) {
	if rating == domain.RatingAgain {
		// Stay in phase, retry shortly.
		s.IntervalDays = cfg.LapseIntervalDays
		return
	}
	s.Status = domain.StatusReview
	s.IntervalDays = cfg.GraduationIntervals.For(rating)
}

// rateReview handles graduated items: ease-derived growth, lapse on again.
func rateReview(s *domain.ReviewState, rating domain.Rating, cfg Config) {
	s.EaseFactor = floorEase(s.EaseFactor+cfg.EaseBonus.For(rating), cfg)

	switch rating {
	case domain.RatingAgain:
		s.Status = domain.StatusRelearning
		s.IntervalDays = cfg.LapseIntervalDays
		s.LapseCount++
	case domain.RatingHard:
		s.Status = domain.StatusReview
		s.IntervalDays = math.Max(1, s.IntervalDays*cfg.HardMultiplier)
	case domain.RatingGood:
		s.Status = domain.StatusReview
		s.IntervalDays = math.Max(1, s.IntervalDays*s.EaseFactor)
	case domain.RatingEasy:
		s.Status = domain.StatusReview
		s.IntervalDays = math.Max(1, s.IntervalDays*s.EaseFactor*cfg.EasyMultiplier)
	}
}

func floorEase(ease float64, cfg Config) float64 {
	if ease < cfg.MinimumEase {
		return cfg.MinimumEase
	}
	return ease
}

func daysToDuration(days float64) time.Duration {
	return time.Duration(days * 24 * float64(time.Hour))
}
