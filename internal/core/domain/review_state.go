package domain

import (
	"errors"
	"time"
)

var (
	ErrInvalidRating = errors.New("invalid rating")
	ErrInvalidStatus = errors.New("invalid review status")
	ErrStateNotFound = errors.New("review state not found")
)

// ReviewState is the per-user, per-item scheduling record. It is created on
// the first rating of an item and superseded on every rating after that;
// it is never deleted.
type ReviewState struct {
	UserID       string    `json:"user_id" db:"user_id"`
	ItemID       string    `json:"item_id" db:"item_id"`
	Status       Status    `json:"status" db:"status"`
	IntervalDays float64   `json:"interval_days" db:"interval_days"`
	EaseFactor   float64   `json:"ease_factor" db:"ease_factor"`
	DueAt        time.Time `json:"due_at" db:"due_at"`
	ReviewCount  int       `json:"review_count" db:"review_count"`
	LapseCount   int       `json:"lapse_count" db:"lapse_count"`
	Streak       int       `json:"streak" db:"streak"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// IsDue reports whether the item should appear in a sitting at the given
// instant. Suspended items are never due.
func (s *ReviewState) IsDue(now time.Time) bool {
	if s.Status == StatusSuspended {
		return false
	}
	return !s.DueAt.After(now)
}
