package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReviewLogEntry is the immutable audit record of one rating event. Entries
// are append-only: the quota tracker counts first exposures from them and
// nothing else in the engine depends on the log.
type ReviewLogEntry struct {
	ID     string `json:"id" db:"id"`
	UserID string `json:"user_id" db:"user_id"`
	ItemID string `json:"item_id" db:"item_id"`
	Rating Rating `json:"rating" db:"rating"`

	PrevStatus   Status  `json:"prev_status" db:"prev_status"`
	PrevInterval float64 `json:"prev_interval" db:"prev_interval"`
	PrevEase     float64 `json:"prev_ease" db:"prev_ease"`

	NewStatus   Status  `json:"new_status" db:"new_status"`
	NewInterval float64 `json:"new_interval" db:"new_interval"`
	NewEase     float64 `json:"new_ease" db:"new_ease"`

	AlgorithmVersion string    `json:"algorithm_version" db:"algorithm_version"`
	ReviewedAt       time.Time `json:"reviewed_at" db:"reviewed_at"`
}

// NewReviewLogEntry snapshots a transition between two review states.
func NewReviewLogEntry(prev, next *ReviewState, rating Rating, algoVersion string, reviewedAt time.Time) *ReviewLogEntry {
	return &ReviewLogEntry{
		ID:               uuid.New().String(),
		UserID:           next.UserID,
		ItemID:           next.ItemID,
		Rating:           rating,
		PrevStatus:       prev.Status,
		PrevInterval:     prev.IntervalDays,
		PrevEase:         prev.EaseFactor,
		NewStatus:        next.Status,
		NewInterval:      next.IntervalDays,
		NewEase:          next.EaseFactor,
		AlgorithmVersion: algoVersion,
		ReviewedAt:       reviewedAt,
	}
}
