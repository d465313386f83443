package services

import (
	"context"
	"log"
	"time"

	"github.com/snapdeck/snapdeck-review-engine/internal/core/domain"
)

// Quota is the daily new-item budget at a point in time.
type Quota struct {
	Limit      int  `json:"limit"`      // configured per-day limit, 0 = unlimited
	Introduced int  `json:"introduced"` // distinct items first rated since local midnight
	Remaining  int  `json:"remaining"`  // meaningless when Unlimited
	Unlimited  bool `json:"unlimited"`
}

// Allow returns how many of n candidate new items fit into the quota.
func (q Quota) Allow(n int) int {
	if q.Unlimited {
		return n
	}
	if n > q.Remaining {
		return q.Remaining
	}
	return n
}

// QuotaService computes how many never-reviewed items may still enter a
// sitting today. Introductions are counted from the review log: a logged
// rating whose previous status was new, deduplicated by item ID.
type QuotaService struct {
	logs   domain.ReviewLogRepository
	config domain.ConfigSource
}

func NewQuotaService(logs domain.ReviewLogRepository, config domain.ConfigSource) *QuotaService {
	return &QuotaService{
		logs:   logs,
		config: config,
	}
}

// Remaining returns the quota left for the local calendar day containing
// now. A failure to count today's introductions yields a remaining of
// zero; the daily cap must never be exceeded because of a counting error.
func (s *QuotaService) Remaining(ctx context.Context, userID string, now time.Time) Quota {
	limit, err := s.config.DailyNewLimit(ctx, userID)
	if err != nil {
		log.Printf("[QUOTA] Failed to read daily limit for user %s, using default: %v", userID, err)
		limit = domain.DefaultDailyNewLimit
	}
	if limit < 0 {
		limit = domain.DefaultDailyNewLimit
	}

	if limit == 0 {
		return Quota{Limit: 0, Unlimited: true}
	}

	introduced, err := s.logs.CountIntroducedSince(ctx, userID, startOfDay(now))
	if err != nil {
		log.Printf("[QUOTA] Failed to count introductions for user %s, assuming quota exhausted: %v", userID, err)
		return Quota{Limit: limit, Introduced: limit, Remaining: 0}
	}

	remaining := limit - introduced
	if remaining < 0 {
		remaining = 0
	}

	return Quota{Limit: limit, Introduced: introduced, Remaining: remaining}
}

// startOfDay returns local midnight for the day containing t. Quota
// counting and session expiry share this boundary.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
