package services

import (
	"context"
	"time"

	"github.com/snapdeck/snapdeck-review-engine/internal/core/domain"
)

// DailyStat aggregates one calendar day of review activity.
type DailyStat struct {
	Date       string  `json:"date"`
	Reviews    int     `json:"reviews"`
	Lapses     int     `json:"lapses"`
	Introduced int     `json:"introduced"`
	RecallRate float64 `json:"recall_rate"`
}

// ReviewStats summarizes review activity over an inclusive date range.
type ReviewStats struct {
	StartDate    string      `json:"start_date"`
	EndDate      string      `json:"end_date"`
	TotalReviews int         `json:"total_reviews"`
	TotalLapses  int         `json:"total_lapses"`
	RecallRate   float64     `json:"recall_rate"`
	Days         []DailyStat `json:"days"`
}

// StatsInput bounds a stats query.
type StatsInput struct {
	UserID    string
	StartDate time.Time
	EndDate   time.Time
}

// StatsService derives activity summaries from the review log.
type StatsService struct {
	logs domain.ReviewLogRepository
}

func NewStatsService(logs domain.ReviewLogRepository) *StatsService {
	return &StatsService{
		logs: logs,
	}
}

// GetRangeStats aggregates log entries per calendar day between StartDate and
// EndDate inclusive. Days without activity still appear, with zero counts.
// Recall rate counts every non-again rating as a successful recall; a lapse
// is an again rating on an item that was in review.
func (s *StatsService) GetRangeStats(ctx context.Context, input StatsInput) (*ReviewStats, error) {
	startDate := startOfDay(input.StartDate)
	endDate := startOfDay(input.EndDate)

	entries, err := s.logs.ListByUserID(ctx, input.UserID, startDate, endDate.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	type bucket struct {
		reviews    int
		lapses     int
		recalled   int
		introduced map[string]bool
	}

	buckets := make(map[string]*bucket)
	for _, e := range entries {
		dateKey := e.ReviewedAt.Format("2006-01-02")
		b, ok := buckets[dateKey]
		if !ok {
			b = &bucket{introduced: make(map[string]bool)}
			buckets[dateKey] = b
		}

		b.reviews++
		if e.Rating == domain.RatingAgain {
			if e.PrevStatus == domain.StatusReview {
				b.lapses++
			}
		} else {
			b.recalled++
		}
		if e.PrevStatus == domain.StatusNew {
			b.introduced[e.ItemID] = true
		}
	}

	stats := &ReviewStats{
		StartDate: startDate.Format("2006-01-02"),
		EndDate:   endDate.Format("2006-01-02"),
		Days:      make([]DailyStat, 0),
	}

	totalRecalled := 0

	currentDate := startDate
	for !currentDate.After(endDate) {
		dateKey := currentDate.Format("2006-01-02")

		day := DailyStat{Date: dateKey}
		if b, ok := buckets[dateKey]; ok {
			day.Reviews = b.reviews
			day.Lapses = b.lapses
			day.Introduced = len(b.introduced)
			if b.reviews > 0 {
				day.RecallRate = float64(b.recalled) / float64(b.reviews) * 100
			}

			stats.TotalReviews += b.reviews
			stats.TotalLapses += b.lapses
			totalRecalled += b.recalled
		}
		stats.Days = append(stats.Days, day)

		currentDate = currentDate.AddDate(0, 0, 1)
	}

	if stats.TotalReviews > 0 {
		stats.RecallRate = float64(totalRecalled) / float64(stats.TotalReviews) * 100
	}

	return stats, nil
}
