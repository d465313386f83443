package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/snapdeck/snapdeck-review-engine/internal/core/domain"
)

type PostgresReviewLogRepository struct {
	db *sqlx.DB
}

func NewPostgresReviewLogRepository(db *sqlx.DB) *PostgresReviewLogRepository {
	return &PostgresReviewLogRepository{db: db}
}

func (r *PostgresReviewLogRepository) Append(ctx context.Context, entry *domain.ReviewLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	query := `
		INSERT INTO review_logs (
			id, user_id, item_id, rating,
			prev_status, prev_interval, prev_ease,
			new_status, new_interval, new_ease,
			algorithm_version, reviewed_at
		) VALUES (
			:id, :user_id, :item_id, :rating,
			:prev_status, :prev_interval, :prev_ease,
			:new_status, :new_interval, :new_ease,
			:algorithm_version, :reviewed_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("review log append failed: %w", err)
	}
	return nil
}

func (r *PostgresReviewLogRepository) CountIntroducedSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var count int

	query := `
		SELECT COUNT(DISTINCT item_id)
		FROM review_logs
		WHERE user_id = $1 AND prev_status = 'new' AND reviewed_at >= $2`

	if err := r.db.GetContext(ctx, &count, query, userID, since); err != nil {
		return 0, fmt.Errorf("introduction count query failed: %w", err)
	}
	return count, nil
}

func (r *PostgresReviewLogRepository) ListByUserID(ctx context.Context, userID string, from, to time.Time) ([]*domain.ReviewLogEntry, error) {
	entries := []*domain.ReviewLogEntry{}

	query := `
		SELECT id, user_id, item_id, rating,
			prev_status, prev_interval, prev_ease,
			new_status, new_interval, new_ease,
			algorithm_version, reviewed_at
		FROM review_logs
		WHERE user_id = $1 AND reviewed_at >= $2 AND reviewed_at <= $3
		ORDER BY reviewed_at DESC`

	if err := r.db.SelectContext(ctx, &entries, query, userID, from, to); err != nil {
		return nil, fmt.Errorf("review log list query failed: %w", err)
	}
	return entries, nil
}
