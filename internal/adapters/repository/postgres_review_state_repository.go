package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/snapdeck/snapdeck-review-engine/internal/core/domain"
)

type PostgresReviewStateRepository struct {
	db *sqlx.DB
}

func NewPostgresReviewStateRepository(db *sqlx.DB) *PostgresReviewStateRepository {
	return &PostgresReviewStateRepository{db: db}
}

const reviewStateColumns = `
	user_id, item_id, status, interval_days, ease_factor, due_at,
	review_count, lapse_count, streak, updated_at`

func (r *PostgresReviewStateRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.ReviewState, error) {
	states := []*domain.ReviewState{}

	query := `SELECT ` + reviewStateColumns + `
		FROM review_states
		WHERE user_id = $1
		ORDER BY due_at ASC`

	if err := r.db.SelectContext(ctx, &states, query, userID); err != nil {
		return nil, fmt.Errorf("review state list query failed: %w", err)
	}
	return states, nil
}

func (r *PostgresReviewStateRepository) ListByItemIDs(ctx context.Context, userID string, itemIDs []string) ([]*domain.ReviewState, error) {
	states := []*domain.ReviewState{}
	if len(itemIDs) == 0 {
		return states, nil
	}

	query := `SELECT ` + reviewStateColumns + `
		FROM review_states
		WHERE user_id = $1 AND item_id = ANY($2)
		ORDER BY due_at ASC`

	if err := r.db.SelectContext(ctx, &states, query, userID, pq.Array(itemIDs)); err != nil {
		return nil, fmt.Errorf("review state set query failed: %w", err)
	}
	return states, nil
}

func (r *PostgresReviewStateRepository) Get(ctx context.Context, userID, itemID string) (*domain.ReviewState, error) {
	var state domain.ReviewState

	query := `SELECT ` + reviewStateColumns + `
		FROM review_states
		WHERE user_id = $1 AND item_id = $2`

	if err := r.db.GetContext(ctx, &state, query, userID, itemID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrStateNotFound
		}
		return nil, fmt.Errorf("review state query failed: %w", err)
	}
	return &state, nil
}

// Upsert inserts on first rating and replaces afterwards. Last write wins
// per item; concurrent sittings for the same user are an accepted race.
func (r *PostgresReviewStateRepository) Upsert(ctx context.Context, state *domain.ReviewState) error {
	query := `
		INSERT INTO review_states (
			user_id, item_id, status, interval_days, ease_factor, due_at,
			review_count, lapse_count, streak, updated_at
		) VALUES (
			:user_id, :item_id, :status, :interval_days, :ease_factor, :due_at,
			:review_count, :lapse_count, :streak, :updated_at
		)
		ON CONFLICT (user_id, item_id) DO UPDATE SET
			status = EXCLUDED.status,
			interval_days = EXCLUDED.interval_days,
			ease_factor = EXCLUDED.ease_factor,
			due_at = EXCLUDED.due_at,
			review_count = EXCLUDED.review_count,
			lapse_count = EXCLUDED.lapse_count,
			streak = EXCLUDED.streak,
			updated_at = EXCLUDED.updated_at`

	if _, err := r.db.NamedExecContext(ctx, query, state); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return errors.New("referenced item or user does not exist")
		}
		return fmt.Errorf("review state upsert failed: %w", err)
	}
	return nil
}
