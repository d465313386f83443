package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/snapdeck/snapdeck-review-engine/internal/core/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresItemRepository struct {
	db *sqlx.DB
}

func NewPostgresItemRepository(db *sqlx.DB) *PostgresItemRepository {
	return &PostgresItemRepository{db: db}
}

func (r *PostgresItemRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Item, error) {
	items := []*domain.Item{}

	query := `
		SELECT id, user_id, front, back, source_url, created_at
		FROM items
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC`

	if err := r.db.SelectContext(ctx, &items, query, userID); err != nil {
		return nil, fmt.Errorf("item list query failed: %w", err)
	}
	return items, nil
}

func (r *PostgresItemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	var item domain.Item

	query := `
		SELECT id, user_id, front, back, source_url, created_at
		FROM items
		WHERE id = $1 AND deleted_at IS NULL`

	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("item query failed: %w", err)
	}
	return &item, nil
}
