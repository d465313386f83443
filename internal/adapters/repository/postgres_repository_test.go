package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapdeck/snapdeck-review-engine/internal/core/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		dbUser = "snapdeck_user"
	}
	dbPass := os.Getenv("DB_PASSWORD")
	if dbPass == "" {
		dbPass = "secret"
	}
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}
	dbPort := os.Getenv("DB_PORT")
	if dbPort == "" {
		dbPort = "5432"
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "snapdeck_db"
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPass, dbHost, dbPort, dbName)

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		t.Skipf("Skipping integration tests: database connection failed: %v", err)
	}
	return db
}

func cleanupReviewTables(t *testing.T, db *sqlx.DB) {
	_, err := db.Exec("TRUNCATE TABLE review_logs, review_states, items CASCADE")
	require.NoError(t, err, "Failed to clean up review tables")
}

func insertItemFixture(t *testing.T, db *sqlx.DB, id, userID, front string) {
	_, err := db.Exec(`
		INSERT INTO items (id, user_id, front, back, source_url, created_at)
		VALUES ($1, $2, $3, '', '', NOW())`, id, userID, front)
	require.NoError(t, err, "Failed to create item fixture")
}

func TestPostgresItemRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	cleanupReviewTables(t, db)
	defer cleanupReviewTables(t, db)

	repo := NewPostgresItemRepository(db)
	ctx := context.Background()

	userID := "pg-item-user"
	itemID := uuid.New().String()
	insertItemFixture(t, db, itemID, userID, "What does SELECT FOR UPDATE do?")

	t.Run("GetByID returns the stored item", func(t *testing.T) {
		item, err := repo.GetByID(ctx, itemID)
		require.NoError(t, err)
		assert.Equal(t, userID, item.UserID)
		assert.Equal(t, "What does SELECT FOR UPDATE do?", item.Front)
	})

	t.Run("ListByUserID scopes by user", func(t *testing.T) {
		insertItemFixture(t, db, uuid.New().String(), "someone-else", "other card")

		items, err := repo.ListByUserID(ctx, userID)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, itemID, items[0].ID)
	})

	t.Run("Soft-deleted items are invisible", func(t *testing.T) {
		deletedID := uuid.New().String()
		_, err := db.Exec(`
			INSERT INTO items (id, user_id, front, back, source_url, created_at, deleted_at)
			VALUES ($1, $2, 'gone', '', '', NOW(), NOW())`, deletedID, userID)
		require.NoError(t, err)

		_, err = repo.GetByID(ctx, deletedID)
		assert.ErrorIs(t, err, domain.ErrItemNotFound)

		items, err := repo.ListByUserID(ctx, userID)
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("Unknown ID yields ErrItemNotFound", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.New().String())
		assert.ErrorIs(t, err, domain.ErrItemNotFound)
	})
}

func TestPostgresReviewStateRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	cleanupReviewTables(t, db)
	defer cleanupReviewTables(t, db)

	repo := NewPostgresReviewStateRepository(db)
	ctx := context.Background()

	userID := "pg-state-user"
	itemID := uuid.New().String()
	insertItemFixture(t, db, itemID, userID, "state fixture card")

	now := time.Now().UTC().Truncate(time.Microsecond)
	state := &domain.ReviewState{
		UserID:       userID,
		ItemID:       itemID,
		Status:       domain.StatusReview,
		IntervalDays: 3,
		EaseFactor:   2.5,
		DueAt:        now.AddDate(0, 0, 3),
		ReviewCount:  1,
		Streak:       1,
		UpdatedAt:    now,
	}

	t.Run("Upsert inserts and Get round-trips, including enum columns", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, state))

		got, err := repo.Get(ctx, userID, itemID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusReview, got.Status)
		assert.Equal(t, 3.0, got.IntervalDays)
		assert.Equal(t, 2.5, got.EaseFactor)
		assert.WithinDuration(t, state.DueAt, got.DueAt, time.Millisecond)
	})

	t.Run("Upsert updates in place on conflict", func(t *testing.T) {
		updated := *state
		updated.Status = domain.StatusRelearning
		updated.IntervalDays = 10.0 / 1440
		updated.LapseCount = 1
		updated.Streak = 0
		require.NoError(t, repo.Upsert(ctx, &updated))

		got, err := repo.Get(ctx, userID, itemID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusRelearning, got.Status)
		assert.Equal(t, 1, got.LapseCount)

		states, err := repo.ListByUserID(ctx, userID)
		require.NoError(t, err)
		assert.Len(t, states, 1, "one row per (user, item)")
	})

	t.Run("ListByItemIDs resolves only rated items", func(t *testing.T) {
		states, err := repo.ListByItemIDs(ctx, userID, []string{itemID, uuid.New().String()})
		require.NoError(t, err)
		require.Len(t, states, 1)
		assert.Equal(t, itemID, states[0].ItemID)

		states, err = repo.ListByItemIDs(ctx, userID, nil)
		require.NoError(t, err)
		assert.Empty(t, states)
	})

	t.Run("Missing state yields ErrStateNotFound", func(t *testing.T) {
		_, err := repo.Get(ctx, userID, uuid.New().String())
		assert.ErrorIs(t, err, domain.ErrStateNotFound)
	})
}

func TestPostgresReviewLogRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	cleanupReviewTables(t, db)
	defer cleanupReviewTables(t, db)

	repo := NewPostgresReviewLogRepository(db)
	ctx := context.Background()

	userID := "pg-log-user"
	midnight := time.Now().UTC().Truncate(24 * time.Hour)

	appendEntry := func(itemID string, prev domain.Status, at time.Time) {
		err := repo.Append(ctx, &domain.ReviewLogEntry{
			UserID:           userID,
			ItemID:           itemID,
			Rating:           domain.RatingGood,
			PrevStatus:       prev,
			PrevEase:         2.5,
			NewStatus:        domain.StatusReview,
			NewInterval:      3,
			NewEase:          2.5,
			AlgorithmVersion: "sm2-mod/1",
			ReviewedAt:       at,
		})
		require.NoError(t, err)
	}

	t.Run("CountIntroducedSince deduplicates by item within the window", func(t *testing.T) {
		appendEntry("earlier", domain.StatusNew, midnight.Add(-time.Hour))
		appendEntry("first", domain.StatusNew, midnight.Add(8*time.Hour))
		appendEntry("first", domain.StatusNew, midnight.Add(9*time.Hour))
		appendEntry("second", domain.StatusNew, midnight.Add(10*time.Hour))
		appendEntry("veteran", domain.StatusReview, midnight.Add(11*time.Hour))

		count, err := repo.CountIntroducedSince(ctx, userID, midnight)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("ListByUserID returns the window newest first", func(t *testing.T) {
		entries, err := repo.ListByUserID(ctx, userID, midnight, midnight.Add(24*time.Hour))
		require.NoError(t, err)
		require.Len(t, entries, 4)
		assert.Equal(t, "veteran", entries[0].ItemID)

		for _, e := range entries {
			assert.False(t, e.ReviewedAt.Before(midnight))
		}
	})

	t.Run("Append assigns an ID when missing", func(t *testing.T) {
		entry := &domain.ReviewLogEntry{
			UserID:           userID,
			ItemID:           "id-check",
			Rating:           domain.RatingEasy,
			PrevStatus:       domain.StatusReview,
			NewStatus:        domain.StatusReview,
			AlgorithmVersion: "sm2-mod/1",
			ReviewedAt:       midnight.Add(12 * time.Hour),
		}
		require.NoError(t, repo.Append(ctx, entry))
		assert.NotEmpty(t, entry.ID)
	})
}
