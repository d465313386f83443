package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapdeck/snapdeck-review-engine/internal/core/domain"
)

func openTestStore(t *testing.T) *SQLiteStore {
	store, err := OpenSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedItem(t *testing.T, store *SQLiteStore, id, userID string) {
	t.Helper()
	err := store.AddItem(context.Background(), &domain.Item{
		ID:        id,
		UserID:    userID,
		Front:     "front of " + id,
		Back:      "back of " + id,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
}

func TestSQLiteStore_Items(t *testing.T) {
	store := openTestStore(t)
	items := store.Items()
	ctx := context.Background()

	t.Run("Add, list and fetch items", func(t *testing.T) {
		seedItem(t, store, "item-1", "user-1")
		seedItem(t, store, "item-2", "user-1")
		seedItem(t, store, "item-other", "user-2")

		list, err := items.ListByUserID(ctx, "user-1")
		require.NoError(t, err)
		assert.Len(t, list, 2)

		got, err := items.GetByID(ctx, "item-1")
		require.NoError(t, err)
		assert.Equal(t, "front of item-1", got.Front)
	})

	t.Run("Missing item yields ErrItemNotFound", func(t *testing.T) {
		_, err := items.GetByID(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrItemNotFound)
	})

	t.Run("Removed items disappear from listings", func(t *testing.T) {
		require.NoError(t, store.RemoveItem(ctx, "item-2"))

		list, err := items.ListByUserID(ctx, "user-1")
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})
}

func TestSQLiteStore_States(t *testing.T) {
	store := openTestStore(t)
	states := store.States()
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	state := &domain.ReviewState{
		UserID:       "user-1",
		ItemID:       "item-1",
		Status:       domain.StatusReview,
		IntervalDays: 3,
		EaseFactor:   2.5,
		DueAt:        now.AddDate(0, 0, 3),
		ReviewCount:  1,
		Streak:       1,
		UpdatedAt:    now,
	}

	t.Run("Upsert inserts then updates in place", func(t *testing.T) {
		require.NoError(t, states.Upsert(ctx, state))

		got, err := states.Get(ctx, "user-1", "item-1")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusReview, got.Status)
		assert.Equal(t, 3.0, got.IntervalDays)

		updated := *state
		updated.Status = domain.StatusRelearning
		updated.IntervalDays = 10.0 / 1440
		updated.LapseCount = 1
		require.NoError(t, states.Upsert(ctx, &updated))

		got, err = states.Get(ctx, "user-1", "item-1")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusRelearning, got.Status)
		assert.Equal(t, 1, got.LapseCount)

		list, err := states.ListByUserID(ctx, "user-1")
		require.NoError(t, err)
		assert.Len(t, list, 1, "upsert must not duplicate the row")
	})

	t.Run("Missing state yields ErrStateNotFound", func(t *testing.T) {
		_, err := states.Get(ctx, "user-1", "never-rated")
		assert.ErrorIs(t, err, domain.ErrStateNotFound)
	})

	t.Run("ListByItemIDs skips unrated items silently", func(t *testing.T) {
		list, err := states.ListByItemIDs(ctx, "user-1", []string{"item-1", "never-rated"})
		require.NoError(t, err)
		assert.Len(t, list, 1)
		assert.Equal(t, "item-1", list[0].ItemID)
	})

	t.Run("States are scoped per user", func(t *testing.T) {
		_, err := states.Get(ctx, "user-2", "item-1")
		assert.ErrorIs(t, err, domain.ErrStateNotFound)
	})
}

func TestSQLiteStore_Logs(t *testing.T) {
	store := openTestStore(t)
	logs := store.Logs()
	ctx := context.Background()

	midnight := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	appendLog := func(itemID string, prev domain.Status, at time.Time) {
		err := logs.Append(ctx, &domain.ReviewLogEntry{
			UserID:           "user-1",
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

	t.Run("CountIntroducedSince counts distinct first exposures in window", func(t *testing.T) {
		appendLog("yesterday", domain.StatusNew, midnight.Add(-2*time.Hour))
		appendLog("today-1", domain.StatusNew, midnight.Add(9*time.Hour))
		appendLog("today-1", domain.StatusNew, midnight.Add(10*time.Hour))
		appendLog("today-2", domain.StatusNew, midnight.Add(11*time.Hour))
		appendLog("seasoned", domain.StatusReview, midnight.Add(12*time.Hour))

		count, err := logs.CountIntroducedSince(ctx, "user-1", midnight)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("Append fills in a missing entry ID", func(t *testing.T) {
		entry := &domain.ReviewLogEntry{
			UserID:           "user-1",
			ItemID:           "item-x",
			Rating:           domain.RatingHard,
			PrevStatus:       domain.StatusReview,
			NewStatus:        domain.StatusReview,
			AlgorithmVersion: "sm2-mod/1",
			ReviewedAt:       midnight.Add(13 * time.Hour),
		}
		require.NoError(t, logs.Append(ctx, entry))
		assert.NotEmpty(t, entry.ID)
	})

	t.Run("ListByUserID honors the time range, newest first", func(t *testing.T) {
		entries, err := logs.ListByUserID(ctx, "user-1", midnight, midnight.Add(24*time.Hour))
		require.NoError(t, err)
		require.NotEmpty(t, entries)

		for i := 1; i < len(entries); i++ {
			assert.False(t, entries[i-1].ReviewedAt.Before(entries[i].ReviewedAt))
		}
		for _, e := range entries {
			assert.False(t, e.ReviewedAt.Before(midnight))
		}
	})
}

func TestSQLiteStore_Sessions(t *testing.T) {
	store := openTestStore(t)
	sessions := store.Sessions()
	ctx := context.Background()

	t.Run("Round-trip with item IDs intact", func(t *testing.T) {
		sess := &domain.Session{
			UserID:    "user-1",
			ItemIDs:   []string{"c", "a", "b"},
			Cursor:    1,
			StartedAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		}
		require.NoError(t, sessions.Set(ctx, sess))

		got, err := sessions.Get(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "a", "b"}, got.ItemIDs, "queue order survives persistence")
		assert.Equal(t, 1, got.Cursor)
	})

	t.Run("Set overwrites the previous sitting", func(t *testing.T) {
		require.NoError(t, sessions.Set(ctx, &domain.Session{
			UserID:    "user-1",
			ItemIDs:   []string{"x"},
			StartedAt: time.Now(),
		}))

		got, err := sessions.Get(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"x"}, got.ItemIDs)
	})

	t.Run("Clear then Get yields ErrSessionNotFound", func(t *testing.T) {
		require.NoError(t, sessions.Clear(ctx, "user-1"))

		_, err := sessions.Get(ctx, "user-1")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})
}
