package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/snapdeck/snapdeck-review-engine/internal/core/domain"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the desktop helper's local database. It uses
// modernc.org/sqlite (pure Go, CGo-free) so the helper ships as a single
// static binary. One database file backs every collaborator the engine
// needs; the Items/States/Logs/Sessions facets expose the individual
// store interfaces.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (creating if needed) the helper database at path
// and runs pending migrations. Pass ":memory:" for an ephemeral store.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database at %s: %w", path, err)
	}

	// modernc sqlite serializes writes itself; a single connection avoids
	// SQLITE_BUSY churn from the pool.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Items returns the item store facet.
func (s *SQLiteStore) Items() domain.ItemStore { return sqliteItems{s.db} }

// States returns the review state repository facet.
func (s *SQLiteStore) States() domain.ReviewStateRepository { return sqliteStates{s.db} }

// Logs returns the review log repository facet.
func (s *SQLiteStore) Logs() domain.ReviewLogRepository { return sqliteLogs{s.db} }

// Sessions returns the session store facet.
func (s *SQLiteStore) Sessions() domain.SessionStore { return sqliteSessions{s.db} }

type sqliteMigration struct {
	version int
	name    string
	stmts   []string
}

func (s *SQLiteStore) migrate() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	var version int
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version); err != nil {
		return fmt.Errorf("reading migration version: %w", err)
	}

	migrations := []sqliteMigration{
		{version: 1, name: "initial_schema", stmts: []string{
			`CREATE TABLE IF NOT EXISTS items (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				front TEXT NOT NULL,
				back TEXT NOT NULL DEFAULT '',
				source_url TEXT NOT NULL DEFAULT '',
				created_at DATETIME NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_items_user ON items(user_id)`,
			`CREATE TABLE IF NOT EXISTS review_states (
				user_id TEXT NOT NULL,
				item_id TEXT NOT NULL,
				status TEXT NOT NULL,
				interval_days REAL NOT NULL,
				ease_factor REAL NOT NULL,
				due_at DATETIME NOT NULL,
				review_count INTEGER NOT NULL DEFAULT 0,
				lapse_count INTEGER NOT NULL DEFAULT 0,
				streak INTEGER NOT NULL DEFAULT 0,
				updated_at DATETIME NOT NULL,
				PRIMARY KEY (user_id, item_id)
			)`,
			`CREATE TABLE IF NOT EXISTS review_logs (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				item_id TEXT NOT NULL,
				rating TEXT NOT NULL,
				prev_status TEXT NOT NULL,
				prev_interval REAL NOT NULL,
				prev_ease REAL NOT NULL,
				new_status TEXT NOT NULL,
				new_interval REAL NOT NULL,
				new_ease REAL NOT NULL,
				algorithm_version TEXT NOT NULL,
				reviewed_at DATETIME NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_review_logs_user_time ON review_logs(user_id, reviewed_at)`,
			`CREATE TABLE IF NOT EXISTS sessions (
				user_id TEXT PRIMARY KEY,
				item_ids TEXT NOT NULL,
				cursor INTEGER NOT NULL,
				started_at DATETIME NOT NULL
			)`,
		}},
	}

	for _, m := range migrations {
		if version >= m.version {
			continue
		}
		for _, stmt := range m.stmts {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.name, err)
			}
		}
		if _, err := s.db.Exec(`INSERT INTO schema_migrations (version, name) VALUES (?, ?)`, m.version, m.name); err != nil {
			return fmt.Errorf("recording migration %d: %w", m.version, err)
		}
	}
	return nil
}

// AddItem stores a captured card locally. The helper exposes this so cards
// pulled from the companion app can be reviewed offline.
func (s *SQLiteStore) AddItem(ctx context.Context, item *domain.Item) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO items (id, user_id, front, back, source_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		item.ID, item.UserID, item.Front, item.Back, item.SourceURL, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting item: %w", err)
	}
	return nil
}

// RemoveItem deletes a card locally, e.g. after it was deleted upstream.
func (s *SQLiteStore) RemoveItem(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

type sqliteItems struct {
	db *sql.DB
}

func (f sqliteItems) ListByUserID(ctx context.Context, userID string) ([]*domain.Item, error) {
	rows, err := f.db.QueryContext(ctx, `
		SELECT id, user_id, front, back, source_url, created_at
		FROM items WHERE user_id = ? ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("item list query failed: %w", err)
	}
	defer rows.Close()

	var items []*domain.Item
	for rows.Next() {
		var item domain.Item
		if err := rows.Scan(&item.ID, &item.UserID, &item.Front, &item.Back, &item.SourceURL, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("item row scan failed: %w", err)
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

func (f sqliteItems) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	var item domain.Item
	err := f.db.QueryRowContext(ctx, `
		SELECT id, user_id, front, back, source_url, created_at
		FROM items WHERE id = ?`, id).
		Scan(&item.ID, &item.UserID, &item.Front, &item.Back, &item.SourceURL, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("item query failed: %w", err)
	}
	return &item, nil
}

type sqliteStates struct {
	db *sql.DB
}

func (f sqliteStates) ListByUserID(ctx context.Context, userID string) ([]*domain.ReviewState, error) {
	rows, err := f.db.QueryContext(ctx, `
		SELECT user_id, item_id, status, interval_days, ease_factor, due_at,
			review_count, lapse_count, streak, updated_at
		FROM review_states WHERE user_id = ? ORDER BY due_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("review state list query failed: %w", err)
	}
	defer rows.Close()

	var states []*domain.ReviewState
	for rows.Next() {
		var st domain.ReviewState
		if err := rows.Scan(&st.UserID, &st.ItemID, &st.Status, &st.IntervalDays, &st.EaseFactor,
			&st.DueAt, &st.ReviewCount, &st.LapseCount, &st.Streak, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("review state row scan failed: %w", err)
		}
		states = append(states, &st)
	}
	return states, rows.Err()
}

func (f sqliteStates) ListByItemIDs(ctx context.Context, userID string, itemIDs []string) ([]*domain.ReviewState, error) {
	states := []*domain.ReviewState{}
	for _, id := range itemIDs {
		st, err := f.Get(ctx, userID, id)
		if err != nil {
			if errors.Is(err, domain.ErrStateNotFound) {
				continue
			}
			return nil, err
		}
		states = append(states, st)
	}
	return states, nil
}

func (f sqliteStates) Get(ctx context.Context, userID, itemID string) (*domain.ReviewState, error) {
	var st domain.ReviewState
	err := f.db.QueryRowContext(ctx, `
		SELECT user_id, item_id, status, interval_days, ease_factor, due_at,
			review_count, lapse_count, streak, updated_at
		FROM review_states WHERE user_id = ? AND item_id = ?`, userID, itemID).
		Scan(&st.UserID, &st.ItemID, &st.Status, &st.IntervalDays, &st.EaseFactor,
			&st.DueAt, &st.ReviewCount, &st.LapseCount, &st.Streak, &st.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrStateNotFound
		}
		return nil, fmt.Errorf("review state query failed: %w", err)
	}
	return &st, nil
}

func (f sqliteStates) Upsert(ctx context.Context, state *domain.ReviewState) error {
	_, err := f.db.ExecContext(ctx, `
		INSERT INTO review_states (
			user_id, item_id, status, interval_days, ease_factor, due_at,
			review_count, lapse_count, streak, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, item_id) DO UPDATE SET
			status = excluded.status,
			interval_days = excluded.interval_days,
			ease_factor = excluded.ease_factor,
			due_at = excluded.due_at,
			review_count = excluded.review_count,
			lapse_count = excluded.lapse_count,
			streak = excluded.streak,
			updated_at = excluded.updated_at`,
		state.UserID, state.ItemID, state.Status, state.IntervalDays, state.EaseFactor,
		state.DueAt, state.ReviewCount, state.LapseCount, state.Streak, state.UpdatedAt)
	if err != nil {
		return fmt.Errorf("review state upsert failed: %w", err)
	}
	return nil
}

type sqliteLogs struct {
	db *sql.DB
}

func (f sqliteLogs) Append(ctx context.Context, entry *domain.ReviewLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	_, err := f.db.ExecContext(ctx, `
		INSERT INTO review_logs (
			id, user_id, item_id, rating,
			prev_status, prev_interval, prev_ease,
			new_status, new_interval, new_ease,
			algorithm_version, reviewed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.ItemID, entry.Rating,
		entry.PrevStatus, entry.PrevInterval, entry.PrevEase,
		entry.NewStatus, entry.NewInterval, entry.NewEase,
		entry.AlgorithmVersion, entry.ReviewedAt)
	if err != nil {
		return fmt.Errorf("review log append failed: %w", err)
	}
	return nil
}

func (f sqliteLogs) CountIntroducedSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var count int
	err := f.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT item_id) FROM review_logs
		WHERE user_id = ? AND prev_status = 'new' AND reviewed_at >= ?`,
		userID, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("introduction count query failed: %w", err)
	}
	return count, nil
}

func (f sqliteLogs) ListByUserID(ctx context.Context, userID string, from, to time.Time) ([]*domain.ReviewLogEntry, error) {
	rows, err := f.db.QueryContext(ctx, `
		SELECT id, user_id, item_id, rating,
			prev_status, prev_interval, prev_ease,
			new_status, new_interval, new_ease,
			algorithm_version, reviewed_at
		FROM review_logs
		WHERE user_id = ? AND reviewed_at >= ? AND reviewed_at <= ?
		ORDER BY reviewed_at DESC`, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("review log list query failed: %w", err)
	}
	defer rows.Close()

	var entries []*domain.ReviewLogEntry
	for rows.Next() {
		var e domain.ReviewLogEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.ItemID, &e.Rating,
			&e.PrevStatus, &e.PrevInterval, &e.PrevEase,
			&e.NewStatus, &e.NewInterval, &e.NewEase,
			&e.AlgorithmVersion, &e.ReviewedAt); err != nil {
			return nil, fmt.Errorf("review log row scan failed: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

type sqliteSessions struct {
	db *sql.DB
}

func (f sqliteSessions) Get(ctx context.Context, userID string) (*domain.Session, error) {
	var (
		sess    domain.Session
		idsJSON string
	)
	err := f.db.QueryRowContext(ctx, `
		SELECT user_id, item_ids, cursor, started_at
		FROM sessions WHERE user_id = ?`, userID).
		Scan(&sess.UserID, &idsJSON, &sess.Cursor, &sess.StartedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("session query failed: %w", err)
	}

	if err := json.Unmarshal([]byte(idsJSON), &sess.ItemIDs); err != nil {
		return nil, fmt.Errorf("corrupt session blob: %w", err)
	}
	return &sess, nil
}

func (f sqliteSessions) Set(ctx context.Context, session *domain.Session) error {
	idsJSON, err := json.Marshal(session.ItemIDs)
	if err != nil {
		return fmt.Errorf("encoding session blob: %w", err)
	}

	_, err = f.db.ExecContext(ctx, `
		INSERT INTO sessions (user_id, item_ids, cursor, started_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			item_ids = excluded.item_ids,
			cursor = excluded.cursor,
			started_at = excluded.started_at`,
		session.UserID, string(idsJSON), session.Cursor, session.StartedAt)
	if err != nil {
		return fmt.Errorf("session upsert failed: %w", err)
	}
	return nil
}

func (f sqliteSessions) Clear(ctx context.Context, userID string) error {
	if _, err := f.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("session delete failed: %w", err)
	}
	return nil
}
