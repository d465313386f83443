package domain

import (
	"context"
	"time"
)

// ItemStore is the external item collaborator. The engine only lists items
// to build queues; creating and editing cards belongs to the capture side
// of the product.
type ItemStore interface {
	// ListByUserID retrieves all items belonging to a user.
	ListByUserID(ctx context.Context, userID string) ([]*Item, error)

	// GetByID retrieves a single item.
	GetByID(ctx context.Context, id string) (*Item, error)
}

// ReviewStateRepository persists per-user scheduling state.
type ReviewStateRepository interface {
	// ListByUserID retrieves every review state a user has.
	ListByUserID(ctx context.Context, userID string) ([]*ReviewState, error)

	// ListByItemIDs retrieves the states for a restricted set of item IDs.
	// Items the user has never rated are simply absent from the result.
	ListByItemIDs(ctx context.Context, userID string, itemIDs []string) ([]*ReviewState, error)

	// Get retrieves the state for one item, or ErrStateNotFound.
	Get(ctx context.Context, userID, itemID string) (*ReviewState, error)

	// Upsert inserts the state on first rating and replaces it afterwards.
	// Last write wins; there is no version check.
	Upsert(ctx context.Context, state *ReviewState) error
}

// ReviewLogRepository appends and queries the immutable rating audit trail.
type ReviewLogRepository interface {
	// Append stores one log entry. Entries are never updated or deleted.
	Append(ctx context.Context, entry *ReviewLogEntry) error

	// CountIntroducedSince returns how many distinct items got their first
	// rating (previous status "new") at or after the given instant.
	CountIntroducedSince(ctx context.Context, userID string, since time.Time) (int, error)

	// ListByUserID retrieves entries within a time range, newest first.
	ListByUserID(ctx context.Context, userID string, from, to time.Time) ([]*ReviewLogEntry, error)
}

// SessionStore is a small swappable blob store for the per-user sitting.
// Any key-value medium satisfies the contract.
type SessionStore interface {
	// Get retrieves the persisted session, or ErrSessionNotFound.
	Get(ctx context.Context, userID string) (*Session, error)

	// Set persists the session, replacing any previous one.
	Set(ctx context.Context, session *Session) error

	// Clear discards the persisted session. Clearing a missing session
	// is not an error.
	Clear(ctx context.Context, userID string) error
}

// ConfigSource supplies the per-user daily new-item limit. Zero means
// unlimited; implementations return DefaultDailyNewLimit when nothing is
// configured.
type ConfigSource interface {
	DailyNewLimit(ctx context.Context, userID string) (int, error)
}

// DefaultDailyNewLimit is used when no limit has been configured.
const DefaultDailyNewLimit = 10
