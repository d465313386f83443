package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/snapdeck/snapdeck-review-engine/internal/core/domain"
)

// In-memory implementations of the store interfaces. Used by tests and by
// the desktop helper's dry-run mode.

type InMemoryItemStore struct {
	store map[string]*domain.Item

	mu sync.RWMutex
}

func NewInMemoryItemStore() *InMemoryItemStore {
	return &InMemoryItemStore{
		store: make(map[string]*domain.Item),
	}
}

// Add seeds an item. Not part of domain.ItemStore; item creation belongs
// to the capture side of the product.
func (r *InMemoryItemStore) Add(item *domain.Item) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[item.ID] = item
}

// Remove deletes an item, simulating a card removed by the host app.
func (r *InMemoryItemStore) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.store, id)
}

func (r *InMemoryItemStore) ListByUserID(ctx context.Context, userID string) ([]*domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var items []*domain.Item
	for _, item := range r.store {
		if item.UserID == userID {
			items = append(items, item)
		}
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})

	return items, nil
}

func (r *InMemoryItemStore) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.store[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return item, nil
}

type InMemoryReviewStateRepository struct {
	store map[string]*domain.ReviewState // keyed user|item

	mu sync.RWMutex
}

func NewInMemoryReviewStateRepository() *InMemoryReviewStateRepository {
	return &InMemoryReviewStateRepository{
		store: make(map[string]*domain.ReviewState),
	}
}

func stateKey(userID, itemID string) string {
	return userID + "|" + itemID
}

func (r *InMemoryReviewStateRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.ReviewState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var states []*domain.ReviewState
	for _, s := range r.store {
		if s.UserID == userID {
			clone := *s
			states = append(states, &clone)
		}
	}
	return states, nil
}

func (r *InMemoryReviewStateRepository) ListByItemIDs(ctx context.Context, userID string, itemIDs []string) ([]*domain.ReviewState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var states []*domain.ReviewState
	for _, id := range itemIDs {
		if s, ok := r.store[stateKey(userID, id)]; ok {
			clone := *s
			states = append(states, &clone)
		}
	}
	return states, nil
}

func (r *InMemoryReviewStateRepository) Get(ctx context.Context, userID, itemID string) (*domain.ReviewState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.store[stateKey(userID, itemID)]
	if !ok {
		return nil, domain.ErrStateNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *InMemoryReviewStateRepository) Upsert(ctx context.Context, state *domain.ReviewState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *state
	r.store[stateKey(state.UserID, state.ItemID)] = &clone
	return nil
}

type InMemoryReviewLogRepository struct {
	entries []*domain.ReviewLogEntry

	mu sync.RWMutex
}

func NewInMemoryReviewLogRepository() *InMemoryReviewLogRepository {
	return &InMemoryReviewLogRepository{}
}

func (r *InMemoryReviewLogRepository) Append(ctx context.Context, entry *domain.ReviewLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *entry
	r.entries = append(r.entries, &clone)
	return nil
}

func (r *InMemoryReviewLogRepository) CountIntroducedSince(ctx context.Context, userID string, since time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	for _, e := range r.entries {
		if e.UserID != userID || e.PrevStatus != domain.StatusNew {
			continue
		}
		if e.ReviewedAt.Before(since) {
			continue
		}
		seen[e.ItemID] = true
	}
	return len(seen), nil
}

func (r *InMemoryReviewLogRepository) ListByUserID(ctx context.Context, userID string, from, to time.Time) ([]*domain.ReviewLogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var entries []*domain.ReviewLogEntry
	for _, e := range r.entries {
		if e.UserID != userID {
			continue
		}
		if e.ReviewedAt.Before(from) || e.ReviewedAt.After(to) {
			continue
		}
		clone := *e
		entries = append(entries, &clone)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ReviewedAt.After(entries[j].ReviewedAt)
	})

	return entries, nil
}

// StaticConfigSource returns a fixed daily new-item limit. A negative
// limit falls back to the default.
type StaticConfigSource struct {
	Limit int
}

func (s StaticConfigSource) DailyNewLimit(ctx context.Context, userID string) (int, error) {
	if s.Limit < 0 {
		return domain.DefaultDailyNewLimit, nil
	}
	return s.Limit, nil
}
