package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/snapdeck/snapdeck-review-engine/internal/core/domain"
	"github.com/snapdeck/snapdeck-review-engine/internal/core/scheduler"
)

// QueueService drives one review sitting: it builds or restores the queue
// of due and new items, applies the scheduling algorithm on each rating,
// and persists every transition so the sitting survives interruption.
//
// All collaborators are injected; the service holds no global state and
// several instances can serve different stores concurrently.
type QueueService struct {
	items    domain.ItemStore
	states   domain.ReviewStateRepository
	logs     domain.ReviewLogRepository
	sessions domain.SessionStore
	quota    *QuotaService
	cfg      scheduler.Config
}

func NewQueueService(
	items domain.ItemStore,
	states domain.ReviewStateRepository,
	logs domain.ReviewLogRepository,
	sessions domain.SessionStore,
	quota *QuotaService,
	cfg scheduler.Config,
) *QueueService {
	return &QueueService{
		items:    items,
		states:   states,
		logs:     logs,
		sessions: sessions,
		quota:    quota,
		cfg:      cfg,
	}
}

// Start returns the sitting for the user: a same-day persisted session is
// restored if its queue still resolves against the item store, otherwise a
// fresh queue of due and quota-capped new items is fetched and persisted.
//
// Read failures while building the queue yield an empty session rather
// than an error; never present stale or incorrect items.
func (s *QueueService) Start(ctx context.Context, userID string, now time.Time) (*domain.Session, error) {
	if restored := s.restore(ctx, userID, now); restored != nil {
		return restored, nil
	}
	return s.fetch(ctx, userID, now), nil
}

// restore attempts to resume a persisted session. Item IDs that no longer
// resolve are dropped and the cursor shifts down by the number of removed
// IDs that preceded it. Returns nil when the session is missing, stale, or
// exhausted, in which case the caller falls through to fetch.
func (s *QueueService) restore(ctx context.Context, userID string, now time.Time) *domain.Session {
	sess, err := s.sessions.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			log.Printf("[SESSION] Failed to read persisted session for user %s: %v", userID, err)
		}
		return nil
	}

	if !sess.StartedOn(now) {
		// Stale sitting from a previous day; discard.
		s.clearSession(ctx, userID)
		return nil
	}

	live, err := s.liveItemIDs(ctx, userID)
	if err != nil {
		log.Printf("[SESSION] Failed to re-resolve session items for user %s: %v", userID, err)
		return nil
	}

	filtered := make([]string, 0, len(sess.ItemIDs))
	cursor := sess.Cursor
	for i, id := range sess.ItemIDs {
		if !live[id] {
			if i < sess.Cursor {
				cursor--
			}
			continue
		}
		filtered = append(filtered, id)
	}

	if len(filtered) == 0 || cursor < 0 || cursor >= len(filtered) {
		s.clearSession(ctx, userID)
		return nil
	}

	shrank := len(filtered) != len(sess.ItemIDs)
	sess.ItemIDs = filtered
	sess.Cursor = cursor

	if shrank {
		if err := s.sessions.Set(ctx, sess); err != nil {
			log.Printf("[SESSION] Failed to persist restored session for user %s: %v", userID, err)
		}
	}

	return sess
}

// fetch builds a fresh queue: every due item plus up to quota-remaining
// new items, in randomized order.
func (s *QueueService) fetch(ctx context.Context, userID string, now time.Time) *domain.Session {
	empty := &domain.Session{UserID: userID, ItemIDs: []string{}, StartedAt: now}

	items, err := s.items.ListByUserID(ctx, userID)
	if err != nil {
		log.Printf("[QUEUE] Failed to list items for user %s, returning empty queue: %v", userID, err)
		return empty
	}

	states, err := s.states.ListByUserID(ctx, userID)
	if err != nil {
		log.Printf("[QUEUE] Failed to list review states for user %s, returning empty queue: %v", userID, err)
		return empty
	}

	stateByItem := make(map[string]*domain.ReviewState, len(states))
	for _, st := range states {
		stateByItem[st.ItemID] = st
	}

	var due, fresh []string
	for _, item := range items {
		st, ok := stateByItem[item.ID]
		if !ok {
			fresh = append(fresh, item.ID)
			continue
		}
		if st.Status != domain.StatusNew && st.IsDue(now) {
			due = append(due, item.ID)
		}
	}

	quota := s.quota.Remaining(ctx, userID, now)
	fresh = fresh[:quota.Allow(len(fresh))]

	queue := append(due, fresh...)
	rand.Shuffle(len(queue), func(i, j int) {
		queue[i], queue[j] = queue[j], queue[i]
	})

	if len(queue) == 0 {
		return empty
	}

	sess := &domain.Session{
		UserID:    userID,
		ItemIDs:   queue,
		Cursor:    0,
		StartedAt: now,
	}
	if err := s.sessions.Set(ctx, sess); err != nil {
		log.Printf("[SESSION] Failed to persist new session for user %s: %v", userID, err)
	}
	return sess
}

// Current resolves the item under the cursor of the persisted session.
// Returns ErrEmptyQueue when no session is active and ErrSessionComplete
// when the sitting has been worked through.
func (s *QueueService) Current(ctx context.Context, userID string) (*domain.Item, *domain.Session, error) {
	sess, err := s.sessions.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, nil, domain.ErrEmptyQueue
		}
		return nil, nil, fmt.Errorf("reading session: %w", err)
	}

	itemID, err := sess.CurrentItemID()
	if err != nil {
		return nil, sess, err
	}

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, sess, fmt.Errorf("resolving current item: %w", err)
	}
	return item, sess, nil
}

// SubmitRating applies one rating to the item under the cursor: the
// algorithm computes the next state, the state is upserted, a log entry is
// appended, and the queue advances (again re-queues the item to the back
// without moving the cursor). The updated session is persisted after every
// transition and cleared once the cursor runs past the end.
//
// A failed state upsert is returned to the caller: the rating did not
// take effect. A failed log append only loses an audit record and is
// logged locally instead.
func (s *QueueService) SubmitRating(ctx context.Context, userID string, rating domain.Rating, now time.Time) (*domain.ReviewState, *domain.Session, error) {
	sess, err := s.sessions.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, nil, domain.ErrEmptyQueue
		}
		return nil, nil, fmt.Errorf("reading session: %w", err)
	}

	itemID, err := sess.CurrentItemID()
	if err != nil {
		return nil, sess, err
	}

	prev, err := s.states.Get(ctx, userID, itemID)
	if err != nil && !errors.Is(err, domain.ErrStateNotFound) {
		return nil, sess, fmt.Errorf("reading review state: %w", err)
	}

	next := scheduler.Next(prev, rating, s.cfg, now)
	next.UserID = userID
	next.ItemID = itemID

	if err := s.states.Upsert(ctx, &next); err != nil {
		return nil, sess, fmt.Errorf("persisting review state: %w", err)
	}

	prevSnapshot := prev
	if prevSnapshot == nil {
		prevSnapshot = &domain.ReviewState{
			UserID:     userID,
			ItemID:     itemID,
			Status:     domain.StatusNew,
			EaseFactor: s.cfg.InitialEase,
		}
	}
	entry := domain.NewReviewLogEntry(prevSnapshot, &next, rating, scheduler.AlgorithmVersion, now)
	if err := s.logs.Append(ctx, entry); err != nil {
		log.Printf("[LOG] Failed to append review log for user %s item %s: %v", userID, itemID, err)
	}

	if rating == domain.RatingAgain {
		sess.Requeue()
	} else {
		sess.Advance()
	}
	s.persistProgress(ctx, sess)

	return &next, sess, nil
}

// Skip moves the current item to the back of the queue without scoring it.
func (s *QueueService) Skip(ctx context.Context, userID string) (*domain.Session, error) {
	sess, err := s.sessions.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrEmptyQueue
		}
		return nil, fmt.Errorf("reading session: %w", err)
	}

	if _, err := sess.CurrentItemID(); err != nil {
		return sess, err
	}

	sess.Requeue()
	s.persistProgress(ctx, sess)
	return sess, nil
}

// Preview computes what each rating would do to the given item without
// persisting anything.
func (s *QueueService) Preview(ctx context.Context, userID, itemID string, now time.Time) (map[domain.Rating]scheduler.PreviewEntry, error) {
	prev, err := s.states.Get(ctx, userID, itemID)
	if err != nil && !errors.Is(err, domain.ErrStateNotFound) {
		return nil, fmt.Errorf("reading review state: %w", err)
	}
	return scheduler.Preview(prev, s.cfg, now), nil
}

// persistProgress writes the session back, or clears it once complete.
func (s *QueueService) persistProgress(ctx context.Context, sess *domain.Session) {
	if sess.IsComplete() {
		s.clearSession(ctx, sess.UserID)
		return
	}
	if err := s.sessions.Set(ctx, sess); err != nil {
		log.Printf("[SESSION] Failed to persist session progress for user %s: %v", sess.UserID, err)
	}
}

func (s *QueueService) clearSession(ctx context.Context, userID string) {
	if err := s.sessions.Clear(ctx, userID); err != nil {
		log.Printf("[SESSION] Failed to clear session for user %s: %v", userID, err)
	}
}

// liveItemIDs returns the set of item IDs that currently exist for a user.
func (s *QueueService) liveItemIDs(ctx context.Context, userID string) (map[string]bool, error) {
	items, err := s.items.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	live := make(map[string]bool, len(items))
	for _, item := range items {
		live[item.ID] = true
	}
	return live, nil
}
