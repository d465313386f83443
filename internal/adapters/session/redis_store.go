// Package session provides swappable implementations of the session blob
// store. A sitting is a tiny JSON document, so any key-value medium works;
// the web host uses redis, tests and the helper's dry-run mode use memory.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/snapdeck/snapdeck-review-engine/internal/core/domain"
)

var _ domain.SessionStore = (*RedisSessionStore)(nil)

// RedisSessionStore keeps the per-user sitting in redis. The TTL is a
// backstop: sessions expire logically at the next local midnight, the TTL
// just keeps abandoned blobs from accumulating.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{
		client: client,
		ttl:    48 * time.Hour,
	}
}

func (s *RedisSessionStore) key(userID string) string {
	return fmt.Sprintf("review-session:%s", userID)
}

func (s *RedisSessionStore) Get(ctx context.Context, userID string) (*domain.Session, error) {
	val, err := s.client.Get(ctx, s.key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("redis session read failed: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		// Corrupted blob; treat as absent so the caller refetches.
		s.client.Del(ctx, s.key(userID))
		return nil, domain.ErrSessionNotFound
	}
	return &sess, nil
}

func (s *RedisSessionStore) Set(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encoding session blob: %w", err)
	}

	if err := s.client.Set(ctx, s.key(session.UserID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis session write failed: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Clear(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("redis session delete failed: %w", err)
	}
	return nil
}
