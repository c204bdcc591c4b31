// Package flash stores one-time status messages between a mutating request
// and the page that follows its redirect.
package flash

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"foodfeed/internal/models"
	"foodfeed/internal/observability"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long unread messages are kept.
const DefaultTTL = 10 * time.Minute

// Store queues messages per session and hands them out once.
type Store interface {
	Push(ctx context.Context, sessionID string, msgs ...models.Message) error
	// Pop returns the queued messages in order and clears them.
	Pop(ctx context.Context, sessionID string) ([]models.Message, error)
}

func key(sessionID string) string {
	return "flash:" + sessionID
}

func countPushed(msgs []models.Message) {
	for _, m := range msgs {
		observability.FlashMessages.WithLabelValues(string(m.Severity)).Inc()
	}
}

// RedisStore keeps each session's queue in a Redis list.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Push(ctx context.Context, sessionID string, msgs ...models.Message) error {
	if sessionID == "" || len(msgs) == 0 {
		return nil
	}
	values := make([]any, 0, len(msgs))
	for _, m := range msgs {
		b, err := json.Marshal(m)
		if err != nil {
			return err
		}
		values = append(values, b)
	}

	k := key(sessionID)
	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, k, values...)
	pipe.Expire(ctx, k, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push flash messages: %w", err)
	}
	countPushed(msgs)
	return nil
}

func (s *RedisStore) Pop(ctx context.Context, sessionID string) ([]models.Message, error) {
	if sessionID == "" {
		return nil, nil
	}
	k := key(sessionID)
	pipe := s.rdb.TxPipeline()
	rng := pipe.LRange(ctx, k, 0, -1)
	pipe.Del(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("pop flash messages: %w", err)
	}

	raw := rng.Val()
	msgs := make([]models.Message, 0, len(raw))
	for _, r := range raw {
		var m models.Message
		if err := json.Unmarshal([]byte(r), &m); err != nil {
			continue
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// MemoryStore is an in-process store for tests and single-node setups
// without Redis.
type MemoryStore struct {
	mu     sync.Mutex
	queues map[string][]models.Message
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{queues: make(map[string][]models.Message)}
}

func (s *MemoryStore) Push(_ context.Context, sessionID string, msgs ...models.Message) error {
	if sessionID == "" || len(msgs) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queues[sessionID] = append(s.queues[sessionID], msgs...)
	countPushed(msgs)
	return nil
}

func (s *MemoryStore) Pop(_ context.Context, sessionID string) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.queues[sessionID]
	delete(s.queues, sessionID)
	return msgs, nil
}
