// Package inbox remembers which events were already handled so redelivered
// Kafka messages do not send a second email.
package inbox

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long an event id is remembered.
const DefaultTTL = 7 * 24 * time.Hour

type setNXer interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Redis records event ids with SETNX so every replica shares one view.
type Redis struct {
	rdb    setNXer
	prefix string
	ttl    time.Duration
}

func NewRedis(rdb setNXer, prefix string, ttl time.Duration) *Redis {
	if prefix == "" {
		prefix = "inbox"
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{rdb: rdb, prefix: prefix, ttl: ttl}
}

// Record returns false when the event was seen before.
func (r *Redis) Record(ctx context.Context, eventID, eventType string) (bool, error) {
	if eventID == "" {
		return false, errors.New("event id is empty")
	}
	return r.rdb.SetNX(ctx, r.key(eventID, eventType), time.Now().UTC().Format(time.RFC3339), r.ttl).Result()
}

// Forget drops a record so the event can be handled again.
func (r *Redis) Forget(ctx context.Context, eventID, eventType string) error {
	return r.rdb.Del(ctx, r.key(eventID, eventType)).Err()
}

func (r *Redis) key(eventID, eventType string) string {
	return r.prefix + ":" + eventType + ":" + eventID
}

// Memory is the single-process fallback when Redis is not configured.
type Memory struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{seen: make(map[string]time.Time), ttl: ttl, now: time.Now}
}

func (m *Memory) Record(_ context.Context, eventID, eventType string) (bool, error) {
	if eventID == "" {
		return false, errors.New("event id is empty")
	}
	key := eventType + ":" + eventID
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	if at, ok := m.seen[key]; ok && now.Sub(at) < m.ttl {
		return false, nil
	}
	m.seen[key] = now
	if len(m.seen) > 10000 {
		for k, at := range m.seen {
			if now.Sub(at) >= m.ttl {
				delete(m.seen, k)
			}
		}
	}
	return true, nil
}

func (m *Memory) Forget(_ context.Context, eventID, eventType string) error {
	m.mu.Lock()
	delete(m.seen, eventType+":"+eventID)
	m.mu.Unlock()
	return nil
}
