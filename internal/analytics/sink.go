package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	errx "github.com/storefront-poc-v1/server/internal/core/error"
	logx "github.com/storefront-poc-v1/server/pkg/logger"
)

// MemorySink keeps events in process memory.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (m *MemorySink) Push(_ context.Context, e Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

// Events returns the pushed events in order.
func (m *MemorySink) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// RedisSink appends events to a per-session Redis list.
type RedisSink struct {
	rdb       redis.Cmdable
	sessionID string
	ttl       time.Duration
}

func NewRedisSink(rdb redis.Cmdable, sessionID string, ttl time.Duration) *RedisSink {
	return &RedisSink{rdb: rdb, sessionID: sessionID, ttl: ttl}
}

func EventsKey(sessionID string) string {
	return fmt.Sprintf("datalayer:%s:events", sessionID)
}

func (r *RedisSink) Push(ctx context.Context, e Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		logx.Error().Err(err).Str("event", e.Name()).Msg("failed to marshal event")
		return fmt.Errorf("marshal event: %w", err)
	}
	key := EventsKey(r.sessionID)

	if err := r.rdb.RPush(ctx, key, b).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to push event to redis")
		return errx.WrapRedis(err)
	}
	// extend TTL on touch
	if r.ttl > 0 {
		if ok, err := r.rdb.Expire(ctx, key, r.ttl).Result(); err != nil {
			logx.Error().Err(err).Str("key", key).Msg("failed to set expire")
			return errx.WrapRedis(err)
		} else if !ok {
			logx.Warn().Str("key", key).Dur("ttl", r.ttl).Msg("failed to set TTL on data layer key")
		}
	}
	return nil
}

// Events reads back every stored event for the session.
func (r *RedisSink) Events(ctx context.Context) ([]Event, error) {
	key := EventsKey(r.sessionID)

	rows, err := r.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to load events from redis")
		return nil, errx.WrapRedis(err)
	}

	events := make([]Event, 0, len(rows))
	for i, s := range rows {
		var e Event
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			logx.Error().Err(err).Str("key", key).Int("index", i).Msg("failed to unmarshal event")
			return nil, errx.Decode(fmt.Errorf("unmarshal event at index %d: %w", i, err))
		}
		events = append(events, e)
	}
	return events, nil
}

var (
	_ Sink = (*MemorySink)(nil)
	_ Sink = (*RedisSink)(nil)
)
