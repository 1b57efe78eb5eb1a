package trigger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// LastRunStore persists the last firing time of each time-based trigger so
// a scheduled slot fires once even across scheduler restarts.
type LastRunStore interface {
	// LastRun returns the trigger's last firing time; ok is false if it
	// has never fired.
	LastRun(ctx context.Context, triggerID string) (t time.Time, ok bool, err error)

	// SetLastRun records the trigger's firing time
	SetLastRun(ctx context.Context, triggerID string, t time.Time) error
}

// MemoryLastRunStore keeps last-run times in process memory. State is lost
// on restart, which at worst fires a schedule one extra time.
type MemoryLastRunStore struct {
	mu   sync.RWMutex
	runs map[string]time.Time
}

// NewMemoryLastRunStore creates an empty in-memory last-run store
func NewMemoryLastRunStore() *MemoryLastRunStore {
	return &MemoryLastRunStore{runs: make(map[string]time.Time)}
}

func (s *MemoryLastRunStore) LastRun(ctx context.Context, triggerID string) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.runs[triggerID]
	return t, ok, nil
}

func (s *MemoryLastRunStore) SetLastRun(ctx context.Context, triggerID string, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[triggerID] = t
	return nil
}

// RedisLastRunStore keeps last-run times in Redis so schedules survive
// application restarts.
type RedisLastRunStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisLastRunStore creates a Redis-backed last-run store
func NewRedisLastRunStore(client *redis.Client, keyPrefix string) *RedisLastRunStore {
	if keyPrefix == "" {
		keyPrefix = "obscopilot:lastrun:"
	}
	return &RedisLastRunStore{client: client, keyPrefix: keyPrefix}
}

func (s *RedisLastRunStore) key(triggerID string) string {
	return s.keyPrefix + triggerID
}

func (s *RedisLastRunStore) LastRun(ctx context.Context, triggerID string) (time.Time, bool, error) {
	value, err := s.client.Get(ctx, s.key(triggerID)).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read last run for trigger %s: %w", triggerID, err)
	}

	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("corrupt last run value for trigger %s: %w", triggerID, err)
	}
	return t, true, nil
}

func (s *RedisLastRunStore) SetLastRun(ctx context.Context, triggerID string, t time.Time) error {
	if err := s.client.Set(ctx, s.key(triggerID), t.Format(time.RFC3339Nano), 0).Err(); err != nil {
		return fmt.Errorf("failed to store last run for trigger %s: %w", triggerID, err)
	}
	return nil
}
