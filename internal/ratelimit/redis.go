package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// checkScript performs the fixed-window check-and-increment atomically.
// KEYS[1] counter key, ARGV[1] limit, ARGV[2] window in milliseconds.
// Returns {allowed, count, pttl_ms}.
var checkScript = redis.NewScript(`
local current = redis.call("GET", KEYS[1])
if current and tonumber(current) >= tonumber(ARGV[1]) then
  return {0, tonumber(current), redis.call("PTTL", KEYS[1])}
end
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return {1, count, redis.call("PTTL", KEYS[1])}
`)

// RedisStore implements Store against a shared Redis instance so the
// limit holds across replicas. Window expiry rides on key TTLs.
type RedisStore struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

func NewRedisStore(client *redis.Client, limit int, window time.Duration) *RedisStore {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Hour
	}
	return &RedisStore{
		client: client,
		limit:  limit,
		window: window,
		prefix: "ratelimit:contact:",
	}
}

func (s *RedisStore) key(k string) string {
	return s.prefix + k
}

func (s *RedisStore) Check(ctx context.Context, key string) (Result, error) {
	vals, err := checkScript.Run(ctx, s.client,
		[]string{s.key(key)}, s.limit, s.window.Milliseconds()).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("rate limit check: %w", err)
	}
	if len(vals) != 3 {
		return Result{}, fmt.Errorf("rate limit check: unexpected reply %v", vals)
	}

	allowed := vals[0] == 1
	count := int(vals[1])
	resetAt := resetFromTTL(vals[2], s.window)

	remaining := s.limit - count
	if remaining < 0 || !allowed {
		remaining = 0
	}
	return Result{Allowed: allowed, Remaining: remaining, ResetAt: resetAt}, nil
}

func (s *RedisStore) Status(ctx context.Context, key string) (Status, error) {
	pipe := s.client.Pipeline()
	getCmd := pipe.Get(ctx, s.key(key))
	ttlCmd := pipe.PTTL(ctx, s.key(key))
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return Status{}, fmt.Errorf("rate limit status: %w", err)
	}

	count, err := getCmd.Int()
	if err == redis.Nil {
		return Status{Count: 0, Remaining: s.limit}, nil
	}
	if err != nil {
		return Status{}, fmt.Errorf("rate limit status: %w", err)
	}

	remaining := s.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Status{
		Count:     count,
		Remaining: remaining,
		ResetAt:   resetFromTTL(ttlCmd.Val().Milliseconds(), s.window),
	}, nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("rate limit reset: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("rate limit clear %s: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("rate limit clear: %w", err)
	}
	return nil
}

func resetFromTTL(ttlMillis int64, window time.Duration) time.Time {
	// PTTL returns -1 for keys without expiry and -2 for missing keys;
	// treat both as a full window from now.
	if ttlMillis < 0 {
		return time.Now().Add(window)
	}
	return time.Now().Add(time.Duration(ttlMillis) * time.Millisecond)
}
