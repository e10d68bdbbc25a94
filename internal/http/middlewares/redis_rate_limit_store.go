package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/rueidis"
)

const rateLimitKeyPrefix = "ratelimit:"

// hitScript increments the counter and gives it the window's expiry when it
// has none, in one step.
var hitScript = rueidis.NewLuaScript(`
local count = redis.call('INCR', KEYS[1])
if redis.call('PTTL', KEYS[1]) < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return count
`)

// RedisRateLimitStore shares the counters between instances through Redis.
type RedisRateLimitStore struct {
	client rueidis.Client
}

func NewRedisRateLimitStore(client rueidis.Client) *RedisRateLimitStore {
	return &RedisRateLimitStore{client: client}
}

func (s *RedisRateLimitStore) Hit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	redisKey := rateLimitKeyPrefix + key

	count, err := hitScript.Exec(
		ctx,
		s.client,
		[]string{redisKey},
		[]string{strconv.FormatInt(window.Milliseconds(), 10)},
	).AsInt64()
	if err != nil {
		return false, fmt.Errorf("hit %s: %w", redisKey, err)
	}

	return count <= int64(limit), nil
}
