package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/light11014/Moodmate-Backend/internal/model"
)

// usageTTL keeps counters long enough to answer same-day and prior-day queries.
const usageTTL = 8 * 24 * time.Hour

// consumeScript increments KEYS[1] only while it is below ARGV[1].
// Returns the new count, or -1 when the limit is already reached.
var consumeScript = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
if current >= tonumber(ARGV[1]) then
  return -1
end
local n = redis.call("INCR", KEYS[1])
redis.call("PEXPIRE", KEYS[1], ARGV[2])
return n
`)

// releaseScript decrements KEYS[1] only while it is positive.
var releaseScript = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
if current <= 0 then
  return 0
end
return redis.call("DECR", KEYS[1])
`)

// RedisLedger keeps usage counters in Redis so several service replicas share one quota.
type RedisLedger struct {
	client *redis.Client
	prefix string
	log    zerolog.Logger
}

// NewRedisLedger wraps an existing client.
func NewRedisLedger(client *redis.Client, log zerolog.Logger) *RedisLedger {
	return &RedisLedger{client: client, prefix: "moodmate:usage", log: log}
}

// OpenRedis connects to addr and verifies it with PING.
func OpenRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

func (l *RedisLedger) key(userID string, date strfmt.Date) string {
	return fmt.Sprintf("%s:%s:%s", l.prefix, userID, date.String())
}

func (l *RedisLedger) Usage(ctx context.Context, userID string, date strfmt.Date) (int, error) {
	n, err := l.client.Get(ctx, l.key(userID, date)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

func (l *RedisLedger) TryConsume(ctx context.Context, userID string, date strfmt.Date, limit int) (int, error) {
	if limit <= 0 {
		return 0, model.NewQuotaExceededError(limit)
	}
	n, err := consumeScript.Run(ctx, l.client, []string{l.key(userID, date)}, limit, usageTTL.Milliseconds()).Int()
	if err != nil {
		logConsume(l.log, userID, date, 0, limit, err)
		return 0, fmt.Errorf("redis consume: %w", err)
	}
	if n < 0 {
		err = model.NewQuotaExceededError(limit)
		logConsume(l.log, userID, date, limit, limit, err)
		return limit, err
	}
	logConsume(l.log, userID, date, n, limit, nil)
	return n, nil
}

func (l *RedisLedger) Release(ctx context.Context, userID string, date strfmt.Date) error {
	n, err := releaseScript.Run(ctx, l.client, []string{l.key(userID, date)}).Int()
	if err != nil {
		return fmt.Errorf("redis release: %w", err)
	}
	l.log.Info().Str("user_id", userID).Str("usage_date", date.String()).Int("usage_count", n).Msg("daily usage released")
	return nil
}

// HealthPing implements health.HealthPinger.
func (l *RedisLedger) HealthPing(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (l *RedisLedger) Close() error { return l.client.Close() }
