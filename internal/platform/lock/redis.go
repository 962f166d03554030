package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const pollInterval = 50 * time.Millisecond

// RedisClient is the subset of redis.Cmdable the locker needs.
type RedisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisLocker is a DoctorLocker backed by redis SET NX with a TTL, for
// deployments running more than one server instance. Each acquisition writes
// a unique owner token so a lock expired and re-taken by another process is
// never released by the original holder.
type RedisLocker struct {
	client RedisClient
	wait   time.Duration
	ttl    time.Duration
	log    zerolog.Logger
}

func NewRedisLocker(client RedisClient, wait, ttl time.Duration, log zerolog.Logger) *RedisLocker {
	return &RedisLocker{
		client: client,
		wait:   wait,
		ttl:    ttl,
		log:    log,
	}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	redisKey := "lock:" + key
	deadline := time.Now().Add(l.wait)

	for {
		acquired, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquiring lock %s: %w", redisKey, err)
		}
		if acquired {
			return func() { l.release(redisKey, token) }, nil
		}

		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}

		select {
		case <-time.After(pollInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// release deletes the lock only if this process still owns it. A fresh
// context is used so release still runs when the request context is gone.
func (l *RedisLocker) release(redisKey, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stored, err := l.client.Get(ctx, redisKey).Result()
	if err == redis.Nil {
		return
	}
	if err != nil {
		l.log.Error().Err(err).Str("key", redisKey).Msg("reading lock for release")
		return
	}
	if stored != token {
		l.log.Warn().Str("key", redisKey).Msg("lock ownership lost before release")
		return
	}
	if err := l.client.Del(ctx, redisKey).Err(); err != nil {
		l.log.Error().Err(err).Str("key", redisKey).Msg("releasing lock")
	}
}
