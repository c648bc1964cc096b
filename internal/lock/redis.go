package lock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/maheshrc27/editorial-api/internal/models"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "editorial:lock:"
	retryInterval = 100 * time.Millisecond
	unlockScript  = "if redis.call('get', KEYS[1]) == ARGV[1] then return redis.call('del', KEYS[1]) else return 0 end"
)

// Redis is a Scope shared by every API and worker instance. The lock expires
// after ttl so a crashed holder cannot wedge a client's queue.
type Redis struct {
	rdb  *redis.Client
	ttl  time.Duration
	wait time.Duration
}

func NewRedis(rdb *redis.Client, ttl, wait time.Duration) *Redis {
	if wait <= 0 {
		wait = DefaultWait
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Redis{rdb: rdb, ttl: ttl, wait: wait}
}

func (r *Redis) Acquire(ctx context.Context, key string) (func(), error) {
	token, err := gonanoid.New()
	if err != nil {
		return nil, err
	}
	k := keyPrefix + key
	deadline := time.Now().Add(r.wait)

	for {
		ok, err := r.rdb.SetNX(ctx, k, token, r.ttl).Result()
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		if ok {
			return func() {
				// the caller's context may already be cancelled
				if err := r.rdb.Eval(context.Background(), unlockScript, []string{k}, token).Err(); err != nil {
					slog.Info(err.Error())
				}
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s is locked", models.ErrBusy, key)
		}

		select {
		case <-time.After(retryInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
