package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	lockTTL          = 30 * time.Second
	lockRetryDelay   = 100 * time.Millisecond
	lockAcquireLimit = 10 * time.Second
)

// releaseScript deletes the lock only when it still holds our token, so a
// lock that expired and was re-acquired elsewhere is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// ClassLocker serializes lesson generation and disable per class using a
// Redis advisory lock.
type ClassLocker struct {
	redis *redis.Client
}

func NewClassLocker(redisURL string) (*ClassLocker, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &ClassLocker{redis: client}, nil
}

func (l *ClassLocker) AcquireClassLock(ctx context.Context, classID uuid.UUID) (func(), error) {
	key := fmt.Sprintf("class_lock:%s", classID)
	token := uuid.NewString()

	deadline := time.Now().Add(lockAcquireLimit)
	for {
		ok, err := l.redis.SetNX(ctx, key, token, lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire class lock: %w", err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("class %s is locked by another operation", classID)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryDelay):
		}
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, l.redis, []string{key}, token).Err()
	}
	return release, nil
}
