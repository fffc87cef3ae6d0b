package syncjob

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	lockKeyPrefix = "sync:lock:" // sync:lock:{tenant_id}
	lockTTL       = 10 * time.Minute
)

// RedisLocker leases a per-tenant key so only one sync run is in flight
// at a time. The TTL bounds how long a crashed run can block the next.
type RedisLocker struct {
	client *redis.Client
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) Acquire(ctx context.Context, tenantID string) (func(), error) {
	key := lockKeyPrefix + tenantID
	token := uuid.New().String()

	ok, err := l.client.SetNX(ctx, key, token, lockTTL).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInProgress
	}

	release := func() {
		// Only drop the lease if it is still ours; an expired lease may
		// have been re-acquired by a newer run.
		current, err := l.client.Get(context.Background(), key).Result()
		if err != nil || current != token {
			return
		}
		if err := l.client.Del(context.Background(), key).Err(); err != nil {
			log.Printf("sync lock release failed for %s: %v", tenantID, err)
		}
	}
	return release, nil
}
