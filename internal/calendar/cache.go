package calendar

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheTTL = 30 * time.Second

	versionKeyFmt = "calendar:ver:%s"       // calendar:ver:{tenant_id}
	viewKeyFmt    = "calendar:view:%s:%d:%s" // calendar:view:{tenant_id}:{version}:{query}
)

// Cache keeps rendered calendar views in redis for a short TTL. Keys
// carry a per-tenant version counter; a role-plan write bumps the
// counter, orphaning every cached view at once. Entries expire on their
// own, so the bump never has to enumerate keys.
type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Get(ctx context.Context, tenantID, query string) ([]byte, bool) {
	key, err := c.viewKey(ctx, tenantID, query)
	if err != nil {
		return nil, false
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("calendar cache read failed: %v", err)
		}
		return nil, false
	}
	return payload, true
}

func (c *Cache) Set(ctx context.Context, tenantID, query string, payload []byte) {
	key, err := c.viewKey(ctx, tenantID, query)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, payload, cacheTTL).Err(); err != nil {
		log.Printf("calendar cache write failed: %v", err)
	}
}

// Invalidate bumps the tenant's version counter so stale views stop
// resolving. Satisfies the role-plan handlers' invalidator.
func (c *Cache) Invalidate(ctx context.Context, tenantID string) {
	if err := c.client.Incr(ctx, fmt.Sprintf(versionKeyFmt, tenantID)).Err(); err != nil {
		log.Printf("calendar cache invalidate failed: %v", err)
	}
}

func (c *Cache) viewKey(ctx context.Context, tenantID, query string) (string, error) {
	ver, err := c.client.Get(ctx, fmt.Sprintf(versionKeyFmt, tenantID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf(viewKeyFmt, tenantID, ver, query), nil
}
