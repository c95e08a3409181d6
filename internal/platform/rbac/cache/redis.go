// Package cache stores authorization decisions in Redis, namespaced by a per-organization
// generation counter so one INCR invalidates every decision of an organization.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"budget-control-plane/internal/platform/rbac"
)

const keyPrefix = "authz"

// commander is the subset of redis.Cmdable the cache uses.
type commander interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// Redis implements rbac.DecisionCache.
type Redis struct {
	client commander
	ttl    time.Duration
}

var _ rbac.DecisionCache = (*Redis)(nil)

// NewRedis returns a decision cache over client. Entries expire after ttl; generation keys never expire.
func NewRedis(client redis.Cmdable, ttl time.Duration) *Redis {
	return newRedis(client, ttl)
}

func newRedis(client commander, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// Generation returns the organization's current generation, 0 when it was never invalidated.
func (c *Redis) Generation(ctx context.Context, orgID string) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(orgID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("decision cache: generation: %w", err)
	}
	return gen, nil
}

// Get returns the cached decision for key; found is false on a miss.
func (c *Redis) Get(ctx context.Context, key rbac.DecisionKey) (allowed, found bool, err error) {
	v, err := c.client.Get(ctx, decisionKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("decision cache: get: %w", err)
	}
	return v == "1", true, nil
}

// Set stores the decision for key.
func (c *Redis) Set(ctx context.Context, key rbac.DecisionKey, allowed bool) error {
	v := "0"
	if allowed {
		v = "1"
	}
	if err := c.client.Set(ctx, decisionKey(key), v, c.ttl).Err(); err != nil {
		return fmt.Errorf("decision cache: set: %w", err)
	}
	return nil
}

// Invalidate moves orgID to the next generation. Old entries are left to expire.
func (c *Redis) Invalidate(ctx context.Context, orgID string) error {
	if err := c.client.Incr(ctx, generationKey(orgID)).Err(); err != nil {
		return fmt.Errorf("decision cache: invalidate: %w", err)
	}
	return nil
}

func generationKey(orgID string) string {
	return fmt.Sprintf("%s:gen:%s", keyPrefix, orgID)
}

func decisionKey(k rbac.DecisionKey) string {
	return fmt.Sprintf("%s:%s:%d:%s:%s", keyPrefix, k.OrgID, k.Generation, k.UserID, k.Permission)
}
