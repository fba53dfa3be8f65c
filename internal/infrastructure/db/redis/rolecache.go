package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const roleTTL = 5 * time.Minute

// RoleCache caches role lookups so the dashboard guard does not hit the user
// store on every request. Entries expire after roleTTL and are invalidated
// eagerly on any role change.
// Key format: role:<email>
type RoleCache struct {
	client *redis.Client
}

// NewRoleCache creates a RoleCache wrapping the given Redis client.
func NewRoleCache(client *redis.Client) *RoleCache {
	return &RoleCache{client: client}
}

// Get returns the cached role for email, or an empty string on a miss.
func (c *RoleCache) Get(ctx context.Context, email string) (string, error) {
	role, err := c.client.Get(ctx, c.key(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("role cache get: %w", err)
	}
	return role, nil
}

// Set caches the role for email (expires after roleTTL).
func (c *RoleCache) Set(ctx context.Context, email, role string) error {
	return c.client.Set(ctx, c.key(email), role, roleTTL).Err()
}

// Invalidate drops the cached role so the next lookup observes the change.
func (c *RoleCache) Invalidate(ctx context.Context, email string) error {
	return c.client.Del(ctx, c.key(email)).Err()
}

func (c *RoleCache) key(email string) string {
	return "role:" + email
}
