package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ridepool/ridepool-backend/internal/ledger"
)

// groupCacheTTL bounds staleness of cached destination groups between the
// explicit invalidations on ride mutations.
const groupCacheTTL = 5 * time.Minute

// InitRedis connects to REDIS_URL. The caller may treat a failure as
// non-fatal; the group cache degrades to pass-through without a client.
func InitRedis() (*redis.Client, error) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://redis:6379" // Default Redis address for Docker
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	client := redis.NewClient(opt)

	ctx := context.Background()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return client, nil
}

// GroupCache caches destination-group query results in Redis. A nil cache or
// a cache without a client is a no-op pass-through.
type GroupCache struct {
	client *redis.Client
}

func NewGroupCache(client *redis.Client) *GroupCache {
	return &GroupCache{client: client}
}

// GroupCacheKey builds the cache key for a grouping mode.
func GroupCacheKey(mode ledger.GroupMode) string {
	return fmt.Sprintf("rides:groups:%s", mode)
}

// Get returns the cached groups for a mode, or ok=false on miss or error.
func (c *GroupCache) Get(ctx context.Context, mode ledger.GroupMode) (map[string][]ledger.GroupEntry, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, GroupCacheKey(mode)).Result()
	if err != nil {
		return nil, false
	}
	var groups map[string][]ledger.GroupEntry
	if err := json.Unmarshal([]byte(data), &groups); err != nil {
		return nil, false
	}
	return groups, true
}

// Set stores the groups for a mode with a short TTL. Failures are ignored;
// the cache is an optimization, not a source of truth.
func (c *GroupCache) Set(ctx context.Context, mode ledger.GroupMode, groups map[string][]ledger.GroupEntry) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(groups)
	if err != nil {
		return
	}
	c.client.Set(ctx, GroupCacheKey(mode), data, groupCacheTTL)
}

// Invalidate drops both grouping modes, called after any ride mutation.
func (c *GroupCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(ctx, GroupCacheKey(ledger.GroupAll), GroupCacheKey(ledger.GroupMultiOnly))
}
