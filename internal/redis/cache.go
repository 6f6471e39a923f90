package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"pollwise/internal/domain/vote"
)

// ResultsCache caches aggregated poll results under results:{poll_id}.
// Whether caching is on at all, and for how long, is a settings question;
// the vote service passes the TTL per call.
type ResultsCache struct {
	client *goredis.Client
}

func NewResultsCache(client *goredis.Client) *ResultsCache {
	return &ResultsCache{client: client}
}

// GetResults returns the cached results, or nil on a miss.
func (c *ResultsCache) GetResults(ctx context.Context, pollID uuid.UUID) (*vote.Results, error) {
	key := resultsKey(pollID)
	data, err := c.client.Get(ctx, key).Result()
	if err == goredis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, err
	}

	var r vote.Results
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *ResultsCache) SetResults(ctx context.Context, pollID uuid.UUID, r vote.Results, ttl time.Duration) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, resultsKey(pollID), data, ttl).Err()
}

func (c *ResultsCache) InvalidateResults(ctx context.Context, pollID uuid.UUID) error {
	return c.client.Del(ctx, resultsKey(pollID)).Err()
}

// InvalidateAllResults drops every cached results entry. Used when the cache
// settings change, so stale TTLs never linger.
func (c *ResultsCache) InvalidateAllResults(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, "results:*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (c *ResultsCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func resultsKey(pollID uuid.UUID) string {
	return fmt.Sprintf("results:%s", pollID.String())
}
