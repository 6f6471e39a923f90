package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RateLimiter implements fixed-window counters in Redis. Two windows are
// used: one for vote casting per client IP and one for auth attempts per IP.
type RateLimiter struct {
	client *goredis.Client

	voteLimit  int
	voteWindow time.Duration
	authLimit  int
	authWindow time.Duration
}

type RateLimitResult struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetIn   time.Duration
}

func NewRateLimiter(client *goredis.Client) *RateLimiter {
	return &RateLimiter{
		client:     client,
		voteLimit:  30,
		voteWindow: time.Minute,
		authLimit:  10,
		authWindow: time.Minute,
	}
}

// AllowVote checks the vote-casting window for a client IP.
func (r *RateLimiter) AllowVote(ctx context.Context, ip string) (*RateLimitResult, error) {
	return r.allow(ctx, fmt.Sprintf("ratelimit:vote:%s", ip), r.voteLimit, r.voteWindow)
}

// AllowAuth checks the auth-attempt window for a client IP.
func (r *RateLimiter) AllowAuth(ctx context.Context, ip string) (*RateLimitResult, error) {
	return r.allow(ctx, fmt.Sprintf("ratelimit:auth:%s", ip), r.authLimit, r.authWindow)
}

func (r *RateLimiter) allow(ctx context.Context, key string, limit int, window time.Duration) (*RateLimitResult, error) {
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	count := incr.Val()
	ttl, err := r.client.TTL(ctx, key).Result()
	if err != nil {
		ttl = window
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return &RateLimitResult{
		Allowed:   count <= int64(limit),
		Limit:     limit,
		Remaining: remaining,
		ResetIn:   ttl,
	}, nil
}
