package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter throttles auth attempts per (action, client IP). The counter
// lives in redis with a sliding TTL; a successful attempt clears it.
type RateLimiter struct {
	cache       *redis.Client
	maxAttempts int
	window      time.Duration
}

func NewRateLimiter(cache *redis.Client, maxAttempts int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		cache:       cache,
		maxAttempts: maxAttempts,
		window:      window,
	}
}

func (l *RateLimiter) key(action, ip string) string {
	if ip == "" {
		ip = "unknown"
	}
	sum := sha1.Sum([]byte(ip))
	return fmt.Sprintf("auth_attempts:%s:%s", action, hex.EncodeToString(sum[:]))
}

func (l *RateLimiter) Blocked(ctx context.Context, action, ip string) (bool, error) {
	attempts, err := l.cache.Get(ctx, l.key(action, ip)).Int()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("get attempts: %w", err)
	}
	return attempts >= l.maxAttempts, nil
}

// RecordFailure bumps the counter and pushes the window out again; the
// block only lifts after a full quiet window.
func (l *RateLimiter) RecordFailure(ctx context.Context, action, ip string) error {
	key := l.key(action, ip)
	if err := l.cache.Incr(ctx, key).Err(); err != nil {
		return fmt.Errorf("incr attempts: %w", err)
	}
	if err := l.cache.Expire(ctx, key, l.window).Err(); err != nil {
		return fmt.Errorf("expire attempts: %w", err)
	}
	return nil
}

func (l *RateLimiter) Reset(ctx context.Context, action, ip string) error {
	if err := l.cache.Del(ctx, l.key(action, ip)).Err(); err != nil {
		return fmt.Errorf("reset attempts: %w", err)
	}
	return nil
}
