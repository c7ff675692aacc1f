package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginThrottle limits repeated failed logins per email using a Redis
// fixed window. A nil client or an unreachable Redis fails open: login
// availability wins over throttling.
type LoginThrottle struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewLoginThrottle builds a throttle. limit <= 0 disables it.
func NewLoginThrottle(client *redis.Client, limit int, window time.Duration) *LoginThrottle {
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &LoginThrottle{client: client, limit: limit, window: window}
}

// Allow reports whether another login attempt is permitted for the email.
func (t *LoginThrottle) Allow(ctx context.Context, email string) bool {
	if t == nil || t.client == nil || t.limit <= 0 {
		return true
	}
	count, err := t.client.Get(ctx, t.key(email)).Int()
	if err != nil {
		return true
	}
	return count < t.limit
}

// RecordFailure counts a failed attempt within the current window.
func (t *LoginThrottle) RecordFailure(ctx context.Context, email string) {
	if t == nil || t.client == nil || t.limit <= 0 {
		return
	}
	pipe := t.client.TxPipeline()
	pipe.Incr(ctx, t.key(email))
	pipe.Expire(ctx, t.key(email), t.window)
	_, _ = pipe.Exec(ctx)
}

// Reset clears the failure counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, email string) {
	if t == nil || t.client == nil {
		return
	}
	_ = t.client.Del(ctx, t.key(email)).Err()
}

func (t *LoginThrottle) key(email string) string {
	return fmt.Sprintf("login_attempts:%s", email)
}
