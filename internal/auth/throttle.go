package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrTooManyAttempts is returned once an email exceeded its failed logins.
var ErrTooManyAttempts = errors.New("too many failed login attempts")

// LoginThrottle limits failed logins per email.
type LoginThrottle interface {
	Allow(ctx context.Context, email string) error
	Fail(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

type redisThrottle struct {
	client      *redis.Client
	maxAttempts int64
	window      time.Duration
	prefix      string
}

// NewRedisThrottle counts failures in Redis with a fixed window that starts
// at the first failure.
func NewRedisThrottle(client *redis.Client, maxAttempts int, window time.Duration) LoginThrottle {
	return &redisThrottle{
		client:      client,
		maxAttempts: int64(maxAttempts),
		window:      window,
		prefix:      "auth:login:fail:",
	}
}

func (t *redisThrottle) key(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return t.prefix + hex.EncodeToString(sum[:])
}

func (t *redisThrottle) Allow(ctx context.Context, email string) error {
	count, err := t.client.Get(ctx, t.key(email)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}
	if count >= t.maxAttempts {
		return ErrTooManyAttempts
	}
	return nil
}

func (t *redisThrottle) Fail(ctx context.Context, email string) error {
	key := t.key(email)
	count, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		return t.client.Expire(ctx, key, t.window).Err()
	}
	return nil
}

func (t *redisThrottle) Reset(ctx context.Context, email string) error {
	return t.client.Del(ctx, t.key(email)).Err()
}

type noopThrottle struct{}

// NoopThrottle never limits. It is used when Redis is not configured.
func NoopThrottle() LoginThrottle {
	return noopThrottle{}
}

func (noopThrottle) Allow(context.Context, string) error { return nil }
func (noopThrottle) Fail(context.Context, string) error  { return nil }
func (noopThrottle) Reset(context.Context, string) error { return nil }
