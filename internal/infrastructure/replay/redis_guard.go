package replay

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"webinar_billing/internal/usecase/interfaces"

	redis "github.com/redis/go-redis/v9"
)

const (
	keyPrefix       = "webhook:replay:"
	defaultTTL      = 24 * time.Hour
	defaultClaimTTL = 2 * time.Minute
)

// RedisGuard remembers webhook bodies with Redis SETNX semantics. A body is
// claimed for ClaimTTL while it is processed and kept for TTL once confirmed,
// so a crash mid-processing only blocks redeliveries briefly. A nil client
// makes every body look new.
type RedisGuard struct {
	Client   *redis.Client
	TTL      time.Duration
	ClaimTTL time.Duration
}

var _ interfaces.IReplayGuard = (*RedisGuard)(nil)

func NewRedisGuard(client *redis.Client, ttl, claimTTL time.Duration) *RedisGuard {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if claimTTL <= 0 {
		claimTTL = defaultClaimTTL
	}
	if claimTTL > ttl {
		claimTTL = ttl
	}
	return &RedisGuard{Client: client, TTL: ttl, ClaimTTL: claimTTL}
}

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// FirstSeen claims the body digest for ClaimTTL; false means the exact body
// is being processed or was already processed within the TTL.
func (g *RedisGuard) FirstSeen(ctx context.Context, body []byte) (bool, error) {
	if g == nil || g.Client == nil {
		return true, nil
	}
	return g.Client.SetNX(ctx, Key(body), "1", g.ClaimTTL).Result()
}

// Confirm extends a claim to the full TTL.
func (g *RedisGuard) Confirm(ctx context.Context, body []byte) error {
	if g == nil || g.Client == nil {
		return nil
	}
	return g.Client.Set(ctx, Key(body), "1", g.TTL).Err()
}

// Forget releases the digest so a redelivery is processed again.
func (g *RedisGuard) Forget(ctx context.Context, body []byte) error {
	if g == nil || g.Client == nil {
		return nil
	}
	return g.Client.Del(ctx, Key(body)).Err()
}

// Key returns the Redis key for body.
func Key(body []byte) string {
	sum := sha256.Sum256(body)
	return keyPrefix + hex.EncodeToString(sum[:])
}
