package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenDenylist records session tokens revoked before their expiry
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type redisTokenDenylist struct {
	client *redis.Client
}

// NewRedisTokenDenylist creates a TokenDenylist backed by redis keys that
// expire together with the token they revoke
func NewRedisTokenDenylist(client *redis.Client) TokenDenylist {
	return &redisTokenDenylist{client: client}
}

// ConnectRedis parses a redis URL and checks the server is reachable
func ConnectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func revokedKey(tokenID string) string {
	return fmt.Sprintf("revoked_token:%s", tokenID)
}

// Revoke denylists tokenID for ttl; a non-positive ttl means the token already expired
func (r *redisTokenDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, revokedKey(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID was revoked
func (r *redisTokenDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check revoked token: %w", err)
	}
	return n > 0, nil
}
