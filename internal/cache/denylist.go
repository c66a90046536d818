package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/t-azam747/SecureRelief-sub003/internal/security"
)

const denylistPrefix = "denylist:"

// TokenDenylist remembers revoked bearer tokens until they would have
// expired anyway. Only a fingerprint of each token is stored.
type TokenDenylist struct {
	client redis.Cmdable
}

func NewTokenDenylist(client redis.Cmdable) *TokenDenylist {
	return &TokenDenylist{client: client}
}

// Revoke denylists token for ttl. A non-positive ttl means the token is
// already expired and nothing is stored.
func (d *TokenDenylist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := d.client.Set(ctx, denylistKey(token), 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (d *TokenDenylist) IsRevoked(ctx context.Context, token string) (bool, error) {
	err := d.client.Get(ctx, denylistKey(token)).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, fmt.Errorf("check denylist: %w", err)
	}
}

func denylistKey(token string) string {
	return denylistPrefix + security.TokenFingerprint(token)
}
