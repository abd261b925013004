package redisstore

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const blacklistPrefix = "hrm:token:blacklist:"

// TokenBlacklist keeps revoked refresh token ids until their natural expiry.
type TokenBlacklist struct {
	client *redis.Client
	now    func() time.Time
}

func NewTokenBlacklist(client *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{client: client, now: time.Now}
}

// Revoke reports true only for the first caller to revoke jti.
func (b *TokenBlacklist) Revoke(ctx context.Context, jti string, userID int64, expiresAt time.Time) (bool, error) {
	ttl := expiresAt.Sub(b.now())
	if ttl < time.Second {
		ttl = time.Second
	}
	return b.client.SetNX(ctx, blacklistPrefix+jti, strconv.FormatInt(userID, 10), ttl).Result()
}

func (b *TokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
