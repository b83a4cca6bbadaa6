package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chatwire/chat-system/internal/core/domain"
)

const resetTokenTTL = time.Hour

// ResetTokenStore holds single-use password reset tokens in Redis.
// Key format: reset:<token> → user id, expiring after resetTokenTTL.
type ResetTokenStore struct {
	client *redis.Client
}

// NewResetTokenStore creates a ResetTokenStore wrapping the given client.
func NewResetTokenStore(client *redis.Client) *ResetTokenStore {
	return &ResetTokenStore{client: client}
}

// Save binds token to userID. Issuing a new token does not revoke older ones;
// they age out on their own TTL.
func (s *ResetTokenStore) Save(ctx context.Context, token, userID string) error {
	if err := s.client.Set(ctx, s.key(token), userID, resetTokenTTL).Err(); err != nil {
		return fmt.Errorf("save reset token: %w", err)
	}
	return nil
}

// Redeem returns the user id bound to token and deletes it, making the token
// single-use. Missing or expired tokens yield domain.ErrResetTokenInvalid.
func (s *ResetTokenStore) Redeem(ctx context.Context, token string) (string, error) {
	userID, err := s.client.GetDel(ctx, s.key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrResetTokenInvalid
	}
	if err != nil {
		return "", fmt.Errorf("redeem reset token: %w", err)
	}
	return userID, nil
}

func (s *ResetTokenStore) key(token string) string {
	return "reset:" + token
}
