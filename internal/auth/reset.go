package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/teamforge/backend/pkg/utils"
)

// ErrResetTokenInvalid is returned for unknown, expired, or reused tokens.
var ErrResetTokenInvalid = errors.New("invalid or expired reset token")

const resetKeyPrefix = "auth:reset:"

// ResetStore keeps single-use password reset tokens in Redis with a TTL.
// Tokens are the only way a provisioned account ever obtains a usable
// password; plaintext credentials are never delivered.
type ResetStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResetStore creates a reset token store.
func NewResetStore(client *redis.Client, ttl time.Duration) *ResetStore {
	return &ResetStore{client: client, ttl: ttl}
}

// Issue creates a reset token for the user and stores it with the TTL.
func (s *ResetStore) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := utils.RandomToken(32)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	if err := s.client.Set(ctx, resetKeyPrefix+token, userID.String(), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return token, nil
}

// Consume resolves a token to its user and deletes it so it cannot be
// replayed. GETDEL makes lookup and invalidation one atomic step.
func (s *ResetStore) Consume(ctx context.Context, token string) (uuid.UUID, error) {
	val, err := s.client.GetDel(ctx, resetKeyPrefix+token).Result()
	if err == redis.Nil {
		return uuid.Nil, ErrResetTokenInvalid
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("lookup token: %w", err)
	}
	userID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, ErrResetTokenInvalid
	}
	return userID, nil
}
