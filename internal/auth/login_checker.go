package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"
)

// LoginChecker verifies an access token and resolves it to the logged in
// user. The token signature check is stateless, the session lookup makes
// revoked sessions (logout, cleanup) fail the check before token expiry.
type LoginChecker struct {
	tokens      *TokenCreator
	redisClient *redis.Client
}

func NewLoginChecker(tokens *TokenCreator, redisClient *redis.Client) *LoginChecker {
	return &LoginChecker{
		tokens:      tokens,
		redisClient: redisClient,
	}
}

func (lc *LoginChecker) CheckToken(ctx context.Context, token string) (int, error) {
	claims, err := lc.tokens.VerifyAccessToken(token)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrNotLoggedIn, err)
	}

	sessionKey := sessionKeyPrefix + claims.ID
	val, err := lc.redisClient.Get(ctx, sessionKey).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNotLoggedIn
	}
	if err != nil {
		return 0, err
	}

	userID, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("malformed session value: %w", err)
	}
	if userID != claims.UserID {
		return 0, ErrNotLoggedIn
	}

	return userID, nil
}
