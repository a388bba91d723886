package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/2beens/liftlog/pkg"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultAccessTTL  = 30 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour

	sessionKeyPrefix = "liftlog-session||"
	sessionsSetKey   = "liftlog-sessions"
	refreshKeyPrefix = "liftlog-refresh||"
	refreshSetKey    = "liftlog-refresh-tokens"
)

var (
	ErrNotLoggedIn         = errors.New("not logged in")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Service keeps login session and refresh token state in redis. The access
// token is a signed jwt, its jti keys the session entry so a session can be
// revoked before the token itself expires. Refresh tokens are opaque random
// strings, rotated on each use.
type Service struct {
	redisClient *redis.Client
	tokens      *TokenCreator
	refreshTTL  time.Duration
	// ability to inject random generator funcs for tokens (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
	NewJTIFunc     func() string
}

func NewAuthService(
	tokens *TokenCreator,
	refreshTTL time.Duration,
	redisClient *redis.Client,
) *Service {
	return &Service{
		redisClient:    redisClient,
		tokens:         tokens,
		refreshTTL:     refreshTTL,
		RandStringFunc: pkg.GenerateRandomString,
		NewJTIFunc:     uuid.NewString,
	}
}

func (as *Service) Login(ctx context.Context, userID int, now time.Time) (*TokenPair, error) {
	jti := as.NewJTIFunc()
	accessToken, err := as.tokens.CreateAccessToken(userID, jti, now)
	if err != nil {
		return nil, err
	}

	refreshToken, err := as.RandStringFunc(40)
	if err != nil {
		return nil, err
	}

	sessionKey := sessionKeyPrefix + jti
	if err := as.redisClient.Set(ctx, sessionKey, userID, as.tokens.AccessTTL()).Err(); err != nil {
		return nil, err
	}
	if err := as.redisClient.SAdd(ctx, sessionsSetKey, jti).Err(); err != nil {
		return nil, err
	}

	refreshKey := refreshKeyPrefix + refreshToken
	if err := as.redisClient.Set(ctx, refreshKey, userID, as.refreshTTL).Err(); err != nil {
		return nil, err
	}
	if err := as.redisClient.SAdd(ctx, refreshSetKey, refreshToken).Err(); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh trades a valid refresh token for a fresh token pair. The used
// refresh token is always invalidated, also when issuing the new pair fails.
func (as *Service) Refresh(ctx context.Context, refreshToken string, now time.Time) (*TokenPair, error) {
	refreshKey := refreshKeyPrefix + refreshToken
	val, err := as.redisClient.Get(ctx, refreshKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, err
	}

	userID, err := strconv.Atoi(val)
	if err != nil {
		return nil, fmt.Errorf("malformed refresh session value: %w", err)
	}

	if err := as.redisClient.Del(ctx, refreshKey).Err(); err != nil {
		return nil, err
	}
	if err := as.redisClient.SRem(ctx, refreshSetKey, refreshToken).Err(); err != nil {
		return nil, err
	}

	return as.Login(ctx, userID, now)
}

func (as *Service) Logout(ctx context.Context, jti string) error {
	sessionKey := sessionKeyPrefix + jti
	removed, err := as.redisClient.Del(ctx, sessionKey).Result()
	if err != nil {
		return err
	}
	if err := as.redisClient.SRem(ctx, sessionsSetKey, jti).Err(); err != nil {
		return err
	}

	if removed == 0 {
		return ErrNotLoggedIn
	}
	return nil
}

// ScanAndClean will run through the session and refresh token sets and
// remove the members whose redis entries already expired
func (as *Service) ScanAndClean(ctx context.Context) {
	as.cleanSet(ctx, sessionsSetKey, sessionKeyPrefix)
	as.cleanSet(ctx, refreshSetKey, refreshKeyPrefix)
}

func (as *Service) cleanSet(ctx context.Context, setKey, keyPrefix string) {
	cmd := as.redisClient.SMembers(ctx, setKey)
	if err := cmd.Err(); err != nil {
		log.Errorf("!!! auth service, scan and clean, get members of %s: %s", setKey, err)
		return
	}

	tokens := cmd.Val()
	if len(tokens) == 0 {
		log.Tracef("=> auth service, scan and clean %s abort, no sessions", setKey)
		return
	}

	log.Warnf("=> auth service, scan and clean %s [%d tokens] start ...", setKey, len(tokens))
	var toRemove []string
	for _, token := range tokens {
		exists, err := as.redisClient.Exists(ctx, keyPrefix+token).Result()
		if err != nil {
			log.Errorf("=> auth service, scan and clean token %s: %s", token, err)
			continue
		}
		if exists == 0 {
			toRemove = append(toRemove, token)
		}
	}

	for _, token := range toRemove {
		log.Warnf("=>\twill clean the expired session of token: %s", token)
		if err := as.redisClient.SRem(ctx, setKey, token).Err(); err != nil {
			log.Errorf("=> auth service, clean token %s: %s", token, err)
		}
	}
}
