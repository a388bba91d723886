package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "liftlog"

type TokenClaims struct {
	UserID int `json:"uid"`
	jwt.RegisteredClaims
}

// TokenCreator issues and verifies signed access tokens. The token carries
// the user id and a jti which keys the server side session.
type TokenCreator struct {
	secret    []byte
	accessTTL time.Duration
}

func NewTokenCreator(secret string, accessTTL time.Duration) *TokenCreator {
	return &TokenCreator{
		secret:    []byte(secret),
		accessTTL: accessTTL,
	}
}

func (tc *TokenCreator) AccessTTL() time.Duration {
	return tc.accessTTL
}

func (tc *TokenCreator) CreateAccessToken(userID int, jti string, now time.Time) (string, error) {
	claims := TokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    tokenIssuer,
			Subject:   strconv.Itoa(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tc.accessTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tc.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}

	return signed, nil
}

func (tc *TokenCreator) VerifyAccessToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&TokenClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return tc.secret, nil
		},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid access token")
	}

	return claims, nil
}
