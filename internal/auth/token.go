// Package auth issues and verifies the session tokens that identify a user.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"foodfeed/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	Issuer   = "foodfeed-api"
	Audience = "foodfeed-client"
	// TokenTTL is how long a session token stays valid.
	TokenTTL = 7 * 24 * time.Hour

	revokedKeyPrefix = "blacklist:"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the verified content of a token.
type Claims struct {
	UserID    uint
	Username  string
	ID        string
	ExpiresAt time.Time
}

// Identity converts the claims into an acting identity.
func (c Claims) Identity() *models.ActingIdentity {
	return &models.ActingIdentity{UserID: c.UserID, Username: c.Username}
}

// Tokens signs and verifies HS256 tokens and tracks revoked token IDs.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	redis  *redis.Client
	now    func() time.Time
}

// NewTokens creates a token manager. rdb may be nil, in which case
// revocation is not enforced.
func NewTokens(secret string, rdb *redis.Client) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: TokenTTL, redis: rdb, now: time.Now}
}

// Issue signs a token for the user.
func (t *Tokens) Issue(userID uint, username string) (string, error) {
	if len(t.secret) == 0 {
		return "", fmt.Errorf("JWT secret not configured")
	}
	now := t.now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10),
		"username": username,
		"iss":      Issuer,
		"aud":      Audience,
		"exp":      now.Add(t.ttl).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      uuid.New().String(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse verifies raw and returns its claims.
func (t *Tokens) Parse(ctx context.Context, raw string) (Claims, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !token.Valid {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	sub, _ := mc["sub"].(string)
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return Claims{}, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	claims := Claims{UserID: uint(userID)}
	claims.Username, _ = mc["username"].(string)
	claims.ID, _ = mc["jti"].(string)
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}

	if claims.ID != "" && t.redis != nil {
		n, err := t.redis.Exists(ctx, revokedKeyPrefix+claims.ID).Result()
		if err == nil && n > 0 {
			return Claims{}, fmt.Errorf("%w: revoked", ErrInvalidToken)
		}
	}
	return claims, nil
}

// Revoke blacklists the token until it would have expired anyway.
func (t *Tokens) Revoke(ctx context.Context, claims Claims) error {
	if t.redis == nil || claims.ID == "" {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return t.redis.Set(ctx, revokedKeyPrefix+claims.ID, "1", ttl).Err()
}
