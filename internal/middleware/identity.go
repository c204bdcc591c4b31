package middleware

import (
	"context"
	"strings"

	"foodfeed/internal/auth"
	"foodfeed/internal/models"

	"github.com/gofiber/fiber/v2"
)

// TokenCookie carries the session token for browser clients.
const TokenCookie = "access_token"

type identityKey struct{}

// TokenParser verifies a raw session token.
type TokenParser interface {
	Parse(ctx context.Context, raw string) (auth.Claims, error)
}

// Identify resolves the acting identity from the session cookie or a Bearer
// header. It never rejects a request: a missing or invalid token leaves the
// request anonymous.
func Identify(tokens TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := bearerToken(c.Get(fiber.HeaderAuthorization))
		if raw == "" {
			raw = c.Cookies(TokenCookie)
		}
		if raw == "" {
			return c.Next()
		}

		claims, err := tokens.Parse(c.UserContext(), raw)
		if err != nil {
			Logger.DebugContext(c.UserContext(), "ignoring session token", "error", err)
			return c.Next()
		}

		who := claims.Identity()
		c.Locals("userID", who.UserID)
		c.Locals("identity", who)
		c.Locals("claims", claims)

		ctx := context.WithValue(c.UserContext(), UserIDKey, who.UserID)
		ctx = context.WithValue(ctx, identityKey{}, who)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// ActingIdentity returns the identity resolved by Identify, or nil.
func ActingIdentity(c *fiber.Ctx) *models.ActingIdentity {
	who, _ := c.Locals("identity").(*models.ActingIdentity)
	return who
}

// SessionClaims returns the verified token claims, if any.
func SessionClaims(c *fiber.Ctx) (auth.Claims, bool) {
	claims, ok := c.Locals("claims").(auth.Claims)
	return claims, ok
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
