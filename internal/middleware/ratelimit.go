package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"foodfeed/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Rule limits one action to Limit requests per Window.
type Rule struct {
	Name   string
	Limit  int
	Window time.Duration
}

var (
	SignupRule        = Rule{Name: "signup", Limit: 3, Window: 10 * time.Minute}
	LoginRule         = Rule{Name: "login", Limit: 10, Window: 5 * time.Minute}
	CreatePostRule    = Rule{Name: "create_post", Limit: 5, Window: 5 * time.Minute}
	CreateCommentRule = Rule{Name: "create_comment", Limit: 10, Window: time.Minute}
)

var errNoRedis = errors.New("rate limit store not configured")

// Limiter counts actions in fixed Redis windows. A disabled Limiter allows
// everything; an unreachable store also lets requests through.
type Limiter struct {
	rdb     *redis.Client
	enabled bool
}

// NewLimiter creates a limiter. rdb may be nil.
func NewLimiter(rdb *redis.Client, enabled bool) *Limiter {
	return &Limiter{rdb: rdb, enabled: enabled}
}

// Allow records one use of rule by key and reports whether it is within the
// limit.
func (l *Limiter) Allow(ctx context.Context, rule Rule, key string) (bool, error) {
	if !l.enabled {
		return true, nil
	}
	if l.rdb == nil {
		return true, errNoRedis
	}

	k := fmt.Sprintf("rl:%s:%s", rule.Name, key)
	n, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		observability.RedisErrorRate.WithLabelValues("rate_limit").Inc()
		return true, err
	}
	if n == 1 {
		// The first hit opens the window.
		if err := l.rdb.Expire(ctx, k, rule.Window).Err(); err != nil {
			observability.RedisErrorRate.WithLabelValues("rate_limit").Inc()
		}
	}
	return n <= int64(rule.Limit), nil
}

// Handler enforces rule per signed-in user, or per client IP for anonymous
// requests. onLimit answers a request over the limit; nil means a 429 JSON
// response.
func (l *Limiter) Handler(rule Rule, onLimit fiber.Handler) fiber.Handler {
	if onLimit == nil {
		onLimit = func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded",
			})
		}
	}
	return func(c *fiber.Ctx) error {
		allowed, err := l.Allow(c.UserContext(), rule, requestKey(c))
		if err != nil {
			Logger.WarnContext(c.UserContext(), "rate limit store unavailable",
				"rule", rule.Name, "error", err)
		}
		if !allowed {
			return onLimit(c)
		}
		return c.Next()
	}
}

func requestKey(c *fiber.Ctx) string {
	if who := ActingIdentity(c); who.Authenticated() {
		return fmt.Sprintf("user:%d", who.UserID)
	}
	return "ip:" + c.IP()
}
