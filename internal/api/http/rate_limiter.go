package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/civic-issue-service/internal/auth"
	"github.com/spec-kit/civic-issue-service/internal/config"
	apperrors "github.com/spec-kit/civic-issue-service/pkg/util"
)

// ReportRateLimiter caps issue creations per user per rolling day. Counters
// live in redis under one key per user; the TTL is set on the first increment
// of the day so the window expires on its own.
func ReportRateLimiter(client *redis.Client, cfg config.IssuesConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if client == nil || cfg.DailyReportLimit <= 0 {
			return c.Next()
		}
		principal, ok := auth.PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return apperrors.NewUnauthorized("authentication required")
		}

		ctx := c.UserContext()
		userKey := cfg.RateLimitKeyspace + ":" + principal.User.ID

		count, err := client.Incr(ctx, userKey).Result()
		if err != nil {
			return apperrors.NewStorageError(err)
		}
		if count == 1 {
			if err := client.Expire(ctx, userKey, 24*time.Hour).Err(); err != nil {
				return apperrors.NewStorageError(err)
			}
		}

		if count > int64(cfg.DailyReportLimit) {
			retryAfter, _ := client.TTL(ctx, userKey).Result()
			return apperrors.NewDomainError("RATE_LIMITED", "daily report limit exceeded",
				fiber.StatusTooManyRequests, map[string]any{
					"limit":       cfg.DailyReportLimit,
					"retry_after": retryAfter.Seconds(),
				})
		}

		return c.Next()
	}
}
