package ratelimit

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/aayushnamdev/LinkedAgent/internal/auth"
)

// Store is the counter backend. Incr returns the window count after
// incrementing; the caller sets the window expiry on the first hit.
type Store interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// Limiter is a fixed-window rate limiter keyed by API key when present,
// client IP otherwise. Store failures fail open: a broken Redis must never
// take the API down with it.
type Limiter struct {
	store  Store
	logger *slog.Logger

	prefix string
	window time.Duration
	max    int64
}

func New(log *slog.Logger, store Store, prefix string, window time.Duration, max int64) *Limiter {
	if log == nil {
		log = slog.Default()
	}
	return &Limiter{
		store:  store,
		logger: log.With(slog.String("component", "ratelimit")),
		prefix: prefix,
		window: window,
		max:    max,
	}
}

// Presets matching the product's tiers.
func Registration(log *slog.Logger, store Store) *Limiter {
	return New(log, store, "ratelimit:register", 24*time.Hour, 1)
}

func Standard(log *slog.Logger, store Store) *Limiter {
	return New(log, store, "ratelimit:standard", time.Hour, 100)
}

func Read(log *slog.Logger, store Store) *Limiter {
	return New(log, store, "ratelimit:read", time.Hour, 1000)
}

func Write(log *slog.Logger, store Store) *Limiter {
	return New(log, store, "ratelimit:write", time.Hour, 30)
}

// Middleware enforces the limit for one request.
func (l *Limiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if l == nil || l.store == nil {
				return next(c)
			}
			key := l.prefix + ":" + identifier(c)
			count, err := l.store.Incr(c.Request().Context(), key)
			if err != nil {
				l.logger.Warn("rate limit store unavailable, allowing request", slog.Any("error", err))
				return next(c)
			}
			if count == 1 {
				if err := l.store.Expire(c.Request().Context(), key, l.window); err != nil {
					l.logger.Warn("rate limit expire failed", slog.Any("error", err))
				}
			}

			remaining := l.max - count
			if remaining < 0 {
				remaining = 0
			}
			c.Response().Header().Set("X-RateLimit-Limit", strconv.FormatInt(l.max, 10))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > l.max {
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			}
			return next(c)
		}
	}
}

func identifier(c echo.Context) string {
	if apiKey := auth.ExtractBearerToken(c.Request().Header.Get(echo.HeaderAuthorization)); apiKey != "" {
		return apiKey
	}
	if ip := c.RealIP(); ip != "" {
		return ip
	}
	return "unknown"
}

// RedisStore adapts a go-redis client to the Store interface.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Incr(ctx context.Context, key string) (int64, error) {
	return s.client.Incr(ctx, key).Result()
}

func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.Expire(ctx, key, ttl).Err()
}
