package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shopforge/account-service/internal/config"
)

// Limiter enforces fixed-window request limits in Redis.
type Limiter struct {
	client *redis.Client
	logger *zap.Logger
	config config.RateLimitConfig
}

func NewLimiter(client *redis.Client, cfg config.RateLimitConfig, logger *zap.Logger) *Limiter {
	return &Limiter{
		client: client,
		logger: logger,
		config: cfg,
	}
}

// Allow increments the counter for key and reports whether the request fits
// within limit for the current window. Redis failures fail open so an outage
// of the limiter store does not take down authentication.
func (l *Limiter) Allow(ctx context.Context, key string, rule config.RateLimitRule) (bool, error) {
	if !l.config.Enabled || !rule.Enabled {
		return true, nil
	}

	redisKey := fmt.Sprintf("rate:%s", key)

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		l.logger.Error("Rate limiter store unavailable, allowing request",
			zap.String("key", key), zap.Error(err))
		return true, err
	}
	// The first increment opens the window; later requests must not push
	// the expiry out or a throttled client would stay throttled forever.
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, rule.Window).Err(); err != nil {
			l.logger.Error("Failed to set rate limit window",
				zap.String("key", key), zap.Error(err))
			return true, err
		}
	}
	if count > int64(rule.Limit) {
		l.logger.Warn("Rate limit exceeded",
			zap.String("key", key),
			zap.Int64("count", count),
			zap.Int("limit", rule.Limit))
		return false, nil
	}
	return true, nil
}

// AllowLogin limits login attempts per client IP.
func (l *Limiter) AllowLogin(ctx context.Context, ip string) (bool, error) {
	return l.Allow(ctx, fmt.Sprintf("login:%s", ip), l.config.LoginIP)
}

// AllowRegistration limits registrations per client IP.
func (l *Limiter) AllowRegistration(ctx context.Context, ip string) (bool, error) {
	return l.Allow(ctx, fmt.Sprintf("register:%s", ip), l.config.RegisterIP)
}

// AllowCodeRequest limits one-time-code issuance per client IP.
func (l *Limiter) AllowCodeRequest(ctx context.Context, ip string) (bool, error) {
	return l.Allow(ctx, fmt.Sprintf("otp:%s", ip), l.config.OTPPerIP)
}

// AllowAPI limits authenticated API calls per account.
func (l *Limiter) AllowAPI(ctx context.Context, accountID string) (bool, error) {
	return l.Allow(ctx, fmt.Sprintf("api:%s", accountID), l.config.GeneralAPI)
}

// Reset clears the window for a key. Used after successful login so a user
// who finally remembered the password is not still throttled.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, fmt.Sprintf("rate:%s", key)).Err()
}

// NewRedisClient connects to Redis and verifies connectivity.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("unable to ping redis: %w", err)
	}
	return client, nil
}
