package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/rinawarp/downloads/internal/config"
	"github.com/rinawarp/downloads/pkg/models"
)

// RateLimitService bounds token-issuance requests per client IP using
// fixed-window counters in Redis. The window boundary is
// floor(now_seconds / window_seconds), so each window gets a fresh key and
// counters self-clean via TTL. The classic ~2x burst across a window edge
// is accepted in exchange for O(1) storage per client.
type RateLimitService struct {
	config      *config.Config
	logger      *logrus.Logger
	redisClient *redis.Client
}

func NewRateLimitService(cfg *config.Config, logger *logrus.Logger, redisClient *redis.Client) *RateLimitService {
	return &RateLimitService{
		config:      cfg,
		logger:      logger,
		redisClient: redisClient,
	}
}

// IsAllowed reads the current window's counter for the IP and, if under the
// limit, increments it. Read and increment are not atomic across requests;
// the limiter is best-effort abuse blunting, not precise accounting.
func (s *RateLimitService) IsAllowed(ctx context.Context, clientIP string) (bool, *models.RateLimitInfo, error) {
	limit := s.config.Auth.RateLimit.Limit
	window := s.config.Auth.RateLimit.Window
	now := time.Now()

	key := s.bucketKey(clientIP, now)
	info := &models.RateLimitInfo{
		Limit:     limit,
		ResetTime: bucketReset(now, window),
	}

	count, err := s.redisClient.Get(ctx, key).Int64()
	if err != nil && err != redis.Nil {
		return false, nil, fmt.Errorf("rate limit read: %w", err)
	}

	if count >= int64(limit) {
		info.Remaining = 0
		return false, info, nil
	}

	// TTL slightly longer than the window so the key outlives its bucket
	// even under clock skew.
	pipe := s.redisClient.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window+5*time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, nil, fmt.Errorf("rate limit increment: %w", err)
	}

	remaining := limit - int(incr.Val())
	if remaining < 0 {
		remaining = 0
	}
	info.Remaining = remaining

	return true, info, nil
}

// RetryAfter is the back-off hint returned with a 429.
func (s *RateLimitService) RetryAfter() time.Duration {
	return s.config.Auth.RateLimit.Window
}

func (s *RateLimitService) bucketKey(clientIP string, now time.Time) string {
	windowSec := int64(s.config.Auth.RateLimit.Window.Seconds())
	bucket := now.Unix() / windowSec
	return fmt.Sprintf("%s:%s:%d", s.config.Auth.RateLimit.Prefix, clientIP, bucket)
}

// bucketReset returns the Unix time at which the current window rolls over.
func bucketReset(now time.Time, window time.Duration) int64 {
	windowSec := int64(window.Seconds())
	return (now.Unix()/windowSec + 1) * windowSec
}
