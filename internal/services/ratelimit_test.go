package services

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/rinawarp/downloads/internal/config"
)

func testRateLimitService(t *testing.T) *RateLimitService {
	t.Helper()

	cfg := &config.Config{}
	cfg.Auth.RateLimit.Limit = 30
	cfg.Auth.RateLimit.Window = time.Minute
	cfg.Auth.RateLimit.Prefix = "rl:token"

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	return NewRateLimitService(cfg, logger, nil)
}

func TestRateLimitService_BucketKey(t *testing.T) {
	svc := testRateLimitService(t)

	tests := []struct {
		name string
		now  time.Time
		ip   string
		want string
	}{
		{
			name: "start of a window",
			now:  time.Unix(120, 0),
			ip:   "203.0.113.7",
			want: "rl:token:203.0.113.7:2",
		},
		{
			name: "last second of the same window",
			now:  time.Unix(179, 999_000_000),
			ip:   "203.0.113.7",
			want: "rl:token:203.0.113.7:2",
		},
		{
			name: "first second of the next window",
			now:  time.Unix(180, 0),
			ip:   "203.0.113.7",
			want: "rl:token:203.0.113.7:3",
		},
		{
			name: "unknown clients share one bucket",
			now:  time.Unix(120, 0),
			ip:   "unknown",
			want: "rl:token:unknown:2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.bucketKey(tt.ip, tt.now))
		})
	}
}

func TestBucketReset(t *testing.T) {
	window := time.Minute

	// Anywhere inside the [120, 180) bucket resets at 180.
	assert.Equal(t, int64(180), bucketReset(time.Unix(120, 0), window))
	assert.Equal(t, int64(180), bucketReset(time.Unix(179, 0), window))
	assert.Equal(t, int64(240), bucketReset(time.Unix(180, 0), window))
}

func TestRateLimitService_RetryAfter(t *testing.T) {
	svc := testRateLimitService(t)
	assert.Equal(t, time.Minute, svc.RetryAfter())
}
