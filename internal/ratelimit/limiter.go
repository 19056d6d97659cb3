package ratelimit

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/mymart/internal/config"
	"go.uber.org/zap"
)

const (
	keyRatingSubmit = "ratelimit:rating:submit:%s"
	keyOrderEmail   = "ratelimit:order:email:%s"
)

// Limiter throttles rating submissions per shopper and confirmation emails
// per order. A nil *Limiter allows everything.
type Limiter struct {
	bucket *TokenBucket

	ratingRate  float64
	ratingBurst int
	emailRate   float64
	emailBurst  int
}

// NewFromConfig builds the limiter on the shared client. It returns nil when
// Redis is not configured.
func NewFromConfig(cfg config.Config, client *redis.Client, log *zap.Logger) *Limiter {
	if client == nil {
		log.Info("rate limiting disabled, no redis configured")
		return nil
	}
	return New(client, cfg.RateLimit)
}

func New(client *redis.Client, cfg config.RateLimitConfig) *Limiter {
	bucket := NewTokenBucket(client)
	if bucket == nil {
		return nil
	}
	return &Limiter{
		bucket:      bucket,
		ratingRate:  cfg.RatingSubmitRate,
		ratingBurst: cfg.RatingSubmitBurst,
		emailRate:   cfg.OrderEmailRate,
		emailBurst:  cfg.OrderEmailBurst,
	}
}

func (l *Limiter) AllowRatingSubmit(ctx context.Context, userID string) (*Result, error) {
	if l == nil || l.ratingRate <= 0 || l.ratingBurst <= 0 {
		return &Result{Allowed: true}, nil
	}
	return l.bucket.Take(ctx, fmt.Sprintf(keyRatingSubmit, strings.TrimSpace(userID)), l.ratingRate, l.ratingBurst)
}

func (l *Limiter) AllowOrderEmail(ctx context.Context, orderNumber string) (*Result, error) {
	if l == nil || l.emailRate <= 0 || l.emailBurst <= 0 {
		return &Result{Allowed: true}, nil
	}
	return l.bucket.Take(ctx, fmt.Sprintf(keyOrderEmail, strings.TrimSpace(orderNumber)), l.emailRate, l.emailBurst)
}
