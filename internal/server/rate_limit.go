package server

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/mymart/internal/ratelimit"
	"go.uber.org/zap"
)

var ErrRateLimited = errors.New("rate_limited")

// RatingSubmitRateLimit throttles submissions per shopper. Anonymous requests
// pass through and are rejected by the handler.
func (s *Server) RatingSubmitRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)
		if userID == 0 {
			c.Next()
			return
		}
		s.applyLimit(c, "rating_submit", func() (*ratelimit.Result, error) {
			return s.limiter.AllowRatingSubmit(c.Request.Context(), userID.String())
		})
	}
}

func (s *Server) OrderEmailRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		number := strings.TrimPrefix(strings.TrimSpace(c.Param("number")), "#")
		s.applyLimit(c, "order_email", func() (*ratelimit.Result, error) {
			return s.limiter.AllowOrderEmail(c.Request.Context(), number)
		})
	}
}

// applyLimit fails open when Redis is unreachable.
func (s *Server) applyLimit(c *gin.Context, bucket string, allow func() (*ratelimit.Result, error)) {
	res, err := allow()
	if err != nil {
		s.log.Warn("rate limit check failed", zap.String("bucket", bucket), zap.Error(err))
		c.Next()
		return
	}
	if !res.Allowed {
		s.metrics.RecordRateLimited(c.Request.Context(), bucket)
		if res.RetryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
		}
		AbortWithError(c, ErrRateLimited)
		return
	}
	c.Next()
}
