package server

import (
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/mymart/internal/observability/context"
	userdomain "github.com/smallbiznis/mymart/internal/user/domain"
	"go.uber.org/zap"
)

const (
	HeaderUserEmail  = "X-User-Email"
	contextUserIDKey = "user_id"
)

// Identity resolves the shopper forwarded by the authenticating gateway.
// Requests without a known user continue anonymously.
func (s *Server) Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := strings.TrimSpace(c.GetHeader(HeaderUserEmail))
		if email == "" {
			c.Next()
			return
		}

		u, err := s.userSvc.FindByEmail(c.Request.Context(), email)
		if err != nil {
			if errors.Is(err, userdomain.ErrNotFound) || errors.Is(err, userdomain.ErrInvalidEmail) {
				s.log.Debug("unknown shopper identity", zap.Error(err))
				c.Next()
				return
			}
			AbortWithError(c, err)
			return
		}

		c.Set(contextUserIDKey, u.ID)
		c.Request = c.Request.WithContext(obscontext.WithUserID(c.Request.Context(), u.ID.String()))
		c.Next()
	}
}

// currentUserID returns 0 for anonymous requests.
func currentUserID(c *gin.Context) snowflake.ID {
	v, ok := c.Get(contextUserIDKey)
	if !ok {
		return 0
	}
	id, _ := v.(snowflake.ID)
	return id
}
