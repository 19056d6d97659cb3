package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/mymart/internal/authorization"
)

// requireUser rejects anonymous requests before any other middleware spends
// work or rate limit tokens on them.
func (s *Server) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUserID(c) == 0 {
			AbortWithError(c, authorization.ErrUnauthenticated)
			return
		}
		c.Next()
	}
}

func (s *Server) authorizeAction(object string, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.authorize(c, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func (s *Server) authorize(c *gin.Context, object string, action string) error {
	userID := currentUserID(c)
	if userID == 0 {
		return authorization.ErrUnauthenticated
	}
	if s.authzSvc == nil {
		return authorization.ErrForbidden
	}
	return s.authzSvc.Authorize(c.Request.Context(), userID, strings.TrimSpace(object), strings.TrimSpace(action))
}
