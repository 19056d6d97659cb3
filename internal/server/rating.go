package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	productdomain "github.com/smallbiznis/mymart/internal/product/domain"
	ratingdomain "github.com/smallbiznis/mymart/internal/rating/domain"
)

const ratingSubmittedMessage = "Rating and review submitted successfully."

type submitRatingRequest struct {
	Rating *float64 `json:"rating"`
	Review string   `json:"review"`
}

func (s *Server) SubmitRating(c *gin.Context) {
	userID := currentUserID(c)
	if userID == 0 {
		AbortWithError(c, ratingdomain.ErrUnauthenticated)
		return
	}

	productID, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, productdomain.ErrInvalidID)
		return
	}

	var req submitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.Rating == nil {
		AbortWithError(c, newValidationError("rating", "required", "rating is required"))
		return
	}

	saved, err := s.ratingSvc.Submit(c.Request.Context(), ratingdomain.SubmitRequest{
		UserID:    userID,
		ProductID: productID,
		Rating:    *req.Rating,
		Review:    req.Review,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": ratingSubmittedMessage,
		"data": gin.H{
			"rating":       saved.Rating,
			"review":       saved.Review,
			"rating_color": s.ratingSvc.DetermineRatingColor(saved.Rating, true),
		},
	})
}
