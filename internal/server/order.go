package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/mymart/internal/authorization"
)

type trackingItem struct {
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	TotalPrice  float64 `json:"total_price"`
}

func (s *Server) TrackOrder(c *gin.Context) {
	o, err := s.orderSvc.GetByNumber(c.Request.Context(), strings.TrimSpace(c.Param("number")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	items := make([]trackingItem, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, trackingItem{
			ProductName: item.Product.Name,
			Quantity:    item.Quantity,
			TotalPrice:  item.TotalPrice,
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"order_number": o.OrderNumber,
		"status":       o.Status,
		"total_amount": o.TotalAmount,
		"placed_at":    o.CreatedAt,
		"items":        items,
	}})
}

// SendOrderConfirmation lets the order's owner resend their email. Anyone else
// needs the order_email.send permission.
func (s *Server) SendOrderConfirmation(c *gin.Context) {
	ctx := c.Request.Context()
	number := strings.TrimSpace(c.Param("number"))

	o, err := s.orderSvc.GetByNumber(ctx, number)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if o.UserID != currentUserID(c) {
		if err := s.authorize(c, authorization.ObjectOrder, authorization.ActionOrderEmailSend); err != nil {
			AbortWithError(c, err)
			return
		}
	}

	res, err := s.notificationSvc.SendOrderConfirmation(ctx, number)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"data": res})
}
