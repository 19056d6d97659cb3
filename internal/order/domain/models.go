package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	productdomain "github.com/smallbiznis/mymart/internal/product/domain"
)

type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "PLACED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
)

// Order is a finalized checkout. Totals are computed upstream and stored as
// placed.
type Order struct {
	ID            snowflake.ID `json:"id" gorm:"primaryKey"`
	OrderNumber   string       `json:"order_number" gorm:"type:text;not null;uniqueIndex"`
	UserID        snowflake.ID `json:"user_id" gorm:"not null;index"`
	CustomerEmail string       `json:"customer_email" gorm:"type:text;not null"`
	TotalAmount   float64      `json:"total_amount" gorm:"not null"`
	Status        OrderStatus  `json:"status" gorm:"type:text;not null"`
	CreatedAt     time.Time    `json:"created_at" gorm:"not null"`
	Items         []OrderItem  `json:"items" gorm:"foreignKey:OrderID"`
}

func (Order) TableName() string { return "orders" }

type OrderItem struct {
	ID         snowflake.ID          `json:"id" gorm:"primaryKey"`
	OrderID    snowflake.ID          `json:"order_id" gorm:"not null;index"`
	ProductID  snowflake.ID          `json:"product_id" gorm:"not null"`
	Product    productdomain.Product `json:"product" gorm:"foreignKey:ProductID"`
	Quantity   int                   `json:"quantity" gorm:"not null"`
	TotalPrice float64               `json:"total_price" gorm:"not null"`
	Position   int                   `json:"position" gorm:"not null;default:0"`
}

func (OrderItem) TableName() string { return "order_items" }

// UnitPrice is the catalog price of the product, as shown on the order
// email and invoice. TotalPrice may differ when the line was discounted at
// checkout. Lines whose product was not loaded fall back to the average.
func (i OrderItem) UnitPrice() float64 {
	if i.Product.Price > 0 || i.Quantity <= 0 {
		return i.Product.Price
	}
	return i.TotalPrice / float64(i.Quantity)
}
