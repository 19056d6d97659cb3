package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Deal is a promotion shown next to the product lists. ProductID is zero for
// store-wide deals. A nil EndsAt keeps the deal running until removed.
type Deal struct {
	ID              snowflake.ID `json:"id" gorm:"primaryKey"`
	Title           string       `json:"title" gorm:"type:text;not null"`
	Description     string       `json:"description" gorm:"type:text;not null;default:''"`
	DiscountPercent float64      `json:"discount_percent" gorm:"not null;default:0"`
	ProductID       snowflake.ID `json:"product_id,omitempty" gorm:"not null;default:0;index"`
	StartsAt        time.Time    `json:"starts_at" gorm:"not null"`
	EndsAt          *time.Time   `json:"ends_at,omitempty"`
	CreatedAt       time.Time    `json:"created_at" gorm:"not null"`
}

func (Deal) TableName() string { return "deals" }

type Repository interface {
	FindActive(ctx context.Context, db *gorm.DB, at time.Time) ([]Deal, error)
}

type Service interface {
	// ListActive returns every deal running now, newest first.
	ListActive(ctx context.Context) ([]Deal, error)
}
