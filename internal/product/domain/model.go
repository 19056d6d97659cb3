package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	ratingdomain "github.com/smallbiznis/mymart/internal/rating/domain"
	"gorm.io/datatypes"
)

type Product struct {
	ID            snowflake.ID          `json:"id" gorm:"primaryKey"`
	Name          string                `json:"name" gorm:"type:text;not null"`
	Brand         string                `json:"brand" gorm:"type:text;not null;default:''"`
	Category      string                `json:"category" gorm:"type:text;not null"`
	CategoryID    snowflake.ID          `json:"category_id" gorm:"not null;index"`
	Price         float64               `json:"price" gorm:"not null"`
	Description   string                `json:"description" gorm:"type:text;not null;default:''"`
	ImageFileName string                `json:"image_file_name" gorm:"type:text;not null;default:''"`
	Metadata      datatypes.JSONMap     `json:"metadata,omitempty"`
	CreatedAt     time.Time             `json:"created_at" gorm:"not null"`
	Ratings       []ratingdomain.Rating `json:"-" gorm:"foreignKey:ProductID"`
}

func (Product) TableName() string { return "products" }
