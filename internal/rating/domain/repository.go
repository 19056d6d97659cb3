package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	ListByProduct(ctx context.Context, db *gorm.DB, productID snowflake.ID, sort SortField) ([]Rating, error)
	ListByProducts(ctx context.Context, db *gorm.DB, productIDs []snowflake.ID) ([]Rating, error)
	FindByUserAndProduct(ctx context.Context, db *gorm.DB, userID, productID snowflake.ID) (*Rating, error)
	Upsert(ctx context.Context, db *gorm.DB, rating *Rating) error
	ProductExists(ctx context.Context, db *gorm.DB, productID snowflake.ID) (bool, error)
}
