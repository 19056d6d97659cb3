package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/mymart/internal/rating/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

var sortOrders = map[domain.SortField]string{
	domain.SortLatestReviews: "ratings.date_time DESC, ratings.id DESC",
	domain.SortOldestReviews: "ratings.date_time ASC, ratings.id ASC",
	domain.SortHighestRating: "ratings.rating DESC, ratings.date_time DESC",
	domain.SortLowestRating:  "ratings.rating ASC, ratings.date_time DESC",
}

func (r *repo) ListByProduct(ctx context.Context, db *gorm.DB, productID snowflake.ID, sort domain.SortField) ([]domain.Rating, error) {
	order, ok := sortOrders[sort]
	if !ok {
		order = sortOrders[domain.SortLatestReviews]
	}

	var items []domain.Rating
	err := db.WithContext(ctx).
		Table("ratings").
		Select("ratings.id, ratings.user_id, ratings.product_id, ratings.rating, ratings.review, ratings.date_time, users.name AS user_name").
		Joins("LEFT JOIN users ON users.id = ratings.user_id").
		Where("ratings.product_id = ?", productID).
		Order(order).
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListByProducts(ctx context.Context, db *gorm.DB, productIDs []snowflake.ID) ([]domain.Rating, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	var items []domain.Rating
	err := db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Order("product_id ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindByUserAndProduct(ctx context.Context, db *gorm.DB, userID, productID snowflake.ID) (*domain.Rating, error) {
	var item domain.Rating
	err := db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// Upsert inserts the rating or, when (user_id, product_id) already exists,
// overwrites value, review and timestamp on the existing row. The existing
// row keeps its id.
func (r *repo) Upsert(ctx context.Context, db *gorm.DB, rating *domain.Rating) error {
	if rating == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "review", "date_time"}),
		}).
		Omit("UserName").
		Create(rating).Error
}

func (r *repo) ProductExists(ctx context.Context, db *gorm.DB, productID snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Table("products").
		Where("id = ?", productID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
