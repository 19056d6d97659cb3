package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/mymart/internal/deal/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindActive(ctx context.Context, db *gorm.DB, at time.Time) ([]domain.Deal, error) {
	var items []domain.Deal
	err := db.WithContext(ctx).
		Where("starts_at <= ?", at).
		Where("ends_at IS NULL OR ends_at > ?", at).
		Order("starts_at DESC, id DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
