package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repository interface {
	FindByNumber(ctx context.Context, db *gorm.DB, number string) (*Order, error)
}

type Service interface {
	GetByNumber(ctx context.Context, number string) (*Order, error)
}

var (
	ErrInvalidOrderNumber = errors.New("invalid_order_number")
	ErrNotFound           = errors.New("not_found")
)
