package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Category struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"type:text;not null;uniqueIndex"`
	Slug      string       `json:"slug" gorm:"type:text;not null;uniqueIndex"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null"`
}

func (Category) TableName() string { return "categories" }

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, category *Category) error
	FindByName(ctx context.Context, db *gorm.DB, name string) (*Category, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]Category, error)
}

type Service interface {
	Create(ctx context.Context, name string) (*Category, error)
	GetByName(ctx context.Context, name string) (*Category, error)
	List(ctx context.Context) ([]Category, error)
}

var (
	ErrInvalidName   = errors.New("invalid_name")
	ErrNotFound      = errors.New("not_found")
	ErrAlreadyExists = errors.New("already_exists")
)
