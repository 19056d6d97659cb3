package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context) ([]Response, error)
	ListByCategory(ctx context.Context, categoryID snowflake.ID) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
}

type CreateRequest struct {
	Name          string         `json:"name"`
	Brand         string         `json:"brand"`
	CategoryID    snowflake.ID   `json:"category_id"`
	Category      string         `json:"category"`
	Price         float64        `json:"price"`
	Description   string         `json:"description"`
	ImageFileName string         `json:"image_file_name"`
	Metadata      map[string]any `json:"metadata"`
}

type Response struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Brand         string         `json:"brand"`
	Category      string         `json:"category"`
	CategoryID    string         `json:"category_id"`
	Price         float64        `json:"price"`
	Description   string         `json:"description"`
	ImageFileName string         `json:"image_file_name"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

var (
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidPrice    = errors.New("invalid_price")
	ErrInvalidCategory = errors.New("invalid_category")
	ErrNotFound        = errors.New("not_found")
	ErrInvalidID       = errors.New("invalid_id")
)
