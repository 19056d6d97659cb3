package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type User struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Email     string       `json:"email" gorm:"type:text;not null;uniqueIndex"`
	Name      string       `json:"name" gorm:"type:text;not null;default:''"`
	Role      string       `json:"role" gorm:"type:text;not null;default:'shopper'"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null"`
}

func (User) TableName() string { return "users" }

// Roles map onto the casbin "role:<name>" subjects.
const (
	RoleShopper = "shopper"
	RoleAdmin   = "admin"
)

type Repository interface {
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*User, error)
}

type Service interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
}

var (
	ErrInvalidEmail = errors.New("invalid_email")
	ErrNotFound     = errors.New("not_found")
)
