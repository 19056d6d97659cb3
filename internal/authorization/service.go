package authorization

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// Authorize checks the user's role against the policy for object and
	// action. A zero userID is rejected with ErrUnauthenticated.
	Authorize(ctx context.Context, userID snowflake.ID, object string, action string) error
}

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidObject   = errors.New("invalid_object")
	ErrInvalidAction   = errors.New("invalid_action")
)
