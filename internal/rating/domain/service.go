package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	CalculateAverageRating(ctx context.Context, productID snowflake.ID) (float64, error)
	CountRatingsAndReviews(ctx context.Context, productID snowflake.ID) (Counts, error)
	DetermineRatingColor(average float64, single bool) Color
	Summaries(ctx context.Context, productIDs []snowflake.ID) (map[snowflake.ID]Summary, error)
	Submit(ctx context.Context, req SubmitRequest) (*Rating, error)
	ListReviews(ctx context.Context, productID snowflake.ID, sort SortField) ([]Rating, error)
	UserRating(ctx context.Context, userID, productID snowflake.ID) (float64, error)
}

// SubmitRequest carries the submitting user explicitly; the service never
// reads identity from ambient state.
type SubmitRequest struct {
	UserID    snowflake.ID
	ProductID snowflake.ID
	Rating    float64
	Review    string
}

// SortField selects the review ordering on the product detail page.
type SortField string

const (
	SortLatestReviews SortField = "latestReviews"
	SortOldestReviews SortField = "oldestReviews"
	SortHighestRating SortField = "highestRating"
	SortLowestRating  SortField = "lowestRating"
)

// ParseSortField falls back to latest-first for unknown values.
func ParseSortField(raw string) SortField {
	switch SortField(raw) {
	case SortOldestReviews, SortHighestRating, SortLowestRating:
		return SortField(raw)
	default:
		return SortLatestReviews
	}
}

var (
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrInvalidRating        = errors.New("invalid_rating")
	ErrInvalidProduct       = errors.New("invalid_product")
	ErrProductNotFound      = errors.New("product_not_found")
	ErrSubmissionInProgress = errors.New("submission_in_progress")
)
