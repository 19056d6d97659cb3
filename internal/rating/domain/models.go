// Package domain contains rating records and the pure aggregation rules
// used by product list and detail views.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	RatingMin = 0.0
	RatingMax = 5.0
)

// Rating is a user's score and optional review for one product.
// At most one row exists per (user, product).
type Rating struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	UserID    snowflake.ID `json:"user_id" gorm:"not null;uniqueIndex:ux_ratings_user_product,priority:1"`
	ProductID snowflake.ID `json:"product_id" gorm:"not null;index;uniqueIndex:ux_ratings_user_product,priority:2"`
	Rating    float64      `json:"rating" gorm:"not null"`
	Review    string       `json:"review" gorm:"type:text;not null;default:''"`
	DateTime  time.Time    `json:"date_time" gorm:"not null"`
	UserName  string       `json:"user_name,omitempty" gorm:"->;-:migration"`
}

// TableName sets the database table name.
func (Rating) TableName() string { return "ratings" }

// HasReview reports whether the rating carries review text.
func (r Rating) HasReview() bool {
	return strings.TrimSpace(r.Review) != ""
}

// Counts splits all ratings from the ones that come with a review.
type Counts struct {
	RatingCount int `json:"rating_count"`
	ReviewCount int `json:"review_count"`
}

// Summary is the aggregate shown next to a product.
type Summary struct {
	ProductID     snowflake.ID `json:"product_id"`
	AverageRating float64      `json:"average_rating"`
	RatingCount   int          `json:"rating_count"`
	ReviewCount   int          `json:"review_count"`
	Color         Color        `json:"rating_color"`
}

// AverageRating returns the arithmetic mean of the rating values, or 0 when
// there are none.
func AverageRating(ratings []Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	var sum float64
	for _, r := range ratings {
		sum += r.Rating
	}
	return sum / float64(len(ratings))
}

// CountRatingsAndReviews counts every rating, and the distinct users that left
// non-empty review text.
func CountRatingsAndReviews(ratings []Rating) Counts {
	reviewers := make(map[snowflake.ID]struct{}, len(ratings))
	for _, r := range ratings {
		if !r.HasReview() {
			continue
		}
		reviewers[r.UserID] = struct{}{}
	}
	return Counts{
		RatingCount: len(ratings),
		ReviewCount: len(reviewers),
	}
}

// ValidValue reports whether v is inside the accepted rating range.
func ValidValue(v float64) bool {
	return v >= RatingMin && v <= RatingMax
}
