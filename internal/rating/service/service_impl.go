package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/mymart/internal/clock"
	"github.com/smallbiznis/mymart/internal/config"
	"github.com/smallbiznis/mymart/internal/lock"
	"github.com/smallbiznis/mymart/internal/observability/metrics"
	ratingdomain "github.com/smallbiznis/mymart/internal/rating/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const submitLockKey = "rating:submit:%s:%s"

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID   *snowflake.Node
	repo    ratingdomain.Repository
	clock   clock.Clock
	colors  *config.RatingColorHolder
	locker  *lock.Locker
	metrics *metrics.Metrics
}

type ServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    ratingdomain.Repository
	Clock   clock.Clock
	Colors  *config.RatingColorHolder
	Locker  *lock.Locker      `optional:"true"`
	Metrics *metrics.Metrics `optional:"true"`
}

func NewService(p ServiceParam) ratingdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("rating.service"),

		genID:   p.GenID,
		repo:    p.Repo,
		clock:   p.Clock,
		colors:  p.Colors,
		locker:  p.Locker,
		metrics: p.Metrics,
	}
}

func (s *Service) CalculateAverageRating(ctx context.Context, productID snowflake.ID) (float64, error) {
	ratings, err := s.repo.ListByProducts(ctx, s.db, []snowflake.ID{productID})
	if err != nil {
		return 0, err
	}
	return ratingdomain.AverageRating(ratings), nil
}

func (s *Service) CountRatingsAndReviews(ctx context.Context, productID snowflake.ID) (ratingdomain.Counts, error) {
	exists, err := s.repo.ProductExists(ctx, s.db, productID)
	if err != nil {
		return ratingdomain.Counts{}, err
	}
	if !exists {
		return ratingdomain.Counts{}, nil
	}

	ratings, err := s.repo.ListByProducts(ctx, s.db, []snowflake.ID{productID})
	if err != nil {
		return ratingdomain.Counts{}, err
	}
	return ratingdomain.CountRatingsAndReviews(ratings), nil
}

func (s *Service) DetermineRatingColor(average float64, single bool) ratingdomain.Color {
	return s.colors.Get().Classify(average, single)
}

// Summaries recomputes the list view aggregates from source rows.
func (s *Service) Summaries(ctx context.Context, productIDs []snowflake.ID) (map[snowflake.ID]ratingdomain.Summary, error) {
	ratings, err := s.repo.ListByProducts(ctx, s.db, productIDs)
	if err != nil {
		return nil, err
	}

	grouped := make(map[snowflake.ID][]ratingdomain.Rating, len(productIDs))
	for _, r := range ratings {
		grouped[r.ProductID] = append(grouped[r.ProductID], r)
	}

	policy := s.colors.Get()
	out := make(map[snowflake.ID]ratingdomain.Summary, len(productIDs))
	for _, id := range productIDs {
		items := grouped[id]
		average := ratingdomain.AverageRating(items)
		counts := ratingdomain.CountRatingsAndReviews(items)
		out[id] = ratingdomain.Summary{
			ProductID:     id,
			AverageRating: average,
			RatingCount:   counts.RatingCount,
			ReviewCount:   counts.ReviewCount,
			Color:         policy.Classify(average, false),
		}
	}
	return out, nil
}

// Submit creates the user's rating for the product or overwrites the existing
// one in place.
func (s *Service) Submit(ctx context.Context, req ratingdomain.SubmitRequest) (*ratingdomain.Rating, error) {
	if req.UserID == 0 {
		return nil, ratingdomain.ErrUnauthenticated
	}
	if req.ProductID == 0 {
		return nil, ratingdomain.ErrInvalidProduct
	}
	if !ratingdomain.ValidValue(req.Rating) {
		return nil, ratingdomain.ErrInvalidRating
	}

	var saved *ratingdomain.Rating
	key := fmt.Sprintf(submitLockKey, req.UserID, req.ProductID)
	err := s.locker.WithLock(ctx, key, func(ctx context.Context) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			exists, err := s.repo.ProductExists(ctx, tx, req.ProductID)
			if err != nil {
				return err
			}
			if !exists {
				return ratingdomain.ErrProductNotFound
			}

			rating := &ratingdomain.Rating{
				ID:        s.genID.Generate(),
				UserID:    req.UserID,
				ProductID: req.ProductID,
				Rating:    req.Rating,
				Review:    strings.TrimSpace(req.Review),
				DateTime:  s.clock.Now(),
			}
			if err := s.repo.Upsert(ctx, tx, rating); err != nil {
				return fmt.Errorf("upsert rating: %w", err)
			}

			saved, err = s.repo.FindByUserAndProduct(ctx, tx, req.UserID, req.ProductID)
			if err != nil {
				return err
			}
			if saved == nil {
				return errors.New("rating missing after upsert")
			}
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			err = ratingdomain.ErrSubmissionInProgress
		}
		s.metrics.RecordRatingSubmission(ctx, "error")
		return nil, err
	}

	s.metrics.RecordRatingSubmission(ctx, "ok")
	s.log.Info("rating submitted",
		zap.String("rating_id", saved.ID.String()),
		zap.String("product_id", saved.ProductID.String()),
		zap.String("user_id", saved.UserID.String()),
		zap.Float64("rating", saved.Rating),
		zap.String("color", string(s.DetermineRatingColor(saved.Rating, true))),
	)
	return saved, nil
}

func (s *Service) ListReviews(ctx context.Context, productID snowflake.ID, sort ratingdomain.SortField) ([]ratingdomain.Rating, error) {
	return s.repo.ListByProduct(ctx, s.db, productID, sort)
}

func (s *Service) UserRating(ctx context.Context, userID, productID snowflake.ID) (float64, error) {
	if userID == 0 {
		return 0, nil
	}
	item, err := s.repo.FindByUserAndProduct(ctx, s.db, userID, productID)
	if err != nil {
		return 0, err
	}
	if item == nil {
		return 0, nil
	}
	return item.Rating, nil
}
