package service

import (
	"context"
	"strings"

	"github.com/smallbiznis/mymart/internal/order/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("order.service"),
		repo: p.Repo,
	}
}

func (s *Service) GetByNumber(ctx context.Context, number string) (*domain.Order, error) {
	number = strings.TrimPrefix(strings.TrimSpace(number), "#")
	if number == "" {
		return nil, domain.ErrInvalidOrderNumber
	}

	o, err := s.repo.FindByNumber(ctx, s.db, number)
	if err != nil {
		return nil, err
	}
	if o == nil {
		s.log.Debug("order not found", zap.String("order_number", number))
		return nil, domain.ErrNotFound
	}
	return o, nil
}
