package service

import (
	"context"

	"github.com/smallbiznis/mymart/internal/clock"
	"github.com/smallbiznis/mymart/internal/deal/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("deal.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) ListActive(ctx context.Context) ([]domain.Deal, error) {
	items, err := s.repo.FindActive(ctx, s.db, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Deal{}
	}
	return items, nil
}
