package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/mymart/internal/product/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("product.service"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

func (s *Service) List(ctx context.Context) ([]domain.Response, error) {
	items, err := s.repo.FindAll(ctx, s.db)
	if err != nil {
		return nil, err
	}
	return toResponses(items), nil
}

func (s *Service) ListByCategory(ctx context.Context, categoryID snowflake.ID) ([]domain.Response, error) {
	if categoryID == 0 {
		return nil, domain.ErrInvalidCategory
	}
	items, err := s.repo.FindByCategory(ctx, s.db, categoryID)
	if err != nil {
		return nil, err
	}
	return toResponses(items), nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if req.Price < 0 {
		return nil, domain.ErrInvalidPrice
	}
	category := strings.TrimSpace(req.Category)
	if req.CategoryID == 0 || category == "" {
		return nil, domain.ErrInvalidCategory
	}

	p := &domain.Product{
		ID:            s.genID.Generate(),
		Name:          name,
		Brand:         strings.TrimSpace(req.Brand),
		Category:      category,
		CategoryID:    req.CategoryID,
		Price:         req.Price,
		Description:   strings.TrimSpace(req.Description),
		ImageFileName: strings.TrimSpace(req.ImageFileName),
		CreatedAt:     time.Now().UTC(),
	}
	if req.Metadata != nil {
		p.Metadata = datatypes.JSONMap(req.Metadata)
	}
	if err := s.repo.Create(ctx, s.db, p); err != nil {
		return nil, err
	}
	s.log.Info("product created", zap.String("product_id", p.ID.String()), zap.String("category", p.Category))

	resp := toResponse(p)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || productID == 0 {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := toResponse(item)
	return &resp, nil
}

func toResponses(items []domain.Product) []domain.Response {
	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i]))
	}
	return resp
}

func toResponse(p *domain.Product) domain.Response {
	resp := domain.Response{
		ID:            p.ID.String(),
		Name:          p.Name,
		Brand:         p.Brand,
		Category:      p.Category,
		CategoryID:    p.CategoryID.String(),
		Price:         p.Price,
		Description:   p.Description,
		ImageFileName: p.ImageFileName,
		CreatedAt:     p.CreatedAt,
	}

	if len(p.Metadata) > 0 {
		resp.Metadata = map[string]any(p.Metadata)
	}

	return resp
}
