package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/mymart/internal/authorization"
	"github.com/smallbiznis/mymart/internal/category"
	categorydomain "github.com/smallbiznis/mymart/internal/category/domain"
	"github.com/smallbiznis/mymart/internal/config"
	"github.com/smallbiznis/mymart/internal/deal"
	dealdomain "github.com/smallbiznis/mymart/internal/deal/domain"
	"github.com/smallbiznis/mymart/internal/lock"
	"github.com/smallbiznis/mymart/internal/notification"
	notificationdomain "github.com/smallbiznis/mymart/internal/notification/domain"
	obsmiddleware "github.com/smallbiznis/mymart/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/mymart/internal/observability/metrics"
	obstracing "github.com/smallbiznis/mymart/internal/observability/tracing"
	"github.com/smallbiznis/mymart/internal/order"
	orderdomain "github.com/smallbiznis/mymart/internal/order/domain"
	"github.com/smallbiznis/mymart/internal/product"
	productdomain "github.com/smallbiznis/mymart/internal/product/domain"
	"github.com/smallbiznis/mymart/internal/providers"
	"github.com/smallbiznis/mymart/internal/ratelimit"
	"github.com/smallbiznis/mymart/internal/rating"
	ratingdomain "github.com/smallbiznis/mymart/internal/rating/domain"
	"github.com/smallbiznis/mymart/internal/redisclient"
	"github.com/smallbiznis/mymart/internal/user"
	userdomain "github.com/smallbiznis/mymart/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	redisclient.Module,
	lock.Module,
	ratelimit.Module,
	providers.Module,
	authorization.Module,
	user.Module,
	category.Module,
	product.Module,
	deal.Module,
	rating.Module,
	order.Module,
	notification.Module,
	fx.Provide(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           cfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(cfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, s *Server) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	log    *zap.Logger

	userSvc         userdomain.Service
	categorySvc     categorydomain.Service
	productSvc      productdomain.Service
	dealSvc         dealdomain.Service
	ratingSvc       ratingdomain.Service
	orderSvc        orderdomain.Service
	notificationSvc notificationdomain.Service
	authzSvc        authorization.Service
	limiter         *ratelimit.Limiter
	metrics         *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	Log             *zap.Logger
	UserSvc         userdomain.Service
	CategorySvc     categorydomain.Service
	ProductSvc      productdomain.Service
	DealSvc         dealdomain.Service
	RatingSvc       ratingdomain.Service
	OrderSvc        orderdomain.Service
	NotificationSvc notificationdomain.Service
	AuthzSvc        authorization.Service
	Limiter         *ratelimit.Limiter  `optional:"true"`
	Metrics         *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		log:             p.Log.Named("http.server"),
		userSvc:         p.UserSvc,
		categorySvc:     p.CategorySvc,
		productSvc:      p.ProductSvc,
		dealSvc:         p.DealSvc,
		ratingSvc:       p.RatingSvc,
		orderSvc:        p.OrderSvc,
		notificationSvc: p.NotificationSvc,
		authzSvc:        p.AuthzSvc,
		limiter:         p.Limiter,
		metrics:         p.Metrics,
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.Identity())

	// -------- Catalog --------
	api.GET("/categories", s.ListCategories)
	api.POST("/categories", s.authorizeAction(authorization.ObjectCatalog, authorization.ActionCategoryCreate), s.CreateCategory)
	api.GET("/categories/:name/products", s.ListCategoryProducts)
	api.GET("/products", s.ListProducts)
	api.POST("/products", s.authorizeAction(authorization.ObjectCatalog, authorization.ActionProductCreate), s.CreateProduct)
	api.GET("/products/:id", s.GetProductDetail)

	// -------- Ratings --------
	api.POST("/products/:id/ratings", s.RatingSubmitRateLimit(), s.SubmitRating)

	// -------- Orders --------
	api.GET("/orders/:number/tracking", s.TrackOrder)
	api.POST("/orders/:number/confirmation-email", s.requireUser(), s.OrderEmailRateLimit(), s.SendOrderConfirmation)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
