package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	dealdomain "github.com/smallbiznis/mymart/internal/deal/domain"
	productdomain "github.com/smallbiznis/mymart/internal/product/domain"
	ratingdomain "github.com/smallbiznis/mymart/internal/rating/domain"
)

type productListItem struct {
	productdomain.Response
	AverageRating float64            `json:"average_rating"`
	RatingCount   int                `json:"rating_count"`
	RatingColor   ratingdomain.Color `json:"rating_color"`
}

type reviewItem struct {
	UserName    string             `json:"user_name"`
	Rating      float64            `json:"rating"`
	RatingColor ratingdomain.Color `json:"rating_color"`
	Review      string             `json:"review"`
	DateTime    string             `json:"date_time"`
}

type productDetail struct {
	Product       productdomain.Response `json:"product"`
	AverageRating float64                `json:"average_rating"`
	RatingCount   int                    `json:"rating_count"`
	ReviewCount   int                    `json:"review_count"`
	RatingColor   ratingdomain.Color     `json:"rating_color"`
	SortField     ratingdomain.SortField `json:"sort_field"`
	Reviews       []reviewItem           `json:"reviews"`
	UserRating    *float64               `json:"user_rating,omitempty"`
}

type createCategoryRequest struct {
	Name string `json:"name"`
}

type createProductRequest struct {
	Name          string         `json:"name"`
	Brand         string         `json:"brand"`
	Category      string         `json:"category"`
	Price         float64        `json:"price"`
	Description   string         `json:"description"`
	ImageFileName string         `json:"image_file_name"`
	Metadata      map[string]any `json:"metadata"`
}

func (s *Server) ListCategories(c *gin.Context) {
	items, err := s.categorySvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) CreateCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.categorySvc.Create(c.Request.Context(), req.Name)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (s *Server) ListCategoryProducts(c *gin.Context) {
	ctx := c.Request.Context()

	cat, err := s.categorySvc.GetByName(ctx, strings.TrimSpace(c.Param("name")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	products, err := s.productSvc.ListByCategory(ctx, cat.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	items, err := s.withSummaries(c, products)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	deals, err := s.activeDeals(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": cat, "data": items, "deals": deals})
}

func (s *Server) ListProducts(c *gin.Context) {
	products, err := s.productSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	items, err := s.withSummaries(c, products)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	deals, err := s.activeDeals(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items, "deals": deals})
}

func (s *Server) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ctx := c.Request.Context()
	cat, err := s.categorySvc.GetByName(ctx, strings.TrimSpace(req.Category))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.productSvc.Create(ctx, productdomain.CreateRequest{
		Name:          strings.TrimSpace(req.Name),
		Brand:         strings.TrimSpace(req.Brand),
		CategoryID:    cat.ID,
		Category:      cat.Name,
		Price:         req.Price,
		Description:   req.Description,
		ImageFileName: strings.TrimSpace(req.ImageFileName),
		Metadata:      req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

// activeDeals is shown beside both product lists. Without a deal service the
// banner is empty.
func (s *Server) activeDeals(c *gin.Context) ([]dealdomain.Deal, error) {
	if s.dealSvc == nil {
		return []dealdomain.Deal{}, nil
	}
	return s.dealSvc.ListActive(c.Request.Context())
}

// withSummaries recomputes list aggregates from the ratings table on every
// request.
func (s *Server) withSummaries(c *gin.Context, products []productdomain.Response) ([]productListItem, error) {
	ids := make([]snowflake.ID, 0, len(products))
	for _, p := range products {
		id, err := snowflake.ParseString(p.ID)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	summaries, err := s.ratingSvc.Summaries(c.Request.Context(), ids)
	if err != nil {
		return nil, err
	}

	items := make([]productListItem, 0, len(products))
	for i, p := range products {
		sum := summaries[ids[i]]
		items = append(items, productListItem{
			Response:      p,
			AverageRating: sum.AverageRating,
			RatingCount:   sum.RatingCount,
			RatingColor:   sum.Color,
		})
	}
	return items, nil
}

func (s *Server) GetProductDetail(c *gin.Context) {
	ctx := c.Request.Context()

	product, err := s.productSvc.Get(ctx, strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	productID, err := snowflake.ParseString(product.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	sort := ratingdomain.ParseSortField(strings.TrimSpace(c.Query("sort_field")))
	ratings, err := s.ratingSvc.ListReviews(ctx, productID, sort)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// One read feeds the list and the aggregates, so they always agree.
	average := ratingdomain.AverageRating(ratings)
	counts := ratingdomain.CountRatingsAndReviews(ratings)

	detail := productDetail{
		Product:       *product,
		AverageRating: average,
		RatingCount:   counts.RatingCount,
		ReviewCount:   counts.ReviewCount,
		RatingColor:   s.ratingSvc.DetermineRatingColor(average, false),
		SortField:     sort,
		Reviews:       make([]reviewItem, 0, len(ratings)),
	}
	for _, r := range ratings {
		detail.Reviews = append(detail.Reviews, reviewItem{
			UserName:    r.UserName,
			Rating:      r.Rating,
			RatingColor: s.ratingSvc.DetermineRatingColor(r.Rating, true),
			Review:      r.Review,
			DateTime:    r.DateTime.UTC().Format(time.RFC3339),
		})
	}

	if userID := currentUserID(c); userID != 0 {
		own, err := s.ratingSvc.UserRating(ctx, userID, productID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		detail.UserRating = &own
	}

	c.JSON(http.StatusOK, gin.H{"data": detail})
}
