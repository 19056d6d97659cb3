package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/mymart/internal/authorization"
	categoryrepository "github.com/smallbiznis/mymart/internal/category/repository"
	categoryservice "github.com/smallbiznis/mymart/internal/category/service"
	"github.com/smallbiznis/mymart/internal/clock"
	"github.com/smallbiznis/mymart/internal/config"
	dealdomain "github.com/smallbiznis/mymart/internal/deal/domain"
	dealrepository "github.com/smallbiznis/mymart/internal/deal/repository"
	dealservice "github.com/smallbiznis/mymart/internal/deal/service"
	"github.com/smallbiznis/mymart/internal/migration"
	notificationdomain "github.com/smallbiznis/mymart/internal/notification/domain"
	notificationservice "github.com/smallbiznis/mymart/internal/notification/service"
	orderdomain "github.com/smallbiznis/mymart/internal/order/domain"
	orderrepository "github.com/smallbiznis/mymart/internal/order/repository"
	orderservice "github.com/smallbiznis/mymart/internal/order/service"
	productdomain "github.com/smallbiznis/mymart/internal/product/domain"
	productrepository "github.com/smallbiznis/mymart/internal/product/repository"
	productservice "github.com/smallbiznis/mymart/internal/product/service"
	"github.com/smallbiznis/mymart/internal/providers/imagestore"
	"github.com/smallbiznis/mymart/internal/providers/pdf"
	"github.com/smallbiznis/mymart/internal/ratelimit"
	ratingdomain "github.com/smallbiznis/mymart/internal/rating/domain"
	ratingrepository "github.com/smallbiznis/mymart/internal/rating/repository"
	ratingservice "github.com/smallbiznis/mymart/internal/rating/service"
	"github.com/smallbiznis/mymart/internal/seed"
	userdomain "github.com/smallbiznis/mymart/internal/user/domain"
	userrepository "github.com/smallbiznis/mymart/internal/user/repository"
	userservice "github.com/smallbiznis/mymart/internal/user/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	shopperEmail = "demo@mymart.local"
	adminEmail   = "admin@mymart.local"
)

type recordingTransport struct {
	mu   sync.Mutex
	sent []*notificationdomain.Message
}

func (t *recordingTransport) Send(ctx context.Context, msg *notificationdomain.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, msg)
	return nil
}

type testEnv struct {
	engine    *gin.Engine
	db        *gorm.DB
	imageDir  string
	transport *recordingTransport
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{G: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithLimiter(t, nil)
}

func newTestEnvWithLimiter(t *testing.T, limiter *ratelimit.Limiter) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, migration.AutoMigrate(db))
	require.NoError(t, seed.EnsureCatalog(db))

	imageDir := t.TempDir()
	writePNG(t, filepath.Join(imageDir, "headphones.png"))
	// charger.jpg from the seed catalog is absent and gets skipped.

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	log := zap.NewNop()

	cfg := config.Config{
		Environment: "test",
		Store: config.StoreConfig{
			Name:            "MyMart",
			TrackingBaseURL: "http://localhost:8080/trackOrder",
			ImageDir:        imageDir,
			CurrencySymbol:  "$",
		},
	}

	colors, err := config.NewStaticRatingColorHolder(ratingdomain.DefaultColorPolicy())
	require.NoError(t, err)

	orders := orderservice.New(orderservice.Params{DB: db, Log: log, Repo: orderrepository.Provide()})
	transport := &recordingTransport{}
	composer := notificationservice.NewComposer(notificationservice.ComposerParams{
		Config:   cfg,
		Log:      log,
		Images:   imagestore.New(imageDir),
		Invoices: pdf.New(cfg.Store.Name, cfg.Store.CurrencySymbol),
	})

	enforcer, err := authorization.NewEnforcer(db)
	require.NoError(t, err)

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	NewServer(ServerParams{
		Gin:         engine,
		Cfg:         cfg,
		Log:         log,
		UserSvc:     userservice.New(userservice.Params{DB: db, Repo: userrepository.Provide()}),
		CategorySvc: categoryservice.New(categoryservice.Params{DB: db, Log: log, GenID: node, Repo: categoryrepository.Provide()}),
		ProductSvc:  productservice.New(productservice.Params{DB: db, Log: log, GenID: node, Repo: productrepository.Provide()}),
		DealSvc:     dealservice.New(dealservice.Params{DB: db, Log: log, Clock: clock.New(), Repo: dealrepository.Provide()}),
		RatingSvc: ratingservice.NewService(ratingservice.ServiceParam{
			DB:     db,
			Log:    log,
			GenID:  node,
			Repo:   ratingrepository.Provide(),
			Clock:  clock.NewFakeClock(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)),
			Colors: colors,
		}),
		OrderSvc: orders,
		NotificationSvc: notificationservice.New(notificationservice.Params{
			Log:       log,
			Orders:    orders,
			Composer:  composer,
			Transport: transport,
		}),
		AuthzSvc: authorization.NewService(authorization.Params{DB: db, Log: log, Enforcer: enforcer}),
		Limiter:  limiter,
	})

	return &testEnv{engine: engine, db: db, imageDir: imageDir, transport: transport}
}

func (e *testEnv) do(t *testing.T, method, path, email string, body any) (int, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if email != "" {
		req.Header.Set(HeaderUserEmail, email)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

func (e *testEnv) productID(t *testing.T, name string) string {
	t.Helper()
	var p productdomain.Product
	require.NoError(t, e.db.Where("name = ?", name).First(&p).Error)
	return p.ID.String()
}

func errorType(body map[string]any) string {
	errObj, _ := body["error"].(map[string]any)
	v, _ := errObj["type"].(string)
	return v
}

func TestSubmitRatingRequiresLogin(t *testing.T) {
	env := newTestEnv(t)
	id := env.productID(t, "Ceramic Mug")

	code, body := env.do(t, http.MethodPost, "/api/products/"+id+"/ratings", "", gin.H{"rating": 4})
	assert.Equal(t, http.StatusUnauthorized, code)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "Please log in to submit.", errObj["message"])

	code, _ = env.do(t, http.MethodPost, "/api/products/"+id+"/ratings", "stranger@example.com", gin.H{"rating": 4})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestSubmitRatingAndReadBack(t *testing.T) {
	env := newTestEnv(t)
	id := env.productID(t, "Ceramic Mug")
	path := "/api/products/" + id + "/ratings"

	code, body := env.do(t, http.MethodPost, path, shopperEmail, gin.H{"rating": 2, "review": "chipped"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Rating and review submitted successfully.", body["message"])

	code, _ = env.do(t, http.MethodPost, path, shopperEmail, gin.H{"rating": 5, "review": "replacement is perfect"})
	require.Equal(t, http.StatusOK, code)

	var n int64
	require.NoError(t, env.db.Model(&ratingdomain.Rating{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	code, body = env.do(t, http.MethodGet, "/api/products/"+id+"?sort_field=highestRating", shopperEmail, nil)
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.Equal(t, 5.0, data["average_rating"])
	assert.Equal(t, 1.0, data["rating_count"])
	assert.Equal(t, 1.0, data["review_count"])
	assert.Equal(t, "excellent", data["rating_color"])
	assert.Equal(t, "highestRating", data["sort_field"])
	assert.Equal(t, 5.0, data["user_rating"])

	reviews := data["reviews"].([]any)
	require.Len(t, reviews, 1)
	first := reviews[0].(map[string]any)
	assert.Equal(t, "Demo Shopper", first["user_name"])
	assert.Equal(t, "replacement is perfect", first["review"])

	code, body = env.do(t, http.MethodGet, "/api/products/"+id, "", nil)
	require.Equal(t, http.StatusOK, code)
	_, hasOwn := body["data"].(map[string]any)["user_rating"]
	assert.False(t, hasOwn)
}

func TestProductDetailAggregatesMatchReviews(t *testing.T) {
	env := newTestEnv(t)
	id := env.productID(t, "Pour-Over Kettle")
	path := "/api/products/" + id + "/ratings"

	code, _ := env.do(t, http.MethodPost, path, shopperEmail, gin.H{"rating": 4, "review": "pours well"})
	require.Equal(t, http.StatusOK, code)
	code, _ = env.do(t, http.MethodPost, path, adminEmail, gin.H{"rating": 2})
	require.Equal(t, http.StatusOK, code)

	code, body := env.do(t, http.MethodGet, "/api/products/"+id, "", nil)
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.Len(t, data["reviews"].([]any), 2)
	assert.Equal(t, 3.0, data["average_rating"])
	assert.Equal(t, 2.0, data["rating_count"])
	assert.Equal(t, 1.0, data["review_count"])
	assert.Equal(t, "fair", data["rating_color"])
}

func TestSubmitRatingValidation(t *testing.T) {
	env := newTestEnv(t)
	id := env.productID(t, "Ceramic Mug")

	code, body := env.do(t, http.MethodPost, "/api/products/"+id+"/ratings", shopperEmail, gin.H{"rating": 7})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation_error", errorType(body))

	code, _ = env.do(t, http.MethodPost, "/api/products/"+id+"/ratings", shopperEmail, gin.H{"review": "no score"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = env.do(t, http.MethodPost, "/api/products/12345/ratings", shopperEmail, gin.H{"rating": 3})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestListProductsIncludesAggregates(t *testing.T) {
	env := newTestEnv(t)
	id := env.productID(t, "Pour-Over Kettle")

	code, _ := env.do(t, http.MethodPost, "/api/products/"+id+"/ratings", shopperEmail, gin.H{"rating": 3})
	require.Equal(t, http.StatusOK, code)

	code, body := env.do(t, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, code)

	items := body["data"].([]any)
	assert.Len(t, items, 5)
	for _, raw := range items {
		item := raw.(map[string]any)
		if item["id"] == id {
			assert.Equal(t, 3.0, item["average_rating"])
			assert.Equal(t, 1.0, item["rating_count"])
			assert.Equal(t, "fair", item["rating_color"])
		} else {
			assert.Equal(t, 0.0, item["rating_count"])
			assert.Equal(t, "poor", item["rating_color"])
		}
	}
}

func TestCategoryListing(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.do(t, http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["data"].([]any), 3)

	code, body = env.do(t, http.MethodGet, "/api/categories/Electronics/products", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["data"].([]any), 2)

	code, _ = env.do(t, http.MethodGet, "/api/categories/home-and-kitchen/products", "", nil)
	assert.Equal(t, http.StatusOK, code)

	code, body = env.do(t, http.MethodGet, "/api/categories/Garden/products", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not_found", errorType(body))
}

func TestCreateCategoryAndProduct(t *testing.T) {
	env := newTestEnv(t)

	code, _ := env.do(t, http.MethodPost, "/api/categories", adminEmail, gin.H{"name": "Garden"})
	require.Equal(t, http.StatusCreated, code)

	code, _ = env.do(t, http.MethodPost, "/api/categories", adminEmail, gin.H{"name": "Garden"})
	assert.Equal(t, http.StatusConflict, code)

	code, body := env.do(t, http.MethodPost, "/api/products", adminEmail, gin.H{
		"name": "Trowel", "brand": "Digwell", "category": "Garden", "price": 12.5, "image_file_name": "trowel.png",
	})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Trowel", body["data"].(map[string]any)["name"])

	code, _ = env.do(t, http.MethodPost, "/api/products", adminEmail, gin.H{"name": "Ghost", "category": "Nope", "price": 1})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCatalogWritesRequireAdmin(t *testing.T) {
	env := newTestEnv(t)
	product := gin.H{"name": "Trowel", "category": "Books", "price": 12.5}

	code, body := env.do(t, http.MethodPost, "/api/categories", "", gin.H{"name": "Garden"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "unauthenticated", errorType(body))

	code, body = env.do(t, http.MethodPost, "/api/categories", shopperEmail, gin.H{"name": "Garden"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "forbidden", errorType(body))

	code, _ = env.do(t, http.MethodPost, "/api/products", "", product)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = env.do(t, http.MethodPost, "/api/products", shopperEmail, product)
	assert.Equal(t, http.StatusForbidden, code)

	var categories, products int64
	require.NoError(t, env.db.Table("categories").Count(&categories).Error)
	require.NoError(t, env.db.Table("products").Where("name = ?", "Trowel").Count(&products).Error)
	assert.Equal(t, int64(3), categories)
	assert.Equal(t, int64(0), products)
}

func TestAdminRoleChangeTakesEffect(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.db.Model(&userdomain.User{}).Where("email = ?", shopperEmail).Update("role", userdomain.RoleAdmin).Error)
	code, _ := env.do(t, http.MethodPost, "/api/categories", shopperEmail, gin.H{"name": "Garden"})
	require.Equal(t, http.StatusCreated, code)

	require.NoError(t, env.db.Model(&userdomain.User{}).Where("email = ?", shopperEmail).Update("role", userdomain.RoleShopper).Error)
	code, _ = env.do(t, http.MethodPost, "/api/categories", shopperEmail, gin.H{"name": "Toys"})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestProductListsIncludeActiveDeals(t *testing.T) {
	env := newTestEnv(t)
	kettle := env.productID(t, "Pour-Over Kettle")

	expired := time.Now().UTC().Add(-time.Minute)
	require.NoError(t, env.db.Create(&dealdomain.Deal{
		ID: 991, Title: "Last week's sale", StartsAt: expired.Add(-7 * 24 * time.Hour), EndsAt: &expired, CreatedAt: expired,
	}).Error)

	for _, path := range []string{"/api/products", "/api/categories/home-and-kitchen/products"} {
		code, body := env.do(t, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, code, path)

		deals := body["deals"].([]any)
		require.Len(t, deals, 2, path)
		titles := make([]string, 0, len(deals))
		var productDeal map[string]any
		for _, raw := range deals {
			d := raw.(map[string]any)
			titles = append(titles, d["title"].(string))
			if d["product_id"] != nil {
				productDeal = d
			}
		}
		assert.NotContains(t, titles, "Last week's sale", path)
		require.NotNil(t, productDeal, path)
		assert.Equal(t, kettle, productDeal["product_id"], path)
		assert.Equal(t, 15.0, productDeal["discount_percent"], path)
	}
}

func TestOrderTracking(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.do(t, http.MethodGet, "/api/orders/1042/tracking", "", nil)
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "PLACED", data["status"])
	assert.Len(t, data["items"].([]any), 2)

	code, _ = env.do(t, http.MethodGet, "/api/orders/9999/tracking", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestSendOrderConfirmation(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.do(t, http.MethodPost, "/api/orders/1042/confirmation-email", shopperEmail, nil)
	require.Equal(t, http.StatusAccepted, code, body)

	data := body["data"].(map[string]any)
	assert.Equal(t, "MyMart Order Confirmation - Order #1042", data["subject"])
	assert.Equal(t, shopperEmail, data["recipient"])

	require.Len(t, env.transport.sent, 1)
	msg := env.transport.sent[0]
	require.Len(t, msg.Inline, 1)
	assert.Equal(t, "headphones-png@mymart", msg.Inline[0].ContentID)
	assert.Equal(t, "headphones.png", msg.Inline[0].FileName)
	assert.Contains(t, msg.HTMLBody, "/trackOrder/1042")
	assert.Equal(t, "%PDF", string(msg.Attachment.Data[:4]))
}

func TestSendOrderConfirmationRequiresOwnerOrAdmin(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.db.Create(&userdomain.User{
		ID: 4242, Email: "other@mymart.local", Name: "Other Shopper", Role: userdomain.RoleShopper, CreatedAt: time.Now().UTC(),
	}).Error)
	path := "/api/orders/1042/confirmation-email"

	code, body := env.do(t, http.MethodPost, path, "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "unauthenticated", errorType(body))

	code, _ = env.do(t, http.MethodPost, path, "stranger@example.com", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body = env.do(t, http.MethodPost, path, "other@mymart.local", nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "forbidden", errorType(body))
	assert.Empty(t, env.transport.sent)

	code, body = env.do(t, http.MethodPost, path, adminEmail, nil)
	require.Equal(t, http.StatusAccepted, code, body)
	assert.Equal(t, shopperEmail, body["data"].(map[string]any)["recipient"])
	assert.Len(t, env.transport.sent, 1)

	code, _ = env.do(t, http.MethodPost, "/api/orders/9999/confirmation-email", adminEmail, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestSendOrderConfirmationRejectsBadImage(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(env.imageDir, "charger.jpg"), []byte("plain text, not an image"), 0o600))

	code, body := env.do(t, http.MethodPost, "/api/orders/1042/confirmation-email", shopperEmail, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "invalid_image_format", errorType(body))
	assert.Empty(t, env.transport.sent)

	var o orderdomain.Order
	require.NoError(t, env.db.Where("order_number = ?", "1042").First(&o).Error)
	assert.Equal(t, orderdomain.OrderStatusPlaced, o.Status)
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)
	code, body := env.do(t, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not_found", errorType(body))
}

func TestOrderConfirmationRateLimited(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter := ratelimit.New(client, config.RateLimitConfig{OrderEmailRate: 0.01, OrderEmailBurst: 1})
	env := newTestEnvWithLimiter(t, limiter)

	code, body := env.do(t, http.MethodPost, "/api/orders/1042/confirmation-email", shopperEmail, nil)
	require.Equal(t, http.StatusAccepted, code, body)

	// Anonymous requests are turned away before they can drain the bucket.
	code, _ = env.do(t, http.MethodPost, "/api/orders/1042/confirmation-email", "", nil)
	require.Equal(t, http.StatusUnauthorized, code)

	req := httptest.NewRequest(http.MethodPost, "/api/orders/%231042/confirmation-email", nil)
	req.Header.Set(HeaderUserEmail, shopperEmail)
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Len(t, env.transport.sent, 1)
}

func TestRatingSubmitRateLimitedPerShopper(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter := ratelimit.New(client, config.RateLimitConfig{RatingSubmitRate: 0.01, RatingSubmitBurst: 2})
	env := newTestEnvWithLimiter(t, limiter)
	id := env.productID(t, "Ceramic Mug")

	for i := 0; i < 2; i++ {
		code, body := env.do(t, http.MethodPost, "/api/products/"+id+"/ratings", shopperEmail, gin.H{"rating": 5})
		require.Equal(t, http.StatusOK, code, body)
	}
	code, body := env.do(t, http.MethodPost, "/api/products/"+id+"/ratings", shopperEmail, gin.H{"rating": 5})
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, "rate_limited", errorType(body))
}
