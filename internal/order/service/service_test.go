package service

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/mymart/internal/order/domain"
	"github.com/smallbiznis/mymart/internal/order/repository"
	productdomain "github.com/smallbiznis/mymart/internal/product/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&productdomain.Product{}, &domain.Order{}, &domain.OrderItem{}))
	return db
}

func TestGetByNumber(t *testing.T) {
	db := setupDB(t)
	now := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)

	require.NoError(t, db.Create(&[]productdomain.Product{
		{ID: 10, Name: "Mug", Category: "Kitchen", CategoryID: 1, Price: 9.99, ImageFileName: "mug.png", CreatedAt: now},
		{ID: 11, Name: "Plate", Category: "Kitchen", CategoryID: 1, Price: 14.99, ImageFileName: "plate.png", CreatedAt: now},
	}).Error)
	require.NoError(t, db.Create(&domain.Order{
		ID:            1,
		OrderNumber:   "1042",
		UserID:        7,
		CustomerEmail: "buyer@example.com",
		TotalAmount:   34.97,
		Status:        domain.OrderStatusPlaced,
		CreatedAt:     now,
	}).Error)
	require.NoError(t, db.Create(&[]domain.OrderItem{
		{ID: 101, OrderID: 1, ProductID: 11, Quantity: 1, TotalPrice: 14.99, Position: 1},
		{ID: 100, OrderID: 1, ProductID: 10, Quantity: 2, TotalPrice: 19.98, Position: 0},
	}).Error)

	svc := New(Params{DB: db, Log: zap.NewNop(), Repo: repository.Provide()})

	o, err := svc.GetByNumber(context.Background(), "#1042")
	require.NoError(t, err)
	assert.Equal(t, "buyer@example.com", o.CustomerEmail)
	require.Len(t, o.Items, 2)
	assert.Equal(t, "Mug", o.Items[0].Product.Name)
	assert.Equal(t, "plate.png", o.Items[1].Product.ImageFileName)

	_, err = svc.GetByNumber(context.Background(), "9999")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetByNumber(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidOrderNumber)
}
