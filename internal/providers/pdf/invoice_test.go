package pdf

import (
	"context"
	"testing"
	"time"

	orderdomain "github.com/smallbiznis/mymart/internal/order/domain"
	productdomain "github.com/smallbiznis/mymart/internal/product/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateInvoice(t *testing.T) {
	g := New("MyMart", "$")
	order := &orderdomain.Order{
		OrderNumber:   "1042",
		CustomerEmail: "buyer@example.com",
		TotalAmount:   59.97,
		Status:        orderdomain.OrderStatusPlaced,
		CreatedAt:     time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC),
		Items: []orderdomain.OrderItem{
			{Quantity: 2, TotalPrice: 39.98, Product: productdomain.Product{Name: "Mug"}},
			{Quantity: 1, TotalPrice: 19.99, Product: productdomain.Product{Name: "Plate"}},
		},
	}

	out, err := g.GenerateInvoice(context.Background(), order)
	require.NoError(t, err)
	require.Greater(t, len(out), 4)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestGenerateInvoiceRejectsEmptyOrder(t *testing.T) {
	_, err := New("", "").GenerateInvoice(context.Background(), &orderdomain.Order{OrderNumber: "1"})
	assert.ErrorIs(t, err, ErrEmptyOrder)

	_, err = New("", "").GenerateInvoice(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyOrder)
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "$59.97", New("", "").money(59.97))
	assert.Equal(t, "€3.00", New("", "€").money(3))
}
