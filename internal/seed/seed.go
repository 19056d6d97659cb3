package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	categorydomain "github.com/smallbiznis/mymart/internal/category/domain"
	dealdomain "github.com/smallbiznis/mymart/internal/deal/domain"
	orderdomain "github.com/smallbiznis/mymart/internal/order/domain"
	productdomain "github.com/smallbiznis/mymart/internal/product/domain"
	userdomain "github.com/smallbiznis/mymart/internal/user/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	demoUserEmail   = "demo@mymart.local"
	demoUserName    = "Demo Shopper"
	adminUserEmail  = "admin@mymart.local"
	adminUserName   = "Store Admin"
	demoOrderNumber = "1042"
)

type productSeed struct {
	Name     string
	Brand    string
	Category string
	Price    float64
	Image    string
	Desc     string
}

var catalog = []productSeed{
	{Name: "Wireless Headphones", Brand: "Sonora", Category: "Electronics", Price: 19.99, Image: "headphones.png", Desc: "Over-ear, 30 hour battery."},
	{Name: "USB-C Charger", Brand: "Voltix", Category: "Electronics", Price: 19.99, Image: "charger.jpg", Desc: "65W fast charger."},
	{Name: "Pour-Over Kettle", Brand: "Brewline", Category: "Home & Kitchen", Price: 34.50, Image: "kettle.png", Desc: "Gooseneck, 1 litre."},
	{Name: "Ceramic Mug", Brand: "Brewline", Category: "Home & Kitchen", Price: 9.99, Image: "mug.gif", Desc: "350 ml, dishwasher safe."},
	{Name: "The Go Programming Language", Brand: "Addison-Wesley", Category: "Books", Price: 39.00, Image: "gopl.jpg", Desc: "Donovan and Kernighan."},
}

// EnsureCatalog seeds categories, products, deals, a demo shopper, a store
// admin and a demo order.
// Rows that already exist are left untouched.
func EnsureCatalog(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		categories := make(map[string]categorydomain.Category)
		products := make(map[string]productdomain.Product)
		for _, item := range catalog {
			cat, ok := categories[item.Category]
			if !ok {
				cat, err = ensureCategoryTx(tx, node, item.Category, now)
				if err != nil {
					return err
				}
				categories[item.Category] = cat
			}

			p, err := ensureProductTx(tx, node, cat, item, now)
			if err != nil {
				return err
			}
			products[item.Name] = p
		}

		user, err := ensureUserTx(tx, node, demoUserEmail, demoUserName, userdomain.RoleShopper, now)
		if err != nil {
			return err
		}
		if _, err := ensureUserTx(tx, node, adminUserEmail, adminUserName, userdomain.RoleAdmin, now); err != nil {
			return err
		}
		if err := ensureDealsTx(tx, node, products, now); err != nil {
			return err
		}
		return ensureDemoOrderTx(tx, node, user, []orderLine{
			{product: products["Wireless Headphones"], quantity: 2},
			{product: products["USB-C Charger"], quantity: 1},
		}, now)
	})
}

func ensureCategoryTx(tx *gorm.DB, node *snowflake.Node, name string, now time.Time) (categorydomain.Category, error) {
	var cat categorydomain.Category
	s := slug.Make(name)
	err := tx.Where("slug = ?", s).
		Attrs(categorydomain.Category{ID: node.Generate(), Name: name, Slug: s, CreatedAt: now}).
		FirstOrCreate(&cat).Error
	return cat, err
}

func ensureProductTx(tx *gorm.DB, node *snowflake.Node, cat categorydomain.Category, item productSeed, now time.Time) (productdomain.Product, error) {
	var p productdomain.Product
	err := tx.Where("name = ? AND category_id = ?", item.Name, cat.ID).
		Attrs(productdomain.Product{
			ID:            node.Generate(),
			Name:          item.Name,
			CategoryID:    cat.ID,
			Brand:         item.Brand,
			Category:      cat.Name,
			Price:         item.Price,
			Description:   item.Desc,
			ImageFileName: item.Image,
			CreatedAt:     now,
		}).
		FirstOrCreate(&p).Error
	return p, err
}

func ensureUserTx(tx *gorm.DB, node *snowflake.Node, email, name, role string, now time.Time) (userdomain.User, error) {
	var u userdomain.User
	err := tx.Where("email = ?", email).
		Attrs(userdomain.User{ID: node.Generate(), Email: email, Name: name, Role: role, CreatedAt: now}).
		FirstOrCreate(&u).Error
	return u, err
}

// ensureDealsTx adds the launch promotions once; deals edited later are kept.
func ensureDealsTx(tx *gorm.DB, node *snowflake.Node, products map[string]productdomain.Product, now time.Time) error {
	var count int64
	if err := tx.Model(&dealdomain.Deal{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	start := now.Add(-time.Hour)
	deals := []dealdomain.Deal{
		{
			ID:          node.Generate(),
			Title:       "Free shipping on orders over $50",
			Description: "Applies to every category.",
			StartsAt:    start,
			CreatedAt:   now,
		},
		{
			ID:              node.Generate(),
			Title:           "Kettle week",
			Description:     "15% off the Pour-Over Kettle.",
			DiscountPercent: 15,
			ProductID:       products["Pour-Over Kettle"].ID,
			StartsAt:        start,
			CreatedAt:       now,
		},
	}
	return tx.Create(&deals).Error
}

type orderLine struct {
	product  productdomain.Product
	quantity int
}

func ensureDemoOrderTx(tx *gorm.DB, node *snowflake.Node, user userdomain.User, lines []orderLine, now time.Time) error {
	var count int64
	if err := tx.Model(&orderdomain.Order{}).Where("order_number = ?", demoOrderNumber).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	order := orderdomain.Order{
		ID:            node.Generate(),
		OrderNumber:   demoOrderNumber,
		UserID:        user.ID,
		CustomerEmail: user.Email,
		Status:        orderdomain.OrderStatusPlaced,
		CreatedAt:     now,
	}
	for i, line := range lines {
		total := line.product.Price * float64(line.quantity)
		order.TotalAmount += total
		order.Items = append(order.Items, orderdomain.OrderItem{
			ID:         node.Generate(),
			ProductID:  line.product.ID,
			Quantity:   line.quantity,
			TotalPrice: total,
			Position:   i,
		})
	}
	items := order.Items
	order.Items = nil
	if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	return tx.Omit(clause.Associations).Create(&items).Error
}
