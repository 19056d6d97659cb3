package pdf

import (
	"github.com/smallbiznis/mymart/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("providers.pdf",
	fx.Provide(NewFromConfig),
)

// Generator renders order invoices with maroto.
type Generator struct {
	storeName string
	currency  string
}

func NewFromConfig(cfg config.Config) *Generator {
	return New(cfg.Store.Name, cfg.Store.CurrencySymbol)
}

func New(storeName, currency string) *Generator {
	if storeName == "" {
		storeName = "MyMart"
	}
	if currency == "" {
		currency = "$"
	}
	return &Generator{storeName: storeName, currency: currency}
}
