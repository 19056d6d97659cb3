package service

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/gosimple/slug"
	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/mymart/internal/config"
	"github.com/smallbiznis/mymart/internal/notification/domain"
	orderdomain "github.com/smallbiznis/mymart/internal/order/domain"
	"github.com/smallbiznis/mymart/internal/providers/imagestore"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

var orderTemplate = template.Must(template.ParseFS(templateFS, "templates/order_confirmation.html"))

type orderEmailView struct {
	Subject     string
	StoreName   string
	OrderNumber string
	OrderDate   string
	Total       string
	TrackingURL string
	Items       []orderLineView
}

type orderLineView struct {
	Name      string
	Quantity  int
	UnitPrice string
	LineTotal string
	// ImageSrc is empty when the product image was not embedded.
	ImageSrc template.URL
}

type ComposerParams struct {
	fx.In

	Config   config.Config
	Log      *zap.Logger
	Images   domain.ImageStore
	Invoices domain.InvoiceGenerator
}

type Composer struct {
	store    config.StoreConfig
	log      *zap.Logger
	images   domain.ImageStore
	invoices domain.InvoiceGenerator
}

func NewComposer(p ComposerParams) domain.Composer {
	return &Composer{
		store:    p.Config.Store,
		log:      p.Log.Named("notification.composer"),
		images:   p.Images,
		invoices: p.Invoices,
	}
}

func (c *Composer) money(v float64) string {
	return fmt.Sprintf("%s%.2f", c.store.CurrencySymbol, v)
}

func (c *Composer) trackingURL(orderNumber string) string {
	return strings.TrimRight(c.store.TrackingBaseURL, "/") + "/" + url.PathEscape(orderNumber)
}

// ComposeOrderEmail builds the confirmation message for order. Images are
// validated before the invoice is rendered, and nothing is sent here.
func (c *Composer) ComposeOrderEmail(ctx context.Context, order *orderdomain.Order) (*domain.Message, error) {
	if order == nil {
		return nil, &domain.MessageAssemblyError{Cause: errors.New("order is nil")}
	}
	recipient := strings.TrimSpace(order.CustomerEmail)
	if recipient == "" {
		return nil, &domain.MessageAssemblyError{Cause: domain.ErrMissingRecipient}
	}

	inline, embedded, err := c.collectImages(ctx, order)
	if err != nil {
		return nil, err
	}

	subject := fmt.Sprintf("%s Order Confirmation - Order #%s", c.store.Name, order.OrderNumber)
	view := orderEmailView{
		Subject:     subject,
		StoreName:   c.store.Name,
		OrderNumber: order.OrderNumber,
		OrderDate:   order.CreatedAt.Format("January 2, 2006"),
		Total:       c.money(order.TotalAmount),
		TrackingURL: c.trackingURL(order.OrderNumber),
	}
	for _, item := range order.Items {
		line := orderLineView{
			Name:      item.Product.Name,
			Quantity:  item.Quantity,
			UnitPrice: c.money(item.UnitPrice()),
			LineTotal: c.money(item.TotalPrice),
		}
		if cid, ok := embedded[item.Product.ImageFileName]; ok {
			line.ImageSrc = template.URL("cid:" + cid)
		}
		view.Items = append(view.Items, line)
	}

	var body bytes.Buffer
	if err := orderTemplate.Execute(&body, view); err != nil {
		return nil, &domain.MessageAssemblyError{Cause: err}
	}

	invoice, err := c.invoices.GenerateInvoice(ctx, order)
	if err != nil {
		return nil, &domain.InvoiceGenerationError{Cause: err}
	}

	return &domain.Message{
		ID:       ulid.Make().String(),
		To:       []string{recipient},
		Subject:  subject,
		HTMLBody: body.String(),
		Inline:   inline,
		Attachment: domain.Attachment{
			FileName:    domain.InvoiceFileName,
			ContentType: domain.InvoiceContentType,
			Data:        invoice,
		},
	}, nil
}

// collectImages reads each distinct product image once, in first-seen order.
// The returned map holds the content id of every embedded file name.
func (c *Composer) collectImages(ctx context.Context, order *orderdomain.Order) ([]domain.InlineAsset, map[string]string, error) {
	seen := make(map[string]struct{})
	embedded := make(map[string]string)
	taken := make(map[string]struct{})
	var assets []domain.InlineAsset

	for _, item := range order.Items {
		name := item.Product.ImageFileName
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		img, err := c.images.Read(ctx, name)
		if err != nil {
			if errors.Is(err, imagestore.ErrNotFound) || errors.Is(err, imagestore.ErrUnreadable) {
				c.log.Warn("product image skipped",
					zap.String("order_number", order.OrderNumber),
					zap.String("image", name),
					zap.Error(err),
				)
				continue
			}
			return nil, nil, &domain.MessageAssemblyError{Cause: err}
		}

		if _, ok := domain.AllowedImageTypes[img.ContentType]; !ok {
			return nil, nil, &domain.InvalidImageFormatError{FileName: name, ContentType: img.ContentType}
		}

		cid := inlineContentID(name, taken)
		assets = append(assets, domain.InlineAsset{
			ContentID:   cid,
			FileName:    name,
			ContentType: img.ContentType,
			Data:        img.Data,
		})
		embedded[name] = cid
	}
	return assets, embedded, nil
}

const contentIDDomain = "mymart"

// inlineContentID turns an image file name into a msg-id safe token, so
// names with spaces or non-ASCII characters still resolve from cid: URLs.
func inlineContentID(name string, taken map[string]struct{}) string {
	base := slug.Make(name)
	if base == "" {
		base = "image"
	}
	id := base + "@" + contentIDDomain
	for n := 2; ; n++ {
		if _, dup := taken[id]; !dup {
			break
		}
		id = fmt.Sprintf("%s-%d@%s", base, n, contentIDDomain)
	}
	taken[id] = struct{}{}
	return id
}
