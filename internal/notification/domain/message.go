// Package domain describes composed customer notifications and the ports the
// composer needs to build and deliver them.
package domain

import (
	"context"

	orderdomain "github.com/smallbiznis/mymart/internal/order/domain"
	"github.com/smallbiznis/mymart/internal/providers/imagestore"
)

const (
	InvoiceFileName    = "Invoice.pdf"
	InvoiceContentType = "application/pdf"
)

// AllowedImageTypes are the only inline image formats mail clients render
// reliably.
var AllowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
}

// Message is a fully assembled email, ready for a Transport.
type Message struct {
	ID         string
	To         []string
	Subject    string
	HTMLBody   string
	Inline     []InlineAsset
	Attachment Attachment
}

// InlineAsset is an image referenced from HTMLBody as cid:ContentID.
type InlineAsset struct {
	ContentID   string
	FileName    string
	ContentType string
	Data        []byte
}

type Attachment struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Result reports what was delivered.
type Result struct {
	MessageID   string `json:"message_id"`
	OrderNumber string `json:"order_number"`
	Recipient   string `json:"recipient"`
	Subject     string `json:"subject"`
	InlineCount int    `json:"inline_images"`
}

type ImageStore interface {
	Read(ctx context.Context, fileName string) (*imagestore.Image, error)
}

type InvoiceGenerator interface {
	GenerateInvoice(ctx context.Context, order *orderdomain.Order) ([]byte, error)
}

type Transport interface {
	Send(ctx context.Context, msg *Message) error
}

type Composer interface {
	ComposeOrderEmail(ctx context.Context, order *orderdomain.Order) (*Message, error)
}

type Service interface {
	SendOrderConfirmation(ctx context.Context, orderNumber string) (*Result, error)
}
