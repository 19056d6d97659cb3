package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smallbiznis/mymart/internal/notification/domain"
	"github.com/smallbiznis/mymart/internal/observability/metrics"
	orderdomain "github.com/smallbiznis/mymart/internal/order/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log       *zap.Logger
	Orders    orderdomain.Service
	Composer  domain.Composer
	Transport domain.Transport
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	log       *zap.Logger
	orders    orderdomain.Service
	composer  domain.Composer
	transport domain.Transport
	metrics   *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		log:       p.Log.Named("notification.service"),
		orders:    p.Orders,
		composer:  p.Composer,
		transport: p.Transport,
		metrics:   p.Metrics,
	}
}

// SendOrderConfirmation composes the confirmation for orderNumber and hands it
// to the transport. A compose failure sends nothing.
func (s *Service) SendOrderConfirmation(ctx context.Context, orderNumber string) (*domain.Result, error) {
	order, err := s.orders.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	outcome := "error"
	defer func() { s.metrics.ObserveOrderEmailDuration(ctx, outcome, time.Since(start)) }()

	msg, err := s.composer.ComposeOrderEmail(ctx, order)
	if err != nil {
		s.metrics.RecordOrderEmail(ctx, "error", failureReason(err))
		s.log.Warn("order email not composed",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err),
		)
		return nil, err
	}

	if err := s.transport.Send(ctx, msg); err != nil {
		s.metrics.RecordOrderEmail(ctx, "error", "transport_failed")
		s.log.Error("order email delivery failed",
			zap.String("order_number", order.OrderNumber),
			zap.String("message_id", msg.ID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", domain.ErrTransportFailed, err)
	}

	outcome = "ok"
	s.metrics.RecordOrderEmail(ctx, "ok", "")
	s.log.Info("order email sent",
		zap.String("order_number", order.OrderNumber),
		zap.String("message_id", msg.ID),
		zap.Int("inline_images", len(msg.Inline)),
	)
	return &domain.Result{
		MessageID:   msg.ID,
		OrderNumber: order.OrderNumber,
		Recipient:   msg.To[0],
		Subject:     msg.Subject,
		InlineCount: len(msg.Inline),
	}, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidImageFormat):
		return "invalid_image_format"
	case errors.Is(err, domain.ErrInvoiceGenerationFailed):
		return "invoice_generation_failed"
	default:
		return "message_assembly_failed"
	}
}
