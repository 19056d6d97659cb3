package email

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"

	jemail "github.com/jordan-wright/email"
	notificationdomain "github.com/smallbiznis/mymart/internal/notification/domain"
	"go.uber.org/zap"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type SMTPTransport struct {
	cfg Config
}

func NewSMTP(cfg Config) *SMTPTransport {
	return &SMTPTransport{cfg: cfg}
}

func (t *SMTPTransport) Send(ctx context.Context, msg *notificationdomain.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e, err := Build(t.cfg.From, msg)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if t.cfg.Username != "" {
		auth = smtp.PlainAuth("", t.cfg.Username, t.cfg.Password, t.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", t.cfg.Host, t.cfg.Port)
	return e.Send(addr, auth)
}

// Build maps msg onto a multipart MIME email. Inline images go into the
// multipart/related part keyed by Content-ID, and the invoice is a regular
// attachment.
func Build(from string, msg *notificationdomain.Message) (*jemail.Email, error) {
	if msg == nil || len(msg.To) == 0 {
		return nil, notificationdomain.ErrMissingRecipient
	}

	e := jemail.NewEmail()
	e.From = from
	e.To = msg.To
	e.Subject = msg.Subject
	e.HTML = []byte(msg.HTMLBody)
	if msg.ID != "" {
		e.Headers.Set("Message-Id", fmt.Sprintf("<%s@mymart>", msg.ID))
	}

	for _, asset := range msg.Inline {
		a, err := e.Attach(bytes.NewReader(asset.Data), asset.FileName, asset.ContentType)
		if err != nil {
			return nil, err
		}
		a.HTMLRelated = true
		a.Header.Set("Content-Disposition", fmt.Sprintf("inline;\r\n filename=%q", asset.FileName))
		a.Header.Set("Content-ID", fmt.Sprintf("<%s>", asset.ContentID))
	}

	if len(msg.Attachment.Data) > 0 {
		if _, err := e.Attach(bytes.NewReader(msg.Attachment.Data), msg.Attachment.FileName, msg.Attachment.ContentType); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// LogTransport records messages instead of delivering them.
type LogTransport struct {
	log *zap.Logger
}

func NewLogTransport(log *zap.Logger) *LogTransport {
	return &LogTransport{log: log.Named("email.log")}
}

func (t *LogTransport) Send(ctx context.Context, msg *notificationdomain.Message) error {
	if msg == nil || len(msg.To) == 0 {
		return notificationdomain.ErrMissingRecipient
	}
	t.log.Info("email not delivered, smtp disabled",
		zap.String("message_id", msg.ID),
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("inline_images", len(msg.Inline)),
		zap.Int("attachment_bytes", len(msg.Attachment.Data)),
	)
	return nil
}
