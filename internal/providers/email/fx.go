package email

import (
	"github.com/smallbiznis/mymart/internal/config"
	notificationdomain "github.com/smallbiznis/mymart/internal/notification/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("providers.email",
	fx.Provide(NewFromConfig),
)

// NewFromConfig falls back to a logging transport when no SMTP host is set.
func NewFromConfig(cfg config.Config, log *zap.Logger) notificationdomain.Transport {
	if !cfg.Email.Enabled() {
		log.Warn("smtp not configured, order emails will be logged only")
		return NewLogTransport(log)
	}
	return NewSMTP(Config{
		Host:     cfg.Email.SMTPHost,
		Port:     cfg.Email.SMTPPort,
		Username: cfg.Email.SMTPUsername,
		Password: cfg.Email.SMTPPassword,
		From:     cfg.Email.SMTPFrom,
	})
}
