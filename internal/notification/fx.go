package notification

import (
	"github.com/smallbiznis/mymart/internal/notification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	fx.Provide(service.NewComposer),
	fx.Provide(service.New),
)
