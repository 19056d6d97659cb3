package user

import (
	"github.com/smallbiznis/mymart/internal/user/repository"
	"github.com/smallbiznis/mymart/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
