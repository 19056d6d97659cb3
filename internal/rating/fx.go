package rating

import (
	"github.com/smallbiznis/mymart/internal/rating/repository"
	"github.com/smallbiznis/mymart/internal/rating/service"
	"go.uber.org/fx"
)

var Module = fx.Module("rating.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
