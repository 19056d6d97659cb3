package category

import (
	"github.com/smallbiznis/mymart/internal/category/repository"
	"github.com/smallbiznis/mymart/internal/category/service"
	"go.uber.org/fx"
)

var Module = fx.Module("category.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
