package category

import (
	"github.com/itfy/evoting/internal/category/repository"
	"github.com/itfy/evoting/internal/category/service"
	"go.uber.org/fx"
)

var Module = fx.Module("category.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
