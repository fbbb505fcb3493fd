package bundle

import (
	"github.com/itfy/evoting/internal/bundle/repository"
	"github.com/itfy/evoting/internal/bundle/service"
	"go.uber.org/fx"
)

var Module = fx.Module("bundle.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
