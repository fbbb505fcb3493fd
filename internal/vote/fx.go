package vote

import (
	"github.com/itfy/evoting/internal/vote/repository"
	"github.com/itfy/evoting/internal/vote/service"
	"go.uber.org/fx"
)

var Module = fx.Module("vote.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
