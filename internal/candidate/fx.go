package candidate

import (
	"github.com/itfy/evoting/internal/candidate/repository"
	"github.com/itfy/evoting/internal/candidate/service"
	"go.uber.org/fx"
)

var Module = fx.Module("candidate.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
