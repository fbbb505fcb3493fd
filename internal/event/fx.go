package event

import (
	"github.com/itfy/evoting/internal/event/repository"
	"github.com/itfy/evoting/internal/event/service"
	"go.uber.org/fx"
)

var Module = fx.Module("event.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
