package coupon

import (
	"github.com/itfy/evoting/internal/coupon/repository"
	"github.com/itfy/evoting/internal/coupon/service"
	"go.uber.org/fx"
)

var Module = fx.Module("coupon.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
