package payment

import (
	"github.com/itfy/evoting/internal/payment/repository"
	"github.com/itfy/evoting/internal/payment/service"
	"github.com/itfy/evoting/internal/payment/webhook"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(service.ProvideService),
	fx.Provide(webhook.NewService),
)
