package producer

import (
	"github.com/smallbiznis/commission/internal/producer/registry"
	"github.com/smallbiznis/commission/internal/producer/repository"
	"github.com/smallbiznis/commission/internal/producer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("producer.service",
	fx.Provide(registry.Provide),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
