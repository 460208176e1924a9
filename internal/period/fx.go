package period

import (
	"github.com/smallbiznis/commission/internal/period/repository"
	"github.com/smallbiznis/commission/internal/period/service"
	"go.uber.org/fx"
)

var Module = fx.Module("period.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
