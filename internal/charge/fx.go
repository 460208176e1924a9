package charge

import (
	"github.com/smallbiznis/commission/internal/charge/domain"
	"github.com/smallbiznis/commission/internal/charge/repository"
	"github.com/smallbiznis/commission/internal/charge/service"
	perioddomain "github.com/smallbiznis/commission/internal/period/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("charge.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(
		fx.Annotate(
			func(svc domain.Service) perioddomain.RolloverHook { return svc },
			fx.ResultTags(`group:"rollover_hooks"`),
		),
	),
)
