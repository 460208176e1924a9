package commit

import (
	"github.com/smallbiznis/commission/internal/commit/repository"
	"github.com/smallbiznis/commission/internal/commit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("commit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
