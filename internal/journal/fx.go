package journal

import (
	"github.com/smallbiznis/commission/internal/journal/repository"
	"github.com/smallbiznis/commission/internal/journal/service"
	"go.uber.org/fx"
)

var Module = fx.Module("journal.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
