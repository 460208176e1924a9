package deal

import (
	"github.com/smallbiznis/commission/internal/deal/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("deal.repository",
	fx.Provide(repository.Provide),
)
