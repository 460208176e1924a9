package domain

import (
	"context"
	"errors"

	perioddomain "github.com/smallbiznis/commission/internal/period/domain"
	"gorm.io/gorm"
)

type Service interface {
	perioddomain.RolloverHook

	// RollCharges carries open charges into period and raises the charges
	// due from open schedules, inside tx.
	RollCharges(ctx context.Context, tx *gorm.DB, period perioddomain.CommissionPeriod) (*RollResult, error)
	ListOpen(ctx context.Context) ([]Charge, error)
}

var ErrInvalidOrganization = errors.New("invalid_organization")
