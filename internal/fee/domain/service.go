package domain

import (
	"context"
	"errors"
)

type Service interface {
	ListByJournal(ctx context.Context, journalID int64) ([]Fee, error)
	ListByPeriod(ctx context.Context, periodID int64, filter PeriodFilter) ([]Fee, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidID           = errors.New("invalid_id")
)
