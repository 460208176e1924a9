package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/commission/internal/pipeline"
	"gorm.io/gorm"
)

type Service interface {
	// ResolveAccounts returns the normalized codes not yet known for the
	// producer, sorted.
	ResolveAccounts(ctx context.Context, codes []string, producerID int64) ([]string, error)
	// Reconcile provisions the accounts referenced by items that do not
	// exist yet, inside tx, and returns the codes it created.
	Reconcile(ctx context.Context, tx *gorm.DB, producerID int64, items []pipeline.CanonicalLineItem, actorID int64) ([]string, error)
	// Lookup maps normalized codes to their accounts inside tx.
	Lookup(ctx context.Context, tx *gorm.DB, producerID int64, codes []string) (map[string]ClientAccount, error)
	AssignDeal(ctx context.Context, accountID, dealID int64) (*ClientAccount, error)
	ListUnallocated(ctx context.Context, producerID *int64) ([]ClientAccount, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidProducer     = errors.New("invalid_producer")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
	ErrDealNotFound        = errors.New("deal_not_found")
)

// NormalizeCode is the canonical form of a client account code.
func NormalizeCode(code string) string {
	return pipeline.NormalizeAccountCode(code)
}
