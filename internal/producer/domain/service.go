package domain

import (
	"context"
	"io"

	"github.com/smallbiznis/commission/internal/pipeline"
)

type Service interface {
	GetByCode(ctx context.Context, code string) (*Producer, error)
	// ClassLookup returns brokerage class ids keyed by code for the
	// organization in ctx. The cached map is reloaded when any of codes is
	// missing from it.
	ClassLookup(ctx context.Context, codes []string) (map[string]int64, error)
	// Clean normalizes an export from the producer into canonical rows.
	Clean(ctx context.Context, code string, src io.ReadSeeker) (*pipeline.Result, error)
}
