package domain

import (
	"context"
	"errors"
	"io"

	"github.com/shopspring/decimal"
)

type Service interface {
	Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error)
	Get(ctx context.Context, id int64) (*Journal, error)
	ListLineItems(ctx context.Context, journalID int64) ([]LineItem, error)
}

// IngestRequest carries an uploaded statement.
type IngestRequest struct {
	ProducerCode string
	Filename     string
	Source       io.ReadSeeker
	Description  string
	Reference    string
	CashAmount   *decimal.Decimal
}

// IngestResult is the created journal and its ingest report.
type IngestResult struct {
	Journal *Journal     `json:"journal"`
	Report  IngestReport `json:"report"`
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidProducer     = errors.New("invalid_producer")
	ErrMissingSource       = errors.New("missing_source")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
)
