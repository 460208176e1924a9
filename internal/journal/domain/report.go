package domain

import (
	"encoding/json"

	"github.com/smallbiznis/commission/internal/pipeline"
	"gorm.io/datatypes"
)

// Reasons a canonical row is not materialized.
const (
	DropMissingAccount = "missing_account"
	DropUnknownClass   = "unknown_bkge_class"
)

// DroppedRow is a canonical row left out of the journal.
type DroppedRow struct {
	Index       int    `json:"index"`
	AccountCode string `json:"account_code"`
	BkgeCode    string `json:"bkge_code"`
	Reason      string `json:"reason"`
}

// IngestReport records what happened to a statement on its way into a
// journal.
type IngestReport struct {
	Rows                int                        `json:"rows"`
	LineItems           int                        `json:"line_items"`
	CoercionFailures    int                        `json:"coercion_failures"`
	CoercionCells       []pipeline.CoercionFailure `json:"coercion_cells,omitempty"`
	Dropped             []DroppedRow               `json:"dropped,omitempty"`
	ProvisionedAccounts []string                   `json:"provisioned_accounts,omitempty"`
}

// JSONMap renders the report for the journals.ingest_report column.
func (r IngestReport) JSONMap() datatypes.JSONMap {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil
	}
	out := datatypes.JSONMap{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
