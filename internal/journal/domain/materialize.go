package domain

import (
	"github.com/smallbiznis/commission/internal/pipeline"
)

// Lookups resolve canonical codes to stored ids. Both maps are built once
// per ingest.
type Lookups struct {
	Accounts map[string]int64
	Classes  map[string]int64
}

// Materialize binds canonical rows to accounts and brokerage classes. Rows
// whose account or class cannot be resolved are returned as dropped. The
// returned line items carry no ids or journal reference.
func Materialize(items []pipeline.CanonicalLineItem, lookups Lookups) ([]LineItem, []DroppedRow) {
	rows := make([]LineItem, 0, len(items))
	var dropped []DroppedRow
	for i, item := range items {
		code := pipeline.NormalizeAccountCode(item.AccountCode)
		accountID, ok := lookups.Accounts[code]
		if !ok {
			dropped = append(dropped, DroppedRow{Index: i, AccountCode: code, BkgeCode: item.BkgeCode, Reason: DropMissingAccount})
			continue
		}
		classID, ok := lookups.Classes[item.BkgeCode]
		if !ok {
			dropped = append(dropped, DroppedRow{Index: i, AccountCode: code, BkgeCode: item.BkgeCode, Reason: DropUnknownClass})
			continue
		}
		rows = append(rows, LineItem{
			Position:        i,
			ClientAccountID: accountID,
			BkgeClassID:     classID,
			Product:         item.Product,
			ExternalAdviser: item.ExternalAdviser,
			Details:         item.Name,
			Amount:          item.Amount,
			GST:             item.GST,
			LenderAmount:    item.LenderAmount,
			LenderGST:       item.LenderGST,
			Balance:         item.Balance,
			Limit:           item.Limit,
		})
	}
	return rows, dropped
}
