package pipeline

import (
	"github.com/shopspring/decimal"
)

// Canonical column names.
const (
	ColAccountCode     = "account_code"
	ColName            = "name"
	ColProduct         = "product"
	ColExternalAdviser = "external_adviser"
	ColBkgeCode        = "bkge_code"
	ColAmount          = "amount"
	ColGST             = "gst"
	ColLenderAmount    = "lender_amount"
	ColLenderGST       = "lender_gst"
	ColLimit           = "limit"
	ColBalance         = "balance"
)

// ColumnType is the declared type of a canonical column.
type ColumnType int

const (
	TypeString ColumnType = iota
	TypeDecimal
)

// Column is one entry of the canonical schema.
type Column struct {
	Name string
	Type ColumnType
}

var canonical = []Column{
	{ColAccountCode, TypeString},
	{ColName, TypeString},
	{ColProduct, TypeString},
	{ColExternalAdviser, TypeString},
	{ColBkgeCode, TypeString},
	{ColAmount, TypeDecimal},
	{ColGST, TypeDecimal},
	{ColLenderAmount, TypeDecimal},
	{ColLenderGST, TypeDecimal},
	{ColLimit, TypeDecimal},
	{ColBalance, TypeDecimal},
}

// Schema returns the canonical columns in their fixed order.
func Schema() []Column {
	return append([]Column(nil), canonical...)
}

// SchemaNames returns the canonical column names in order.
func SchemaNames() []string {
	names := make([]string, len(canonical))
	for i, c := range canonical {
		names[i] = c.Name
	}
	return names
}

// CanonicalLineItem is one normalized commission line.
type CanonicalLineItem struct {
	AccountCode     string          `json:"account_code"`
	Name            string          `json:"name"`
	Product         string          `json:"product"`
	ExternalAdviser string          `json:"external_adviser"`
	BkgeCode        string          `json:"bkge_code"`
	Amount          decimal.Decimal `json:"amount"`
	GST             decimal.Decimal `json:"gst"`
	LenderAmount    decimal.Decimal `json:"lender_amount"`
	LenderGST       decimal.Decimal `json:"lender_gst"`
	Limit           decimal.Decimal `json:"limit"`
	Balance         decimal.Decimal `json:"balance"`
}
