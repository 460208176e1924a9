package registry

import (
	"context"
	"io"

	"github.com/smallbiznis/commission/internal/ingest"
	"github.com/smallbiznis/commission/internal/pipeline"
	"github.com/smallbiznis/commission/internal/tabular"
)

var fnsConfig = ingest.Config{
	Format:     ingest.FormatHTML,
	TableIndex: 0,
	HeaderRow:  0,
	SkipFooter: 1,
}

var fnsClasses = map[string]string{
	"TRAIL":   "MXO",
	"ADJUST":  "FNS",
	"UPFRONT": "MXI",
}

const fnsLimit = "loan_limit"

var fnsColumns = map[string]string{
	"Loan Account Number": pipeline.ColAccountCode,
	"Client":              pipeline.ColName,
	"Amount Paid":         pipeline.ColAmount,
	"GST Paid":            pipeline.ColGST,
	"Lender":              pipeline.ColProduct,
	fnsLimit:              pipeline.ColLimit,
	"Loan Balance":        pipeline.ColBalance,
}

// CleanFNS reads the first table of an FNS HTML statement. Spacer rows are
// dropped and rows without an account number are booked against account "0".
func CleanFNS(_ context.Context, src io.ReadSeeker) (*pipeline.Result, error) {
	res, err := ingest.Read(src, fnsConfig)
	if err != nil {
		return nil, err
	}
	t, err := pipeline.Run(res.Data,
		pipeline.CleanLabels(),
		pipeline.Require("Loan Account Number", "Commission Type"),
		pipeline.Filter(pipeline.Not(tabular.Row.Blank)),
		pipeline.Derive("Loan Account Number", func(r tabular.Row) string {
			if v := r.Get("Loan Account Number"); v != "" {
				return v
			}
			return "0"
		}),
		pipeline.Derive("Commission Type", func(r tabular.Row) string {
			if v := r.Get("Commission Type"); v != "Adjustments*" {
				return v
			}
			return "ADJUST"
		}),
		pipeline.Derive(fnsLimit, func(r tabular.Row) string { return r.Get("Loan Balance") }),
		pipeline.Derive(pipeline.ColBkgeCode, func(r tabular.Row) string {
			return fnsClasses[r.Get("Commission Type")]
		}),
		pipeline.CleanAccounts("Loan Account Number"),
	)
	if err != nil {
		return nil, err
	}
	return pipeline.Standardize(t, fnsColumns)
}
