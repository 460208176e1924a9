package registry

import (
	"context"
	"io"

	"github.com/smallbiznis/commission/internal/ingest"
	"github.com/smallbiznis/commission/internal/pipeline"
	"github.com/smallbiznis/commission/internal/tabular"
)

var sfgConfig = ingest.Config{
	Format:     ingest.FormatWorkbook,
	HeaderRow:  0,
	TabPattern: `(Upfront|Clawback|Trail) Details`,
}

var sfgClasses = map[string]string{
	"Upfront Details":  "MXI",
	"Trail Details":    "MXO",
	"Clawback Details": "MXR",
}

var sfgColumns = map[string]string{
	"Loan ID":                   pipeline.ColAccountCode,
	"Client":                    pipeline.ColName,
	"Net Commission (ex GST)":   pipeline.ColAmount,
	"Gross Commission (ex GST)": pipeline.ColLenderAmount,
	"Gross Commission (GST)":    pipeline.ColLenderGST,
	"Net Commission GST":        pipeline.ColGST,
	"Broker Name":               pipeline.ColExternalAdviser,
	"Lender":                    pipeline.ColProduct,
	"Settlement Amount":         pipeline.ColLimit,
	"Loan Balance/Amount":       pipeline.ColBalance,
}

// CleanSFG reads the upfront, trail and clawback tabs of an SFG workbook.
// The brokerage class comes from the tab each row was read from.
func CleanSFG(_ context.Context, src io.ReadSeeker) (*pipeline.Result, error) {
	res, err := ingest.Read(src, sfgConfig)
	if err != nil {
		return nil, err
	}
	t, err := pipeline.Run(res.Data,
		pipeline.CleanLabels(),
		pipeline.Require("Loan ID"),
		pipeline.Derive(pipeline.ColBkgeCode, func(r tabular.Row) string {
			return sfgClasses[r.Get(ingest.SheetColumn)]
		}),
		pipeline.CleanAccounts("Loan ID"),
	)
	if err != nil {
		return nil, err
	}
	return pipeline.Standardize(t, sfgColumns)
}
