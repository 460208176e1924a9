package registry

import (
	"context"
	"io"
	"strings"

	"github.com/smallbiznis/commission/internal/ingest"
	"github.com/smallbiznis/commission/internal/pipeline"
	"github.com/smallbiznis/commission/internal/tabular"
	"github.com/smallbiznis/commission/pkg/money"
)

var sq1Config = ingest.Config{
	Format:     ingest.FormatWorkbook,
	HeaderRow:  5,
	SkipFooter: 1,
}

// sq1ClassSheet holds the statement preamble naming the brokerage class.
const sq1ClassSheet = "Sheet1"

var sq1Classes = map[string]string{
	"Trails":  "MXO",
	"Upfront": "MXI",
}

const sq1LenderGST = "lender_gst"

var sq1Columns = map[string]string{
	"Account Number":  pipeline.ColAccountCode,
	"Borrower":        pipeline.ColName,
	"Payment":         pipeline.ColAmount,
	"GST":             pipeline.ColGST,
	"Commission":      pipeline.ColLenderAmount,
	"Original Broker": pipeline.ColExternalAdviser,
	sq1LenderGST:      pipeline.ColLenderGST,
	"Lender":          pipeline.ColProduct,
	"Loan Amt":        pipeline.ColLimit,
	"Loan Bal":        pipeline.ColBalance,
}

// CleanSQ1 reads an SQ1 statement. Rows with no borrower or account carry
// the value in the Loan Bal column instead, so both fall back to it and
// the balance is zeroed. One statement holds one brokerage class, named in
// the preamble above the header.
func CleanSQ1(_ context.Context, src io.ReadSeeker) (*pipeline.Result, error) {
	res, err := ingest.Read(src, sq1Config)
	if err != nil {
		return nil, err
	}
	class, err := sq1Class(res)
	if err != nil {
		return nil, err
	}
	t, err := pipeline.Run(res.Data,
		pipeline.CleanLabels(),
		pipeline.Require("Account Number", "Borrower", "Loan Bal", "GST", "Comm Rate"),
		pipeline.Derive("Borrower", fallback("Borrower", "Loan Bal")),
		pipeline.Derive("Account Number", fallback("Account Number", "Loan Bal")),
		pipeline.Derive("Loan Bal", func(tabular.Row) string { return "0" }),
		pipeline.Derive(sq1LenderGST, grossGST),
		pipeline.Derive(pipeline.ColBkgeCode, func(tabular.Row) string { return class }),
		pipeline.CleanAccounts("Account Number"),
	)
	if err != nil {
		return nil, err
	}
	return pipeline.Standardize(t, sq1Columns)
}

func fallback(column, alt string) func(tabular.Row) string {
	return func(r tabular.Row) string {
		if v := r.Get(column); v != "" {
			return v
		}
		return r.Get(alt)
	}
}

// grossGST derives lender GST as GST / Comm Rate; a zero or unreadable rate
// yields zero.
func grossGST(r tabular.Row) string {
	gst, ok := money.Parse(r.Get("GST"))
	if !ok {
		return "0"
	}
	rate, ok := money.Parse(r.Get("Comm Rate"))
	if !ok || rate.IsZero() {
		return "0"
	}
	return gst.DivRound(rate, 4).String()
}

// sq1Class finds the class label in the statement preamble. The label sits
// in the second column of the sixth non-blank row; any other preamble cell
// holding a known label is accepted as well.
func sq1Class(res *ingest.Result) (string, error) {
	sheet, ok := res.RawSheet(sq1ClassSheet)
	if !ok {
		if len(res.Raw) == 0 {
			return "", &ingest.FormatError{Format: ingest.FormatWorkbook, Reason: "workbook has no sheets"}
		}
		sheet = res.Raw[0]
	}

	var filled [][]string
	for _, row := range sheet.Rows {
		if strings.TrimSpace(strings.Join(row, "")) != "" {
			filled = append(filled, row)
		}
	}
	if len(filled) > 5 && len(filled[5]) > 1 {
		if class, ok := sq1Classes[strings.TrimSpace(filled[5][1])]; ok {
			return class, nil
		}
	}

	limit := min(len(sheet.Rows), sq1Config.HeaderRow+1)
	for _, row := range sheet.Rows[:limit] {
		for _, cell := range row {
			if class, ok := sq1Classes[strings.TrimSpace(cell)]; ok {
				return class, nil
			}
		}
	}
	return "", &ingest.FormatError{Format: ingest.FormatWorkbook, Reason: "statement does not name a brokerage class"}
}
