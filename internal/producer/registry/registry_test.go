package registry

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/commission/internal/ingest"
	"github.com/smallbiznis/commission/internal/pipeline"
	"github.com/smallbiznis/commission/internal/producer/domain"
	"github.com/smallbiznis/commission/internal/tabular"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, order []string, sheets map[string][][]any) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			values := row
			require.NoError(t, f.SetSheetRow(name, cell, &values))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCleanUnknownProducer(t *testing.T) {
	r := NewRegistry(Builtin()...)
	_, err := r.Clean(context.Background(), "XYZ", bytes.NewReader(nil))

	var unsupported *domain.UnsupportedProducerError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "XYZ", unsupported.Code)
}

func TestRegisterLastWins(t *testing.T) {
	canned := func(code string) Handler {
		return HandlerFunc(func(context.Context, io.ReadSeeker) (*pipeline.Result, error) {
			in := tabular.New([]string{"acc"}, [][]string{{code}})
			return pipeline.Standardize(in, map[string]string{"acc": pipeline.ColAccountCode})
		})
	}
	r := NewRegistry(
		Registration{Kind: domain.KindSFG, Handler: canned("first")},
		Registration{Kind: domain.KindSFG, Handler: canned("second")},
	)
	res, err := r.Clean(context.Background(), " sfg ", bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Equal(t, "second", res.Items()[0].AccountCode)
	assert.Len(t, r.Kinds(), 1)
}

func TestCleanSFG(t *testing.T) {
	header := []any{"Loan ID", "Client", "Lender", "Broker Name",
		"Net Commission\n(ex GST)", "Net Commission GST",
		"Gross Commission (ex GST)", "Gross Commission (GST)",
		"Settlement Amount", "Loan Balance/Amount"}
	src := workbook(t,
		[]string{"Upfront Details", "Trail Details", "Clawback Details", "Summary"},
		map[string][][]any{
			"Upfront Details":  {header, {"1001.0", "Alice", "BankA", "Jim", "$1,100.00", "110.00", "1,200", "120", "500,000", "480,000"}},
			"Trail Details":    {header, {"1002", "Bob", "BankB", "Jim", "20.50", "2.05", "25", "2.5", "300000", "250000"}},
			"Clawback Details": {header, {"1003", "Carol", "BankA", "", "(50.00)", "(5.00)", "(60)", "(6)", "0", "0"}},
			"Summary":          {{"Total"}, {"1070.50"}},
		})

	res, err := NewRegistry(Builtin()...).Clean(context.Background(), "SFG", src)
	require.NoError(t, err)
	assert.Equal(t, pipeline.SchemaNames(), res.Table.Columns())

	items := res.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "1001", items[0].AccountCode)
	assert.Equal(t, "MXI", items[0].BkgeCode)
	assert.Equal(t, "BankA", items[0].Product)
	assert.Equal(t, "Jim", items[0].ExternalAdviser)
	assert.True(t, items[0].Amount.Equal(dec("1100")))
	assert.True(t, items[0].GST.Equal(dec("110")))
	assert.True(t, items[0].LenderAmount.Equal(dec("1200")))
	assert.True(t, items[0].Limit.Equal(dec("500000")))
	assert.True(t, items[0].Balance.Equal(dec("480000")))

	assert.Equal(t, "MXO", items[1].BkgeCode)
	assert.Equal(t, "MXR", items[2].BkgeCode)
	assert.True(t, items[2].Amount.Equal(dec("-50")))
	assert.Zero(t, res.Report.Failures)
}

func TestCleanSQ1(t *testing.T) {
	src := workbook(t, []string{"Sheet1"}, map[string][][]any{
		"Sheet1": {
			{"SQ1 Commission Statement"},
			{"Period", "Mar 2025"},
			{"Broker", "Acme"},
			{"Statement", "123"},
			{"Type", "Trails"},
			{"Account Number", "Borrower", "Lender", "Payment", "GST", "Commission", "Comm Rate", "Loan Amt", "Loan Bal", "Original Broker"},
			{"3001.0", "Alice", "BankA", "$100.00", "10.00", "200", "0.5", "500000", "450000", "Jim"},
			{"", "", "BankB", "50", "5", "100", "0", "0", "3002", ""},
			{"Total", "", "", "150", "15", "300", "", "", "", ""},
		},
	})

	res, err := CleanSQ1(context.Background(), src)
	require.NoError(t, err)

	items := res.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "3001", items[0].AccountCode)
	assert.Equal(t, "Alice", items[0].Name)
	assert.Equal(t, "MXO", items[0].BkgeCode)
	assert.True(t, items[0].Amount.Equal(dec("100")))
	assert.True(t, items[0].LenderGST.Equal(dec("20")))
	assert.True(t, items[0].Limit.Equal(dec("500000")))
	assert.True(t, items[0].Balance.IsZero())

	assert.Equal(t, "3002", items[1].AccountCode)
	assert.Equal(t, "3002", items[1].Name)
	assert.True(t, items[1].LenderGST.IsZero())
	assert.Equal(t, "MXO", items[1].BkgeCode)
}

func TestCleanSQ1WithoutClassLabel(t *testing.T) {
	src := workbook(t, []string{"Sheet1"}, map[string][][]any{
		"Sheet1": {
			{"SQ1 Commission Statement"}, {"a"}, {"b"}, {"c"}, {"Type", "Unknown"},
			{"Account Number", "Borrower", "GST", "Comm Rate", "Loan Bal"},
			{"1", "A", "1", "1", "0"},
			{"Total"},
		},
	})
	_, err := CleanSQ1(context.Background(), src)
	var ferr *ingest.FormatError
	require.True(t, errors.As(err, &ferr))
}

const fnsStatement = `<html><body>
<table>
<thead><tr><th>Loan Account Number</th><th>Client</th><th>Lender</th><th>Commission Type</th><th>Amount Paid</th><th>GST Paid</th><th>Loan Balance</th></tr></thead>
<tbody>
<tr><td>7001.0</td><td>Ann</td><td>BankC</td><td>TRAIL</td><td>$1,000.00</td><td>100.00</td><td>250,000</td></tr>
<tr><td></td><td></td><td></td><td></td><td></td><td></td><td></td></tr>
<tr><td></td><td>Fee adj</td><td></td><td>Adjustments*</td><td>(20.00)</td><td>(2.00)</td><td></td></tr>
<tr><td>Total</td><td></td><td></td><td></td><td>980.00</td><td>98.00</td><td></td></tr>
</tbody>
</table>
<table><tr><td>other</td></tr></table>
</body></html>`

func TestCleanFNS(t *testing.T) {
	res, err := CleanFNS(context.Background(), strings.NewReader(fnsStatement))
	require.NoError(t, err)

	items := res.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "7001", items[0].AccountCode)
	assert.Equal(t, "MXO", items[0].BkgeCode)
	assert.True(t, items[0].Amount.Equal(dec("1000")))
	assert.True(t, items[0].Limit.Equal(dec("250000")))
	assert.True(t, items[0].Balance.Equal(dec("250000")))

	assert.Equal(t, "0", items[1].AccountCode)
	assert.Equal(t, "FNS", items[1].BkgeCode)
	assert.True(t, items[1].Amount.Equal(dec("-20")))
	assert.True(t, items[1].GST.Equal(dec("-2")))
	assert.Equal(t, 2, res.Table.Len())
}

func TestCleanFNSMissingColumns(t *testing.T) {
	_, err := CleanFNS(context.Background(), strings.NewReader(`<table><tr><th>A</th></tr><tr><td>1</td></tr><tr><td>2</td></tr></table>`))
	var verr *pipeline.ValidationError
	require.True(t, errors.As(err, &verr))
}
