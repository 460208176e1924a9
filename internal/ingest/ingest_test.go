package ingest

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, sheets map[string][][]any, order []string) []byte {
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
	return buf.Bytes()
}

func TestReadWorkbookConcatenatesMatchingSheets(t *testing.T) {
	content := buildWorkbook(t, map[string][][]any{
		"Upfront Details": {{"Loan ID", "Client"}, {"100", "Alice"}},
		"Trail Details":   {{"Loan ID", "Client"}, {"101", "Bob"}, {"102", "Carol"}},
		"Summary":         {{"Total"}, {"3"}},
	}, []string{"Upfront Details", "Trail Details", "Summary"})

	src := bytes.NewReader(content)
	res, err := Read(src, Config{Format: FormatWorkbook, TabPattern: `(Upfront|Clawback|Trail) Details`})
	require.NoError(t, err)

	assert.Len(t, res.Raw, 3)
	assert.Equal(t, []string{"Loan ID", "Client", SheetColumn}, res.Data.Columns())
	assert.Equal(t, []string{"100", "101", "102"}, res.Data.Column("Loan ID"))
	assert.Equal(t, []string{"Upfront Details", "Trail Details", "Trail Details"}, res.Data.Column(SheetColumn))

	pos, err := src.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pos)
}

func TestReadWorkbookNoMatchingSheet(t *testing.T) {
	content := buildWorkbook(t, map[string][][]any{
		"Summary": {{"Total"}, {"3"}},
	}, []string{"Summary"})

	_, err := Read(bytes.NewReader(content), Config{Format: FormatWorkbook, TabPattern: `Trail Details`})
	var fe *FormatError
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, fe.Reason, "no sheet matches")
}

func TestReadWorkbookHeaderAndFooter(t *testing.T) {
	content := buildWorkbook(t, map[string][][]any{
		"Sheet": {
			{"Statement"},
			{"Period", "Trails"},
			{"Account Number", "Payment"},
			{"A1", "$10.00"},
			{"A2", "$20.00"},
			{"Total", "$30.00"},
		},
	}, []string{"Sheet"})

	res, err := Read(bytes.NewReader(content), Config{Format: FormatWorkbook, HeaderRow: 2, SkipFooter: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2"}, res.Data.Column("Account Number"))
	assert.False(t, res.Data.Has(SheetColumn))

	raw, ok := res.RawSheet("Sheet")
	require.True(t, ok)
	assert.Equal(t, "Trails", raw.Rows[1][1])
}

func TestReadCSV(t *testing.T) {
	body := "Exported by system\nAccount,Amount\n100,\"$1,000.00\"\n101,50\nTotal,\"$1,050.00\"\n"
	res, err := Read(strings.NewReader(body), Config{Format: FormatCSV, SkipRows: 1, SkipFooter: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"100", "101"}, res.Data.Column("Account"))
	assert.Equal(t, []string{"$1,000.00", "50"}, res.Data.Column("Amount"))
	assert.Len(t, res.Raw[0].Rows, 5)
}

func TestReadCSVLegacyEncoding(t *testing.T) {
	body := []byte("Client,Amount\nRen\xe9e,10\n")
	res, err := Read(bytes.NewReader(body), Config{Format: FormatCSV, Encoding: "windows-1252"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Renée"}, res.Data.Column("Client"))
}

func TestReadCSVEmptyAfterTrim(t *testing.T) {
	_, err := Read(strings.NewReader("a,b\n1,2\n"), Config{Format: FormatCSV, SkipFooter: 1})
	var fe *FormatError
	assert.True(t, errors.As(err, &fe))
}

const fnsHTML = `<html><body>
<table><tr><td>header junk</td></tr></table>
<table>
<thead><tr><th>Loan Account Number</th><th>Client</th><th>Amount<br>Paid</th></tr></thead>
<tbody>
<tr><td>5001</td><td>Dan&nbsp;Smith</td><td>$100.00</td></tr>
<tr><td></td><td>Eve</td><td>$5.00</td></tr>
<tr><td colspan="2">Total</td><td>$105.00</td></tr>
</tbody></table></body></html>`

func TestReadHTML(t *testing.T) {
	res, err := Read(strings.NewReader(fnsHTML), Config{Format: FormatHTML, TableIndex: 1, SkipFooter: 1})
	require.NoError(t, err)

	assert.Len(t, res.Raw, 2)
	assert.Equal(t, []string{"Loan Account Number", "Client", "Amount\nPaid"}, res.Data.Columns())
	assert.Equal(t, []string{"5001", ""}, res.Data.Column("Loan Account Number"))
	assert.Equal(t, []string{"Dan Smith", "Eve"}, res.Data.Column("Client"))
	assert.Equal(t, []string{"Total", "", "$105.00"}, res.Raw[1].Rows[3])
}

func TestReadHTMLMissingTable(t *testing.T) {
	_, err := Read(strings.NewReader(fnsHTML), Config{Format: FormatHTML, TableIndex: 5})
	var fe *FormatError
	assert.True(t, errors.As(err, &fe))
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0o600))

	res, err := ReadFile(path, Config{Format: FormatCSV})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Data.Len())
}

func TestReadUnsupportedFormat(t *testing.T) {
	_, err := Read(strings.NewReader("x"), Config{})
	var fe *FormatError
	assert.True(t, errors.As(err, &fe))
}
