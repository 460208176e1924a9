package ingest

import (
	"io"

	"github.com/smallbiznis/commission/internal/tabular"
	"github.com/xuri/excelize/v2"
)

func readWorkbook(r io.Reader, cfg Config) (*Result, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &FormatError{Format: FormatWorkbook, Reason: "cannot open workbook", Err: err}
	}
	defer wb.Close()

	pattern, err := compilePattern(cfg.TabPattern)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	var parts []*tabular.Table
	for _, name := range wb.GetSheetList() {
		rows, err := wb.GetRows(name)
		if err != nil {
			return nil, &FormatError{Format: FormatWorkbook, Reason: "cannot read sheet " + name, Err: err}
		}
		res.Raw = append(res.Raw, Sheet{Name: name, Rows: rows})

		if pattern != nil && !pattern.MatchString(name) {
			continue
		}
		table, err := applyHeader(rows, cfg)
		if err != nil {
			return nil, &FormatError{Format: FormatWorkbook, Reason: "cannot apply header on " + name, Err: err}
		}
		if pattern != nil {
			sheet := make([]string, table.Len())
			for i := range sheet {
				sheet[i] = name
			}
			table = table.WithColumn(SheetColumn, sheet)
		}
		parts = append(parts, table)
	}

	if len(parts) == 0 {
		reason := "workbook has no sheets"
		if pattern != nil {
			reason = "no sheet matches " + cfg.TabPattern
		}
		return nil, &FormatError{Format: FormatWorkbook, Reason: reason}
	}
	res.Data = tabular.Concat(parts...)
	return res, nil
}
