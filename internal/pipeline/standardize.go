package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/commission/internal/tabular"
	"github.com/smallbiznis/commission/pkg/money"
)

// maxReportedCells caps the cells listed in a CoercionReport.
const maxReportedCells = 50

// CoercionFailure is one decimal cell that could not be parsed and was
// replaced with zero.
type CoercionFailure struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
	Value  string `json:"value"`
}

// CoercionReport summarizes values replaced during standardization.
type CoercionReport struct {
	Failures int               `json:"failures"`
	Cells    []CoercionFailure `json:"cells,omitempty"`
}

func (r *CoercionReport) add(row int, column, value string) {
	r.Failures++
	if len(r.Cells) < maxReportedCells {
		r.Cells = append(r.Cells, CoercionFailure{Row: row, Column: column, Value: value})
	}
}

// Result is the output of Standardize: the canonical table, its typed rows,
// and the coercion report.
type Result struct {
	Table  *tabular.Table
	Report CoercionReport
	items  []CanonicalLineItem
}

// Items returns the typed line items in table order.
func (r *Result) Items() []CanonicalLineItem {
	return append([]CanonicalLineItem(nil), r.items...)
}

// Standardize renames source columns to canonical names, drops everything
// outside the schema, injects missing columns, and coerces every cell to the
// declared type. Decimal cells lose their currency decoration; cells that
// still fail to parse become zero and are counted in the report.
func Standardize(t *tabular.Table, mapping map[string]string) (*Result, error) {
	if t == nil || t.Empty() {
		return nil, &ValidationError{Step: "standardize", Reason: "input table is empty"}
	}
	if err := checkMapping(mapping); err != nil {
		return nil, err
	}

	renamed, err := Rename(mapping)(t)
	if err != nil {
		return nil, &ValidationError{Step: "standardize", Reason: err.Error()}
	}
	selected := renamed.Select(SchemaNames())

	res := &Result{}
	rows := selected.Rows()
	res.items = make([]CanonicalLineItem, len(rows))
	for i, row := range rows {
		dec := make(map[string]decimal.Decimal, len(canonical))
		for j, col := range canonical {
			raw := strings.TrimSpace(row[j])
			switch col.Type {
			case TypeDecimal:
				d, ok := money.Parse(raw)
				if !ok {
					res.Report.add(i, col.Name, raw)
				}
				dec[col.Name] = d
				row[j] = d.String()
			default:
				row[j] = coerceString(raw)
			}
		}
		res.items[i] = CanonicalLineItem{
			AccountCode:     NormalizeAccountCode(row[0]),
			Name:            row[1],
			Product:         row[2],
			ExternalAdviser: row[3],
			BkgeCode:        row[4],
			Amount:          dec[ColAmount],
			GST:             dec[ColGST],
			LenderAmount:    dec[ColLenderAmount],
			LenderGST:       dec[ColLenderGST],
			Limit:           dec[ColLimit],
			Balance:         dec[ColBalance],
		}
		row[0] = res.items[i].AccountCode
	}
	res.Table = tabular.New(SchemaNames(), rows)
	return res, nil
}

// coerceString strips currency decoration from values that are numbers
// once decorated, such as "1,234" account codes. Free text is kept.
func coerceString(raw string) string {
	if !strings.ContainsAny(raw, "$,") {
		return raw
	}
	stripped := money.StripDecoration(raw)
	if _, ok := money.Parse(stripped); ok && stripped != "" {
		return stripped
	}
	return raw
}

func checkMapping(mapping map[string]string) error {
	known := make(map[string]bool, len(canonical))
	for _, c := range canonical {
		known[c.Name] = true
	}
	sources := make([]string, 0, len(mapping))
	for src := range mapping {
		sources = append(sources, src)
	}
	sort.Strings(sources)
	targets := map[string]string{}
	for _, src := range sources {
		dst := mapping[src]
		if !known[dst] {
			continue
		}
		if prev, dup := targets[dst]; dup {
			return &ValidationError{
				Step:   "standardize",
				Reason: fmt.Sprintf("columns %q and %q both map to %q", prev, src, dst),
			}
		}
		targets[dst] = src
	}
	return nil
}
