// Package ingest reads producer exports (workbooks, CSV files and HTML
// table dumps) into tabular form. Each read yields the raw cell grids, for
// producer heuristics that inspect layout, and the header-applied table.
package ingest

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/smallbiznis/commission/internal/tabular"
)

// Format is the container format of a producer export.
type Format int

const (
	FormatWorkbook Format = iota + 1
	FormatCSV
	FormatHTML
)

func (f Format) String() string {
	switch f {
	case FormatWorkbook:
		return "workbook"
	case FormatCSV:
		return "csv"
	case FormatHTML:
		return "html"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// SheetColumn is the provenance column added when sheets are selected by
// TabPattern.
const SheetColumn = "sheet_name"

// Config describes where the data table sits inside an export.
type Config struct {
	Format Format
	// HeaderRow is the zero-based row holding column labels, counted after
	// SkipRows.
	HeaderRow int
	// SkipFooter trims trailing data rows such as totals.
	SkipFooter int
	// SkipRows drops leading rows before the header is located.
	SkipRows int
	// TabPattern selects workbook sheets whose name matches at the start.
	TabPattern string
	// TableIndex selects the HTML table.
	TableIndex int
	// Encoding names a legacy text encoding for CSV and HTML sources.
	Encoding string
}

// Sheet is one raw grid from the source.
type Sheet struct {
	Name string
	Rows [][]string
}

// Result is the outcome of reading one export.
type Result struct {
	Raw  []Sheet
	Data *tabular.Table
}

// RawSheet returns the raw grid with the given name.
func (r *Result) RawSheet(name string) (Sheet, bool) {
	for _, s := range r.Raw {
		if s.Name == name {
			return s, true
		}
	}
	return Sheet{}, false
}

// Read parses src according to cfg and rewinds src so it can be read again.
func Read(src io.ReadSeeker, cfg Config) (*Result, error) {
	if cfg.HeaderRow < 0 || cfg.SkipFooter < 0 || cfg.SkipRows < 0 || cfg.TableIndex < 0 {
		return nil, &FormatError{Format: cfg.Format, Reason: "negative offsets in config"}
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("ingest: rewind source: %w", err)
	}
	content, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("ingest: read source: %w", err)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("ingest: rewind source: %w", err)
	}

	var res *Result
	switch cfg.Format {
	case FormatWorkbook:
		res, err = readWorkbook(bytes.NewReader(content), cfg)
	case FormatCSV:
		res, err = readCSV(content, cfg)
	case FormatHTML:
		res, err = readHTML(content, cfg)
	default:
		return nil, &FormatError{Format: cfg.Format, Reason: "unsupported source format"}
	}
	if err != nil {
		return nil, err
	}
	if res.Data.Empty() {
		return nil, &FormatError{Format: cfg.Format, Reason: "data table is empty after trimming"}
	}
	return res, nil
}

// ReadFile opens path and reads it with cfg.
func ReadFile(path string, cfg Config) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f, cfg)
}

func applyHeader(rows [][]string, cfg Config) (*tabular.Table, error) {
	if cfg.SkipRows >= len(rows) {
		return tabular.New(nil, nil), nil
	}
	return tabular.FromGrid(rows[cfg.SkipRows:], cfg.HeaderRow, cfg.SkipFooter)
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(`^(?:` + pattern + `)`)
	if err != nil {
		return nil, &FormatError{Format: FormatWorkbook, Reason: fmt.Sprintf("invalid tab pattern %q", pattern), Err: err}
	}
	return re, nil
}
