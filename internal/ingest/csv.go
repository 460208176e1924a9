package ingest

import (
	"bytes"
	"encoding/csv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func readCSV(content []byte, cfg Config) (*Result, error) {
	decoded, err := decode(content, cfg.Encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(decoded, utf8BOM)))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, &FormatError{Format: FormatCSV, Reason: "malformed csv", Err: err}
	}

	table, err := applyHeader(rows, cfg)
	if err != nil {
		return nil, &FormatError{Format: FormatCSV, Reason: "cannot apply header", Err: err}
	}
	return &Result{Raw: []Sheet{{Name: "csv", Rows: rows}}, Data: table}, nil
}

func decode(content []byte, name string) ([]byte, error) {
	var enc encoding.Encoding
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return content, nil
	case "windows-1252", "cp1252":
		enc = charmap.Windows1252
	case "iso-8859-1", "latin1":
		enc = charmap.ISO8859_1
	default:
		return nil, &FormatError{Format: FormatCSV, Reason: "unsupported encoding " + name}
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), content)
	if err != nil {
		return nil, &FormatError{Format: FormatCSV, Reason: "cannot decode " + name, Err: err}
	}
	return out, nil
}
