package ingest

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func readHTML(content []byte, cfg Config) (*Result, error) {
	decoded, err := decode(content, cfg.Encoding)
	if err != nil {
		return nil, err
	}
	doc, err := html.Parse(bytes.NewReader(decoded))
	if err != nil {
		return nil, &FormatError{Format: FormatHTML, Reason: "cannot parse html", Err: err}
	}

	res := &Result{}
	for i, table := range findTables(doc) {
		res.Raw = append(res.Raw, Sheet{Name: fmt.Sprintf("table%d", i), Rows: tableRows(table)})
	}
	if cfg.TableIndex >= len(res.Raw) {
		return nil, &FormatError{Format: FormatHTML, Reason: fmt.Sprintf("table %d not found, document has %d", cfg.TableIndex, len(res.Raw))}
	}

	data, err := applyHeader(res.Raw[cfg.TableIndex].Rows, cfg)
	if err != nil {
		return nil, &FormatError{Format: FormatHTML, Reason: "cannot apply header", Err: err}
	}
	res.Data = data
	return res, nil
}

func findTables(n *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Table {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

// tableRows flattens a table into rows of cell text, expanding colspan.
// Rows of nested tables are not included in the outer table.
func tableRows(table *html.Node) [][]string {
	var rows [][]string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Table:
				continue
			case atom.Tr:
				rows = append(rows, rowCells(c))
			default:
				walk(c)
			}
		}
	}
	walk(table)
	return rows
}

func rowCells(tr *html.Node) []string {
	var cells []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.DataAtom != atom.Td && c.DataAtom != atom.Th) {
			continue
		}
		text := cellText(c)
		span := 1
		for _, a := range c.Attr {
			if a.Key == "colspan" {
				if n, err := strconv.Atoi(strings.TrimSpace(a.Val)); err == nil && n > 1 {
					span = n
				}
			}
		}
		cells = append(cells, text)
		for i := 1; i < span; i++ {
			cells = append(cells, "")
		}
	}
	return cells
}

func cellText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			b.WriteString(n.Data)
		case n.Type == html.ElementNode && n.DataAtom == atom.Br:
			b.WriteString("\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.FieldsFunc(b.String(), func(r rune) bool { return r == ' ' || r == '\t' || r == '\r' || r == '\u00a0' }), " ")
}
