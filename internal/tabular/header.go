package tabular

import (
	"fmt"
	"strings"
)

// FromGrid applies a header row to a raw cell grid. Rows above header are
// discarded, fully blank data rows are dropped and footer rows are trimmed
// from the end. Empty labels become "Unnamed: N" and repeated labels get a
// ".N" suffix so every column stays addressable.
func FromGrid(grid [][]string, header, footer int) (*Table, error) {
	if header < 0 || footer < 0 {
		return nil, fmt.Errorf("tabular: negative header (%d) or footer (%d)", header, footer)
	}
	if header >= len(grid) {
		return New(nil, nil), nil
	}

	width := 0
	for _, row := range grid[header:] {
		if len(row) > width {
			width = len(row)
		}
	}
	labels := Labels(fit(grid[header], width))

	var rows [][]string
	for _, row := range grid[header+1:] {
		if blank(row) {
			continue
		}
		rows = append(rows, row)
	}
	if footer >= len(rows) {
		rows = nil
	} else {
		rows = rows[:len(rows)-footer]
	}
	return New(labels, rows), nil
}

// Labels normalizes raw header cells into unique column labels.
func Labels(raw []string) []string {
	out := make([]string, len(raw))
	seen := map[string]int{}
	for i, label := range raw {
		label = strings.TrimSpace(label)
		if label == "" {
			label = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[label]; dup {
			seen[label] = n + 1
			label = fmt.Sprintf("%s.%d", label, n+1)
		} else {
			seen[label] = 0
		}
		out[i] = label
	}
	return out
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
