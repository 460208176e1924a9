// Package pipeline turns producer tables into the canonical line-item
// schema. Steps are pure functions over tabular.Table and compose in any
// order a producer needs; Standardize is the terminal step.
package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/smallbiznis/commission/internal/tabular"
)

// Step transforms a table into a new table.
type Step func(*tabular.Table) (*tabular.Table, error)

// Predicate selects rows.
type Predicate func(tabular.Row) bool

// Run applies steps in order. The input must be a non-empty table.
func Run(t *tabular.Table, steps ...Step) (*tabular.Table, error) {
	if t == nil || t.Empty() {
		return nil, &ValidationError{Step: "run", Reason: "input table is empty"}
	}
	return Compose(steps...)(t)
}

// Compose chains steps into one.
func Compose(steps ...Step) Step {
	return func(t *tabular.Table) (*tabular.Table, error) {
		var err error
		for _, step := range steps {
			if t, err = step(t); err != nil {
				return nil, err
			}
		}
		return t, nil
	}
}

// Rename relabels columns found in mapping. Unmapped columns keep their label.
func Rename(mapping map[string]string) Step {
	return func(t *tabular.Table) (*tabular.Table, error) {
		labels := t.Columns()
		for i, l := range labels {
			if to, ok := mapping[l]; ok {
				labels[i] = to
			}
		}
		return t.WithColumns(labels)
	}
}

var spaces = regexp.MustCompile(`\s+`)

// CleanLabels folds line breaks and runs of whitespace in column labels into
// single spaces.
func CleanLabels() Step {
	return func(t *tabular.Table) (*tabular.Table, error) {
		labels := t.Columns()
		for i, l := range labels {
			labels[i] = strings.TrimSpace(spaces.ReplaceAllString(l, " "))
		}
		return t.WithColumns(labels)
	}
}

// Filter keeps the rows matching keep.
func Filter(keep Predicate) Step {
	return func(t *tabular.Table) (*tabular.Table, error) {
		return t.Where(keep), nil
	}
}

// ForwardFill copies src into dst and fills empty dst cells with the last
// non-empty value above them. With a predicate, only matching rows are
// copied from src before the fill; other rows keep their dst value.
func ForwardFill(src, dst string, where Predicate) Step {
	if dst == "" {
		dst = src
	}
	return func(t *tabular.Table) (*tabular.Table, error) {
		if !t.Has(src) {
			return nil, &ValidationError{Step: "forward_fill", Reason: fmt.Sprintf("column %q not found", src)}
		}
		values := make([]string, t.Len())
		for i := range values {
			row := t.Row(i)
			switch {
			case where == nil || where(row):
				values[i] = row.Get(src)
			default:
				values[i] = row.Get(dst)
			}
		}
		last := ""
		for i, v := range values {
			if v == "" {
				values[i] = last
				continue
			}
			last = v
		}
		return t.WithColumn(dst, values), nil
	}
}

// DropColumns removes every column whose label matches pattern at the start.
func DropColumns(pattern string) Step {
	re := regexp.MustCompile(`^(?:` + pattern + `)`)
	return func(t *tabular.Table) (*tabular.Table, error) {
		var keep []string
		for _, c := range t.Columns() {
			if !re.MatchString(c) {
				keep = append(keep, c)
			}
		}
		return t.Select(keep), nil
	}
}

// Derive sets column to fn(row) for every row.
func Derive(column string, fn func(tabular.Row) string) Step {
	return func(t *tabular.Table) (*tabular.Table, error) {
		values := make([]string, t.Len())
		for i := range values {
			values[i] = fn(t.Row(i))
		}
		return t.WithColumn(column, values), nil
	}
}

// CleanAccounts normalizes the account code column with NormalizeAccountCode.
func CleanAccounts(column string) Step {
	return func(t *tabular.Table) (*tabular.Table, error) {
		if !t.Has(column) {
			return t, nil
		}
		values := t.Column(column)
		for i, v := range values {
			values[i] = NormalizeAccountCode(v)
		}
		return t.WithColumn(column, values), nil
	}
}

var floatArtifact = regexp.MustCompile(`^(-?\d+)\.0+$`)

// NormalizeAccountCode trims the code and removes a trailing ".0" left by
// spreadsheet float formatting, so "1234.0" and "1234" are the same account.
func NormalizeAccountCode(code string) string {
	code = strings.TrimSpace(code)
	if m := floatArtifact.FindStringSubmatch(code); m != nil {
		return m[1]
	}
	return code
}

// Not negates p.
func Not(p Predicate) Predicate {
	return func(r tabular.Row) bool { return !p(r) }
}

// Require fails when any of columns is absent.
func Require(columns ...string) Step {
	return func(t *tabular.Table) (*tabular.Table, error) {
		var missing []string
		for _, c := range columns {
			if !t.Has(c) {
				missing = append(missing, c)
			}
		}
		if len(missing) > 0 {
			return nil, &ValidationError{Step: "require", Reason: "missing columns " + strings.Join(missing, ", ")}
		}
		return t, nil
	}
}
