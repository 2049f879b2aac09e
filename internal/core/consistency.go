package core

import (
	"strings"
)

// ConsistencyGroups returns, per base field, the positions of its source
// columns when the field appears under two or more distinct labels.
// Groups are ordered by first appearance.
func ConsistencyGroups(cols []ColumnInfo) [][]int {
	byBase := make(map[string][]int)
	labels := make(map[string]map[string]bool)
	var order []string

	for i, c := range cols {
		if c.Kind != KindSource {
			continue
		}
		if _, seen := byBase[c.Base]; !seen {
			order = append(order, c.Base)
			labels[c.Base] = make(map[string]bool)
		}
		byBase[c.Base] = append(byBase[c.Base], i)
		labels[c.Base][c.Label] = true
	}

	var groups [][]int
	for _, base := range order {
		if len(labels[base]) >= 2 {
			groups = append(groups, byBase[base])
		}
	}
	return groups
}

// DetectConsistency marks every cell of a multi-source field group.
//
// Per row, if all trimmed values in the group are equal and non-empty every
// cell is a match; if any two differ every cell is a mismatch, including the
// empty ones. A group that is entirely empty is left unmarked.
func DetectConsistency(t *MergedTable) [][]Mark {
	marks := make([][]Mark, len(t.Rows))
	groups := ConsistencyGroups(t.Columns)

	for r, row := range t.Rows {
		marks[r] = make([]Mark, len(t.Columns))
		for _, group := range groups {
			first := strings.TrimSpace(row[group[0]])
			same := true
			for _, c := range group[1:] {
				if strings.TrimSpace(row[c]) != first {
					same = false
					break
				}
			}

			var mark Mark
			switch {
			case !same:
				mark = MarkMismatch
			case first != "":
				mark = MarkMatch
			default:
				continue
			}
			for _, c := range group {
				marks[r][c] = mark
			}
		}
	}
	return marks
}

// rowKeySep cannot appear in spreadsheet text.
const rowKeySep = "\x1f"

// DetectDuplicates flags every row identical to an earlier row.
// With DuplicateMasterColumns only master columns are compared.
func DetectDuplicates(t *MergedTable, scope DuplicateScope) []bool {
	var positions []int
	for i, c := range t.Columns {
		if scope == DuplicateMasterColumns && c.Kind != KindMaster {
			continue
		}
		positions = append(positions, i)
	}

	dup := make([]bool, len(t.Rows))
	seen := make(map[string]bool, len(t.Rows))
	var b strings.Builder
	for r, row := range t.Rows {
		b.Reset()
		for _, p := range positions {
			b.WriteString(row[p])
			b.WriteString(rowKeySep)
		}
		key := b.String()
		if seen[key] {
			dup[r] = true
			continue
		}
		seen[key] = true
	}
	return dup
}
