package core

import (
	"sort"
	"strings"
)

// ReorderColumns returns the presentation order of cols as positions.
//
// Master columns come first in their original order. Source columns follow,
// grouped by base field (case-insensitive, ties broken by exact spelling)
// and sorted by full name within a group. Bookkeeping columns come last,
// sorted by name. The result does not depend on source ingestion order.
func ReorderColumns(cols []ColumnInfo) []int {
	var master, source, bookkeeping []int
	for i, c := range cols {
		switch {
		case c.Kind == KindMaster:
			master = append(master, i)
		case c.IsBookkeeping():
			bookkeeping = append(bookkeeping, i)
		default:
			source = append(source, i)
		}
	}

	sort.SliceStable(source, func(a, b int) bool {
		ca, cb := cols[source[a]], cols[source[b]]
		la, lb := strings.ToLower(ca.Base), strings.ToLower(cb.Base)
		if la != lb {
			return la < lb
		}
		if ca.Base != cb.Base {
			return ca.Base < cb.Base
		}
		return ca.Name < cb.Name
	})
	sort.SliceStable(bookkeeping, func(a, b int) bool {
		return cols[bookkeeping[a]].Name < cols[bookkeeping[b]].Name
	})

	perm := make([]int, 0, len(cols))
	perm = append(perm, master...)
	perm = append(perm, source...)
	return append(perm, bookkeeping...)
}

// Reorder rearranges columns, rows and outcomes into presentation order.
// The table is modified in place and returned.
func Reorder(t *MergedTable) *MergedTable {
	perm := ReorderColumns(t.Columns)

	cols := make([]ColumnInfo, len(perm))
	for i, p := range perm {
		cols[i] = t.Columns[p]
	}
	t.Columns = cols

	for r, row := range t.Rows {
		out := make([]string, len(perm))
		for i, p := range perm {
			out[i] = row[p]
		}
		t.Rows[r] = out
	}

	for r, outcomes := range t.Outcomes {
		out := make([]Outcome, len(perm))
		for i, p := range perm {
			out[i] = outcomes[p]
		}
		t.Outcomes[r] = out
	}
	return t
}
