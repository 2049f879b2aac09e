package core

// ClassifyTable fills t.Outcomes for every cell.
//
// Must run before Reorder while row i of t is still master row i of m.
// Duplicate rows dominate, then cross-source consistency, then the rule engine.
// Linkage consumes source records, so a repeated master row never receives
// the same source cells as its first occurrence; the default scope compares
// master columns only.
func ClassifyTable(t *MergedTable, m *Master, opts Options) {
	scope := opts.DuplicateScope
	if scope == "" {
		scope = DuplicateMasterColumns
	}

	dup := DetectDuplicates(t, scope)
	marks := DetectConsistency(t)

	t.Outcomes = make([][]Outcome, len(t.Rows))
	for r, row := range t.Rows {
		rc := NewRowContext(m, r, opts.DayFirst)
		out := make([]Outcome, len(t.Columns))
		for c, col := range t.Columns {
			if dup[r] {
				out[c] = OutcomeDuplicate
				continue
			}
			out[c] = Resolve(false, marks[r][c], Classify(col, row[c], rc))
		}
		t.Outcomes[r] = out
	}
}
