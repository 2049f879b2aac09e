package core

import (
	"strings"
)

// Table is a rectangular text table with named columns.
// Every row has exactly len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]string
	index   map[string]int
}

// NewTable builds a table, padding short rows and truncating long ones.
// Column names are trimmed; the first occurrence of a repeated name wins lookups.
func NewTable(columns []string, rows [][]string) *Table {
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = strings.TrimSpace(c)
	}

	t := &Table{
		Columns: cols,
		Rows:    make([][]string, len(rows)),
		index:   make(map[string]int, len(cols)),
	}
	for i, c := range cols {
		if _, dup := t.index[c]; !dup {
			t.index[c] = i
		}
	}
	for i, row := range rows {
		t.Rows[i] = fitRow(row, len(cols))
	}
	return t
}

func fitRow(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}

// ColumnIndex returns the position of a column by exact name.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Value returns the cell at (row, column), or "" if the column does not exist.
func (t *Table) Value(row int, column string) string {
	i, ok := t.index[column]
	if !ok || row < 0 || row >= len(t.Rows) {
		return ""
	}
	return t.Rows[row][i]
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Master is the authoritative table prepared for linkage.
// Identifier columns are normalized and the timestamp's date part is derived.
// Immutable once prepared.
type Master struct {
	*Table
	dates    []string // Date part of ColPreKickoff per row, "" if unparsable
	dayFirst bool
}

// PrepareMaster validates and normalizes a raw master table.
//
// Header names matching a known master column case-insensitively are rewritten
// to the canonical spelling. Both identifier columns are normalized in place.
// Returns a *MissingColumnError if a required column is absent.
func PrepareMaster(raw *Table, dayFirst bool) (*Master, error) {
	canonical := make(map[string]string, len(MasterFieldSpecs))
	for _, spec := range MasterFieldSpecs {
		canonical[strings.ToLower(spec.Name)] = spec.Name
	}

	cols := make([]string, len(raw.Columns))
	for i, c := range raw.Columns {
		if name, ok := canonical[strings.ToLower(strings.TrimSpace(c))]; ok {
			cols[i] = name
		} else {
			cols[i] = c
		}
	}

	if _, err := ValidateHeaders("master", cols, MasterFieldSpecs); err != nil {
		return nil, err
	}

	rows := make([][]string, len(raw.Rows))
	for i, r := range raw.Rows {
		rows[i] = append([]string(nil), r...)
	}
	t := NewTable(cols, rows)

	mfl, _ := t.ColumnIndex(ColMFLID)
	ovr, _ := t.ColumnIndex(ColOverrideID)
	ko, _ := t.ColumnIndex(ColPreKickoff)

	m := &Master{Table: t, dates: make([]string, len(t.Rows)), dayFirst: dayFirst}
	for i, row := range t.Rows {
		row[mfl] = NormalizeID(row[mfl])
		row[ovr] = NormalizeID(row[ovr])
		m.dates[i] = DatePart(row[ko], dayFirst)
	}
	return m, nil
}

// Date returns the derived calendar date of a row's kickoff timestamp.
func (m *Master) Date(row int) string {
	if row < 0 || row >= len(m.dates) {
		return ""
	}
	return m.dates[row]
}

// KeyValue returns the master side of a linkage key for a row.
func (m *Master) KeyValue(row int, key KeyField) string {
	if key.Transform == KeyDatePart && key.Master == ColPreKickoff {
		return m.Date(row)
	}
	v := m.Value(row, key.Master)
	if key.Transform == KeyDatePart {
		return DatePart(v, m.dayFirst)
	}
	return NormalizeID(v)
}
