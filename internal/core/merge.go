package core

import "fmt"

// ColumnKind tags a merged column with its provenance.
type ColumnKind int

const (
	KindMaster      ColumnKind = iota // Master column, unmodified
	KindSource                        // <field>_<label>
	KindMatchType                     // match_type_<label>
	KindMismatchKey                   // mismatch_key_<label>
)

func (k ColumnKind) String() string {
	switch k {
	case KindMaster:
		return "master"
	case KindSource:
		return "source"
	case KindMatchType:
		return "match_type"
	case KindMismatchKey:
		return "mismatch_key"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k ColumnKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *ColumnKind) UnmarshalText(b []byte) error {
	for c := KindMaster; c <= KindMismatchKey; c++ {
		if c.String() == string(b) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown column kind %q", b)
}

// Bookkeeping column prefixes.
const (
	MatchTypePrefix   = "match_type_"
	MismatchKeyPrefix = "mismatch_key_"
)

// ColumnInfo describes one merged column. Base and Label are recorded when
// the column is created, so no consumer ever splits a column name.
type ColumnInfo struct {
	Name  string     `json:"name"`
	Base  string     `json:"base"`            // Field name without the label suffix
	Label string     `json:"label,omitempty"` // Source label, "" for master columns
	Kind  ColumnKind `json:"kind"`
}

// IsBookkeeping reports whether the column records linkage rather than data.
func (c ColumnInfo) IsBookkeeping() bool {
	return c.Kind == KindMatchType || c.Kind == KindMismatchKey
}

// SourceColumnName qualifies a source field with its label.
func SourceColumnName(field, label string) string {
	return field + "_" + label
}

// MergedTable is the unified table of master rows and their linked records.
// Outcomes is nil until the table has been classified.
type MergedTable struct {
	Columns  []ColumnInfo `json:"columns"`
	Rows     [][]string   `json:"rows"`
	Outcomes [][]Outcome  `json:"outcomes,omitempty"`
}

// ColumnIndex returns the position of a column by name, or -1.
func (t *MergedTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// ColumnNames returns the header row.
func (t *MergedTable) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Value returns the cell at (row, name), or "".
func (t *MergedTable) Value(row int, name string) string {
	i := t.ColumnIndex(name)
	if i < 0 || row < 0 || row >= len(t.Rows) {
		return ""
	}
	return t.Rows[row][i]
}

// Merge assembles the unified table from a prepared master and one linkage
// per source, in the given order.
//
// Every master row is kept. Matched rows receive the source's fields under
// <field>_<label>; unmatched rows receive empty strings and match type "none".
// The second return value holds, per label, the records no master row consumed.
func Merge(m *Master, linkages []*Linkage) (*MergedTable, map[string][]SourceRecord) {
	cols := make([]ColumnInfo, 0, len(m.Columns)+8*len(linkages))
	for _, c := range m.Columns {
		cols = append(cols, ColumnInfo{Name: c, Base: c, Kind: KindMaster})
	}

	for _, lk := range linkages {
		label := lk.Relation.Label
		for _, f := range lk.Relation.Fields {
			cols = append(cols, ColumnInfo{Name: SourceColumnName(f, label), Base: f, Label: label, Kind: KindSource})
		}
		cols = append(cols,
			ColumnInfo{Name: MatchTypePrefix + label, Base: "match_type", Label: label, Kind: KindMatchType},
			ColumnInfo{Name: MismatchKeyPrefix + label, Base: "mismatch_key", Label: label, Kind: KindMismatchKey},
		)
	}

	rows := make([][]string, m.Len())
	for i, masterRow := range m.Rows {
		row := make([]string, 0, len(cols))
		row = append(row, masterRow...)

		for _, lk := range linkages {
			res := lk.Results[i]
			if res.Match == MatchNone {
				row = append(row, make([]string, len(lk.Relation.Fields))...)
			} else {
				row = append(row, lk.Relation.Records[res.Record]...)
			}
			row = append(row, string(res.Match), res.MismatchKey)
		}
		rows[i] = row
	}

	unmatched := make(map[string][]SourceRecord, len(linkages))
	for _, lk := range linkages {
		unmatched[lk.Relation.Label] = lk.Unmatched()
	}

	return &MergedTable{Columns: cols, Rows: rows}, unmatched
}
