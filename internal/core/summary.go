package core

import (
	"strings"
)

// SourceSummary reports linkage statistics for one source.
// Full + Partial + Unmatched always equals Total.
type SourceSummary struct {
	Label     string `json:"label"`
	Kind      string `json:"kind"`
	Total     int    `json:"total"`     // Shaped records
	Full      int    `json:"full"`      // Master rows fully matched
	Partial   int    `json:"partial"`   // Master rows partially matched
	None      int    `json:"none"`      // Master rows with no match
	Skipped   int    `json:"skipped"`   // Master rows with an invalid primary key
	Unmatched int    `json:"unmatched"` // Records never consumed
	Dropped   int    `json:"dropped"`   // Malformed records removed while shaping
	Ambiguous int    `json:"ambiguous"` // Matches chosen among several candidates
}

// Matched returns the number of consumed records.
func (s SourceSummary) Matched() int {
	return s.Full + s.Partial
}

// ColumnSummary counts cell outcomes for one merged column.
type ColumnSummary struct {
	Column ColumnInfo      `json:"column"`
	Counts map[Outcome]int `json:"counts"`
	Empty  int             `json:"empty"`
}

// Count returns the number of cells with outcome o.
func (c ColumnSummary) Count(o Outcome) int {
	return c.Counts[o]
}

// summarizeSource derives statistics from a finished linkage.
func summarizeSource(lk *Linkage) SourceSummary {
	rel := lk.Relation
	s := SourceSummary{
		Label:   rel.Label,
		Kind:    rel.Kind,
		Total:   rel.Len(),
		Dropped: len(rel.Dropped),
	}
	for _, res := range lk.Results {
		switch res.Match {
		case MatchFull:
			s.Full++
		case MatchPartial:
			s.Partial++
		default:
			s.None++
		}
		if res.Skipped {
			s.Skipped++
		}
		if res.Ambiguous() {
			s.Ambiguous++
		}
	}
	s.Unmatched = rel.Len() - lk.ConsumedCount()
	return s
}

// summarizeColumns counts outcomes per column of a classified table.
func summarizeColumns(t *MergedTable) []ColumnSummary {
	out := make([]ColumnSummary, len(t.Columns))
	for c, col := range t.Columns {
		out[c] = ColumnSummary{Column: col, Counts: make(map[Outcome]int)}
	}
	for r, row := range t.Rows {
		for c, v := range row {
			if strings.TrimSpace(v) == "" {
				out[c].Empty++
			}
			if t.Outcomes != nil {
				out[c].Counts[t.Outcomes[r][c]]++
			}
		}
	}
	return out
}
