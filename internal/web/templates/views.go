// Package templates renders the HTML pages of the reconciliation UI.
package templates

import (
	"time"

	"github.com/JonMunkholm/reconcile/internal/core"
)

// UploadView is the data behind the upload form.
type UploadView struct {
	Sources     []core.SourceInfo
	HasDatabase bool
	MaxFileSize int64
	Recent      []RunLink
}

// RunLink is one entry of the recent runs list.
type RunLink struct {
	ID         string
	MasterName string
	CreatedAt  time.Time
	Complete   bool
}

// Cell is one rendered grid cell.
type Cell struct {
	Value   string
	Outcome core.Outcome
}

// RunView is the data behind the result page.
type RunView struct {
	ID            string
	MasterName    string
	CreatedAt     time.Time
	Duration      time.Duration
	Complete      bool
	Failures      []string
	Sources       []core.SourceSummary
	Fields        []string // Distinct source field names, for the comparison picker
	MasterColumns []string // Master column names, for the comparison picker
	Field         string   // Selected source field, "" for the full grid
	MasterColumn  string   // Selected master column
	Columns       []core.ColumnInfo
	Rows          [][]Cell
}

// NewRunView builds the page model of a stored run.
// With a field selected only the chosen master column and that field's
// source columns are shown.
func NewRunView(rec *core.RunRecord, field, masterColumn string) RunView {
	v := RunView{
		ID:           rec.ID,
		MasterName:   rec.MasterName,
		CreatedAt:    rec.CreatedAt,
		Duration:     rec.Duration,
		Complete:     rec.Complete(),
		Failures:     rec.Failures,
		Field:        field,
		MasterColumn: masterColumn,
	}
	res := rec.Result
	if res == nil || res.Table == nil {
		return v
	}
	v.Sources = res.Sources
	t := res.Table

	seen := make(map[string]bool)
	for _, c := range t.Columns {
		switch c.Kind {
		case core.KindMaster:
			v.MasterColumns = append(v.MasterColumns, c.Name)
		case core.KindSource:
			if !seen[c.Base] {
				seen[c.Base] = true
				v.Fields = append(v.Fields, c.Base)
			}
		}
	}

	var keep []int
	for i, c := range t.Columns {
		if field == "" ||
			(c.Kind == core.KindMaster && c.Name == masterColumn) ||
			(c.Kind == core.KindSource && c.Base == field) {
			keep = append(keep, i)
		}
	}

	v.Columns = make([]core.ColumnInfo, len(keep))
	for j, i := range keep {
		v.Columns[j] = t.Columns[i]
	}
	v.Rows = make([][]Cell, len(t.Rows))
	for r, row := range t.Rows {
		cells := make([]Cell, len(keep))
		for j, i := range keep {
			cells[j].Value = row[i]
			if t.Outcomes != nil {
				cells[j].Outcome = t.Outcomes[r][i]
			}
		}
		v.Rows[r] = cells
	}
	return v
}
