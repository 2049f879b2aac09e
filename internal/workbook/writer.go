package workbook

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/reconcile/internal/core"
)

// Sheet names of the output workbook.
const (
	SheetMerged          = "Merged Data"
	SheetSummary         = "Summary"
	SheetFieldSummary    = "Field Summary"
	UnmatchedSheetPrefix = "Unmatched_"
)

// maxSheetName is Excel's limit on sheet name length.
const maxSheetName = 31

// Fill colours per outcome, as ARGB-less hex.
var outcomeFills = map[core.Outcome]string{
	core.OutcomeDuplicate:   "CCE6FF",
	core.OutcomeCSVMismatch: "B32400",
	core.OutcomeInvalid:     "B32400",
	core.OutcomeCSVMatch:    "A5F5A6",
	core.OutcomeValid:       "D9F9D9",
	core.OutcomeUnvalidated: "FFFBE6",
}

// OutcomeFill returns the fill colour used for an outcome.
func OutcomeFill(o core.Outcome) string {
	return outcomeFills[o]
}

// whiteText marks outcomes whose fill is too dark for black text.
func whiteText(o core.Outcome) bool {
	return o == core.OutcomeCSVMismatch || o == core.OutcomeInvalid
}

// Write renders a result as an xlsx workbook.
func Write(w io.Writer, res *core.Result) error {
	f, err := Build(res)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Build assembles the output workbook in memory.
func Build(res *core.Result) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetMerged); err != nil {
		f.Close()
		return nil, err
	}

	b := &builder{f: f}
	steps := []func(*core.Result) error{
		b.merged,
		b.summary,
		b.fieldSummary,
		b.unmatched,
	}
	for _, step := range steps {
		if err := step(res); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

type builder struct {
	f      *excelize.File
	header int
	fills  map[core.Outcome]int
}

func (b *builder) headerStyle() (int, error) {
	if b.header != 0 {
		return b.header, nil
	}
	id, err := b.f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E7E6E6"}},
	})
	if err != nil {
		return 0, fmt.Errorf("header style: %w", err)
	}
	b.header = id
	return id, nil
}

func (b *builder) fillStyle(o core.Outcome) (int, error) {
	if id, ok := b.fills[o]; ok {
		return id, nil
	}
	style := &excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{outcomeFills[o]}},
	}
	if whiteText(o) {
		style.Font = &excelize.Font{Color: "FFFFFF"}
	}
	id, err := b.f.NewStyle(style)
	if err != nil {
		return 0, fmt.Errorf("style for %s: %w", o, err)
	}
	if b.fills == nil {
		b.fills = make(map[core.Outcome]int)
	}
	b.fills[o] = id
	return id, nil
}

// merged streams the classified table with one fill per cell outcome.
func (b *builder) merged(res *core.Result) error {
	sw, err := b.f.NewStreamWriter(SheetMerged)
	if err != nil {
		return fmt.Errorf("merged sheet: %w", err)
	}

	hs, err := b.headerStyle()
	if err != nil {
		return err
	}
	t := res.Table
	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = excelize.Cell{StyleID: hs, Value: c.Name}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for r, row := range t.Rows {
		cells := make([]any, len(row))
		for c, v := range row {
			cell := excelize.Cell{Value: v}
			if t.Outcomes != nil {
				id, err := b.fillStyle(t.Outcomes[r][c])
				if err != nil {
					return err
				}
				cell.StyleID = id
			}
			cells[c] = cell
		}
		axis, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(axis, cells); err != nil {
			return err
		}
	}
	return sw.Flush()
}

// summary writes one row per source with linkage counts.
func (b *builder) summary(res *core.Result) error {
	rows := [][]any{{"Source", "Kind", "Records", "Full", "Partial", "None", "Skipped", "Unmatched", "Dropped", "Ambiguous"}}
	for _, s := range res.Sources {
		rows = append(rows, []any{s.Label, s.Kind, s.Total, s.Full, s.Partial, s.None, s.Skipped, s.Unmatched, s.Dropped, s.Ambiguous})
	}
	for _, f := range res.Failures {
		rows = append(rows, []any{f.Source, "failed", f.Err.Error()})
	}
	return b.plainSheet(SheetSummary, rows)
}

// fieldSummary writes outcome counts per merged column.
func (b *builder) fieldSummary(res *core.Result) error {
	header := []any{"Column", "Source", "Kind"}
	for _, o := range core.AllOutcomes {
		header = append(header, o.String())
	}
	header = append(header, "empty")

	rows := [][]any{header}
	for _, cs := range res.Columns {
		row := []any{cs.Column.Name, cs.Column.Label, cs.Column.Kind.String()}
		for _, o := range core.AllOutcomes {
			row = append(row, cs.Count(o))
		}
		row = append(row, cs.Empty)
		rows = append(rows, row)
	}
	return b.plainSheet(SheetFieldSummary, rows)
}

// unmatched writes one sheet per source holding the records nothing consumed.
func (b *builder) unmatched(res *core.Result) error {
	used := map[string]bool{
		SheetMerged:       true,
		SheetSummary:      true,
		SheetFieldSummary: true,
	}
	for _, label := range res.Labels {
		set := res.Unmatched[label]
		if set == nil {
			continue
		}
		name := UnmatchedSheetName(label, used)
		used[name] = true

		rows := make([][]any, 0, len(set.Records)+1)
		rows = append(rows, toAny(set.Fields))
		for _, rec := range set.Records {
			rows = append(rows, toAny(rec))
		}
		if err := b.plainSheet(name, rows); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) plainSheet(name string, rows [][]any) error {
	if _, err := b.f.NewSheet(name); err != nil {
		return fmt.Errorf("sheet %q: %w", name, err)
	}
	hs, err := b.headerStyle()
	if err != nil {
		return err
	}
	for i, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := b.f.SetSheetRow(name, axis, &row); err != nil {
			return fmt.Errorf("sheet %q row %d: %w", name, i+1, err)
		}
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
		if err != nil {
			return err
		}
		if err := b.f.SetCellStyle(name, "A1", last, hs); err != nil {
			return err
		}
	}
	return nil
}

func toAny(vals []string) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}

// invalidSheetChars cannot appear in Excel sheet names.
var invalidSheetChars = strings.NewReplacer(
	":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_",
)

// UnmatchedSheetName returns "Unmatched_<label>" cut to Excel's 31-character
// limit. Names already in used get a numeric suffix.
func UnmatchedSheetName(label string, used map[string]bool) string {
	base := truncate(UnmatchedSheetPrefix+invalidSheetChars.Replace(label), maxSheetName)
	name := base
	for n := 2; used[name]; n++ {
		suffix := fmt.Sprintf("~%d", n)
		name = truncate(base, maxSheetName-len(suffix)) + suffix
	}
	return name
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
