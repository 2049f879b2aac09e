package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/JonMunkholm/reconcile/internal/core"
)

// renderTable writes rows as an aligned text table.
func renderTable(w io.Writer, headers []string, rows [][]string) error {
	table := tablewriter.NewTable(w)
	table.Header(toAny(headers)...)
	for _, row := range rows {
		if err := table.Append(toAny(row)...); err != nil {
			return err
		}
	}
	return table.Render()
}

func toAny(vals []string) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}

// printRun writes the per-source summary and any failures of a run.
func printRun(w io.Writer, rec *core.RunRecord, out string) error {
	res := rec.Result
	fmt.Fprintf(w, "Run %s: %d master rows, %d sources, %d ms\n\n",
		rec.ID, len(res.Table.Rows), len(res.Labels), rec.Duration.Milliseconds())

	headers := []string{"Source", "Kind", "Records", "Full", "Partial", "None", "Skipped", "Unmatched", "Dropped", "Ambiguous"}
	rows := make([][]string, len(res.Sources))
	for i, s := range res.Sources {
		rows[i] = []string{s.Label, s.Kind}
		for _, n := range []int{s.Total, s.Full, s.Partial, s.None, s.Skipped, s.Unmatched, s.Dropped, s.Ambiguous} {
			rows[i] = append(rows[i], strconv.Itoa(n))
		}
	}
	if err := renderTable(w, headers, rows); err != nil {
		return err
	}

	if len(rec.Failures) > 0 {
		fmt.Fprintln(w, "\nSources not reconciled:")
		for _, f := range rec.Failures {
			fmt.Fprintf(w, "  - %s\n", f)
		}
	}
	fmt.Fprintf(w, "\nWorkbook written to %s\n", out)
	return nil
}
