package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/reconcile/internal/core"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func sampleRun() RunView {
	return RunView{
		ID:            "run 1",
		MasterName:    "schedule <week 45>.xlsx",
		CreatedAt:     time.Date(2025, 11, 8, 19, 30, 0, 0, time.UTC),
		Duration:      1500 * time.Millisecond,
		Complete:      true,
		Fields:        []string{"performChannel", "spotLength"},
		MasterColumns: []string{"HOUSE NUMBER", "MFL ID"},
		Sources: []core.SourceSummary{
			{Label: "S1", Kind: "flat_export", Total: 4, Full: 2, Partial: 1, None: 1, Unmatched: 1},
		},
		Columns: []core.ColumnInfo{
			{Name: "HOUSE NUMBER", Base: "HOUSE NUMBER", Kind: core.KindMaster},
			{Name: "performChannel_S1", Base: "performChannel", Label: "S1", Kind: core.KindSource},
		},
		Rows: [][]Cell{
			{{Value: "1627", Outcome: core.OutcomeDuplicate}, {Value: "A&E", Outcome: core.OutcomeCSVMatch}},
			{{Value: "1628", Outcome: core.OutcomeUnvalidated}, {Value: "<b>", Outcome: core.OutcomeCSVMismatch}},
		},
	}
}

func TestErrorAlert(t *testing.T) {
	body := renderString(t, ErrorAlert("bad <file>", "Upload a CSV.", "FILE004"))

	assert.True(t, strings.HasPrefix(body, `<div class="alert" role="alert">`))
	assert.Contains(t, body, "<strong>bad &lt;file&gt;</strong>")
	assert.Contains(t, body, "Upload a CSV.")
	assert.Contains(t, body, "(Code: FILE004)")
	assert.NotContains(t, body, "<file>")
}

func TestUploadPage_MasterRequiredWithoutDatabase(t *testing.T) {
	v := UploadView{
		Sources: []core.SourceInfo{
			{Key: "flat_export", Label: "Flat export (CSV)", Extensions: []string{".csv"}},
			{Key: "traffic", Label: "Traffic log", Extensions: []string{".xlsx", ".xls"}},
		},
		MaxFileSize: 50 << 20,
	}

	body := renderString(t, UploadPage(v))
	assert.True(t, strings.HasPrefix(body, "<!doctype html>"))
	assert.Contains(t, body, `name="master" accept=".xlsx,.xlsm,.csv" required>`)
	assert.Contains(t, body, `accept=".csv,.xlsx,.xls"`)
	assert.Contains(t, body, "Each file may be up to 50 MB.")
	assert.Contains(t, body, "<li>Traffic log <code>.xlsx .xls</code></li>")
	assert.NotContains(t, body, "Recent runs")

	v.HasDatabase = true
	body = renderString(t, UploadPage(v))
	assert.Contains(t, body, `name="master" accept=".xlsx,.xlsm,.csv">`)
	assert.Contains(t, body, "Leave empty to read the schedule from the database.")
}

func TestUploadPage_RecentRuns(t *testing.T) {
	v := UploadView{Recent: []RunLink{
		{ID: "a/b", MasterName: "one.csv", CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), Complete: true},
		{ID: "c", MasterName: "two.csv", CreatedAt: time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)},
	}}

	body := renderString(t, UploadPage(v))
	assert.Contains(t, body, "<h2>Recent runs</h2>")
	assert.Contains(t, body, `<a href="/runs/a%2Fb">one.csv</a> 2025-01-02 03:04:05`)
	assert.Equal(t, 1, strings.Count(body, "<strong>incomplete</strong>"))
}

func TestRunPage(t *testing.T) {
	body := renderString(t, RunPage(sampleRun()))

	assert.Contains(t, body, "<title>Run run 1</title>")
	assert.Contains(t, body, "<h1>schedule &lt;week 45&gt;.xlsx</h1>")
	assert.Contains(t, body, "Run run 1, 2025-11-08 19:30:00, 1500 ms")
	assert.Contains(t, body, `href="/api/runs/run%201/workbook"`)
	assert.Contains(t, body, "<tr><td>S1</td><td>flat_export</td><td>4</td><td>2</td><td>1</td><td>1</td><td>1</td><td>0</td><td>0</td></tr>")
	assert.NotContains(t, body, "Incomplete run")
}

func TestRunPage_IncompleteListsFailures(t *testing.T) {
	v := sampleRun()
	v.Complete = false
	v.Failures = []string{"S2: read <broken>.csv"}

	body := renderString(t, RunPage(v))
	assert.Contains(t, body, "<strong>Incomplete run.</strong>")
	assert.Contains(t, body, "<li>S2: read &lt;broken&gt;.csv</li>")
}

func TestComparePicker_MarksSelection(t *testing.T) {
	v := sampleRun()
	v.Field = "spotLength"
	v.MasterColumn = "MFL ID"

	body := renderString(t, RunPage(v))
	assert.Contains(t, body, `<form method="get" action="/runs/run%201">`)
	assert.Contains(t, body, `<option value="spotLength" selected>spotLength</option>`)
	assert.Contains(t, body, `<option value="performChannel">performChannel</option>`)
	assert.Contains(t, body, `<option value="MFL ID" selected>MFL ID</option>`)
	assert.Contains(t, body, `<option value="HOUSE NUMBER">HOUSE NUMBER</option>`)
}

func TestComparisonGrid(t *testing.T) {
	body := renderString(t, ComparisonGrid(sampleRun()))

	assert.Contains(t, body, "<tr><th>HOUSE NUMBER</th><th>performChannel_S1</th></tr>")
	assert.Contains(t, body, `<td class="o-duplicate">1627</td>`)
	assert.Contains(t, body, `<td class="o-csv-match">A&amp;E</td>`)
	assert.Contains(t, body, `<td class="o-unvalidated">1628</td>`)
	assert.Contains(t, body, `<td class="o-csv-mismatch">&lt;b&gt;</td>`)
}

func TestRunPage_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := RunPage(sampleRun()).Render(ctx, &buf)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, buf.Len())
}
