package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// masterHeader is the column set used by most engine tests.
var masterHeader = []string{
	ColMFLID, ColOverrideID, ColPreKickoff, ColTxType,
	ColHEVC, ColClosedCaptions, ColMultiTrackAudio, ColAudioLang, ColBroadcastTier,
}

// hdrRow returns a master row that passes every HDR rule.
func hdrRow(mfl, override string) []string {
	return []string{mfl, override, "2025-11-08 19:30", "DAI59 1080p HDR", "HEVC", "US English", "No", "English 5.1", "Tier 2"}
}

// sdrRow returns a master row that passes every SDR rule.
func sdrRow(mfl, override string) []string {
	return []string{mfl, override, "2025-11-08 19:30", "DAI59 1080p", "", "US English", "No", "English Stereo", "Tier 1"}
}

func newTestMaster(t *testing.T, rows ...[]string) *Master {
	t.Helper()
	m, err := PrepareMaster(NewTable(masterHeader, rows), true)
	require.NoError(t, err)
	return m
}

// flatTestDef mirrors the flat export definition without importing it.
var flatTestDef = SourceDefinition{
	Info: SourceInfo{Key: "test_flat", Label: "Test flat", Format: "csv"},
	FieldSpecs: []FieldSpec{
		{Name: "clientContentId", Type: FieldID, Required: true},
		{Name: "performChannel", Type: FieldID, Required: true},
	},
	Keys: KeyPair{
		Primary:   KeyField{Master: ColMFLID, Source: "clientContentId"},
		Secondary: KeyField{Master: ColOverrideID, Source: "performChannel"},
	},
}

// eventTestDef links on override id and kickoff date.
var eventTestDef = SourceDefinition{
	Info: SourceInfo{Key: "test_events", Label: "Test events", Format: "json"},
	Keys: KeyPair{
		Primary:   KeyField{Master: ColOverrideID, Source: "overrideId"},
		Secondary: KeyField{Master: ColPreKickoff, Source: "day", Transform: KeyDatePart},
	},
}

func newTestRelation(t *testing.T, def SourceDefinition, label string, fields []string, rows ...[]string) *Relation {
	t.Helper()
	records := make([]SourceRecord, len(rows))
	for i, r := range rows {
		records[i] = SourceRecord(append([]string(nil), r...))
	}
	rel, err := NewRelation(label, def, &ShapedSource{Fields: fields, Records: records})
	require.NoError(t, err)
	return rel
}

// flatRelation builds a flat relation with clientContentId, performChannel
// and any extra columns given as "name=value" pairs per row.
func flatRelation(t *testing.T, label string, extra []string, rows ...[]string) *Relation {
	t.Helper()
	fields := append([]string{"clientContentId", "performChannel"}, extra...)
	return newTestRelation(t, flatTestDef, label, fields, rows...)
}

// cell returns the merged value of a named column.
func cell(t *testing.T, tbl *MergedTable, row int, name string) string {
	t.Helper()
	i := tbl.ColumnIndex(name)
	require.GreaterOrEqual(t, i, 0, "column %q not found in %s", name, strings.Join(tbl.ColumnNames(), ","))
	return tbl.Rows[row][i]
}

// outcome returns the classification of a named cell.
func outcome(t *testing.T, tbl *MergedTable, row int, name string) Outcome {
	t.Helper()
	i := tbl.ColumnIndex(name)
	require.GreaterOrEqual(t, i, 0, "column %q not found", name)
	return tbl.Outcomes[row][i]
}
