package core

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reconcileRelations(t *testing.T, m *Master, rels ...*Relation) *Result {
	t.Helper()
	res, err := ReconcileRelations(context.Background(), m, rels, DefaultOptions())
	require.NoError(t, err)
	require.True(t, res.Complete)
	return res
}

func TestScenarioA_FullMatchValidOverride(t *testing.T) {
	m := newTestMaster(t, hdrRow("1627", "1627"))
	res := reconcileRelations(t, m, flatRelation(t, "S1", nil, []string{"1627", "1627"}))

	tbl := res.Table
	assert.Equal(t, "full", cell(t, tbl, 0, "match_type_S1"))
	assert.Equal(t, "", cell(t, tbl, 0, "mismatch_key_S1"))
	assert.Equal(t, OutcomeValid, outcome(t, tbl, 0, ColOverrideID))
	assert.Equal(t, OutcomeValid, outcome(t, tbl, 0, ColTxType))
}

func TestScenarioB_PartialMatchNamesOverride(t *testing.T) {
	m := newTestMaster(t, hdrRow("1627", "1627"))
	res := reconcileRelations(t, m, flatRelation(t, "S1", nil, []string{"1627", "1699"}))

	tbl := res.Table
	assert.Equal(t, "partial", cell(t, tbl, 0, "match_type_S1"))
	assert.Equal(t, ColOverrideID, cell(t, tbl, 0, "mismatch_key_S1"))
	assert.Equal(t, OutcomeInvalid, outcome(t, tbl, 0, "performChannel_S1"))
	assert.Equal(t, OutcomeValid, outcome(t, tbl, 0, "clientContentId_S1"))
}

func TestScenarioC_OverrideOutOfRange(t *testing.T) {
	m := newTestMaster(t, hdrRow("1627", "1699"))
	res := reconcileRelations(t, m)

	assert.Equal(t, OutcomeInvalid, outcome(t, res.Table, 0, ColOverrideID))
	assert.Equal(t, OutcomeValid, outcome(t, res.Table, 0, ColTxType))
}

func TestScenarioD_DuplicateMasterRows(t *testing.T) {
	row := hdrRow("1627", "1699")
	m := newTestMaster(t, row, row)
	res := reconcileRelations(t, m, flatRelation(t, "S1", nil, []string{"5", "5"}))

	for c := range res.Table.Columns {
		assert.NotEqual(t, OutcomeDuplicate, res.Table.Outcomes[0][c], "first row col %d", c)
		assert.Equal(t, OutcomeDuplicate, res.Table.Outcomes[1][c], "second row col %d", c)
	}
	// The rule engine alone would have failed this cell.
	assert.Equal(t, OutcomeInvalid, outcome(t, res.Table, 0, ColOverrideID))
}

func TestScenarioD_DuplicateMasterRowsWithConsumedMatch(t *testing.T) {
	row := hdrRow("1627", "1627")
	m := newTestMaster(t, row, row)
	res := reconcileRelations(t, m, flatRelation(t, "S1", nil, []string{"1627", "1627"}))

	tbl := res.Table
	// The only source record is consumed by the first row.
	assert.Equal(t, "full", cell(t, tbl, 0, "match_type_S1"))
	assert.Equal(t, "none", cell(t, tbl, 1, "match_type_S1"))

	for c, col := range tbl.Columns {
		assert.NotEqual(t, OutcomeDuplicate, tbl.Outcomes[0][c], "first row %s", col.Name)
		assert.Equal(t, OutcomeDuplicate, tbl.Outcomes[1][c], "second row %s", col.Name)
	}
}

func TestScenarioD_AllColumnsScopeSeesConsumption(t *testing.T) {
	row := hdrRow("1627", "1627")
	m := newTestMaster(t, row, row)
	opts := DefaultOptions()
	opts.DuplicateScope = DuplicateAllColumns
	res, err := ReconcileRelations(context.Background(), m,
		[]*Relation{flatRelation(t, "S1", nil, []string{"1627", "1627"})}, opts)
	require.NoError(t, err)

	assert.NotEqual(t, OutcomeDuplicate, outcome(t, res.Table, 1, ColMFLID))
}

func TestReconcile_UnmatchedMasterRowRetained(t *testing.T) {
	m := newTestMaster(t, hdrRow("1627", "1627"), hdrRow("4242", "1650"))
	a := flatRelation(t, "A", []string{"tier"}, []string{"1627", "1627", "2"})
	b := flatRelation(t, "B", []string{"tier"}, []string{"1627", "1627", "2"})

	res := reconcileRelations(t, m, a, b)
	tbl := res.Table

	require.Len(t, tbl.Rows, 2)
	for c, col := range tbl.Columns {
		switch col.Kind {
		case KindMatchType:
			assert.Equal(t, "none", tbl.Rows[1][c], col.Name)
		case KindSource, KindMismatchKey:
			assert.Equal(t, "", tbl.Rows[1][c], col.Name)
		}
	}
}

func TestReconcile_ConsistencyDominatesRules(t *testing.T) {
	m := newTestMaster(t, hdrRow("1627", "1627"))
	a := flatRelation(t, "A", []string{"tier"}, []string{"1627", "1627", "1"})
	b := flatRelation(t, "B", []string{"tier"}, []string{"1627", "1627", "2"})

	res := reconcileRelations(t, m, a, b)

	// tier_B alone would be valid (Tier 2), tier_A invalid.
	assert.Equal(t, OutcomeCSVMismatch, outcome(t, res.Table, 0, "tier_A"))
	assert.Equal(t, OutcomeCSVMismatch, outcome(t, res.Table, 0, "tier_B"))
	assert.Equal(t, OutcomeCSVMatch, outcome(t, res.Table, 0, "clientContentId_A"))
}

func TestReconcile_UnmatchedConservation(t *testing.T) {
	m := newTestMaster(t,
		hdrRow("", "1603"),
		hdrRow("1", "1601"),
		hdrRow("2", "1602"),
	)
	a := flatRelation(t, "A", nil,
		[]string{"1", "1601"},
		[]string{"2", "1999"},
		[]string{"3", "1603"},
		[]string{"1", "1601"},
	)
	events := newTestRelation(t, eventTestDef, "EV", []string{"overrideId", "day"},
		[]string{"1601", "2025-11-08"},
		[]string{"1603", "2025-11-08"},
		[]string{"1650", "2025-11-08"},
	)

	res := reconcileRelations(t, m, a, events)

	for _, rel := range []*Relation{a, events} {
		s, ok := res.Source(rel.Label)
		require.True(t, ok)
		assert.Equal(t, rel.Len(), len(res.Unmatched[rel.Label].Records)+s.Matched(), rel.Label)
		assert.Equal(t, s.Total, s.Full+s.Partial+s.Unmatched, rel.Label)
	}

	a1, _ := res.Source("A")
	assert.Equal(t, 1, a1.Full)
	assert.Equal(t, 1, a1.Partial)
	assert.Equal(t, 1, a1.Skipped)
	assert.Equal(t, 2, a1.Unmatched)

	ev, _ := res.Source("EV")
	assert.Equal(t, 2, ev.Full, "the blank-MFL row still links on override id")
}

func TestReconcile_Idempotent(t *testing.T) {
	build := func() *Result {
		m := newTestMaster(t, hdrRow("1627", "1627"), sdrRow("88", "1550"), hdrRow("1627", "1627"))
		a := flatRelation(t, "A", []string{"tier", "drmRequired"},
			[]string{"1627", "1627", "2", "false"},
			[]string{"88", "1551", "1", "true"},
		)
		b := flatRelation(t, "B", []string{"tier"}, []string{"1627", "1627", "3"})
		return reconcileRelations(t, m, a, b)
	}

	first, second := build(), build()
	assert.Equal(t, first.Table, second.Table)
	assert.Equal(t, first.Sources, second.Sources)
}

func TestReconcileRelations_DuplicateLabel(t *testing.T) {
	m := newTestMaster(t, hdrRow("1", "1601"))
	a := flatRelation(t, "A", nil, []string{"1", "1601"})
	b := flatRelation(t, "A", nil, []string{"1", "1601"})

	_, err := ReconcileRelations(context.Background(), m, []*Relation{a, b}, DefaultOptions())
	assert.ErrorIs(t, err, ErrDuplicateLabel)
}

func TestPrepareMaster_MissingColumns(t *testing.T) {
	_, err := PrepareMaster(NewTable([]string{ColMFLID, ColTxType}, nil), true)

	require.ErrorIs(t, err, ErrMissingRequiredColumn)
	var mc *MissingColumnError
	require.ErrorAs(t, err, &mc)
	assert.Equal(t, "master", mc.Source)
	assert.Equal(t, []string{ColOverrideID, ColPreKickoff}, mc.Columns)
}

func TestPrepareMaster_CanonicalizesHeaderCase(t *testing.T) {
	raw := NewTable([]string{"mfl id", "Override ID", "date time pre ko (utc)", "tx type"},
		[][]string{{"1627.0", "1627", "08/11/2025 19:30", "DAI59 1080p HDR"}})

	m, err := PrepareMaster(raw, true)
	require.NoError(t, err)
	assert.Equal(t, "1627", m.Value(0, ColMFLID))
	assert.Equal(t, "2025-11-08", m.Date(0))
}

// lineShape is a minimal pipe-separated shaper for pipeline tests.
func lineShape(r io.Reader, specs []FieldSpec, _ ShapeOptions) (*ShapedSource, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		return nil, ErrMalformedSource
	}
	header := strings.Split(sc.Text(), "|")
	if _, err := ValidateHeaders("", header, specs); err != nil {
		return nil, err
	}
	out := &ShapedSource{Fields: header}
	for sc.Scan() {
		out.Records = append(out.Records, SourceRecord(strings.Split(sc.Text(), "|")))
	}
	return out, nil
}

func registerLineSource(t *testing.T) {
	t.Helper()
	Clear()
	t.Cleanup(Clear)
	def := flatTestDef
	def.Info = SourceInfo{Key: "pipe", Label: "Pipe separated", Format: "txt", Extensions: []string{".psv"}}
	def.Shape = lineShape
	Register(def)
}

func TestReconcile_FailedSourceMarksResultIncomplete(t *testing.T) {
	registerLineSource(t)

	raw := NewTable(masterHeader, [][]string{hdrRow("1627", "1627")})
	inputs := []SourceInput{
		{Name: "good.psv", Reader: strings.NewReader("clientContentId|performChannel\n1627|1627\n")},
		{Name: "bad.psv", Reader: strings.NewReader("clientContentId|other\n1627|1627\n")},
		{Name: "notes.docx", Reader: strings.NewReader("")},
	}

	res, err := Reconcile(context.Background(), raw, inputs, DefaultOptions())

	require.Error(t, err)
	var runErr *RunError
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, []string{"bad", "notes"}, runErr.Labels())
	assert.ErrorIs(t, err, ErrMissingRequiredColumn)
	assert.ErrorIs(t, err, ErrUnknownSourceKind)

	var mc *MissingColumnError
	require.ErrorAs(t, err, &mc)
	assert.Equal(t, "bad", mc.Source)
	assert.Equal(t, []string{"performChannel"}, mc.Columns)

	require.NotNil(t, res)
	assert.False(t, res.Complete)
	assert.Equal(t, []string{"good"}, res.Labels)
	assert.Equal(t, "full", cell(t, res.Table, 0, "match_type_good"))
}

func TestReconcile_LabelsFromNamesMustBeUnique(t *testing.T) {
	registerLineSource(t)

	raw := NewTable(masterHeader, [][]string{hdrRow("1627", "1627")})
	inputs := []SourceInput{
		{Name: "feed.a.psv", Reader: strings.NewReader("clientContentId|performChannel\n")},
		{Name: "feed.b.psv", Reader: strings.NewReader("clientContentId|performChannel\n")},
	}

	_, err := Reconcile(context.Background(), raw, inputs, DefaultOptions())
	assert.True(t, errors.Is(err, ErrDuplicateLabel), "got %v", err)
}

func TestReconcile_MasterFailureIsFatal(t *testing.T) {
	raw := NewTable([]string{"MFL ID"}, nil)
	res, err := Reconcile(context.Background(), raw, nil, DefaultOptions())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrMissingRequiredColumn)
}

func TestLabelFromName(t *testing.T) {
	tests := map[string]string{
		"S1.csv":                "S1",
		"feed.2025.json":        "feed",
		"/tmp/uploads/V8.csv":   "V8",
		`C:\exports\vendor.csv`: "vendor",
	}
	for in, want := range tests {
		if got := LabelFromName(in); got != want {
			t.Errorf("LabelFromName(%q) = %q, want %q", in, got, want)
		}
	}
}
