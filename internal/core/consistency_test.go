package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func consistencyTable(rows ...[]string) *MergedTable {
	return &MergedTable{
		Columns: []ColumnInfo{
			masterCol(ColMFLID),
			sourceCol("tier", "A"),
			sourceCol("tier", "B"),
			sourceCol("notes", "A"),
			{Name: "match_type_A", Base: "match_type", Label: "A", Kind: KindMatchType},
			{Name: "match_type_B", Base: "match_type", Label: "B", Kind: KindMatchType},
		},
		Rows: rows,
	}
}

func TestConsistencyGroups(t *testing.T) {
	groups := ConsistencyGroups(consistencyTable().Columns)
	assert.Equal(t, [][]int{{1, 2}}, groups, "only tier appears under two labels")
}

func TestConsistencyGroups_SameLabelTwiceIsNotAGroup(t *testing.T) {
	cols := []ColumnInfo{sourceCol("tier", "A"), sourceCol("tier", "A")}
	assert.Empty(t, ConsistencyGroups(cols))
}

func TestDetectConsistency(t *testing.T) {
	tbl := consistencyTable(
		[]string{"1", "2", "2", "x", "full", "full"},
		[]string{"2", "1", "2", "x", "full", "full"},
		[]string{"3", "", "", "x", "none", "none"},
		[]string{"4", "2", "", "x", "full", "none"},
		[]string{"5", " 2 ", "2", "x", "full", "full"},
	)

	marks := DetectConsistency(tbl)

	assert.Equal(t, MarkMatch, marks[0][1])
	assert.Equal(t, MarkMatch, marks[0][2])
	assert.Equal(t, MarkMismatch, marks[1][1])
	assert.Equal(t, MarkMismatch, marks[1][2])
	assert.Equal(t, MarkNone, marks[2][1], "all empty stays unmarked")
	assert.Equal(t, MarkMismatch, marks[3][2], "empty cell in a differing group is a mismatch")
	assert.Equal(t, MarkMatch, marks[4][1], "values are trimmed")

	for r := range marks {
		assert.Equal(t, MarkNone, marks[r][0], "master column row %d", r)
		assert.Equal(t, MarkNone, marks[r][3], "single-source column row %d", r)
		assert.Equal(t, MarkNone, marks[r][4], "bookkeeping column row %d", r)
	}
}

func TestDetectDuplicates(t *testing.T) {
	tbl := consistencyTable(
		[]string{"1", "2", "2", "x", "full", "full"},
		[]string{"1", "2", "2", "x", "full", "full"},
		[]string{"1", "3", "2", "x", "full", "full"},
		[]string{"1", "2", "2", "x", "full", "full"},
	)

	assert.Equal(t, []bool{false, true, false, true}, DetectDuplicates(tbl, DuplicateAllColumns))
	assert.Equal(t, []bool{false, true, true, true}, DetectDuplicates(tbl, DuplicateMasterColumns))
}

func TestDetectDuplicates_SeparatorPreventsCollisions(t *testing.T) {
	tbl := &MergedTable{
		Columns: []ColumnInfo{masterCol("A"), masterCol("B")},
		Rows: [][]string{
			{"ab", "c"},
			{"a", "bc"},
		},
	}
	assert.Equal(t, []bool{false, false}, DetectDuplicates(tbl, DuplicateAllColumns))
}
