package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLink_FullMatch(t *testing.T) {
	m := newTestMaster(t, hdrRow("1627", "1627"))
	rel := flatRelation(t, "S1", nil, []string{"1627.0", " 1627 "})

	lk := Link(m, rel)

	require.Len(t, lk.Results, 1)
	res := lk.Results[0]
	assert.Equal(t, MatchFull, res.Match)
	assert.Equal(t, 0, res.Record)
	assert.Empty(t, res.MismatchKey)
	assert.True(t, lk.Consumed[0])
}

func TestLink_PartialNamesDisagreeingKey(t *testing.T) {
	tests := []struct {
		name         string
		source       []string
		wantMismatch string
	}{
		{"secondary disagrees", []string{"1627", "1699"}, ColOverrideID},
		{"primary disagrees", []string{"9999", "1627"}, ColMFLID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMaster(t, hdrRow("1627", "1627"))
			lk := Link(m, flatRelation(t, "S1", nil, tt.source))

			res := lk.Results[0]
			assert.Equal(t, MatchPartial, res.Match)
			assert.Equal(t, tt.wantMismatch, res.MismatchKey)
			assert.Equal(t, 0, res.Record)
		})
	}
}

func TestLink_NoMatch(t *testing.T) {
	m := newTestMaster(t, hdrRow("1627", "1627"))
	lk := Link(m, flatRelation(t, "S1", nil, []string{"1", "2"}))

	res := lk.Results[0]
	assert.Equal(t, MatchNone, res.Match)
	assert.Equal(t, -1, res.Record)
	assert.False(t, res.Skipped)
	assert.False(t, lk.Consumed[0])
}

func TestLink_InvalidMasterKeySkips(t *testing.T) {
	for _, id := range []string{"", "nan", "None"} {
		m := newTestMaster(t, hdrRow(id, "1627"))
		lk := Link(m, flatRelation(t, "S1", nil, []string{"nan", "1627"}))

		res := lk.Results[0]
		assert.Equal(t, MatchNone, res.Match, "id %q", id)
		assert.True(t, res.Skipped, "id %q", id)
		assert.False(t, lk.Consumed[0], "id %q", id)
	}
}

func TestLink_FullPreferredOverEarlierPartial(t *testing.T) {
	m := newTestMaster(t, hdrRow("1627", "1627"))
	rel := flatRelation(t, "S1", nil,
		[]string{"1627", "1699"},
		[]string{"1627", "1627"},
	)

	res := Link(m, rel).Results[0]
	assert.Equal(t, MatchFull, res.Match)
	assert.Equal(t, 1, res.Record)
}

func TestLink_FirstInSourceOrderWins(t *testing.T) {
	m := newTestMaster(t, hdrRow("1627", "1627"))
	rel := flatRelation(t, "S1", []string{"tag"},
		[]string{"1627", "1627", "first"},
		[]string{"1627", "1627", "second"},
	)

	lk := Link(m, rel)
	res := lk.Results[0]
	assert.Equal(t, 0, res.Record)
	assert.Equal(t, 2, res.Candidates)
	assert.True(t, res.Ambiguous())
}

func TestLink_PartialPicksLowestPosition(t *testing.T) {
	m := newTestMaster(t, hdrRow("1627", "1627"))
	rel := flatRelation(t, "S1", nil,
		[]string{"5555", "1627"}, // secondary only
		[]string{"1627", "1699"}, // primary only
	)

	res := Link(m, rel).Results[0]
	assert.Equal(t, MatchPartial, res.Match)
	assert.Equal(t, 0, res.Record)
	assert.Equal(t, ColMFLID, res.MismatchKey)
}

func TestLink_ConsumedRowsAreNotReused(t *testing.T) {
	m := newTestMaster(t,
		hdrRow("1627", "1627"),
		hdrRow("1627", "1627"),
		hdrRow("1627", "1627"),
	)
	rel := flatRelation(t, "S1", nil,
		[]string{"1627", "1627"},
		[]string{"1627", "1650"},
	)

	lk := Link(m, rel)

	assert.Equal(t, MatchFull, lk.Results[0].Match)
	assert.Equal(t, 0, lk.Results[0].Record)
	assert.Equal(t, MatchPartial, lk.Results[1].Match)
	assert.Equal(t, 1, lk.Results[1].Record)
	assert.Equal(t, MatchNone, lk.Results[2].Match)
	assert.Empty(t, lk.Unmatched())
	assert.Equal(t, 2, lk.ConsumedCount())
}

func TestLink_CompositeDateKey(t *testing.T) {
	m := newTestMaster(t, hdrRow("1627", "1627"))
	fields := []string{"overrideId", "day"}

	full := newTestRelation(t, eventTestDef, "EV", fields, []string{"1627", "2025-11-08"})
	res := Link(m, full).Results[0]
	assert.Equal(t, MatchFull, res.Match)

	partial := newTestRelation(t, eventTestDef, "EV", fields, []string{"1627", "2025-11-09"})
	res = Link(m, partial).Results[0]
	assert.Equal(t, MatchPartial, res.Match)
	assert.Equal(t, ColPreKickoff, res.MismatchKey)
}

func TestLink_UnmatchedConservation(t *testing.T) {
	m := newTestMaster(t,
		hdrRow("1", "1601"),
		hdrRow("2", "1602"),
		hdrRow("3", "1603"),
	)
	rel := flatRelation(t, "S1", nil,
		[]string{"1", "1601"},
		[]string{"2", "9999"},
		[]string{"7", "7000"},
		[]string{"", ""},
		[]string{"3", "1603"},
	)

	lk := Link(m, rel)
	assert.Equal(t, rel.Len(), len(lk.Unmatched())+lk.ConsumedCount())
	assert.Len(t, lk.Unmatched(), 2)
}
