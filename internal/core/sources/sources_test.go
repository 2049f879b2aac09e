package sources

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/reconcile/internal/core"
)

func shape(t *testing.T, key, label, input string) (*core.Relation, error) {
	t.Helper()
	def, ok := core.Get(key)
	require.True(t, ok, "definition %s not registered", key)
	return core.Shape(def, label, strings.NewReader(input), core.ShapeOptions{ExcludedColumns: core.DefaultExcludedColumns})
}

func TestRegistered(t *testing.T) {
	flat, ok := core.ForFile("exports/V8.CSV")
	require.True(t, ok)
	assert.Equal(t, FlatExportKey, flat.Info.Key)

	events, ok := core.ForFile("feed.json")
	require.True(t, ok)
	assert.Equal(t, EventFeedKey, events.Info.Key)

	_, ok = core.ForFile("schedule.pdf")
	assert.False(t, ok)
}

func TestShapeFlat(t *testing.T) {
	input := "\ufeffClientContentId,performChannel,tier,Day,Source,tier\n" +
		"1627.0, 1627 ,2,Sat,feed,9\n" +
		"\n" +
		`="1628",1650,"3",Sun,feed,9` + "\n" +
		"1629\n"

	rel, err := shape(t, FlatExportKey, "V8", input)
	require.NoError(t, err)

	assert.Equal(t, []string{"clientContentId", "performChannel", "tier"}, rel.Fields)
	require.Equal(t, 3, rel.Len())
	assert.Equal(t, core.SourceRecord{"1627", "1627", "2"}, rel.Records[0])
	assert.Equal(t, core.SourceRecord{"1628", "1650", "3"}, rel.Records[1])
	assert.Equal(t, core.SourceRecord{"1629", "", ""}, rel.Records[2], "short rows are padded")
	assert.Equal(t, "1627", rel.PrimaryKey(0))
}

func TestShapeFlat_MissingRequiredColumn(t *testing.T) {
	_, err := shape(t, FlatExportKey, "V8", "clientContentId,tier\n1627,2\n")

	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrMissingRequiredColumn))

	var mc *core.MissingColumnError
	require.ErrorAs(t, err, &mc)
	assert.Equal(t, "V8", mc.Source)
	assert.Equal(t, []string{FieldPerformChannel}, mc.Columns)
}

func TestShapeFlat_Empty(t *testing.T) {
	_, err := shape(t, FlatExportKey, "V8", "")
	assert.ErrorIs(t, err, core.ErrMalformedSource)
}

const eventFeed = `[
  {"event": {
    "overrideId": [{"id": "1627"}],
    "oaId": "oa-1",
    "streamStartTime": "2025-11-08T19:00:00Z",
    "streamEndTime": "2025-11-08T21:00:00Z",
    "heEventTypeName": "LIVE_HEVC_HDR10_5994",
    "drmRequired": false,
    "regions": ["US", "CA"],
    "closedCaptioning": ["en", "es"],
    "heResilience": "MAC",
    "competitionId": 42,
    "broadcasts": {
      "oa-1": {"outputSuppressionMode": "NONE", "name": "Match 1", "template": "hdr"},
      "oa-2": {"name": "Other"}
    }
  }},
  {"overrideId": 1650.0, "streamStartTime": "2025-11-09T10:00:00Z"},
  {"event": {"overrideId": [], "oaId": "oa-3"}},
  "not an event",
  {"event": {"overrideId": [{"id": "1651"}], "broadcasts": ["bad"]}},
  {"event": {"overrideId": [{"id": "1652"}], "regions": null}}
]`

func TestShapeEvents(t *testing.T) {
	rel, err := shape(t, EventFeedKey, "FEED", eventFeed)
	require.NoError(t, err)

	require.Equal(t, 3, rel.Len())
	first := rel.Records[0]
	get := func(rec core.SourceRecord, field string) string {
		return rec[rel.FieldIndex(field)]
	}

	assert.Equal(t, "1627", get(first, FieldOverrideID))
	assert.Equal(t, "2025-11-08", get(first, FieldDay))
	assert.Equal(t, "false", get(first, "drmRequired"))
	assert.Equal(t, "US, CA", get(first, "regions"))
	assert.Equal(t, "en, es", get(first, "closedCaptioning"))
	assert.Equal(t, "42", get(first, "competitionId"))
	assert.Equal(t, "NONE", get(first, "outputSuppressionMode"))
	assert.Equal(t, "Match 1", get(first, "assetName"))
	assert.Equal(t, "hdr", get(first, "template"))

	second := rel.Records[1]
	assert.Equal(t, "1650", get(second, FieldOverrideID), "bare events and numeric ids are accepted")
	assert.Equal(t, "2025-11-09", get(second, FieldDay))
	assert.Equal(t, "", get(second, "assetName"), "missing optional fields are empty")

	assert.Equal(t, "", get(rel.Records[2], "regions"))

	require.Len(t, rel.Dropped, 3)
	assert.Equal(t, 2, rel.Dropped[0].Index)
	assert.Equal(t, "missing overrideId", rel.Dropped[0].Reason)
	assert.Equal(t, 3, rel.Dropped[1].Index)
	assert.Equal(t, 4, rel.Dropped[2].Index)
	assert.Equal(t, "FEED", rel.Dropped[0].Source)
}

func TestShapeEvents_NotAnArray(t *testing.T) {
	for _, input := range []string{`{"event": {}}`, `not json`, ``} {
		_, err := shape(t, EventFeedKey, "FEED", input)
		assert.ErrorIs(t, err, core.ErrMalformedSource, "input %q", input)
	}
}

func TestFlexText(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"text"`, "text"},
		{`true`, "true"},
		{`1627`, "1627"},
		{`null`, ""},
		{`["a", 1, null]`, "a, 1, "},
		{`{"k": 1}`, `{"k":1}`},
	}
	for _, tt := range tests {
		var f flexText
		require.NoError(t, f.UnmarshalJSON([]byte(tt.input)))
		assert.Equal(t, tt.want, string(f), "input %s", tt.input)
	}
}
