package sources

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/reconcile/internal/core"
)

// EventFeedKey identifies nested event feeds.
const EventFeedKey = "event_feed"

// Event feed key fields.
const (
	FieldOverrideID = "overrideId"
	FieldDay        = "day"
)

// eventFields is the column order of a shaped event feed.
var eventFields = []string{
	FieldOverrideID,
	FieldDay,
	"oaId",
	"streamStartTime",
	"streamEndTime",
	"heEventTypeName",
	"drmRequired",
	"regions",
	"outputSuppressionMode",
	"assetName",
	"template",
	"heResilience",
	"competitionId",
	"closedCaptioning",
	"description",
}

func init() {
	registerEventFeed()
}

func registerEventFeed() {
	specs := make([]core.FieldSpec, len(eventFields))
	for i, name := range eventFields {
		specs[i] = core.FieldSpec{Name: name, Type: core.FieldText}
	}
	specs[0] = core.FieldSpec{Name: FieldOverrideID, Type: core.FieldID, Required: true}
	specs[1].Type = core.FieldTimestamp
	specs[7].Type = core.FieldList
	specs[13].Type = core.FieldList

	core.Register(core.SourceDefinition{
		Info: core.SourceInfo{
			Key:        EventFeedKey,
			Label:      "Event feed (JSON)",
			Format:     "json",
			Extensions: []string{".json"},
		},
		FieldSpecs: specs,
		Keys: core.KeyPair{
			Primary:   core.KeyField{Master: core.ColOverrideID, Source: FieldOverrideID},
			Secondary: core.KeyField{Master: core.ColPreKickoff, Source: FieldDay, Transform: core.KeyDatePart},
		},
		Shape: shapeEvents,
	})
}

// flexText decodes any JSON scalar or list as display text.
// Lists are comma-joined; null decodes to "".
type flexText string

func (f *flexText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*f = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexText(s)
	case b[0] == '[':
		var items []flexText
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		parts := make([]string, 0, len(items))
		for _, it := range items {
			parts = append(parts, string(it))
		}
		*f = flexText(strings.Join(parts, ", "))
	case b[0] == '{':
		var buf bytes.Buffer
		if err := json.Compact(&buf, b); err != nil {
			return err
		}
		*f = flexText(buf.String())
	default:
		// Numbers and booleans keep their literal spelling.
		*f = flexText(b)
	}
	return nil
}

// overrideRef decodes the override id in any of the shapes feeds use:
// [{"id": "1627"}], [1627], "1627" or 1627. The first entry wins.
type overrideRef string

func (o *overrideRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		if len(items) == 0 {
			*o = ""
			return nil
		}
		b = bytes.TrimSpace(items[0])
	}
	if len(b) > 0 && b[0] == '{' {
		var ref struct {
			ID flexText `json:"id"`
		}
		if err := json.Unmarshal(b, &ref); err != nil {
			return err
		}
		*o = overrideRef(ref.ID)
		return nil
	}
	var s flexText
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*o = overrideRef(s)
	return nil
}

type broadcastDoc struct {
	OutputSuppressionMode flexText `json:"outputSuppressionMode"`
	Name                  flexText `json:"name"`
	Template              flexText `json:"template"`
}

type eventDoc struct {
	OverrideID       overrideRef     `json:"overrideId"`
	OAID             flexText        `json:"oaId"`
	StreamStartTime  flexText        `json:"streamStartTime"`
	StreamEndTime    flexText        `json:"streamEndTime"`
	HEEventTypeName  flexText        `json:"heEventTypeName"`
	DRMRequired      flexText        `json:"drmRequired"`
	Regions          flexText        `json:"regions"`
	HEResilience     flexText        `json:"heResilience"`
	CompetitionID    flexText        `json:"competitionId"`
	ClosedCaptioning flexText        `json:"closedCaptioning"`
	Description      flexText        `json:"description"`
	Broadcasts       json.RawMessage `json:"broadcasts"`
}

// shapeEvents reads a JSON array of events, each either bare or wrapped as
// {"event": {...}}. The broadcast keyed by the event's oaId contributes its
// suppression mode, name and template. Malformed events are dropped and
// reported; input that is not a JSON array is rejected as a whole.
func shapeEvents(r io.Reader, _ []core.FieldSpec, _ core.ShapeOptions) (*core.ShapedSource, error) {
	var elems []json.RawMessage
	if err := json.NewDecoder(r).Decode(&elems); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty file", core.ErrMalformedSource)
		}
		return nil, fmt.Errorf("%w: expected a JSON array of events: %v", core.ErrMalformedSource, err)
	}

	out := &core.ShapedSource{Fields: append([]string(nil), eventFields...)}
	for i, elem := range elems {
		rec, reason := shapeEvent(elem)
		if reason != "" {
			out.Dropped = append(out.Dropped, &core.ShapeError{Index: i, Reason: reason})
			continue
		}
		out.Records = append(out.Records, rec)
	}
	return out, nil
}

// shapeEvent flattens one event. A non-empty reason means the event is dropped.
func shapeEvent(elem json.RawMessage) (core.SourceRecord, string) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(elem, &obj); err != nil || obj == nil {
		return nil, "event is not an object"
	}

	body := []byte(elem)
	if wrapped, ok := obj["event"]; ok {
		body = wrapped
	}

	var e eventDoc
	if err := json.Unmarshal(body, &e); err != nil {
		return nil, fmt.Sprintf("malformed event: %v", err)
	}

	id := strings.TrimSpace(string(e.OverrideID))
	if core.IsInvalidKey(id) {
		return nil, "missing overrideId"
	}

	var bcast broadcastDoc
	if len(e.Broadcasts) > 0 && !bytes.Equal(bytes.TrimSpace(e.Broadcasts), []byte("null")) {
		var all map[string]broadcastDoc
		if err := json.Unmarshal(e.Broadcasts, &all); err != nil {
			return nil, fmt.Sprintf("malformed broadcasts: %v", err)
		}
		bcast = all[string(e.OAID)]
	}

	start := strings.TrimSpace(string(e.StreamStartTime))
	return core.SourceRecord{
		id,
		eventDay(start),
		string(e.OAID),
		start,
		string(e.StreamEndTime),
		string(e.HEEventTypeName),
		string(e.DRMRequired),
		string(e.Regions),
		string(bcast.OutputSuppressionMode),
		string(bcast.Name),
		string(bcast.Template),
		string(e.HEResilience),
		string(e.CompetitionID),
		string(e.ClosedCaptioning),
		string(e.Description),
	}, ""
}

// eventDay is the calendar date of a stream start time.
// Feed timestamps are ISO-8601; anything else falls back to the first ten characters.
func eventDay(start string) string {
	if start == "" {
		return ""
	}
	if d := core.DatePart(start, false); d != "" {
		return d
	}
	if len(start) >= 10 {
		return start[:10]
	}
	return start
}
