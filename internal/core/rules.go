package core

// rules.go is the per-cell validation rule engine.
//
// Every master row is first classified HDR or SDR from its TX TYPE. Master
// columns are then checked against that classification, and source columns
// are checked against the master values they should agree with. Rules are
// dispatched by column kind and base field name, never by parsing names.
//
// All text comparisons are case-insensitive on trimmed values.

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// Transmission types gating the HDR and SDR rule branches.
var (
	HDRTxTypes = []string{"DAI59 MR 1080p HDR", "DAI59 1080p HDR"}
	SDRTxTypes = []string{"DAI59 1080p", "DAI59 MR 1080p", "TX59 1080p"}
)

// IDRange is an inclusive range of override ids.
type IDRange struct {
	Lo, Hi int
}

// OverrideRanges are valid for both HDR and SDR rows.
// SDR rows additionally accept any 4-digit id of the form x5xx.
var OverrideRanges = []IDRange{
	{1601, 1660},
	{1681, 1690},
	{2641, 2660},
	{4601, 4654},
}

// AllowedClosedCaptions is the accepted set for the CLOSED CAPTIONS column.
var AllowedClosedCaptions = []string{"US English", "US Spanish"}

// Literals used by the rule set.
const (
	multiTrackAudioAllowed = "No"
	hdrAudioMarker         = "5.1"
	hdrEventType           = "hevc_hdr10_5994"
	sdrEventType           = "avc_5994_freemium"
	captionsPolicy         = "captions708"
	dolbyPolicy            = "dolby"
	variantsRequired       = "english single"
	drmRequiredValue       = "false"
	watermarkingValue      = "NO_WATERMARKING"
	resilienceValue        = "MAC"
)

// fold returns the case-folded, trimmed form of s.
// A Caser is stateful, so one is created per call.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func foldEqual(a, b string) bool {
	return fold(a) == fold(b)
}

func foldContains(s, substr string) bool {
	return strings.Contains(fold(s), fold(substr))
}

func foldIn(s string, set []string) bool {
	for _, v := range set {
		if foldEqual(s, v) {
			return true
		}
	}
	return false
}

// RowContext holds the master values every rule in a row may consult.
type RowContext struct {
	TxType        string
	OverrideID    string // Normalized
	MFLID         string // Normalized
	Date          string // Date part of the kickoff timestamp, YYYY-MM-DD
	BroadcastTier string
	HDR           bool
	SDR           bool
	DayFirst      bool
}

// NewRowContext derives the rule context of one master row.
func NewRowContext(m *Master, row int, dayFirst bool) RowContext {
	tx := strings.TrimSpace(m.Value(row, ColTxType))
	hdr := foldIn(tx, HDRTxTypes)
	return RowContext{
		TxType:        tx,
		OverrideID:    m.Value(row, ColOverrideID),
		MFLID:         m.Value(row, ColMFLID),
		Date:          m.Date(row),
		BroadcastTier: strings.TrimSpace(m.Value(row, ColBroadcastTier)),
		HDR:           hdr,
		SDR:           !hdr && foldIn(tx, SDRTxTypes),
		DayFirst:      dayFirst,
	}
}

// parseOverride returns the integer form of an override id.
func parseOverride(id string) (int, bool) {
	n, err := strconv.Atoi(NormalizeID(id))
	if err != nil {
		return 0, false
	}
	return n, true
}

func inOverrideRanges(n int) bool {
	for _, r := range OverrideRanges {
		if n >= r.Lo && n <= r.Hi {
			return true
		}
	}
	return false
}

// isX5XX reports a 4-digit id whose hundreds digit is 5.
func isX5XX(n int) bool {
	return n >= 1000 && n <= 9999 && (n/100)%10 == 5
}

// IsHDROverride reports whether id is acceptable on an HDR row.
func IsHDROverride(id string) bool {
	n, ok := parseOverride(id)
	return ok && inOverrideRanges(n)
}

// IsSDROverride reports whether id is acceptable on an SDR row.
func IsSDROverride(id string) bool {
	n, ok := parseOverride(id)
	return ok && (inOverrideRanges(n) || isX5XX(n))
}

// crossFail reports an override id reserved for the other branch.
// Every HDR id is also an SDR id, so only SDR-only ids on HDR rows qualify.
func (rc RowContext) crossFail() bool {
	return rc.HDR && IsSDROverride(rc.OverrideID) && !IsHDROverride(rc.OverrideID)
}

// masterRule validates a master column value.
type masterRule func(value string, rc RowContext) Verdict

// sourceRule validates a source column value by base field name.
type sourceRule func(value string, rc RowContext) Verdict

var masterRules = map[string]masterRule{
	ColTxType: func(_ string, rc RowContext) Verdict {
		if rc.crossFail() {
			return Invalid
		}
		return verdictOf(rc.HDR || rc.SDR)
	},
	ColOverrideID: func(value string, rc RowContext) Verdict {
		switch {
		case rc.crossFail():
			return Invalid
		case rc.HDR:
			return verdictOf(IsHDROverride(value))
		case rc.SDR:
			return verdictOf(IsSDROverride(value))
		}
		return Invalid
	},
	ColHEVC: func(value string, rc RowContext) Verdict {
		switch {
		case rc.HDR:
			return verdictOf(foldContains(value, "hevc"))
		case rc.SDR:
			return verdictOf(strings.TrimSpace(value) == "")
		}
		return Invalid
	},
	ColAudioLang: func(value string, rc RowContext) Verdict {
		switch {
		case rc.HDR:
			return verdictOf(strings.Contains(value, hdrAudioMarker))
		case rc.SDR:
			return verdictOf(!strings.Contains(value, hdrAudioMarker))
		}
		return Invalid
	},
	ColClosedCaptions: func(value string, _ RowContext) Verdict {
		return verdictOf(foldIn(value, AllowedClosedCaptions))
	},
	ColMultiTrackAudio: func(value string, _ RowContext) Verdict {
		return verdictOf(foldEqual(value, multiTrackAudioAllowed))
	},
}

var sourceRules = map[string]sourceRule{
	"clientContentId": func(value string, rc RowContext) Verdict {
		if rc.MFLID == "" {
			return Unvalidated
		}
		return verdictOf(NormalizeID(value) == rc.MFLID)
	},
	"day": func(value string, rc RowContext) Verdict {
		value = strings.TrimSpace(value)
		if rc.Date == "" || value == "" {
			return Unvalidated
		}
		if d := DatePart(value, rc.DayFirst); d != "" {
			value = d
		}
		return verdictOf(value == rc.Date)
	},
	"originalTier": tierRule,
	"tier":         tierRule,
	"heEventTypeName": func(value string, rc RowContext) Verdict {
		switch {
		case rc.HDR:
			return verdictOf(foldContains(value, hdrEventType))
		case rc.SDR:
			return verdictOf(foldContains(value, sdrEventType))
		}
		return Invalid
	},
	"policies": func(value string, rc RowContext) Verdict {
		switch {
		case rc.HDR:
			return verdictOf(foldContains(value, captionsPolicy) && foldContains(value, dolbyPolicy))
		case rc.SDR:
			return verdictOf(foldContains(value, captionsPolicy))
		}
		return Invalid
	},
	"drmRequired": func(value string, _ RowContext) Verdict {
		return verdictOf(foldEqual(value, drmRequiredValue))
	},
	"performChannel": func(value string, rc RowContext) Verdict {
		return verdictOf(NormalizeID(value) == rc.OverrideID)
	},
	"variants": func(value string, _ RowContext) Verdict {
		return verdictOf(foldContains(value, variantsRequired))
	},
	"watermarking": func(value string, _ RowContext) Verdict {
		return verdictOf(foldEqual(value, watermarkingValue))
	},
	"heResilience": func(value string, _ RowContext) Verdict {
		return verdictOf(foldEqual(value, resilienceValue))
	},
}

// tierRule compares a tier value with the number inside BROADCAST TIER.
func tierRule(value string, rc RowContext) Verdict {
	expected := ExtractNumber(rc.BroadcastTier)
	if expected == "" {
		return Invalid
	}
	return verdictOf(NormalizeID(value) == expected)
}

// Classify applies the rule set to one cell.
// Columns without a rule are Unvalidated.
func Classify(col ColumnInfo, value string, rc RowContext) Verdict {
	switch col.Kind {
	case KindMaster:
		if rule, ok := masterRules[col.Name]; ok {
			return rule(value, rc)
		}
	case KindSource:
		if rule, ok := sourceRules[col.Base]; ok {
			return rule(value, rc)
		}
	}
	return Unvalidated
}

// HasRule reports whether the rule engine validates the column at all.
func HasRule(col ColumnInfo) bool {
	switch col.Kind {
	case KindMaster:
		_, ok := masterRules[col.Name]
		return ok
	case KindSource:
		_, ok := sourceRules[col.Base]
		return ok
	}
	return false
}
