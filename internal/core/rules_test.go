package core

import (
	"testing"
)

func masterCol(name string) ColumnInfo {
	return ColumnInfo{Name: name, Base: name, Kind: KindMaster}
}

func sourceCol(base, label string) ColumnInfo {
	return ColumnInfo{Name: SourceColumnName(base, label), Base: base, Label: label, Kind: KindSource}
}

var (
	hdrContext = RowContext{
		TxType: "DAI59 1080p HDR", OverrideID: "1627", MFLID: "1627",
		Date: "2025-11-08", BroadcastTier: "Tier 2", HDR: true,
	}
	sdrContext = RowContext{
		TxType: "DAI59 1080p", OverrideID: "1550", MFLID: "88",
		Date: "2025-11-08", BroadcastTier: "Tier 1", SDR: true,
	}
	neitherContext = RowContext{TxType: "UHD", OverrideID: "1627", MFLID: "1627", Date: "2025-11-08"}
)

func TestClassify_MasterColumns(t *testing.T) {
	tests := []struct {
		name   string
		column string
		value  string
		rc     RowContext
		want   Verdict
	}{
		{"hdr tx type", ColTxType, "DAI59 1080p HDR", hdrContext, Valid},
		{"sdr tx type", ColTxType, "DAI59 1080p", sdrContext, Valid},
		{"unknown tx type", ColTxType, "UHD", neitherContext, Invalid},

		{"hdr override in range", ColOverrideID, "1627", hdrContext, Valid},
		{"hdr override out of range", ColOverrideID, "1699", withOverride(hdrContext, "1699"), Invalid},
		{"hdr override last range", ColOverrideID, "4654", withOverride(hdrContext, "4654"), Valid},
		{"sdr override shared range", ColOverrideID, "1685", withOverride(sdrContext, "1685"), Valid},
		{"sdr override x5xx", ColOverrideID, "1550", sdrContext, Valid},
		{"sdr override not x5xx", ColOverrideID, "1450", withOverride(sdrContext, "1450"), Invalid},
		{"override not numeric", ColOverrideID, "abc", withOverride(hdrContext, "abc"), Invalid},
		{"override without tx type", ColOverrideID, "1627", neitherContext, Invalid},

		{"hdr hevc present", ColHEVC, "HEVC Main10", hdrContext, Valid},
		{"hdr hevc missing", ColHEVC, "", hdrContext, Invalid},
		{"sdr hevc empty", ColHEVC, "  ", sdrContext, Valid},
		{"sdr hevc set", ColHEVC, "HEVC", sdrContext, Invalid},
		{"hevc without tx type", ColHEVC, "HEVC", neitherContext, Invalid},

		{"hdr audio 5.1", ColAudioLang, "English 5.1", hdrContext, Valid},
		{"hdr audio stereo", ColAudioLang, "English Stereo", hdrContext, Invalid},
		{"sdr audio stereo", ColAudioLang, "English Stereo", sdrContext, Valid},
		{"sdr audio 5.1", ColAudioLang, "English 5.1", sdrContext, Invalid},

		{"captions english", ColClosedCaptions, "US English", hdrContext, Valid},
		{"captions spanish folded", ColClosedCaptions, " us spanish ", hdrContext, Valid},
		{"captions other", ColClosedCaptions, "UK English", hdrContext, Invalid},

		{"multitrack no", ColMultiTrackAudio, "No", hdrContext, Valid},
		{"multitrack folded", ColMultiTrackAudio, "NO", hdrContext, Valid},
		{"multitrack yes", ColMultiTrackAudio, "Yes", hdrContext, Invalid},

		{"unknown master column", "FIXTURE", "A v B", hdrContext, Unvalidated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(masterCol(tt.column), tt.value, tt.rc); got != tt.want {
				t.Errorf("Classify(%s, %q) = %v, want %v", tt.column, tt.value, got, tt.want)
			}
		})
	}
}

func withOverride(rc RowContext, id string) RowContext {
	rc.OverrideID = id
	return rc
}

func TestClassify_SDRIdOnHDRRowFailsBoth(t *testing.T) {
	rc := withOverride(hdrContext, "1550")

	if got := Classify(masterCol(ColTxType), rc.TxType, rc); got != Invalid {
		t.Errorf("TX TYPE = %v, want Invalid", got)
	}
	if got := Classify(masterCol(ColOverrideID), "1550", rc); got != Invalid {
		t.Errorf("OVERRIDE ID = %v, want Invalid", got)
	}
}

func TestClassify_SharedIdOnSDRRowPasses(t *testing.T) {
	rc := withOverride(sdrContext, "1627")

	if got := Classify(masterCol(ColTxType), rc.TxType, rc); got != Valid {
		t.Errorf("TX TYPE = %v, want Valid", got)
	}
	if got := Classify(masterCol(ColOverrideID), "1627", rc); got != Valid {
		t.Errorf("OVERRIDE ID = %v, want Valid", got)
	}
}

func TestClassify_SourceColumns(t *testing.T) {
	tests := []struct {
		name  string
		base  string
		value string
		rc    RowContext
		want  Verdict
	}{
		{"client id equal", "clientContentId", "1627.0", hdrContext, Valid},
		{"client id differs", "clientContentId", "1628", hdrContext, Invalid},
		{"client id no master", "clientContentId", "1627", RowContext{}, Unvalidated},

		{"day equal", "day", "2025-11-08", hdrContext, Valid},
		{"day with time", "day", "2025-11-08T10:00:00Z", hdrContext, Valid},
		{"day differs", "day", "2025-11-09", hdrContext, Invalid},
		{"day empty", "day", "", hdrContext, Unvalidated},
		{"day master missing", "day", "2025-11-08", RowContext{}, Unvalidated},

		{"tier equal", "tier", "2", hdrContext, Valid},
		{"original tier equal", "originalTier", "2.0", hdrContext, Valid},
		{"tier differs", "tier", "3", hdrContext, Invalid},
		{"tier no number", "tier", "2", RowContext{BroadcastTier: "Gold"}, Invalid},

		{"hdr event type", "heEventTypeName", "LIVE_HEVC_HDR10_5994", hdrContext, Valid},
		{"hdr event type wrong", "heEventTypeName", "avc_5994_freemium", hdrContext, Invalid},
		{"sdr event type", "heEventTypeName", "live_avc_5994_freemium", sdrContext, Valid},
		{"event type no branch", "heEventTypeName", "anything", neitherContext, Invalid},

		{"hdr policies", "policies", "captions708, Dolby5994", hdrContext, Valid},
		{"hdr policies no dolby", "policies", "captions708", hdrContext, Invalid},
		{"sdr policies", "policies", "CAPTIONS708", sdrContext, Valid},
		{"sdr policies missing", "policies", "dolby", sdrContext, Invalid},

		{"drm false", "drmRequired", "FALSE", hdrContext, Valid},
		{"drm true", "drmRequired", "true", hdrContext, Invalid},

		{"perform channel equal", "performChannel", "1627.0", hdrContext, Valid},
		{"perform channel differs", "performChannel", "1699", hdrContext, Invalid},

		{"variants", "variants", "English Single, Spanish", hdrContext, Valid},
		{"variants missing", "variants", "Spanish", hdrContext, Invalid},

		{"watermarking", "watermarking", "NO_WATERMARKING", hdrContext, Valid},
		{"watermarking other", "watermarking", "FORENSIC", hdrContext, Invalid},

		{"resilience", "heResilience", "mac", hdrContext, Valid},
		{"resilience other", "heResilience", "NONE", hdrContext, Invalid},

		{"unknown base", "description", "Final", hdrContext, Unvalidated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(sourceCol(tt.base, "S1"), tt.value, tt.rc); got != tt.want {
				t.Errorf("Classify(%s, %q) = %v, want %v", tt.base, tt.value, got, tt.want)
			}
		})
	}
}

func TestClassify_DispatchesOnKindNotName(t *testing.T) {
	// A master column that happens to look like a qualified source field.
	col := ColumnInfo{Name: "drmRequired_S1", Base: "drmRequired_S1", Kind: KindMaster}
	if got := Classify(col, "true", hdrContext); got != Unvalidated {
		t.Errorf("master drmRequired_S1 = %v, want Unvalidated", got)
	}

	book := ColumnInfo{Name: "match_type_S1", Base: "match_type", Label: "S1", Kind: KindMatchType}
	if got := Classify(book, "full", hdrContext); got != Unvalidated {
		t.Errorf("match_type = %v, want Unvalidated", got)
	}
}

func TestNewRowContext(t *testing.T) {
	m := newTestMaster(t, hdrRow("1627.0", " 1627 "), sdrRow("88", "1550"))

	rc := NewRowContext(m, 0, true)
	if !rc.HDR || rc.SDR {
		t.Errorf("row 0 HDR=%v SDR=%v, want HDR only", rc.HDR, rc.SDR)
	}
	if rc.MFLID != "1627" || rc.OverrideID != "1627" {
		t.Errorf("row 0 ids = %q/%q, want normalized 1627", rc.MFLID, rc.OverrideID)
	}
	if rc.Date != "2025-11-08" {
		t.Errorf("row 0 date = %q, want 2025-11-08", rc.Date)
	}

	rc = NewRowContext(m, 1, true)
	if rc.HDR || !rc.SDR {
		t.Errorf("row 1 HDR=%v SDR=%v, want SDR only", rc.HDR, rc.SDR)
	}
}
