package core

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// ----------------------------------------------------------------------------
// ParseTimestamp / DatePart Tests
// ----------------------------------------------------------------------------

func TestDatePart(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		dayFirst bool
		want     string
	}{
		{"iso with time", "2025-11-08 19:30:00", true, "2025-11-08"},
		{"iso T separator", "2025-11-08T19:30:00", false, "2025-11-08"},
		{"rfc3339", "2025-11-08T19:30:00Z", false, "2025-11-08"},
		{"iso date only", "2025-11-08", true, "2025-11-08"},
		{"iso fractional seconds", "2025-11-08 19:30:00.000", true, "2025-11-08"},
		{"day first slash", "08/11/2025 19:30", true, "2025-11-08"},
		{"month first slash", "08/11/2025 19:30", false, "2025-08-11"},
		{"unambiguous day first", "25/12/2025", false, "2025-12-25"},
		{"dotted day first", "08.11.2025", true, "2025-11-08"},
		{"two digit year", "08/11/25", true, "2025-11-08"},
		{"excel serial", "45969", true, "2025-11-08"},
		{"excel serial with time", "45969.8125", true, "2025-11-08"},
		{"formula wrapped", `="2025-11-08"`, true, "2025-11-08"},
		{"empty", "", true, ""},
		{"garbage", "kickoff soon", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DatePart(tt.input, tt.dayFirst); got != tt.want {
				t.Errorf("DatePart(%q, %v) = %q, want %q", tt.input, tt.dayFirst, got, tt.want)
			}
		})
	}
}

func TestParseTimestamp_KeepsTime(t *testing.T) {
	got, ok := ParseTimestamp("08/11/2025 19:30", true)
	if !ok {
		t.Fatal("ParseTimestamp failed")
	}
	want := time.Date(2025, 11, 8, 19, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseTimestamp = %v, want %v", got, want)
	}
}

// ----------------------------------------------------------------------------
// ExtractNumber Tests
// ----------------------------------------------------------------------------

func TestExtractNumber(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Tier 2", "2"},
		{"T10 premium", "10"},
		{"3", "3"},
		{"tier 2 / 4", "2"},
		{"Gold", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ExtractNumber(tt.input); got != tt.want {
			t.Errorf("ExtractNumber(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// ----------------------------------------------------------------------------
// CleanCell Tests
// ----------------------------------------------------------------------------

func TestCleanCell(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  value  ", "value"},
		{`="00123"`, "00123"},
		{`"quoted"`, "quoted"},
		{`'single'`, "single"},
		{`a"b`, `a"b`},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CleanCell(tt.input); got != tt.want {
			t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestMakeHeaderIndex_FirstOccurrenceWins(t *testing.T) {
	idx := MakeHeaderIndex([]string{"MFL ID", "Tier", "mfl id"})
	if pos, ok := idx.Position("MFL ID"); !ok || pos != 0 {
		t.Errorf("Position(MFL ID) = %d, %v, want 0, true", pos, ok)
	}
	if pos, ok := idx.Position(" tier "); !ok || pos != 1 {
		t.Errorf("Position(tier) = %d, %v, want 1, true", pos, ok)
	}
}

// ----------------------------------------------------------------------------
// TextValue Tests
// ----------------------------------------------------------------------------

func TestTextValue(t *testing.T) {
	var numeric pgtype.Numeric
	if err := numeric.Scan("1627"); err != nil {
		t.Fatalf("Scan numeric: %v", err)
	}

	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"nil", nil, ""},
		{"string", "DAI59 1080p", "DAI59 1080p"},
		{"bytes", []byte("abc"), "abc"},
		{"int64", int64(1627), "1627"},
		{"int32", int32(42), "42"},
		{"float64", 1627.5, "1627.5"},
		{"bool", true, "true"},
		{"date time", time.Date(2025, 11, 8, 19, 30, 0, 0, time.UTC), "2025-11-08 19:30:00"},
		{"midnight", time.Date(2025, 11, 8, 0, 0, 0, 0, time.UTC), "2025-11-08"},
		{"pg text", pgtype.Text{String: "HEVC", Valid: true}, "HEVC"},
		{"pg null text", pgtype.Text{}, ""},
		{"pg date", pgtype.Date{Time: time.Date(2025, 11, 8, 0, 0, 0, 0, time.UTC), Valid: true}, "2025-11-08"},
		{"pg numeric", numeric, "1627"},
		{"pg null numeric", pgtype.Numeric{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TextValue(tt.input); got != tt.want {
				t.Errorf("TextValue(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
