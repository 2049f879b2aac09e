package core

import (
	"encoding/json"
	"testing"
)

func TestResolve_Precedence(t *testing.T) {
	tests := []struct {
		name    string
		dup     bool
		mark    Mark
		verdict Verdict
		want    Outcome
	}{
		{"duplicate beats mismatch", true, MarkMismatch, Invalid, OutcomeDuplicate},
		{"duplicate beats valid", true, MarkNone, Valid, OutcomeDuplicate},
		{"mismatch beats valid", false, MarkMismatch, Valid, OutcomeCSVMismatch},
		{"match beats invalid", false, MarkMatch, Invalid, OutcomeCSVMatch},
		{"rule valid", false, MarkNone, Valid, OutcomeValid},
		{"rule invalid", false, MarkNone, Invalid, OutcomeInvalid},
		{"default unvalidated", false, MarkNone, Unvalidated, OutcomeUnvalidated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.dup, tt.mark, tt.verdict); got != tt.want {
				t.Errorf("Resolve(%v, %v, %v) = %v, want %v", tt.dup, tt.mark, tt.verdict, got, tt.want)
			}
		})
	}
}

func TestOutcome_TextRoundTrip(t *testing.T) {
	for _, o := range AllOutcomes {
		b, err := o.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", o, err)
		}
		var back Outcome
		if err := back.UnmarshalText(b); err != nil {
			t.Fatalf("UnmarshalText(%s): %v", b, err)
		}
		if back != o {
			t.Errorf("round trip %v -> %s -> %v", o, b, back)
		}
	}

	var o Outcome
	if err := o.UnmarshalText([]byte("green")); err == nil {
		t.Error("UnmarshalText(green) succeeded, want error")
	}
}

func TestOutcome_JSONGrid(t *testing.T) {
	grid := [][]Outcome{{OutcomeValid, OutcomeCSVMismatch}, {OutcomeDuplicate, OutcomeUnvalidated}}
	b, err := json.Marshal(grid)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `[["valid","csv-mismatch"],["duplicate","unvalidated"]]`
	if string(b) != want {
		t.Errorf("Marshal = %s, want %s", b, want)
	}
}
