package core

import (
	"fmt"
)

// Outcome is the final classification of one merged cell.
type Outcome uint8

const (
	OutcomeUnvalidated Outcome = iota
	OutcomeValid
	OutcomeInvalid
	OutcomeCSVMatch
	OutcomeCSVMismatch
	OutcomeDuplicate
)

// AllOutcomes lists every outcome in display order.
var AllOutcomes = []Outcome{
	OutcomeValid,
	OutcomeInvalid,
	OutcomeCSVMatch,
	OutcomeCSVMismatch,
	OutcomeDuplicate,
	OutcomeUnvalidated,
}

var outcomeNames = map[Outcome]string{
	OutcomeUnvalidated: "unvalidated",
	OutcomeValid:       "valid",
	OutcomeInvalid:     "invalid",
	OutcomeCSVMatch:    "csv-match",
	OutcomeCSVMismatch: "csv-mismatch",
	OutcomeDuplicate:   "duplicate",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Outcome(%d)", uint8(o))
}

// MarshalText encodes the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes an outcome name.
func (o *Outcome) UnmarshalText(b []byte) error {
	for k, v := range outcomeNames {
		if v == string(b) {
			*o = k
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", b)
}

// Verdict is the rule engine's per-cell result.
type Verdict uint8

const (
	Unvalidated Verdict = iota
	Valid
	Invalid
)

// verdictOf converts a boolean rule result.
func verdictOf(ok bool) Verdict {
	if ok {
		return Valid
	}
	return Invalid
}

// Mark is the cross-source consistency result for one cell.
type Mark uint8

const (
	MarkNone     Mark = iota // Not part of a multi-source group, or all empty
	MarkMatch                // All values in the group equal and non-empty
	MarkMismatch             // Values in the group differ
)

// Resolve combines the three detectors by fixed precedence:
// duplicate row, then cross-source consistency, then the rule verdict.
func Resolve(duplicate bool, mark Mark, verdict Verdict) Outcome {
	if duplicate {
		return OutcomeDuplicate
	}
	switch mark {
	case MarkMismatch:
		return OutcomeCSVMismatch
	case MarkMatch:
		return OutcomeCSVMatch
	}
	switch verdict {
	case Valid:
		return OutcomeValid
	case Invalid:
		return OutcomeInvalid
	default:
		return OutcomeUnvalidated
	}
}
