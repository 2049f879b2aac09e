package core

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the reconciliation engine.
var (
	// ErrInvalidKey marks an identifier that cannot take part in linkage.
	// Linkage is skipped for the affected row; the run continues.
	ErrInvalidKey = errors.New("invalid key")

	// ErrMissingRequiredColumn is fatal for the input that lacks the column.
	ErrMissingRequiredColumn = errors.New("missing required column")

	// ErrMalformedSource marks a source whose structure could not be read at all.
	ErrMalformedSource = errors.New("malformed source")

	// ErrDuplicateLabel is returned when two sources share a label.
	ErrDuplicateLabel = errors.New("duplicate source label")

	// ErrUnknownSourceKind is returned when no definition matches a source.
	ErrUnknownSourceKind = errors.New("unknown source kind")

	// ErrTooManyRuns is returned when the run limiter has no free slot.
	ErrTooManyRuns = errors.New("too many concurrent runs")

	// ErrRunNotFound is returned for unknown or expired run ids.
	ErrRunNotFound = errors.New("run not found")
)

// MissingColumnError names the input and the required columns it lacks.
type MissingColumnError struct {
	Source  string   // Source label, or "master"
	Columns []string // Missing column names
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: missing required column(s): %s", e.Source, strings.Join(e.Columns, ", "))
}

// Is lets errors.Is match ErrMissingRequiredColumn.
func (e *MissingColumnError) Is(target error) bool {
	return target == ErrMissingRequiredColumn
}

// ShapeError describes one malformed record dropped while shaping a source.
type ShapeError struct {
	Source string // Source label
	Index  int    // Zero-based record position in the input
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: record %d: %s", e.Source, e.Index, e.Reason)
}

// SourceError wraps a structural failure of one source input.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// RunError reports that a run could not process every input.
// The accompanying result is marked incomplete.
type RunError struct {
	Failures []*SourceError
}

func (e *RunError) Error() string {
	if len(e.Failures) == 1 {
		return "reconciliation incomplete: " + e.Failures[0].Error()
	}
	msgs := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		msgs[i] = f.Error()
	}
	return fmt.Sprintf("reconciliation incomplete: %d sources failed: %s", len(e.Failures), strings.Join(msgs, "; "))
}

// Unwrap exposes each source failure to errors.Is and errors.As.
func (e *RunError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}

// Labels returns the labels of the failed sources.
func (e *RunError) Labels() []string {
	labels := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		labels[i] = f.Source
	}
	return labels
}
