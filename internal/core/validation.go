package core

// validation.go checks input headers before any row is shaped or linked.
//
// A missing required column is structural: the input that lacks it cannot be
// processed at all, so the failure names the input and every missing column.
// Row-level problems are never reported here; they surface later as
// "none" matches or unvalidated cells.

import (
	"strings"
)

// HeaderIndex maps lowercased column names to their position in a header row.
type HeaderIndex map[string]int

// Position returns the index of a column, matching case-insensitively.
func (h HeaderIndex) Position(name string) (int, bool) {
	pos, ok := h[strings.ToLower(strings.TrimSpace(name))]
	return pos, ok
}

// ValidateHeaders validates that all required columns exist in the headers.
// Returns a mapping from column name to index, or a *MissingColumnError.
func ValidateHeaders(source string, headers []string, specs []FieldSpec) (HeaderIndex, error) {
	idx := MakeHeaderIndex(headers)
	var missing []string

	for _, spec := range specs {
		if !spec.Required {
			continue
		}
		if _, ok := idx.Position(spec.Name); !ok {
			missing = append(missing, spec.Name)
		}
	}

	if len(missing) > 0 {
		return nil, &MissingColumnError{Source: source, Columns: missing}
	}

	return idx, nil
}

// RequireFields checks that every named field is present in fields (exact match).
func RequireFields(source string, fields []string, required []string) error {
	have := make(map[string]bool, len(fields))
	for _, f := range fields {
		have[f] = true
	}

	var missing []string
	for _, name := range required {
		if !have[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnError{Source: source, Columns: missing}
	}
	return nil
}
