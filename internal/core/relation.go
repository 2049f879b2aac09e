package core

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// SourceRecord is one shaped row of a secondary source.
// Values are aligned with the owning relation's Fields.
type SourceRecord []string

// Relation is a shaped, labeled secondary source indexed for key lookup.
// Record order is the input order and is part of the linkage contract.
type Relation struct {
	Label   string
	Kind    string // Source definition key
	Fields  []string
	Records []SourceRecord
	Keys    KeyPair
	Dropped []*ShapeError

	primaryPos   int
	secondaryPos int
	byPrimary    map[string][]int
	bySecondary  map[string][]int
}

// NewRelation indexes shaped records under the definition's key pair.
//
// Key fields are normalized in place. Records whose key is invalid are kept
// (they still appear in the unmatched set) but are not indexed under that key.
func NewRelation(label string, def SourceDefinition, shaped *ShapedSource) (*Relation, error) {
	if err := RequireFields(label, shaped.Fields, []string{def.Keys.Primary.Source, def.Keys.Secondary.Source}); err != nil {
		return nil, err
	}

	rel := &Relation{
		Label:       label,
		Kind:        def.Info.Key,
		Fields:      shaped.Fields,
		Records:     shaped.Records,
		Keys:        def.Keys,
		Dropped:     shaped.Dropped,
		byPrimary:   make(map[string][]int),
		bySecondary: make(map[string][]int),
	}
	rel.primaryPos = rel.FieldIndex(def.Keys.Primary.Source)
	rel.secondaryPos = rel.FieldIndex(def.Keys.Secondary.Source)

	for i, rec := range rel.Records {
		if len(rec) != len(rel.Fields) {
			rel.Records[i] = SourceRecord(fitRow(rec, len(rel.Fields)))
			rec = rel.Records[i]
		}
		rec[rel.primaryPos] = NormalizeID(rec[rel.primaryPos])
		rec[rel.secondaryPos] = NormalizeID(rec[rel.secondaryPos])

		if p := rec[rel.primaryPos]; !IsInvalidKey(p) {
			rel.byPrimary[p] = append(rel.byPrimary[p], i)
		}
		if s := rec[rel.secondaryPos]; !IsInvalidKey(s) {
			rel.bySecondary[s] = append(rel.bySecondary[s], i)
		}
	}

	return rel, nil
}

// FieldIndex returns the position of a field, or -1.
func (r *Relation) FieldIndex(name string) int {
	for i, f := range r.Fields {
		if f == name {
			return i
		}
	}
	return -1
}

// Len returns the number of records.
func (r *Relation) Len() int {
	return len(r.Records)
}

// PrimaryKey returns the normalized primary key of a record.
func (r *Relation) PrimaryKey(i int) string {
	return r.Records[i][r.primaryPos]
}

// SecondaryKey returns the normalized secondary key of a record.
func (r *Relation) SecondaryKey(i int) string {
	return r.Records[i][r.secondaryPos]
}

// Shape runs a definition's shaper over an input and indexes the result.
// Structural failures are returned as a *SourceError naming the label.
func Shape(def SourceDefinition, label string, r io.Reader, opts ShapeOptions) (*Relation, error) {
	shaped, err := def.Shape(NewTextReader(r), def.FieldSpecs, opts)
	if err != nil {
		return nil, &SourceError{Source: label, Err: relabel(err, label)}
	}
	for _, d := range shaped.Dropped {
		d.Source = label
	}

	rel, err := NewRelation(label, def, shaped)
	if err != nil {
		return nil, &SourceError{Source: label, Err: err}
	}
	return rel, nil
}

// relabel stamps the source label onto errors produced before it was known.
func relabel(err error, label string) error {
	var mc *MissingColumnError
	if errors.As(err, &mc) {
		return &MissingColumnError{Source: label, Columns: mc.Columns}
	}
	return err
}

// LabelFromName derives a source label from a file name: the base name up to
// its first dot.
func LabelFromName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	return strings.TrimSpace(base)
}

// ValidateLabel rejects labels that cannot qualify column names.
func ValidateLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return fmt.Errorf("%w: empty source label", ErrMalformedSource)
	}
	return nil
}
