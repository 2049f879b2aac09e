// Package core provides the reconciliation engine for broadcast schedules.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"context"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5"
)

// DBTX is the interface for database reads.
// Satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Query(context.Context, string, ...any) (pgx.Rows, error)
}

// FieldType represents how a source field is interpreted while shaping.
type FieldType int

const (
	FieldText FieldType = iota
	FieldID
	FieldTimestamp
	FieldList
)

// FieldSpec defines a single field of a source definition.
type FieldSpec struct {
	Name     string    // Field name as it appears in the input (must match exactly)
	Type     FieldType // Interpretation while shaping
	Required bool      // Field must be present in the input header
}

// KeyTransform is applied to a master value before it is compared with a source key.
type KeyTransform int

const (
	// KeyAsIs compares the normalized identifier.
	KeyAsIs KeyTransform = iota
	// KeyDatePart compares the calendar date (YYYY-MM-DD) of a timestamp.
	KeyDatePart
)

// KeyField pairs a master column with the source field it links to.
type KeyField struct {
	Master    string       // Master column name: "MFL ID"
	Source    string       // Source field name: "clientContentId"
	Transform KeyTransform // Applied to the master value only
}

// KeyPair is the two-key linkage policy of a source definition.
// A full match agrees on both keys, a partial match on exactly one.
type KeyPair struct {
	Primary   KeyField
	Secondary KeyField
}

// SourceInfo contains display information about a source kind.
type SourceInfo struct {
	Key        string   // Unique identifier: "flat_export"
	Label      string   // Display name: "Flat export (CSV)"
	Format     string   // Input format: "csv", "json"
	Extensions []string // File extensions selected by default: ".csv"
}

// ShapeOptions controls how a source input is shaped into a relation.
type ShapeOptions struct {
	// ExcludedColumns are flat-export columns never carried into the merge.
	ExcludedColumns []string
}

// ShapedSource is the raw output of a ShapeFunc, before indexing.
type ShapedSource struct {
	Fields  []string       // Ordered field names carried into the merge
	Records []SourceRecord // Rows in input order
	Dropped []*ShapeError  // Malformed records that were skipped
}

// ShapeFunc turns one secondary input into uniform rows.
type ShapeFunc func(r io.Reader, specs []FieldSpec, opts ShapeOptions) (*ShapedSource, error)

// SourceDefinition contains everything needed to shape and link a source kind.
type SourceDefinition struct {
	Info       SourceInfo
	FieldSpecs []FieldSpec
	Keys       KeyPair
	Shape      ShapeFunc
}

// RequiredFields returns the names of the required field specs.
func (d SourceDefinition) RequiredFields() []string {
	var names []string
	for _, spec := range d.FieldSpecs {
		if spec.Required {
			names = append(names, spec.Name)
		}
	}
	return names
}

// Master column names consumed by linkage and the rule engine.
const (
	ColMFLID           = "MFL ID"
	ColOverrideID      = "OVERRIDE ID"
	ColPreKickoff      = "DATE TIME PRE KO (UTC)"
	ColTxType          = "TX TYPE"
	ColHEVC            = "HEVC"
	ColClosedCaptions  = "CLOSED CAPTIONS"
	ColMultiTrackAudio = "MULTI-TRACK AUDIO"
	ColAudioLang       = "AUDIO LANG"
	ColBroadcastTier   = "BROADCAST TIER"
)

// MasterFieldSpecs lists the master columns the engine knows about.
// Only the first four are required; the rest are validated when present.
var MasterFieldSpecs = []FieldSpec{
	{Name: ColMFLID, Type: FieldID, Required: true},
	{Name: ColOverrideID, Type: FieldID, Required: true},
	{Name: ColPreKickoff, Type: FieldTimestamp, Required: true},
	{Name: ColTxType, Type: FieldText, Required: true},
	{Name: ColHEVC, Type: FieldText},
	{Name: ColClosedCaptions, Type: FieldText},
	{Name: ColMultiTrackAudio, Type: FieldText},
	{Name: ColAudioLang, Type: FieldText},
	{Name: ColBroadcastTier, Type: FieldText},
}

// MatchType is the linkage outcome of one master row against one source.
type MatchType string

const (
	MatchFull    MatchType = "full"
	MatchPartial MatchType = "partial"
	MatchNone    MatchType = "none"
)

// DuplicateScope selects the columns compared by the duplicate detector.
type DuplicateScope string

const (
	// DuplicateAllColumns compares every column of the merged table.
	DuplicateAllColumns DuplicateScope = "all"
	// DuplicateMasterColumns compares master columns only.
	DuplicateMasterColumns DuplicateScope = "master"
)

// Options configures a reconciliation run.
type Options struct {
	ExcludedColumns []string
	DayFirst        bool           // Interpret ambiguous master dates as DD/MM
	DuplicateScope  DuplicateScope // Defaults to DuplicateMasterColumns
	Logger          *slog.Logger   // Defaults to slog.Default()
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// DefaultExcludedColumns are flat-export columns dropped before merging.
var DefaultExcludedColumns = []string{"competitionId", "Day", "launchPeriod", "rightsId", "Source"}

// DefaultOptions returns the options used when the caller has no preference.
func DefaultOptions() Options {
	return Options{
		ExcludedColumns: append([]string(nil), DefaultExcludedColumns...),
		DayFirst:        true,
		DuplicateScope:  DuplicateMasterColumns,
	}
}
