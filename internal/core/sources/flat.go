package sources

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/reconcile/internal/core"
)

// FlatExportKey identifies flat tabular exports.
const FlatExportKey = "flat_export"

// Flat export key fields.
const (
	FieldClientContentID = "clientContentId"
	FieldPerformChannel  = "performChannel"
)

func init() {
	registerFlatExport()
}

func registerFlatExport() {
	core.Register(core.SourceDefinition{
		Info: core.SourceInfo{
			Key:        FlatExportKey,
			Label:      "Flat export (CSV)",
			Format:     "csv",
			Extensions: []string{".csv", ".txt"},
		},
		FieldSpecs: []core.FieldSpec{
			{Name: FieldClientContentID, Type: core.FieldID, Required: true},
			{Name: FieldPerformChannel, Type: core.FieldID, Required: true},
		},
		Keys: core.KeyPair{
			Primary:   core.KeyField{Master: core.ColMFLID, Source: FieldClientContentID},
			Secondary: core.KeyField{Master: core.ColOverrideID, Source: FieldPerformChannel},
		},
		Shape: shapeFlat,
	})
}

// shapeFlat reads a CSV export. Every column is text; the key columns are
// normalized later when the relation is indexed. Header names matching a
// field spec case-insensitively take the spec's spelling. Excluded columns
// are dropped, and a repeated header keeps its first occurrence.
func shapeFlat(r io.Reader, specs []core.FieldSpec, opts core.ShapeOptions) (*core.ShapedSource, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", core.ErrMalformedSource)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", core.ErrMalformedSource, err)
	}

	header = canonicalHeader(header, specs)
	if _, err := core.ValidateHeaders("", header, specs); err != nil {
		return nil, err
	}

	excluded := make(map[string]bool, len(opts.ExcludedColumns))
	for _, c := range opts.ExcludedColumns {
		excluded[c] = true
	}

	var fields []string
	var positions []int
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		if h == "" || excluded[h] || seen[h] {
			continue
		}
		seen[h] = true
		fields = append(fields, h)
		positions = append(positions, i)
	}

	out := &core.ShapedSource{Fields: fields}
	for index := 0; ; index++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				out.Dropped = append(out.Dropped, &core.ShapeError{Index: index, Reason: pe.Error()})
				continue
			}
			return nil, fmt.Errorf("%w: %v", core.ErrMalformedSource, err)
		}
		if blankRow(row) {
			continue
		}

		rec := make(core.SourceRecord, len(fields))
		for j, pos := range positions {
			if pos < len(row) {
				rec[j] = core.CleanCell(row[pos])
			}
		}
		out.Records = append(out.Records, rec)
	}

	return out, nil
}

// canonicalHeader cleans header cells and rewrites spec fields to their
// declared spelling.
func canonicalHeader(header []string, specs []core.FieldSpec) []string {
	out := make([]string, len(header))
	for i, h := range header {
		h = core.CleanCell(h)
		for _, spec := range specs {
			if strings.EqualFold(h, spec.Name) {
				h = spec.Name
				break
			}
		}
		out[i] = h
	}
	return out
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
