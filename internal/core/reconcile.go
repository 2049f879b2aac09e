package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"
)

// SourceInput is one secondary dataset handed to a run.
type SourceInput struct {
	Name   string    // File name; selects the kind and default label
	Label  string    // Optional; derived from Name when empty
	Kind   string    // Optional source definition key; detected from Name when empty
	Reader io.Reader // Raw file content
}

// UnmatchedSet holds the records of one source no master row consumed.
type UnmatchedSet struct {
	Fields  []string       `json:"fields"`
	Records []SourceRecord `json:"records"`
}

// Result is the output of a reconciliation run.
type Result struct {
	Table     *MergedTable             `json:"table"`
	Labels    []string                 `json:"labels"`
	Unmatched map[string]*UnmatchedSet `json:"unmatched"`
	Sources   []SourceSummary          `json:"sources"`
	Columns   []ColumnSummary          `json:"columns"`
	Complete  bool                     `json:"complete"`
	Failures  []*SourceError           `json:"-"`
}

// FailureMessages returns one line per failed source.
func (r *Result) FailureMessages() []string {
	msgs := make([]string, len(r.Failures))
	for i, f := range r.Failures {
		msgs[i] = f.Error()
	}
	return msgs
}

// Source returns the summary of one source by label.
func (r *Result) Source(label string) (SourceSummary, bool) {
	for _, s := range r.Sources {
		if s.Label == label {
			return s, true
		}
	}
	return SourceSummary{}, false
}

// resolvedInput is a SourceInput with its label and definition settled.
type resolvedInput struct {
	SourceInput
	def SourceDefinition
	err error
}

// resolveInputs settles labels and kinds. Duplicate labels are fatal;
// unknown kinds fail only their own input.
func resolveInputs(inputs []SourceInput) ([]resolvedInput, error) {
	out := make([]resolvedInput, len(inputs))
	seen := make(map[string]bool, len(inputs))

	for i, in := range inputs {
		if in.Label == "" {
			in.Label = LabelFromName(in.Name)
		}
		if err := ValidateLabel(in.Label); err != nil {
			return nil, fmt.Errorf("input %d (%s): %w", i+1, in.Name, err)
		}
		if seen[in.Label] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateLabel, in.Label)
		}
		seen[in.Label] = true

		r := resolvedInput{SourceInput: in}
		var ok bool
		if in.Kind != "" {
			r.def, ok = Get(in.Kind)
		} else {
			r.def, ok = ForFile(in.Name)
		}
		if !ok {
			r.err = fmt.Errorf("%w for %q", ErrUnknownSourceKind, in.Name)
		}
		out[i] = r
	}
	return out, nil
}

// Reconcile runs the whole pipeline over a raw master table and source inputs.
//
// The master table and the label set are validated first; a failure there
// aborts the run. Each source is then shaped independently. A source that
// cannot be shaped is reported in the returned *RunError while the remaining
// sources are still reconciled; the result is then marked incomplete.
func Reconcile(ctx context.Context, raw *Table, inputs []SourceInput, opts Options) (*Result, error) {
	log := opts.logger()

	master, err := PrepareMaster(raw, opts.DayFirst)
	if err != nil {
		return nil, err
	}

	resolved, err := resolveInputs(inputs)
	if err != nil {
		return nil, err
	}

	shapeOpts := ShapeOptions{ExcludedColumns: opts.ExcludedColumns}
	rels := make([]*Relation, len(resolved))
	failures := make([]*SourceError, len(resolved))

	g, gctx := errgroup.WithContext(ctx)
	for i, in := range resolved {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if in.err != nil {
				failures[i] = &SourceError{Source: in.Label, Err: in.err}
				return nil
			}

			rel, err := Shape(in.def, in.Label, in.Reader, shapeOpts)
			if err != nil {
				failures[i] = asSourceError(in.Label, err)
				log.Warn("source rejected", "source", in.Label, "error", err)
				return nil
			}
			log.Debug("source shaped",
				"source", in.Label,
				"kind", rel.Kind,
				"records", rel.Len(),
				"dropped", len(rel.Dropped),
			)
			rels[i] = rel
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var ok []*Relation
	var failed []*SourceError
	for i := range resolved {
		if failures[i] != nil {
			failed = append(failed, failures[i])
			continue
		}
		ok = append(ok, rels[i])
	}

	res, err := ReconcileRelations(ctx, master, ok, opts)
	if err != nil {
		return nil, err
	}
	if len(failed) > 0 {
		res.Complete = false
		res.Failures = failed
		return res, &RunError{Failures: failed}
	}
	return res, nil
}

func asSourceError(label string, err error) *SourceError {
	var se *SourceError
	if errors.As(err, &se) {
		return se
	}
	return &SourceError{Source: label, Err: err}
}

// ReconcileRelations links, merges, classifies and reorders already-shaped
// sources. Relations are processed in the given order; the output is
// identical for identical inputs.
func ReconcileRelations(ctx context.Context, m *Master, rels []*Relation, opts Options) (*Result, error) {
	log := opts.logger()
	start := time.Now()

	labels := make([]string, len(rels))
	seen := make(map[string]bool, len(rels))
	for i, rel := range rels {
		if seen[rel.Label] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateLabel, rel.Label)
		}
		seen[rel.Label] = true
		labels[i] = rel.Label
	}

	// Linkage is sequential within a source and independent across sources.
	linkages := make([]*Linkage, len(rels))
	g, gctx := errgroup.WithContext(ctx)
	for i, rel := range rels {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			linkages[i] = Link(m, rel)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	table, unmatched := Merge(m, linkages)
	ClassifyTable(table, m, opts)
	Reorder(table)

	res := &Result{
		Table:     table,
		Labels:    labels,
		Unmatched: make(map[string]*UnmatchedSet, len(rels)),
		Sources:   make([]SourceSummary, len(rels)),
		Complete:  true,
	}
	for i, lk := range linkages {
		rel := lk.Relation
		res.Unmatched[rel.Label] = &UnmatchedSet{Fields: rel.Fields, Records: unmatched[rel.Label]}
		res.Sources[i] = summarizeSource(lk)
		log.Debug("source linked",
			"source", rel.Label,
			"full", res.Sources[i].Full,
			"partial", res.Sources[i].Partial,
			"none", res.Sources[i].None,
			"unmatched", res.Sources[i].Unmatched,
			"ambiguous", res.Sources[i].Ambiguous,
		)
	}
	res.Columns = summarizeColumns(table)

	log.Info("reconciliation complete",
		"master_rows", m.Len(),
		"sources", len(rels),
		"columns", len(table.Columns),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}
