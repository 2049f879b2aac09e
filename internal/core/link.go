package core

// link.go implements greedy two-key record linkage.
//
// Master rows are visited in row order. Each row takes at most one source
// record and a taken record is never offered again, so results depend on the
// order of both inputs. Callers must preserve input order; it is part of the
// contract, not an implementation detail.
//
// For every master row, per source:
//  1. Invalid master primary key: no attempt, match "none".
//  2. Full match: first unconsumed record agreeing on both keys.
//  3. Partial match: first unconsumed record (lowest input position)
//     agreeing on exactly one key; the other key is reported as mismatched.
//  4. Otherwise "none".
//
// When more than one record qualifies at the chosen level the first one wins
// and the row is counted as ambiguous.

// LinkResult is the linkage outcome for one master row against one source.
type LinkResult struct {
	Match       MatchType
	Record      int    // Index into Relation.Records, -1 when Match is none
	MismatchKey string // Master column of the disagreeing key (partial only)
	Candidates  int    // Unconsumed records that qualified at the chosen level
	Skipped     bool   // Master primary key was invalid
}

// Ambiguous reports whether the chosen record was one of several candidates.
func (r LinkResult) Ambiguous() bool {
	return r.Candidates > 1
}

// Linkage is the result of linking a whole master table against one source.
type Linkage struct {
	Relation *Relation
	Results  []LinkResult // One per master row
	Consumed []bool       // One per source record
}

// Link matches every master row against rel.
func Link(m *Master, rel *Relation) *Linkage {
	lk := &Linkage{
		Relation: rel,
		Results:  make([]LinkResult, m.Len()),
		Consumed: make([]bool, rel.Len()),
	}

	for i := range m.Rows {
		lk.Results[i] = lk.linkRow(m, i)
	}
	return lk
}

func (lk *Linkage) linkRow(m *Master, row int) LinkResult {
	rel := lk.Relation
	keys := rel.Keys
	none := LinkResult{Match: MatchNone, Record: -1}

	primary := m.KeyValue(row, keys.Primary)
	if IsInvalidKey(primary) {
		none.Skipped = true
		return none
	}
	secondary := m.KeyValue(row, keys.Secondary)
	secondaryValid := !IsInvalidKey(secondary)

	byPrimary := lk.unconsumed(rel.byPrimary[primary])

	if secondaryValid {
		full := -1
		count := 0
		for _, idx := range byPrimary {
			if rel.SecondaryKey(idx) == secondary {
				if full < 0 {
					full = idx
				}
				count++
			}
		}
		if full >= 0 {
			lk.Consumed[full] = true
			return LinkResult{Match: MatchFull, Record: full, Candidates: count}
		}
	}

	var bySecondary []int
	if secondaryValid {
		bySecondary = lk.unconsumed(rel.bySecondary[secondary])
	}

	best := -1
	mismatch := ""
	if len(byPrimary) > 0 {
		best = byPrimary[0]
		mismatch = keys.Secondary.Master
	}
	if len(bySecondary) > 0 && (best < 0 || bySecondary[0] < best) {
		best = bySecondary[0]
		mismatch = keys.Primary.Master
	}
	if best < 0 {
		return none
	}

	lk.Consumed[best] = true
	return LinkResult{
		Match:       MatchPartial,
		Record:      best,
		MismatchKey: mismatch,
		Candidates:  len(byPrimary) + len(bySecondary),
	}
}

// unconsumed filters an ascending index list down to records still available.
func (lk *Linkage) unconsumed(indices []int) []int {
	var out []int
	for _, idx := range indices {
		if !lk.Consumed[idx] {
			out = append(out, idx)
		}
	}
	return out
}

// Unmatched returns the records never consumed, in input order.
func (lk *Linkage) Unmatched() []SourceRecord {
	var out []SourceRecord
	for i, used := range lk.Consumed {
		if !used {
			out = append(out, lk.Relation.Records[i])
		}
	}
	return out
}

// ConsumedCount returns the number of records taken by some master row.
func (lk *Linkage) ConsumedCount() int {
	n := 0
	for _, used := range lk.Consumed {
		if used {
			n++
		}
	}
	return n
}
