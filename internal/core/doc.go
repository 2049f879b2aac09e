// Package core provides the business logic for broadcast schedule reconciliation.
//
// This package holds all domain logic independent of any UI or transport
// layer. It is used by the web handlers, the reconcile CLI and tests without
// modification.
//
// # Architecture
//
// The package is organized around several key concepts:
//
//   - Master: the authoritative schedule, one row per broadcast event.
//   - Source Definitions: registered via the registry, each source kind knows
//     how to shape its input into records and which keys link it to the master.
//   - Pipeline: link, merge, classify and reorder ([Reconcile]).
//   - Service: runs reconciliations under a concurrency limit and keeps
//     results in memory for a configurable time.
//
// # Source Registry
//
// Source kinds are registered at init time using [Register]. Each
// [SourceDefinition] contains everything needed to read one kind of export:
//
//	core.Register(core.SourceDefinition{
//	    Info: core.SourceInfo{Key: "flat_export", Format: "csv", Extensions: []string{".csv"}},
//	    FieldSpecs: []core.FieldSpec{
//	        {Name: "clientContentId", Type: core.FieldID, Required: true},
//	        {Name: "performChannel", Type: core.FieldID, Required: true},
//	    },
//	    Keys: core.KeyPair{
//	        Primary:   core.KeyField{Master: core.ColMFLID, Source: "clientContentId"},
//	        Secondary: core.KeyField{Master: core.ColOverrideID, Source: "performChannel"},
//	    },
//	    Shape: shapeFlat,
//	})
//
// # Pipeline
//
//  1. The master is validated and its identifiers normalized ([PrepareMaster]).
//  2. Each source is shaped in parallel; a failing source is reported but
//     does not stop the others.
//  3. Each master row is linked greedily to at most one record per source
//     ([Link]); a record is consumed at most once.
//  4. Linked fields are merged under <field>_<label> with match_type_<label>
//     and mismatch_key_<label> bookkeeping columns ([Merge]).
//  5. Every cell gets one [Outcome]: duplicate, then cross-source
//     consistency, then the rule engine ([ClassifyTable]).
//  6. Columns are reordered: master, source fields grouped by base name,
//     bookkeeping ([Reorder]).
//
// # Error Handling
//
// Sentinel errors ([ErrMissingRequiredColumn], [ErrMalformedSource], ...)
// are matched with errors.Is; [MissingColumnError], [SourceError] and
// [RunError] carry detail for errors.As. Technical errors are mapped to
// user-friendly messages using [MapError]:
//
//   - DB004-DB008: Database errors (connections, master query)
//   - VAL004: Missing required columns
//   - SRC001-SRC003: Source errors (malformed, duplicate label, unknown kind)
//   - FILE001-FILE005: File errors (size, format, encoding, empty)
//   - REC001-REC005: Run errors (incomplete, busy, expired, cancelled, timeout)
package core
