// Package importer implements the catalog bulk-import pipeline.
//
// The pipeline has three stages, each depending only on the one before it:
//
//  1. Ingest: [Parse] turns an uploaded file (one CSV or a zip archive of
//     CSVs) into a [Graph], the canonical in-memory representation of the
//     import, keyed by human-assigned natural keys (names, codes) rather
//     than storage identifiers. Two tabular encodings are auto-detected
//     per file: entity-specific files (one file per entity kind) and the
//     generic type-column encoding (each row declares its kind via a
//     "type" column and names its owner via "parent").
//
//  2. Validate: [Validate] checks the graph against a catalog scope and
//     returns blocking errors and non-blocking warnings. Every issue is
//     attributed to an exact file, row, and field. All referenced natural
//     keys must resolve within the same import; the validator never
//     touches the database.
//
//  3. Commit: [Committer.Commit] upserts the graph in dependency order
//     (categories and sizes first, then modifier groups, modifiers, items,
//     default-size links, and finally item modifier-group assignments)
//     inside one store transaction. Natural keys are resolved to ids as
//     each step runs, and downstream references are rewritten through the
//     accumulated id maps. Any failure aborts the whole transaction;
//     partial commits do not exist.
//
// Re-running the same import is idempotent at the natural-key level: the
// second run updates the entities the first run created.
//
// # Error tiers
//
//   - [FormatError] / [ErrEmptyImport]: the upload could not be read.
//     Nothing is validated or committed.
//   - [Report] errors: the graph is structurally or referentially invalid.
//     The full list is returned so the caller can fix every issue at once.
//   - [CommitError]: a store-level failure or an unresolved reference that
//     slipped past validation. The transaction is rolled back.
package importer
