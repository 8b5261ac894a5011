// Package diag defines the diagnostic model shared by checks, the suppression
// engine and the output formatters.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - ID – stable check identifier such as "zerodiv" or "unusedFunction".
//   - Severity – ordered enum defined in severity.go.
//   - File, Line, Column – location; File is a normalized slash path, Line is
//     1-based, Column is 1-based or 0 when a check reports a whole line.
//   - Message – human oriented text; keep it short and actionable.
//   - Symbol – optional symbol name for checks that key findings by symbol.
//
// Diagnostics are immutable once produced. Suppression never rewrites a
// diagnostic, it only decides whether the diagnostic is forwarded.
//
// # Emitting diagnostics
//
// Checks use a diag.Reporter to decouple emission from storage. BagReporter
// aggregates into a Bag, which supports canonical sorting and deduplication.
// DedupReporter filters exact duplicates before they reach the next reporter.
//
// # Ordering
//
// Bag.Sort orders by file, line and column and is stable, so entries at the
// same location keep the order in which they were added. The driver adds
// diagnostics in file-index order, which makes the final order independent of
// how files were spread over workers.
//
// Keep the data model deterministic and msgpack-friendly: the result cache
// stores raw diagnostics and decodes them on later runs.
package diag
