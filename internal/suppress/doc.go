// Package suppress decides which diagnostics are reported.
//
// A Suppression names an error id (possibly a wildcard), and optionally a
// file pattern, a line and a symbol. Suppressions come from inline comments
// (see package directive), suppression lists, the project manifest and the
// command line. They are collected into a Registry. A Matcher filters
// diagnostics against it and records which suppressions were used. After a
// run, Unmatched turns the unused inline and list suppressions into
// unmatchedSuppression diagnostics.
//
// Matching never mutates the Registry. A Matcher only accumulates the set of
// touched suppression ids, so workers can match concurrently against forked
// registries and the driver unions their touched sets afterwards.
package suppress
