// Package core reconciles a master table against a test table and checks a
// single table against validation rules.
//
// The package is independent of any UI or transport layer. [Diff] and
// [Validate] are pure functions over parsed tables (see package tableio) and
// their results are plain records that can be rendered or exported.
// [Service] ties them to the loaders, a rule set and a concurrency limit for
// the server and CLI.
//
// # Reconciliation
//
// [Diff] combines three steps:
//
//  1. [Unify] puts both tables on one column schema: the sorted, deduplicated
//     union of their column names. A column missing from one table is null
//     there.
//  2. [Align] pairs rows, either by position ([IndexKey]) or by the value of
//     a key column ([ColumnKey]). If the key column is missing from either
//     table, alignment falls back to position and reports it in
//     [Alignment.Fallback].
//  3. [Equal] decides cell equivalence: null equals null, null never equals a
//     value, values compare by exact canonical string. "1" and "1.0" differ.
//
// Records come out key-major, column-minor, so output is reproducible.
//
// # Validation
//
// [Validate] applies a [RuleSet] row by row, rule by rule. Rules are data:
// a column selector, whether the value must be numeric, an inclusive range,
// and the issue kinds to report on failure. [DefaultRuleSet] holds the
// baseline lab rules for drive torque, drive speed and flow columns.
//
// A malformed rule set is rejected with a [*ConfigurationError] before any
// row is looked at.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages with [MapError]. Codes:
//
//   - CFG001: invalid rule set
//   - TBL001-TBL002: duplicate column, unknown database table
//   - FILE001-FILE005: file size, format, encoding and emptiness problems
//   - CMP001-CMP002: comparison slots exhausted, no master table
//   - DB004-DB007: database source reachability
//   - REQ001-REQ002: request cancelled or timed out
//   - RATE001: rate limited
package core
