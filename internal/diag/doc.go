// Package diag defines the diagnostic model shared by all pipeline phases.
//
// Diagnostic is the central record:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with a stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary / Label – the span pointing to the issue and an optional
//     sub-message printed under it.
//   - Notes – secondary spans with their own messages ("defined here").
//
// Phases emit through a Reporter so they never depend on storage; the parser
// and the checker build reports with ReportError(...).WithLabel(...).WithNote(...).Emit().
// BagReporter collects into a Bag, which the driver sorts and hands to
// internal/diagfmt for rendering. Package diag performs no IO.
package diag
