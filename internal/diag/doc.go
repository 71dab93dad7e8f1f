// Package diag defines the diagnostic model shared by the header scanner,
// the emitter and the driver.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Code – compact numeric identifier (see codes.go) with a stable string
//     form. Each code carries its default Severity (Info, Warning, Error).
//   - Severity – usually Code.Severity(); callers may override it.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the source.Span of the offending header line.
//   - Notes – optional secondary spans, e.g. where a duplicate was first declared.
//
// # Emitting diagnostics
//
// Producers report through a Reporter so emission stays decoupled from
// storage. BagReporter collects into a Bag, which supports limits, sorting
// and deduplication. Report starts a ReportBuilder at
// the code's severity and chains notes before Emit.
//
// Package diag does no formatting beyond the stable single-line form in
// golden.go; rendering lives in internal/diagfmt.
package diag
