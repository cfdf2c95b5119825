// Package logging assembles structured slog loggers and formatting helpers used
// across the packaging pipeline.
//
// It owns the console and JSON handlers, routes error-level records to the
// error stream while progress lines go to standard output, and exposes
// context-aware helpers so stage code automatically tags log lines with the
// build identifier and stage name. A no-op logger is provided for tests and
// wiring code that cannot fail.
package logging
