// Package logging assembles structured slog loggers and formatting helpers used
// across byebye.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so catalog, pricing, and batch
// code can tag log lines with item IDs, release IDs, batch run IDs, and
// correlation IDs. The package also provides a no-op logger for tests and
// wiring code that cannot fail.
package logging
