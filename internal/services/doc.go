// Package services defines shared utilities consumed by the catalog, pricing,
// batch, and HTTP layers.
//
// Key responsibilities:
//   - Context helpers that stamp item IDs, release IDs, batch run IDs, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper, so every layer can
//     classify failures (invalid query, missing credential, upstream failure,
//     internal error) with errors.Is instead of string matching.
//   - UpstreamError, which carries the HTTP status code a remote endpoint
//     answered with.
//
// Use these helpers when wiring new integrations so failure reporting stays
// uniform across the CLI and the API server.
package services
