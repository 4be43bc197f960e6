// Package httpapi serves the inventory, catalog search, price quote, and batch
// identification operations over HTTP.
//
// Responses are JSON. Errors carry {"error", "kind"} with the status chosen by
// services.HTTPStatus. Batch runs stream newline-delimited JSON snapshots and
// hold the same file lock as the identify command, so only one run writes to
// the inventory at a time. When an API token is configured every route except
// /healthz requires "Authorization: Bearer <token>".
package httpapi
