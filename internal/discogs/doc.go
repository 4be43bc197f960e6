// Package discogs is the small Discogs client behind catalog search and price
// quotes.
//
// It covers database search, release metadata, release statistics, and
// marketplace price suggestions over the JSON API, plus raw HTML fetches of the
// sales-history and release pages. Every request carries no-cache directives
// and waits on a shared rate limiter. Non-success statuses surface as
// services.UpstreamError so callers can report the upstream code.
package discogs
