// Package catalog resolves physical items against the Discogs database.
//
// Resolver.Search validates the query, issues a single search request, and
// normalizes up to five results into Candidate records in upstream order.
// Candidates are transient: they populate item records or drive manual
// disambiguation and are never persisted.
package catalog
