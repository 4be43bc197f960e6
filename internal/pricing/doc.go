// Package pricing assembles market price quotes for a Discogs release and
// formats prices for display in yen.
//
// Aggregator.Quote fans out to the three structured endpoints concurrently,
// then fetches the sales-history and release pages one after the other. Every
// source is modeled as an Outcome that is either available or unavailable, and
// a failing source only blanks its own fields. Fields are merged through a
// fixed precedence table: scraped values beat API values, which beat nothing.
// Only a panic inside the pipeline escapes, as services.ErrInternal.
//
// Quotes are built fresh on every call and never cached.
package pricing
