// Package main hosts the byebye CLI entrypoint and command graph.
//
// The Cobra command tree covers inventory records (items, captures, saved
// views), Discogs catalog search, price quotes, batch identification, the HTTP
// API server, and configuration scaffolding. Configuration, logging, the item
// store, and the Discogs client are resolved once per invocation by the
// command context so subcommands only deal with presentation.
package main
