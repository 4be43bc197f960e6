// Package batch identifies a list of inventory items against the Discogs
// catalog, one item at a time.
//
// Each item moves from pending through searching to exactly one terminal
// outcome. A single candidate is applied to the item's title and artist when
// auto-apply is on; every other outcome leaves the record untouched. Observers
// receive a full copy of the state list after every transition.
package batch
