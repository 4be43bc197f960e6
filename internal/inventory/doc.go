// Package inventory persists resale items, their photo captures, and saved
// search views in SQLite.
//
// The Store owns schema initialization, busy retries, and SKU allocation.
// CreateItem reads the day's greatest SKU and inserts the new row inside one
// immediate write transaction, and the UNIQUE constraint on items.sku catches
// any writer that slipped past it; conflicting inserts are retried with a
// freshly allocated serial.
//
// Image bytes live outside the database. Captures only record the path the
// caller stored the file under.
//
// Schema changes bump schemaVersion in schema.go.
package inventory
