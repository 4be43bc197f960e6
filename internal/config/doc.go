// Package config loads, normalizes, and validates byebye configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// DISCOGS_TOKEN. The Config type centralizes every knob the CLI and API server
// need: where the inventory database lives, how to reach the Discogs API and
// marketplace pages, how the batch identifier paces itself, and how logs are
// written.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
