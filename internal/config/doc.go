// Package config loads, normalizes, and validates subsync configuration data.
//
// It supplies repository defaults (a ten minute candidate window and a strict
// similarity threshold of 90), expands user paths including tilde shortcuts,
// reads TOML files, and honours environment fallbacks such as
// OPENSUBTITLES_API_KEY and SUBSYNC_TRANSLATOR_API_KEY.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical language codes, and clear validation errors.
package config
