// Package config loads, normalizes, and validates spritedeck configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SPRITEDECK_SOURCE_ROOT. The Config type centralizes every knob the CLI and
// the thumbnail engine need, so the source root, document location, and
// thumbnail sizes are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
