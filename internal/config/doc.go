// Package config loads, normalizes, and validates sweeper configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// dispatcher and CLI need: sweep ranges, the trainer invocation template,
// parallelism limits, and directory roots.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, a resolved stop-file location, and clear validation errors.
package config
