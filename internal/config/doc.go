// Package config loads, normalizes, and validates daemon configuration.
//
// Configuration lives in a TOML file. Missing values fall back to the
// repository defaults, `~` prefixes in paths are expanded, and Validate
// rejects combinations the pipeline cannot run with.
package config
