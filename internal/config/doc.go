// Package config loads, normalizes, and validates rocksolid's TOML
// configuration.
package config
