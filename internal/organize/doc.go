// Package organize implements the two-pass batch that routes exposure files
// into a deterministic output hierarchy: attribute grouping, temperature
// window placement, path and filename synthesis, and the copy driver that
// writes the audit log.
package organize
