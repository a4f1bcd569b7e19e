// Package stats computes per-frame pixel statistics for metadata import:
// moments, fixed percentile ranks, and saturation counts.
package stats
