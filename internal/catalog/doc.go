// Package catalog persists organized frames and their header/statistics
// attributes in a SQLite database: a wide fits_frames table keyed by
// destination path and a long fits_metadata table of per-frame key/value
// rows.
package catalog
