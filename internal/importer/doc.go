// Package importer reads an organize run's audit log and fills the catalog:
// frame rows first, then per-file header keywords and computed pixel
// statistics.
package importer
