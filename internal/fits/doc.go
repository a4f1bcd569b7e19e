// Package fits decodes the primary HDU of FITS exposure files: ASCII header
// cards and the pixel array. It implements the small subset the organizer and
// importer need and exposes header access as ordered candidate-key lookups.
package fits
