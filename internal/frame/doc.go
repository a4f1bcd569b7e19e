// Package frame extracts per-file observational attributes from exposure
// headers and resolves observing-night session dates.
package frame
