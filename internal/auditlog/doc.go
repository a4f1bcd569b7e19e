// Package auditlog writes and reads the tab-separated run record that the
// organizer produces and the metadata importer consumes.
package auditlog
