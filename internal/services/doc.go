// Package services provides the shared error taxonomy and context plumbing
// used across pipeline stages.
package services
