// Package textutil provides token sanitization helpers shared by the
// organizer's path and filename synthesis.
package textutil
