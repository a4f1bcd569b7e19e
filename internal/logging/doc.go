// Package logging configures slog with console and JSON handlers plus the
// attribute helpers shared across the pipeline.
package logging
