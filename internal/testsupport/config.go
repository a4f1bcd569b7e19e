package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/gvrocha/rocksolid-fits/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with a unique temp log directory per
// test. It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithCommitBatchSize overrides the importer's transaction batch size.
func WithCommitBatchSize(size int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Import.CommitBatchSize = size
	}
}

// WithRename sets the organizer's rename mode.
func WithRename(rename bool) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Organize.RenameFiles = rename
	}
}
