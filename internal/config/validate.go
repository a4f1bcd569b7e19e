package config

import (
	"fmt"
	"strings"
)

var validLogFormats = map[string]struct{}{
	"console": {},
	"json":    {},
}

var validLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// Validate checks configuration values for consistency.
func (c *Config) Validate() error {
	if _, ok := validLogFormats[c.Logging.Format]; !ok {
		return fmt.Errorf("logging.format: unsupported value %q (expected console or json)", c.Logging.Format)
	}
	if _, ok := validLogLevels[c.Logging.Level]; !ok {
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	if strings.ContainsRune(c.Catalog.Filename, '/') {
		return fmt.Errorf("catalog.filename: must be a bare filename, got %q", c.Catalog.Filename)
	}
	if c.Import.CommitBatchSize <= 0 {
		return fmt.Errorf("import.commit_batch_size: must be positive, got %d", c.Import.CommitBatchSize)
	}
	return nil
}
