package config

import "strings"

func (c *Config) normalize() error {
	logDir, err := expandPath(strings.TrimSpace(c.Paths.LogDir))
	if err != nil {
		return err
	}
	c.Paths.LogDir = logDir

	c.Catalog.Filename = strings.TrimSpace(c.Catalog.Filename)
	if c.Catalog.Filename == "" {
		c.Catalog.Filename = defaultCatalogFilename
	}

	if c.Import.CommitBatchSize <= 0 {
		c.Import.CommitBatchSize = defaultCommitBatchSize
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}
