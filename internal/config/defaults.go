package config

const (
	defaultLogDir          = "~/.local/share/rocksolid/logs"
	defaultCatalogFilename = "astrophotography.db"
	defaultCommitBatchSize = 10
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Organize: Organize{
			CalibrationLibrary: true,
			RenameFiles:        true,
		},
		Catalog: Catalog{
			Filename: defaultCatalogFilename,
		},
		Import: Import{
			CommitBatchSize: defaultCommitBatchSize,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
