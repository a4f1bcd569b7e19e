package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gvrocha/rocksolid-fits/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if !cfg.Organize.CalibrationLibrary || !cfg.Organize.RenameFiles {
		t.Fatalf("unexpected organize defaults: %+v", cfg.Organize)
	}
	if cfg.Catalog.Filename != "astrophotography.db" {
		t.Fatalf("unexpected catalog filename: %q", cfg.Catalog.Filename)
	}
	if cfg.Import.CommitBatchSize != 10 {
		t.Fatalf("unexpected commit batch size: %d", cfg.Import.CommitBatchSize)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[organize]
calibration_library = false
rename_files = false

[logging]
format = "json"
level = "debug"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatalf("expected existing config, got exists=%v path=%q", exists, resolved)
	}
	if cfg.Organize.CalibrationLibrary || cfg.Organize.RenameFiles {
		t.Fatalf("overrides not applied: %+v", cfg.Organize)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging overrides not applied: %+v", cfg.Logging)
	}
}

func TestLoadRejectsBadLogFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nformat = \"xml\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for bad log format")
	}
}

func TestValidateRejectsPathCatalogFilename(t *testing.T) {
	cfg := config.Default()
	cfg.Catalog.Filename = "sub/dir.db"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for catalog filename containing a path")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("unexpected sample format: %q", cfg.Logging.Format)
	}
}
