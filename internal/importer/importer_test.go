package importer_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/gvrocha/rocksolid-fits/internal/auditlog"
	"github.com/gvrocha/rocksolid-fits/internal/importer"
	"github.com/gvrocha/rocksolid-fits/internal/testsupport"
)

func floatPtr(v float64) *float64 { return &v }

// writeOrganizedFrame places a frame on disk and returns matching log entry
// fields.
func writeOrganizedFrame(t *testing.T, dir, name string) string {
	t.Helper()
	dest := filepath.Join(dir, name)
	testsupport.WriteFrame(t, dest, []testsupport.HeaderCard{
		testsupport.StringCard("FRAME", "Light"),
		testsupport.FloatCard("EXPTIME", 120),
		testsupport.StringCard("OBJECT", "M31"),
		testsupport.FloatCard("CCD-TEMP", -18.3),
	}, 2, 2, []uint16{100, 200, 300, 65535})
	return dest
}

func writeLog(t *testing.T, dir string, entries []auditlog.Entry) string {
	t.Helper()
	path := filepath.Join(dir, "organize_log_test.tsv")
	w, err := auditlog.NewWriter(path)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	for _, e := range entries {
		if err := w.Append(e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return path
}

func copiedEntry(origin, dest string) auditlog.Entry {
	return auditlog.Entry{
		OriginFile:  origin,
		DestFile:    dest,
		Action:      auditlog.ActionCopied,
		FrameType:   "light",
		Target:      "m31",
		Filter:      "nofilter",
		ExposureSec: floatPtr(120),
		Gain:        "gain120",
		Temperature: floatPtr(-18.3),
		TempFolder:  "minus20c_to_minus18c",
		Timestamp:   "20250301_235000_500",
		SessionDate: "20250301",
	}
}

func TestRunImportsFramesAndStatistics(t *testing.T) {
	dir := t.TempDir()
	dest := writeOrganizedFrame(t, dir, "light.fit")
	logPath := writeLog(t, dir, []auditlog.Entry{copiedEntry("/in/light.fit", dest)})

	store := testsupport.MustOpenStore(t)
	cfg := testsupport.NewConfig(t, testsupport.WithCommitBatchSize(1))
	ctx := context.Background()

	summary, err := importer.Run(ctx, store, importer.Options{
		LogPath:         logPath,
		CommitBatchSize: cfg.Import.CommitBatchSize,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.FramesInserted != 1 || summary.FilesProcessed != 1 {
		t.Fatalf("summary = %+v", summary)
	}

	id, err := store.FrameIDByDestination(ctx, dest)
	if err != nil {
		t.Fatalf("FrameIDByDestination: %v", err)
	}

	// Header keyword imported as text or numeric per card type.
	_, text, err := store.Attribute(ctx, id, "OBJECT")
	if err != nil || text == nil || *text != "M31" {
		t.Errorf("OBJECT = %v, %v", text, err)
	}
	numeric, _, err := store.Attribute(ctx, id, "EXPTIME")
	if err != nil || numeric == nil || *numeric != 120 {
		t.Errorf("EXPTIME = %v, %v", numeric, err)
	}

	// Statistics present; fixture pixels are 100, 200, 300, 65535 with the
	// unsigned 16-bit ceiling.
	mean, _, err := store.Attribute(ctx, id, "stat_mean")
	if err != nil || mean == nil {
		t.Fatalf("stat_mean: %v, %v", mean, err)
	}
	if want := (100.0 + 200 + 300 + 65535) / 4; *mean != want {
		t.Errorf("stat_mean = %v, want %v", *mean, want)
	}
	high, _, err := store.Attribute(ctx, id, "stat_pixels_saturated_high")
	if err != nil || high == nil || *high != 1 {
		t.Errorf("stat_pixels_saturated_high = %v, %v", high, err)
	}
	total, _, err := store.Attribute(ctx, id, "stat_total_pixels")
	if err != nil || total == nil || *total != 4 {
		t.Errorf("stat_total_pixels = %v, %v", total, err)
	}
	if _, _, err := store.Attribute(ctx, id, "stat_percentile_50"); err != nil {
		t.Errorf("stat_percentile_50 missing: %v", err)
	}

	// Structural cards never become attribute rows.
	if _, _, err := store.Attribute(ctx, id, "SIMPLE"); err == nil {
		t.Error("SIMPLE should be skipped")
	}
}

func TestRunHeadersOnlySkipsStatistics(t *testing.T) {
	dir := t.TempDir()
	dest := writeOrganizedFrame(t, dir, "light.fit")
	logPath := writeLog(t, dir, []auditlog.Entry{copiedEntry("/in/light.fit", dest)})

	store := testsupport.MustOpenStore(t)
	ctx := context.Background()

	if _, err := importer.Run(ctx, store, importer.Options{LogPath: logPath, HeadersOnly: true}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	id, err := store.FrameIDByDestination(ctx, dest)
	if err != nil {
		t.Fatalf("FrameIDByDestination: %v", err)
	}
	if _, _, err := store.Attribute(ctx, id, "EXPTIME"); err != nil {
		t.Errorf("EXPTIME missing: %v", err)
	}
	if _, _, err := store.Attribute(ctx, id, "stat_mean"); err == nil {
		t.Error("stat_mean should be absent in headers-only mode")
	}
}

func TestRunSkipsAlreadyImported(t *testing.T) {
	dir := t.TempDir()
	dest := writeOrganizedFrame(t, dir, "light.fit")
	logPath := writeLog(t, dir, []auditlog.Entry{copiedEntry("/in/light.fit", dest)})

	store := testsupport.MustOpenStore(t)
	ctx := context.Background()

	if _, err := importer.Run(ctx, store, importer.Options{LogPath: logPath}); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	second, err := importer.Run(ctx, store, importer.Options{LogPath: logPath})
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if second.FramesInserted != 0 || second.FramesExisting != 1 {
		t.Errorf("frame rows on rerun = %+v", second)
	}
	if second.FilesProcessed != 0 || second.FilesSkipped != 1 {
		t.Errorf("rerun should skip imported file: %+v", second)
	}
}

func TestRunSkipsMissingAndUnreadableRows(t *testing.T) {
	dir := t.TempDir()
	dest := writeOrganizedFrame(t, dir, "light.fit")
	logPath := writeLog(t, dir, []auditlog.Entry{
		copiedEntry("/in/light.fit", dest),
		copiedEntry("/in/gone.fit", filepath.Join(dir, "gone.fit")),
		{OriginFile: "/in/bad.fit", Action: auditlog.ActionSkippedUnreadable},
	})

	store := testsupport.MustOpenStore(t)
	summary, err := importer.Run(context.Background(), store, importer.Options{LogPath: logPath})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// The unreadable row is filtered out entirely; the missing file gets a
	// frame row but no metadata.
	if summary.FramesInserted != 2 {
		t.Errorf("frames inserted = %d, want 2", summary.FramesInserted)
	}
	if summary.FilesProcessed != 1 || summary.FilesSkipped != 1 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestRunRejectsMissingLog(t *testing.T) {
	store := testsupport.MustOpenStore(t)
	_, err := importer.Run(context.Background(), store, importer.Options{
		LogPath: filepath.Join(t.TempDir(), "nope.tsv"),
	})
	if err == nil {
		t.Fatal("expected error for missing log")
	}
}
