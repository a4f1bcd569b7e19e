package organize_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gvrocha/rocksolid-fits/internal/auditlog"
	"github.com/gvrocha/rocksolid-fits/internal/organize"
	"github.com/gvrocha/rocksolid-fits/internal/testsupport"
)

func floatPtr(v float64) *float64 { return &v }

func writeLight(t *testing.T, dir, name, dateObs string, temp float64) {
	t.Helper()
	testsupport.WriteFrame(t, filepath.Join(dir, name), []testsupport.HeaderCard{
		testsupport.StringCard("FRAME", "Light"),
		testsupport.FloatCard("EXPTIME", 120),
		testsupport.StringCard("GAIN", "120"),
		testsupport.StringCard("FILTER", "Ha"),
		testsupport.FloatCard("CCD-TEMP", temp),
		testsupport.StringCard("OBJECT", "M 31"),
		testsupport.StringCard("DATE-OBS", dateObs),
	}, 2, 2, []uint16{10, 20, 30, 40})
}

func runOptions(t *testing.T, in, out string) organize.Options {
	cfg := testsupport.NewConfig(t, testsupport.WithRename(true))
	return organize.Options{
		InputDir:           in,
		OutputDir:          out,
		CalibrationLibrary: cfg.Organize.CalibrationLibrary,
		RenameFiles:        cfg.Organize.RenameFiles,
		TzOffsetHours:      floatPtr(0),
	}
}

func TestRunCopiesAndLogs(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeLight(t, in, "a.fit", "2025-03-01T23:50:00.000", -18.3)
	writeLight(t, in, "b.fit", "2025-03-02T00:10:00.000", -19.1)

	summary, err := organize.Run(context.Background(), runOptions(t, in, out))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Copied != 2 || summary.SkippedExists != 0 || summary.Unreadable != 0 {
		t.Fatalf("summary = %+v", summary)
	}

	// Both frames share the night of 2025-03-01 and a single range folder.
	dir := filepath.Join(out, "sessions", "20250301", "m31", "gain120", "120s", "ha", "minus20c_to_minus18c")
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir(%s): %v", dir, err)
	}
	if len(entries) != 2 {
		t.Fatalf("destination files = %d, want 2", len(entries))
	}

	logged, err := auditlog.Read(summary.LogPath, nil)
	if err != nil {
		t.Fatalf("Read log: %v", err)
	}
	if len(logged) != 2 {
		t.Fatalf("log entries = %d, want 2", len(logged))
	}
	for _, e := range logged {
		if e.Action != auditlog.ActionCopied {
			t.Errorf("action = %q", e.Action)
		}
		if e.SessionDate != "20250301" {
			t.Errorf("session = %q", e.SessionDate)
		}
		if e.Target != "m31" || e.TempFolder != "minus20c_to_minus18c" {
			t.Errorf("entry = %+v", e)
		}
	}
}

func TestRunIsIdempotent(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeLight(t, in, "a.fit", "2025-03-01T23:50:00.000", -18.3)

	first, err := organize.Run(context.Background(), runOptions(t, in, out))
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if first.Copied != 1 {
		t.Fatalf("first summary = %+v", first)
	}

	second, err := organize.Run(context.Background(), runOptions(t, in, out))
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if second.Copied != 0 || second.SkippedExists != 1 {
		t.Fatalf("second summary = %+v", second)
	}

	logged, err := auditlog.Read(second.LogPath, nil)
	if err != nil {
		t.Fatalf("Read log: %v", err)
	}
	if len(logged) != 1 || logged[0].Action != auditlog.ActionSkippedExists {
		t.Fatalf("second log = %+v", logged)
	}
	if logged[0].DestFile == "" {
		t.Error("skipped_exists entry must still carry the destination")
	}
}

func TestRunRoutesCalibrationLibrary(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	testsupport.WriteFrame(t, filepath.Join(in, "dark.fit"), []testsupport.HeaderCard{
		testsupport.StringCard("FRAME", "Dark"),
		testsupport.FloatCard("EXPTIME", 300),
		testsupport.StringCard("GAIN", "120"),
		testsupport.FloatCard("CCD-TEMP", -18.7),
		testsupport.StringCard("DATE-OBS", "2025-03-01T22:00:00.000"),
	}, 2, 2, []uint16{1, 2, 3, 4})
	testsupport.WriteFrame(t, filepath.Join(in, "bias.fit"), []testsupport.HeaderCard{
		testsupport.StringCard("FRAME", "Bias"),
		testsupport.StringCard("GAIN", "120"),
		testsupport.StringCard("DATE-OBS", "2025-03-01T22:01:00.000"),
	}, 2, 2, []uint16{1, 2, 3, 4})

	if _, err := organize.Run(context.Background(), runOptions(t, in, out)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	darkDir := filepath.Join(out, "calibration", "darks", "gain120", "300s", "minus19c")
	if entries, err := os.ReadDir(darkDir); err != nil || len(entries) != 1 {
		t.Errorf("dark library dir %s: %v entries, err %v", darkDir, len(entries), err)
	}
	biasDir := filepath.Join(out, "calibration", "bias", "gain120")
	if entries, err := os.ReadDir(biasDir); err != nil || len(entries) != 1 {
		t.Errorf("bias library dir %s: %v entries, err %v", biasDir, len(entries), err)
	}
}

func TestRunLogsUnreadableLast(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeLight(t, in, "good.fit", "2025-03-01T23:50:00.000", -18.3)
	testsupport.WriteCorruptFrame(t, filepath.Join(in, "bad.fit"))

	summary, err := organize.Run(context.Background(), runOptions(t, in, out))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Copied != 1 || summary.Unreadable != 1 {
		t.Fatalf("summary = %+v", summary)
	}

	logged, err := auditlog.Read(summary.LogPath, nil)
	if err != nil {
		t.Fatalf("Read log: %v", err)
	}
	if len(logged) != 2 {
		t.Fatalf("log entries = %d", len(logged))
	}
	last := logged[len(logged)-1]
	if last.Action != auditlog.ActionSkippedUnreadable || last.DestFile != "" {
		t.Errorf("last entry = %+v", last)
	}
}

func TestRunSkipsHiddenFiles(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeLight(t, in, "good.fit", "2025-03-01T23:50:00.000", -18.3)
	if err := os.WriteFile(filepath.Join(in, ".partial.fit"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	summary, err := organize.Run(context.Background(), runOptions(t, in, out))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Found != 1 || summary.HiddenSkipped != 1 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestRunRejectsMissingInput(t *testing.T) {
	out := t.TempDir()
	_, err := organize.Run(context.Background(), runOptions(t, filepath.Join(out, "nope"), out))
	if err == nil {
		t.Fatal("expected error for missing input directory")
	}
}

func TestRunDeterministicDestinations(t *testing.T) {
	in := t.TempDir()
	// A spread requiring a deviant folder.
	for i, temp := range []float64{-20, -19, -18, -17, -10} {
		writeLight(t, in, fmt.Sprintf("l%d.fit", i),
			fmt.Sprintf("2025-03-01T22:0%d:00.000", i), temp)
	}

	destinations := func() []string {
		out := t.TempDir()
		summary, err := organize.Run(context.Background(), runOptions(t, in, out))
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		logged, err := auditlog.Read(summary.LogPath, nil)
		if err != nil {
			t.Fatalf("Read log: %v", err)
		}
		var rel []string
		for _, e := range logged {
			r, err := filepath.Rel(out, e.DestFile)
			if err != nil {
				t.Fatalf("Rel: %v", err)
			}
			rel = append(rel, r)
		}
		return rel
	}

	first := destinations()
	second := destinations()
	if len(first) != 5 {
		t.Fatalf("destinations = %d", len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("destination %d differs: %q vs %q", i, first[i], second[i])
		}
	}

	// The -10 outlier lands in the above_ deviant folder.
	outlier := first[len(first)-1]
	wantSuffix := filepath.Join("minus20c_to_minus16c", "above_minus16c")
	if !strings.Contains(outlier, wantSuffix) {
		t.Errorf("outlier destination %q missing %q", outlier, wantSuffix)
	}
}
