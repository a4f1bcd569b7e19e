package auditlog_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gvrocha/rocksolid-fits/internal/auditlog"
)

func floatPtr(v float64) *float64 { return &v }

func TestFilename(t *testing.T) {
	if got := auditlog.Filename("20250301_235000_123"); got != "organize_log_20250301_235000_123.tsv" {
		t.Fatalf("filename = %q", got)
	}
}

func TestWriteAndReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "organize_log_test.tsv")
	w, err := auditlog.NewWriter(path)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	entries := []auditlog.Entry{
		{
			OriginFile:  "/in/light1.fit",
			DestFile:    "/out/sessions/20250301/m31/gain120/120s/ha/minus18c/light1.fit",
			Action:      auditlog.ActionCopied,
			FrameType:   "light",
			Target:      "m31",
			Filter:      "ha",
			ExposureSec: floatPtr(120),
			Gain:        "gain120",
			Temperature: floatPtr(-18.3),
			TempFolder:  "minus18c",
			Timestamp:   "20250301_235000_500",
			SessionDate: "20250301",
			TzOffset:    floatPtr(-6),
		},
		{
			OriginFile: "/in/garbage.fit",
			Action:     auditlog.ActionSkippedUnreadable,
		},
	}
	for _, e := range entries {
		if err := w.Append(e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := auditlog.Read(path, nil)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("entries = %d, want 2", len(got))
	}
	if got[0].Sequence != 1 || got[1].Sequence != 2 {
		t.Errorf("sequence numbers = %d, %d", got[0].Sequence, got[1].Sequence)
	}
	first := got[0]
	if first.Action != auditlog.ActionCopied || first.Target != "m31" || first.Filter != "ha" {
		t.Errorf("first entry = %+v", first)
	}
	if first.ExposureSec == nil || *first.ExposureSec != 120 {
		t.Errorf("exposure = %v", first.ExposureSec)
	}
	if first.Temperature == nil || *first.Temperature != -18.3 {
		t.Errorf("temperature = %v", first.Temperature)
	}
	second := got[1]
	if second.Temperature != nil || second.ExposureSec != nil || second.DestFile != "" {
		t.Errorf("unreadable entry should have empty optionals: %+v", second)
	}
}

func TestReadFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.tsv")
	w, err := auditlog.NewWriter(path)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	w.Append(auditlog.Entry{OriginFile: "a", DestFile: "x", Action: auditlog.ActionCopied})
	w.Append(auditlog.Entry{OriginFile: "b", DestFile: "y", Action: auditlog.ActionSkippedExists})
	w.Append(auditlog.Entry{OriginFile: "c", Action: auditlog.ActionSkippedError})
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := auditlog.Read(path, auditlog.Imported)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("imported entries = %d, want 2", len(got))
	}
	if got[0].OriginFile != "a" || got[1].OriginFile != "b" {
		t.Errorf("filtered entries = %+v", got)
	}
}

func TestWriterFlushesEveryLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.tsv")
	w, err := auditlog.NewWriter(path)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	defer w.Close()

	if err := w.Append(auditlog.Entry{OriginFile: "a", Action: auditlog.ActionCopied}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	// Visible on disk before Close.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines on disk = %d, want header plus entry", len(lines))
	}
	if !strings.HasPrefix(lines[0], "sequence_number\torigin_file") {
		t.Errorf("header = %q", lines[0])
	}
}

func TestReadRejectsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.tsv")
	if err := os.WriteFile(path, []byte("not\ta\tlog\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := auditlog.Read(path, nil); err == nil {
		t.Fatal("expected header error")
	}
}
