package frame_test

import (
	"testing"
	"time"

	"github.com/gvrocha/rocksolid-fits/internal/frame"
)

func floatPtr(v float64) *float64 { return &v }

func TestResolveSessionNoonCutover(t *testing.T) {
	// Both captures belong to the same local night of 2025-03-01.
	offset := floatPtr(0)

	evening := time.Date(2025, 3, 1, 23, 50, 0, 0, time.UTC)
	pastMidnight := time.Date(2025, 3, 2, 0, 10, 0, 0, time.UTC)

	if got := frame.ResolveSession(evening, offset, nil); got != "20250301" {
		t.Fatalf("evening session = %q, want 20250301", got)
	}
	if got := frame.ResolveSession(pastMidnight, offset, nil); got != "20250301" {
		t.Fatalf("past-midnight session = %q, want 20250301", got)
	}
}

func TestResolveSessionAppliesExplicitOffset(t *testing.T) {
	// 04:10 UTC is 22:10 the previous evening at UTC-6; still that night.
	capture := time.Date(2025, 3, 2, 4, 10, 0, 0, time.UTC)
	if got := frame.ResolveSession(capture, floatPtr(-6), nil); got != "20250301" {
		t.Fatalf("session = %q, want 20250301", got)
	}
}

func TestResolveSessionLongitudeFallback(t *testing.T) {
	// floor(-86/15) = -6 hours.
	capture := time.Date(2025, 3, 2, 4, 10, 0, 0, time.UTC)
	if got := frame.ResolveSession(capture, nil, floatPtr(-86.0)); got != "20250301" {
		t.Fatalf("session = %q, want 20250301", got)
	}
}

func TestResolveSessionNoOffsetTreatsAsLocal(t *testing.T) {
	capture := time.Date(2025, 3, 2, 13, 0, 0, 0, time.UTC)
	if got := frame.ResolveSession(capture, nil, nil); got != "20250302" {
		t.Fatalf("session = %q, want 20250302", got)
	}
}

func TestSessionFromStamp(t *testing.T) {
	if got := frame.SessionFromStamp("20250302_001000_123", floatPtr(0)); got != "20250301" {
		t.Fatalf("session = %q, want 20250301", got)
	}
	if got := frame.SessionFromStamp("bogus", floatPtr(0)); got != "" {
		t.Fatalf("session for bogus stamp = %q, want empty", got)
	}
}

func TestSessionFromFilename(t *testing.T) {
	date, ok := frame.SessionFromFilename("light_20250301_m31.fit")
	if !ok || date != "20250301" {
		t.Fatalf("embedded date = %q ok=%v", date, ok)
	}
	if _, ok := frame.SessionFromFilename("no_date_here.fit"); ok {
		t.Fatal("expected no embedded date")
	}
}
