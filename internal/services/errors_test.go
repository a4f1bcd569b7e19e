package services_test

import (
	"errors"
	"testing"

	"github.com/gvrocha/rocksolid-fits/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("disk full")
	err := services.Wrap(services.ErrTransient, "organizing", "copy frame", "Failed to copy frame", base)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "organizing", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient default, got %v", err)
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrValidation, "import", "open log", "Log file missing", nil)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
	want := "validation error: import: open log: Log file missing"
	if err.Error() != want {
		t.Fatalf("error = %q, want %q", err.Error(), want)
	}
}
