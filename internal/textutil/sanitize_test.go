package textutil_test

import (
	"testing"

	"github.com/gvrocha/rocksolid-fits/internal/textutil"
)

func TestSanitizeToken(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Ha 7nm", "ha_7nm"},
		{"GAIN 100", "gain_100"},
		{"  Light  ", "light"},
		{"dark___frame", "dark_frame"},
		{"already-safe_value.fits", "already-safe_value.fits"},
		{"***", "unknown"},
		{"", "unknown"},
		{"M31 (Andromeda)", "m31_andromeda"},
	}
	for _, tc := range cases {
		if got := textutil.SanitizeToken(tc.in); got != tc.want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCollapseCatalogSpacing(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"M 31", "M31"},
		{"m  42", "m42"},
		{"N 7000", "N7000"},
		{"IC 1396", "IC 1396"},
		{"Andromeda", "Andromeda"},
	}
	for _, tc := range cases {
		if got := textutil.CollapseCatalogSpacing(tc.in); got != tc.want {
			t.Errorf("CollapseCatalogSpacing(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
