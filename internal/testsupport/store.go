package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/gvrocha/rocksolid-fits/internal/catalog"
)

// MustOpenStore opens a catalog.Store on a temp database for tests and
// registers cleanup.
func MustOpenStore(t testing.TB) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(filepath.Join(t.TempDir(), "astrophotography.db"))
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
