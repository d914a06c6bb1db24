package testsupport

import (
	"testing"

	"github.com/willhenshall/hls-transcoder/internal/jobs"
)

// MustOpenStore opens a jobs.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB) *jobs.Store {
	t.Helper()

	store, err := jobs.Open()
	if err != nil {
		t.Fatalf("jobs.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
