package testsupport

import (
	"context"
	"testing"

	"extpack/internal/config"
	"extpack/internal/history"
)

// MustOpenHistory opens the project's history ledger and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// ListHistory returns every recorded build, newest first.
func ListHistory(t testing.TB, cfg *config.Config) []history.Record {
	t.Helper()

	records, err := MustOpenHistory(t, cfg).List(context.Background(), 0)
	if err != nil {
		t.Fatalf("history.List: %v", err)
	}
	return records
}
