package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"extpack/internal/config"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenPath(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndListNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	first := Record{
		BuildID:          "one",
		Status:           StatusSucceeded,
		ArchivePath:      "/tmp/dist/a.zip",
		ArchiveBytes:     1234,
		ArchiveEntries:   9,
		LicenseGenerated: true,
		StartedAt:        base,
		FinishedAt:       base.Add(1500 * time.Millisecond),
	}
	second := Record{
		BuildID:      "two",
		Status:       StatusFailed,
		FailedStage:  "assemble",
		ErrorKind:    "filesystem",
		ErrorMessage: "open auth0-frontend.html: no such file or directory",
		StartedAt:    base.Add(time.Minute),
		FinishedAt:   base.Add(time.Minute + time.Second),
	}
	for _, rec := range []Record{first, second} {
		if _, err := store.Record(ctx, rec); err != nil {
			t.Fatalf("Record %s: %v", rec.BuildID, err)
		}
	}

	records, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].BuildID != "two" || records[1].BuildID != "one" {
		t.Fatalf("unexpected order: %s, %s", records[0].BuildID, records[1].BuildID)
	}

	got := records[1]
	if got.Status != StatusSucceeded || got.ArchiveBytes != 1234 || got.ArchiveEntries != 9 || !got.LicenseGenerated {
		t.Fatalf("unexpected success record: %+v", got)
	}
	if got.FailedStage != "" || got.ErrorKind != "" {
		t.Fatalf("expected empty failure fields: %+v", got)
	}
	if got.Duration() != 1500*time.Millisecond {
		t.Fatalf("unexpected duration: %s", got.Duration())
	}
	if records[0].FailedStage != "assemble" || records[0].ErrorKind != "filesystem" {
		t.Fatalf("unexpected failure record: %+v", records[0])
	}

	limited, err := store.List(ctx, 1)
	if err != nil {
		t.Fatalf("List limited: %v", err)
	}
	if len(limited) != 1 || limited[0].BuildID != "two" {
		t.Fatalf("unexpected limited list: %+v", limited)
	}
}

func TestListOrdersSubSecondStarts(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	starts := []struct {
		id string
		at time.Time
	}{
		{"whole", base},
		{"older", base.Add(120 * time.Millisecond)},
		{"newer", base.Add(123 * time.Millisecond)},
	}
	for _, s := range starts {
		rec := Record{BuildID: s.id, Status: StatusSucceeded, StartedAt: s.at, FinishedAt: s.at.Add(time.Second)}
		if _, err := store.Record(ctx, rec); err != nil {
			t.Fatalf("Record %s: %v", s.id, err)
		}
	}

	records, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var order []string
	for _, rec := range records {
		order = append(order, rec.BuildID)
	}
	want := []string{"newer", "older", "whole"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
	if !records[1].StartedAt.Equal(base.Add(120 * time.Millisecond)) {
		t.Fatalf("start time not preserved: %s", records[1].StartedAt)
	}
}

func TestRecordValidates(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	if _, err := store.Record(ctx, Record{Status: StatusSucceeded}); err == nil {
		t.Fatal("expected error for missing build id")
	}
	if _, err := store.Record(ctx, Record{BuildID: "x", Status: "maybe"}); err == nil {
		t.Fatal("expected error for invalid status")
	}
	if _, err := store.Record(ctx, Record{BuildID: "dup", Status: StatusFailed}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if _, err := store.Record(ctx, Record{BuildID: "dup", Status: StatusFailed}); err == nil {
		t.Fatal("expected unique build id constraint")
	}
}

func TestReopenKeepsRecords(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := OpenPath(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Record(ctx, Record{BuildID: "kept", Status: StatusSucceeded}); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenPath(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	records, err := reopened.List(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].BuildID != "kept" {
		t.Fatalf("unexpected records after reopen: %+v", records)
	}
}

func TestSchemaMismatchRejected(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := OpenPath(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.db.ExecContext(ctx, "UPDATE schema_version SET version = 99"); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	if _, err := OpenPath(ctx, path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}

func TestOpenUsesConfiguredStateDir(t *testing.T) {
	cfg, _, _, err := config.Load(t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}
	store, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()
	if store.Path() != cfg.HistoryPath() {
		t.Fatalf("unexpected path %q", store.Path())
	}
}
